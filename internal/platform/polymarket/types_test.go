package polymarket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

func TestAPIMarketToRawMarket(t *testing.T) {
	payload := `{
		"id": "512329",
		"conditionId": "0xabc",
		"question": "Will Arsenal win the Champions League?",
		"description": "Resolves Yes if Arsenal wins.",
		"image": "https://img/arsenal.png",
		"icon": "https://img/arsenal-icon.png",
		"outcomes": "[\"Yes\", \"No\"]",
		"category": "sports",
		"endDate": "2026-05-30T20:00:00Z",
		"active": true,
		"closed": "false",
		"archived": false,
		"events": [{
			"id": "E1",
			"title": "Champions League Winner",
			"image": "https://img/banner.png",
			"icon": "https://img/event-icon.png",
			"category": "sports"
		}]
	}`

	var m APIMarket
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	raw := m.ToRawMarket()

	if raw.ID != "512329" || raw.ConditionID != "0xabc" {
		t.Errorf("ids = %q / %q", raw.ID, raw.ConditionID)
	}
	if len(raw.Outcomes) != 2 || raw.Outcomes[0] != "Yes" || raw.Outcomes[1] != "No" {
		t.Errorf("Outcomes = %v", raw.Outcomes)
	}
	if !raw.Active || raw.Closed || raw.Archived {
		t.Errorf("flags = %v/%v/%v", raw.Active, raw.Closed, raw.Archived)
	}
	want := time.Date(2026, 5, 30, 20, 0, 0, 0, time.UTC)
	if !raw.EndDate.Equal(want) {
		t.Errorf("EndDate = %v", raw.EndDate)
	}

	ev, ok := raw.EventRef()
	if !ok {
		t.Fatal("expected event ref")
	}
	if ev.ID != "E1" || ev.Title != "Champions League Winner" || ev.Image != "https://img/banner.png" {
		t.Errorf("event = %+v", ev)
	}
}

func TestDecodeOutcomes(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  []string
		isNil bool
	}{
		{name: "yes no", in: `["Yes", "No"]`, want: []string{"Yes", "No"}},
		{name: "empty string", in: "", isNil: true},
		{name: "malformed", in: `["Yes", "No"`, isNil: true},
		{name: "not an array", in: `"Yes"`, isNil: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeOutcomes(tt.in)
			if tt.isNil {
				if got != nil {
					t.Fatalf("decodeOutcomes(%q) = %v, want nil", tt.in, got)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("decodeOutcomes(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("decodeOutcomes(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFlexTimeEpochMillis(t *testing.T) {
	var f flexTime
	if err := json.Unmarshal([]byte("1780257600000"), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := f.Time(); got.Year() != 2026 {
		t.Errorf("Time() = %v, want a 2026 date", got)
	}

	if err := json.Unmarshal([]byte("null"), &f); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !f.Time().IsZero() {
		t.Errorf("null should decode to zero time, got %v", f.Time())
	}
}

func TestListOpenMarketsPaging(t *testing.T) {
	var offsets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("active") != "true" || q.Get("closed") != "false" || q.Get("archived") != "false" {
			t.Errorf("missing open-market filters in query: %s", r.URL.RawQuery)
		}
		offsets = append(offsets, q.Get("offset"))
		w.Header().Set("Content-Type", "application/json")
		if q.Get("offset") == "0" {
			// Full page forces a second request.
			w.Write([]byte(`[{"id":"m1","question":"Q1","outcomes":"[\"Yes\",\"No\"]"},{"id":"m2","question":"Q2","outcomes":"[\"Yes\",\"No\"]"}]`))
			return
		}
		w.Write([]byte(`[{"id":"m3","question":"Q3","outcomes":"[\"Yes\",\"No\"]"}]`))
	}))
	defer srv.Close()

	client := NewGammaClient(srv.URL)
	markets, err := client.ListOpenMarkets(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListOpenMarkets: %v", err)
	}
	if len(markets) != 3 {
		t.Fatalf("got %d markets, want 3", len(markets))
	}
	if markets[0].ID != "m1" || markets[2].ID != "m3" {
		t.Errorf("markets = %+v", markets)
	}
	if len(offsets) != 2 || offsets[0] != "0" || offsets[1] != "2" {
		t.Errorf("offsets = %v", offsets)
	}
}

func TestGetMarketNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewGammaClient(srv.URL)
	_, err := client.GetMarket(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
