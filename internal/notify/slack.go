package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

const slackBaseURL = "https://slack.com/api"

// SlackClient talks to the Slack Web API. Besides acting as a plain Sender it
// posts pending markets to the approval channel as Block Kit messages and
// seeds the approve/reject reactions moderators click on.
type SlackClient struct {
	token     string
	channelID string
	baseURL   string
	client    *http.Client
}

// NewSlackClient creates a SlackClient for the given bot token and channel.
func NewSlackClient(token, channelID string) *SlackClient {
	return &SlackClient{
		token:     token,
		channelID: channelID,
		baseURL:   slackBaseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the sender identifier.
func (s *SlackClient) Name() string {
	return "slack"
}

// Send posts a plain notification message to the configured channel.
func (s *SlackClient) Send(ctx context.Context, title, message string) error {
	payload := map[string]any{
		"channel": s.channelID,
		"text":    fmt.Sprintf("*%s*\n%s", title, message),
	}
	_, err := s.call(ctx, "chat.postMessage", payload)
	return err
}

// PostMarket posts a pending market to the approval channel and returns the
// message timestamp, which doubles as Slack's message id. The message shows
// the event banner, the option list with per-option image state, and the
// expiry; unresolved option images are called out so a moderator fixes them
// before approving.
func (s *SlackClient) PostMarket(ctx context.Context, pm domain.PendingMarket) (string, error) {
	payload := map[string]any{
		"channel": s.channelID,
		"text":    pm.Question,
		"blocks":  marketBlocks(pm),
	}
	resp, err := s.call(ctx, "chat.postMessage", payload)
	if err != nil {
		return "", err
	}
	return resp.TS, nil
}

// AddReaction adds an emoji reaction to the message with the given timestamp.
// Slack treats a duplicate reaction as an error; "already_reacted" is ignored
// here so reposting after a partial failure stays idempotent.
func (s *SlackClient) AddReaction(ctx context.Context, messageID, name string) error {
	payload := map[string]any{
		"channel":   s.channelID,
		"timestamp": messageID,
		"name":      name,
	}
	_, err := s.call(ctx, "reactions.add", payload)
	if err != nil && strings.Contains(err.Error(), "already_reacted") {
		return nil
	}
	return err
}

// marketBlocks renders a pending market as Block Kit blocks.
func marketBlocks(pm domain.PendingMarket) []map[string]any {
	var blocks []map[string]any

	header := pm.Question
	if pm.EventName != "" {
		header = pm.EventName
	}
	blocks = append(blocks, map[string]any{
		"type": "header",
		"text": map[string]any{"type": "plain_text", "text": header, "emoji": true},
	})

	if pm.BannerURL != "" {
		blocks = append(blocks, map[string]any{
			"type":      "image",
			"image_url": pm.BannerURL,
			"alt_text":  "event banner",
		})
	}

	var meta strings.Builder
	fmt.Fprintf(&meta, "*Category:* %s", pm.Category)
	if pm.NeedsManual {
		meta.WriteString("  :warning: needs manual review")
	}
	if !pm.Expiry.IsZero() {
		fmt.Fprintf(&meta, "\n*Expires:* %s", pm.Expiry.UTC().Format("2006-01-02 15:04 MST"))
	}
	blocks = append(blocks, map[string]any{
		"type": "section",
		"text": map[string]any{"type": "mrkdwn", "text": meta.String()},
	})

	if len(pm.Options) > 0 {
		var list strings.Builder
		list.WriteString("*Options:*")
		for _, opt := range pm.Options {
			img := pm.OptionImages[opt]
			if img.Resolved {
				fmt.Fprintf(&list, "\n• <%s|%s>", img.URL, opt)
			} else {
				fmt.Fprintf(&list, "\n• %s  :camera_with_flash: _no image found_", opt)
			}
		}
		blocks = append(blocks, map[string]any{
			"type": "section",
			"text": map[string]any{"type": "mrkdwn", "text": list.String()},
		})
	}

	blocks = append(blocks, map[string]any{
		"type": "context",
		"elements": []map[string]any{
			{"type": "mrkdwn", "text": "React with :white_check_mark: to approve or :x: to reject."},
		},
	})
	return blocks
}

type slackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	TS    string `json:"ts"`
}

// call posts a JSON payload to one Web API method and decodes the envelope.
func (s *SlackClient) call(ctx context.Context, method string, payload map[string]any) (slackResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return slackResponse{}, fmt.Errorf("slack: marshal %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return slackResponse{}, fmt.Errorf("slack: create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return slackResponse{}, fmt.Errorf("slack: %s request: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return slackResponse{}, fmt.Errorf("slack: read %s response: %w", method, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return slackResponse{}, fmt.Errorf("slack: %s unexpected status %d: %s", method, resp.StatusCode, raw)
	}

	var parsed slackResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return slackResponse{}, fmt.Errorf("slack: decode %s response: %w", method, err)
	}
	if !parsed.OK {
		return slackResponse{}, fmt.Errorf("slack: %s failed: %s", method, parsed.Error)
	}
	return parsed, nil
}
