package postgres

import (
	"encoding/json"
	"time"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

// encodeOptions serializes an option list and image map for JSONB columns.
// Nil values encode as empty collections so the columns never hold SQL NULL.
func encodeOptions(options []string, images map[string]domain.OptionImage) ([]byte, []byte, error) {
	if options == nil {
		options = []string{}
	}
	if images == nil {
		images = map[string]domain.OptionImage{}
	}
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return nil, nil, err
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return nil, nil, err
	}
	return optionsJSON, imagesJSON, nil
}

func decodeOptions(optionsJSON, imagesJSON []byte, options *[]string, images *map[string]domain.OptionImage) error {
	if len(optionsJSON) > 0 {
		if err := json.Unmarshal(optionsJSON, options); err != nil {
			return err
		}
	}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, images); err != nil {
			return err
		}
	}
	return nil
}

// nullableTime maps the zero time to SQL NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
