package services

import (
	"encoding/json"
	"strconv"
	"time"

	"teamcal-backend/internal/models"
)

// Formats the remote API uses for datetime strings.
var timeFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeActivities maps raw remote records into canonical activities.
// Records missing an id or a usable start are dropped silently; malformed
// upstream entries must not fail the whole sync.
func NormalizeActivities(raw []map[string]any, resourceType string) []models.Activity {
	items := make([]models.Activity, 0, len(raw))

	for _, record := range raw {
		id := stringField(record, "id")
		start, ok := timeField(record, "startsAt", "starts_at")
		if id == "" || !ok {
			continue
		}

		var end *time.Time
		if e, ok := timeField(record, "endsAt", "ends_at"); ok {
			end = &e
		}

		payload, err := json.Marshal(record)
		if err != nil {
			payload = json.RawMessage("{}")
		}

		items = append(items, models.Activity{
			ID:           id,
			ResourceType: resourceType,
			StartsAt:     start,
			EndsAt:       end,
			Payload:      payload,
		})
	}

	return items
}

// stringField resolves the first present key, rendering JSON numbers as
// strings (D4H ids arrive as either).
func stringField(record map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := record[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// timeField resolves the first key present on the record: camelCase wins over
// the snake form when both exist. Numeric values are Unix epoch seconds.
func timeField(record map[string]any, keys ...string) (time.Time, bool) {
	for _, key := range keys {
		v, exists := record[key]
		if !exists || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return time.Unix(int64(t), 0).UTC(), true
		case json.Number:
			n, err := t.Int64()
			if err != nil {
				return time.Time{}, false
			}
			return time.Unix(n, 0).UTC(), true
		case string:
			if t == "" {
				return time.Time{}, false
			}
			for _, format := range timeFormats {
				if parsed, err := time.Parse(format, t); err == nil {
					return parsed.UTC(), true
				}
			}
			return time.Time{}, false
		default:
			return time.Time{}, false
		}
	}
	return time.Time{}, false
}
