package tokencache

import "time"

// offsetlessLayout matches cache files written without a zone offset.
const offsetlessLayout = "2006-01-02T15:04:05.999999"

type fileSchema struct {
	Tokens      tokensSchema `json:"tokens"`
	SavedAt     string       `json:"saved_at"`
	CustomerURN *string      `json:"customer_urn"`
}

type tokensSchema struct {
	AccessToken string `json:"access_token"`
}

func parseSavedAt(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	for _, layout := range []string{time.RFC3339Nano, offsetlessLayout} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}

	return time.Time{}
}

func formatSavedAt(value time.Time) string {
	return value.Format(time.RFC3339Nano)
}
