package auth

import (
	"encoding/json"
	"strings"

	"github.com/bnema/ngmetro/internal/domain"
)

const (
	debugSampleLength       = 100
	minHeuristicTokenLength = 100
)

// StorageEntry is one key/value pair read from the browser's local or
// session storage.
type StorageEntry struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Session bool   `json:"session"`
}

type storedSecret struct {
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
}

type extractRule func(entry StorageEntry, lowerKey string) string

// extractRules are tried in order; within a rule entries keep storage order.
var extractRules = []extractRule{
	func(entry StorageEntry, lowerKey string) string {
		if !entry.Session || !strings.Contains(lowerKey, "accesstoken") {
			return ""
		}
		return secretField(entry.Value)
	},
	func(entry StorageEntry, lowerKey string) string {
		if !strings.Contains(lowerKey, "accesstoken") {
			return ""
		}
		if !strings.Contains(lowerKey, "opower") && !strings.Contains(lowerKey, "nationalgrid") {
			return ""
		}
		return secretField(entry.Value)
	},
	func(entry StorageEntry, lowerKey string) string {
		if !strings.Contains(lowerKey, "access_token") {
			return ""
		}
		if !strings.HasPrefix(entry.Value, "{") {
			return entry.Value
		}
		var stored storedSecret
		if err := json.Unmarshal([]byte(entry.Value), &stored); err != nil {
			return ""
		}
		if stored.AccessToken != "" {
			return stored.AccessToken
		}
		return stored.Secret
	},
	func(entry StorageEntry, _ string) string {
		if strings.HasPrefix(entry.Value, "ey") && len(entry.Value) > minHeuristicTokenLength {
			return entry.Value
		}
		return ""
	},
}

// ExtractToken picks the resource bearer token out of a storage dump.
func ExtractToken(entries []StorageEntry) (string, error) {
	for _, rule := range extractRules {
		for _, entry := range entries {
			if entry.Value == "" {
				continue
			}
			if token := rule(entry, strings.ToLower(entry.Key)); token != "" {
				return token, nil
			}
		}
	}

	return "", &domain.AuthError{
		Reason:      domain.ErrTokenNotFound.Error(),
		DebugSample: debugSample(entries),
		Err:         domain.ErrTokenNotFound,
	}
}

func secretField(value string) string {
	var stored storedSecret
	if err := json.Unmarshal([]byte(value), &stored); err != nil {
		return ""
	}
	return stored.Secret
}

func debugSample(entries []StorageEntry) map[string]string {
	sample := make(map[string]string)
	for _, entry := range entries {
		if entry.Value == "" {
			continue
		}
		lowerKey := strings.ToLower(entry.Key)
		if !strings.Contains(lowerKey, "token") && !strings.Contains(lowerKey, "auth") && !strings.Contains(lowerKey, "msal") {
			continue
		}

		key := entry.Key
		if entry.Session {
			key = "session_" + key
		}
		sample[key] = truncate(entry.Value, debugSampleLength)
	}
	return sample
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}
