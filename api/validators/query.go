package validators

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func queryValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func invalidQuery(key, msg string, extra map[string]any) error {
	details := map[string]any{"field": key}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}

// ParseQueryInt reads an optional integer bounded to [lo, hi].
func ParseQueryInt(r *http.Request, key string, defaultVal, lo, hi int) (int, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidQuery(key, "query parameter must be numeric", nil)
	}
	if value < lo || value > hi {
		return 0, invalidQuery(key, "query parameter out of range", map[string]any{"min": lo, "max": hi})
	}
	return value, nil
}

// ParseQueryChoice lowercases the value and checks it against allowed.
// "" means the parameter was absent.
func ParseQueryChoice(r *http.Request, key string, allowed []string) (string, error) {
	raw := strings.ToLower(queryValue(r, key))
	if raw == "" || slices.Contains(allowed, raw) {
		return raw, nil
	}
	return "", invalidQuery(key, "query parameter has an unsupported value", map[string]any{"allowed": allowed})
}
