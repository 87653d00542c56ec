package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/bulkorder/internal/core"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

var validate = validator.New()

// decodeJSON reads a JSON body into dst and runs its validate tags. An empty
// body leaves dst at its zero value before validation.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: decode body: %v", core.ErrInvalidInput, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
	}
	return nil
}

// pathID parses a positive int64 URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s %q", core.ErrInvalidInput, name, raw)
	}
	return id, nil
}

// parseIntParam parses an integer query parameter with a default value.
// Values below min fall back to the default.
func parseIntParam(r *http.Request, name string, defaultVal, min int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < min {
		return defaultVal
	}
	return i
}
