package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/bulkorder/internal/core"
	"github.com/JonMunkholm/bulkorder/internal/logging"
	"github.com/JonMunkholm/bulkorder/internal/token"
)

// Headers that identify the caller.
const (
	HeaderClientID   = "X-Client-ID"
	HeaderSalesRepID = "X-Sales-Rep-ID"
)

// TokenVerifier checks masquerade tokens.
type TokenVerifier interface {
	Parse(tokenString string) (*token.Claims, error)
}

// Identity puts the caller into the request context: the storefront client
// from X-Client-ID, and the sales rep either from a verified masquerade
// bearer token or from X-Sales-Rep-ID. A bearer token that fails
// verification is rejected; so is a malformed sales rep header. IP address
// and user agent are recorded for upload history.
func Identity(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = core.ContextWithIPAddress(ctx, r.RemoteAddr)
			ctx = core.ContextWithUserAgent(ctx, r.UserAgent())

			if client := strings.TrimSpace(r.Header.Get(HeaderClientID)); client != "" {
				ctx = core.ContextWithClientID(ctx, client)
			}

			if bearer, ok := bearerToken(r); ok && verifier != nil {
				claims, err := verifier.Parse(bearer)
				if err != nil {
					logging.FromContext(ctx).Warn("identity: rejected masquerade token",
						"path", r.URL.Path,
						"error", err,
					)
					writeJSONError(w, http.StatusUnauthorized, "invalid masquerade token", "AUTH_INVALID_TOKEN")
					return
				}
				ctx = core.ContextWithSalesRepID(ctx, claims.SalesRepID)
			} else if raw := strings.TrimSpace(r.Header.Get(HeaderSalesRepID)); raw != "" {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || id <= 0 {
					writeJSONError(w, http.StatusBadRequest, "invalid sales rep id", "VAL001")
					return
				}
				ctx = core.ContextWithSalesRepID(ctx, id)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	scheme, value, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
