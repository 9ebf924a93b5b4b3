package middleware

import (
	"net/http"
	"strings"

	"reviewboard/pkg/utils"

	"go.uber.org/zap"
)

const (
	OwnershipTokenHeader = "X-Ownership-Token"
	ownershipTokenParam  = "ownership_token"
)

// OwnershipToken copies the X-Ownership-Token header into the request
// context. A token in the query string is rejected so it never reaches
// access logs or proxies.
func OwnershipToken(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Has(ownershipTokenParam) {
				logger.Warn("Ownership token sent in query string",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				utils.ResponseBadRequest(w, "Send the ownership token in the "+OwnershipTokenHeader+" header", nil)
				return
			}

			token := strings.TrimSpace(r.Header.Get(OwnershipTokenHeader))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := utils.SetOwnershipTokenContext(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
