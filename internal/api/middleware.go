package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog/log"
)

// TokenAuthMiddleware проверяет заголовок X-Api-Token.
// Пустой настроенный токен полностью закрывает защищённые маршруты.
// TokenAuthMiddleware validates the X-Api-Token header.
func TokenAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				http.Error(w, "Forbidden: admin API disabled", http.StatusForbidden)
				return
			}
			got := r.Header.Get("X-Api-Token")
			if got == "" {
				http.Error(w, "Unauthorized: missing X-Api-Token header", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				log.Warn().Str("remote", r.RemoteAddr).Msg("запрос с неверным API-токеном")
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
