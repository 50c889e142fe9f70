// Package middleware adapts the engine's revocation guard to net/http.
//
// The guard reads the Authorization header, calls Engine.Authorize, and
// injects the validated result into the request context. It makes no
// authentication decision itself. The two rejection modes stay
// distinguishable in the response body: a malformed token and a revoked
// session both answer 401, but only the latter tells the client to sign in
// again rather than to fix its token.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	auth "github.com/JaspersJas1743/MyJournal-sub002"
)

type authResultContextKey struct{}

// AuthResultFromContext returns the result injected by [Guard] for the
// current request.
func AuthResultFromContext(ctx context.Context) (*auth.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*auth.AuthResult)
	return res, ok
}

// Guard wraps next with the per-request revocation check.
func Guard(engine *auth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res, err := engine.Authorize(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrSessionRevoked) {
					http.Error(w, auth.ErrSessionRevoked.Error(), http.StatusUnauthorized)
					return
				}
				http.Error(w, auth.ErrTokenInvalid.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
