package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"ideora.org/internal/auth"
	"ideora.org/internal/obs"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// publicPaths need no bearer token. The chat WebSocket endpoint
// authenticates itself from a query parameter because browsers cannot
// set headers on WebSocket dials.
var publicPaths = []string{
	"/",
	"/healthz",
	"/readyz",
	"/metrics",
	"/v1/info",
	"/v1/users/login",
	"/v1/themes",
	"/v1/news",
	"/v1/chat/ws",
}

var publicPrefixes = []string{
	"/v1/news/",
}

// publicReadPaths and publicReadPrefixes allow anonymous GET only;
// mutations on the same routes still require a token.
var publicReadPaths = []string{
	"/v1/ideations",
	"/v1/investors",
	"/v1/comments",
	"/v1/attachments",
	"/v1/boards",
}

var publicReadPrefixes = []string{
	"/v1/ideation/",
	"/v1/investor/",
	"/v1/board/",
}

func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		// Registration is the only unauthenticated write.
		public := isPublicPath(r.URL.Path) ||
			(r.URL.Path == "/v1/users" && r.Method == http.MethodPost) ||
			(r.Method == http.MethodGet && isPublicReadPath(r.URL.Path))

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			// Anonymous access is fine on public routes, but a token
			// that was presented is always verified so that, for
			// example, the view counter can tell an owner's visit
			// apart from a stranger's.
			if public {
				next.ServeHTTP(w, r)
				return
			}
			obs.CountAuthFailure("missing_token")
			unauthorized(w, r, err.Error())
			return
		}

		user, err := a.resolver.Resolve(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidToken):
				obs.CountAuthFailure("invalid_token")
				unauthorized(w, r, "invalid token")
			case errors.Is(err, auth.ErrInactiveAccount):
				obs.CountAuthFailure("inactive_account")
				writeError(w, r, http.StatusForbidden, "account disabled")
			default:
				writeError(w, r, http.StatusInternalServerError, "authentication error")
			}
			return
		}

		ctx := auth.ContextWithUser(r.Context(), user)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// unauthorized writes a 401 with a bearer challenge.
func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, r, http.StatusUnauthorized, msg)
}

// requireUser returns the authenticated caller or writes a 401.
func (a *API) requireUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		unauthorized(w, r, "authentication required")
		return nil, false
	}
	return user, true
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func isPublicReadPath(path string) bool {
	for _, p := range publicReadPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range publicReadPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
