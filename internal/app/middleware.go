package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/oneshowhq/oneshow/internal/domain"
)

type contextKey string

const identityContextKey = contextKey("identity")

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the bearer token, if any, into an Identity on the
// request context. Requests without an Authorization header pass through
// anonymously; requireAuthentication decides whether that is acceptable.
func (app *Application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		authorizationHeader := r.Header.Get("Authorization")
		if authorizationHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		headerParts := strings.Split(authorizationHeader, " ")
		if len(headerParts) != 2 || headerParts[0] != "Bearer" {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		identity, err := app.identityVerifier.VerifyToken(r.Context(), headerParts[1])
		if err != nil {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *Application) requireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := r.Context().Value(identityContextKey).(domain.Identity)
		if !ok || identity.UserID == "" {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *Application) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := r.Context().Value(identityContextKey).(domain.Identity)
		if !ok || identity.UserID == "" {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		if !identity.Admin {
			app.forbiddenAccessResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *Application) contextGetIdentity(r *http.Request) domain.Identity {
	identity, ok := r.Context().Value(identityContextKey).(domain.Identity)
	if !ok {
		return domain.Identity{}
	}

	return identity
}

func (app *Application) contextGetUserId(r *http.Request) string {
	return app.contextGetIdentity(r).UserID
}
