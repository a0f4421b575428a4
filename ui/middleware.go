package ui

import (
	"net/http"

	"github.com/n0rdy/queuewatch/common"
	"github.com/n0rdy/queuewatch/services"

	"github.com/justinas/nosurf"
	"github.com/rs/zerolog/log"
)

const sessionCookieName = "QueuewatchSession"

// sessionAuth middleware for UI routes
func sessionAuth(sessionsService *services.SessionsService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sessionCookie, err := req.Cookie(sessionCookieName)
			if err != nil {
				redirectToLogin(w, req)
				return
			}

			if !sessionsService.IsSessionValid(sessionCookie.Value) {
				redirectToLogin(w, req)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// htmx follows HX-Redirect instead of swapping the login page into a partial
func redirectToLogin(w http.ResponseWriter, req *http.Request) {
	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/ui/login")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, req, "/ui/login", http.StatusFound)
}

// WithCSRF protects every unsafe dashboard request with a double-submit token.
func WithCSRF(handler http.Handler) http.Handler {
	csrfHandler := nosurf.New(handler)
	csrfHandler.SetBaseCookie(http.Cookie{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	csrfHandler.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		log.Warn().Str("path", req.URL.Path).Err(nosurf.Reason(req)).Msg("CSRF check failed")
		http.Error(w, common.ErrCodeBadRequestInvalidBody, http.StatusBadRequest)
	}))
	return csrfHandler
}
