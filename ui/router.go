package ui

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/n0rdy/queuewatch/common"
	"github.com/n0rdy/queuewatch/configs"
	"github.com/n0rdy/queuewatch/services"

	"github.com/go-chi/chi/v5"
	"github.com/justinas/nosurf"
	"github.com/rs/zerolog/log"
)

type Router struct {
	connectionService *services.ConnectionService
	sessionsService   *services.SessionsService
	authSecret        string
	addressDebounceMs int64
}

func NewRouter(
	connectionService *services.ConnectionService,
	sessionsService *services.SessionsService,
	appConfigs *configs.AppConfigs,
) *Router {
	return &Router{
		connectionService: connectionService,
		sessionsService:   sessionsService,
		authSecret:        appConfigs.AuthSecret,
		addressDebounceMs: appConfigs.Polling.AddressDebounceMs,
	}
}

// NewRouter returns the dashboard routes relative to their mount point, `/ui` in production.
func (ur *Router) NewRouter() *chi.Mux {
	router := chi.NewRouter()

	if ur.authEnabled() {
		// Unprotected login routes
		router.Get("/login", ur.loginPage)
		router.Post("/login", ur.processLogin)
		router.Post("/logout", ur.processLogout)
	}

	router.Group(func(r chi.Router) {
		if ur.authEnabled() {
			r.Use(sessionAuth(ur.sessionsService))
		}
		r.Get("/", ur.dashboard)
		r.Get("/queues", ur.queuesPanel)
		r.Post("/address", ur.setAddress)
		r.Post("/connect", ur.connect)
		r.Post("/notifications/{notificationId}/dismiss", ur.dismissNotification)
	})

	return router
}

func (ur *Router) authEnabled() bool {
	return ur.authSecret != "" && ur.sessionsService != nil
}

func (ur *Router) loginPage(w http.ResponseWriter, req *http.Request) {
	data := TemplateData{
		Title:     "Login",
		CSRFToken: nosurf.Token(req),
	}
	RenderTemplate(w, "login-page", data)
}

func (ur *Router) processLogin(w http.ResponseWriter, req *http.Request) {
	err := req.ParseForm()
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse login form")
		data := TemplateData{
			Title:     "Login",
			Error:     "Invalid form data",
			CSRFToken: nosurf.Token(req),
		}
		RenderTemplate(w, "login-page", data)
		return
	}

	token := req.FormValue("token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(ur.authSecret)) != 1 {
		log.Warn().Msg("Invalid login token")
		data := TemplateData{
			Title:     "Login",
			Error:     "Invalid authentication token",
			CSRFToken: nosurf.Token(req),
		}
		RenderTemplate(w, "login-page", data)
		return
	}

	sessionId, expiresAtMs := ur.sessionsService.CreateSession()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionId,
		Path:     "/",
		Expires:  time.UnixMilli(expiresAtMs),
		HttpOnly: true,
		Secure:   req.TLS != nil, // Only secure if HTTPS
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, req, "/ui/", http.StatusFound)
}

func (ur *Router) processLogout(w http.ResponseWriter, req *http.Request) {
	sessionCookie, _ := req.Cookie(sessionCookieName)
	if sessionCookie != nil {
		ur.sessionsService.InvalidateSession(sessionCookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // Delete the cookie
		HttpOnly: true,
	})

	http.Redirect(w, req, "/ui/login", http.StatusFound)
}

func (ur *Router) dashboard(w http.ResponseWriter, req *http.Request) {
	RenderTemplate(w, "dashboard-page", ur.dashboardData(req))
}

func (ur *Router) queuesPanel(w http.ResponseWriter, req *http.Request) {
	RenderTemplate(w, "queues-panel", ur.dashboardData(req))
}

func (ur *Router) setAddress(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		log.Error().Err(err).Msg("Failed to parse address form")
		http.Error(w, common.ErrCodeBadRequestInvalidBody, http.StatusBadRequest)
		return
	}

	if err := ur.connectionService.SetAddress(req.FormValue("address")); err != nil {
		log.Error().Err(err).Msg("Failed to set server address")
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	ur.queuesPanel(w, req)
}

func (ur *Router) connect(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		log.Error().Err(err).Msg("Failed to parse connect form")
		http.Error(w, common.ErrCodeBadRequestInvalidBody, http.StatusBadRequest)
		return
	}

	// failures end up in the view as a notification
	err := ur.connectionService.Connect(context.WithoutCancel(req.Context()), req.FormValue("address"))
	if errors.Is(err, common.ErrClosed) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	if req.Header.Get("HX-Request") == "true" {
		ur.queuesPanel(w, req)
		return
	}
	http.Redirect(w, req, "/ui/", http.StatusSeeOther)
}

func (ur *Router) dismissNotification(w http.ResponseWriter, req *http.Request) {
	ur.connectionService.DismissNotification(chi.URLParam(req, "notificationId"))
	ur.queuesPanel(w, req)
}

func (ur *Router) dashboardData(req *http.Request) TemplateData {
	data := newDashboardData(ur.connectionService.View(), ur.addressDebounceMs)
	data.CSRFToken = nosurf.Token(req)
	data.AuthEnabled = ur.authEnabled()
	return data
}
