package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/n0rdy/queuewatch/common"
	"github.com/n0rdy/queuewatch/configs"
	"github.com/n0rdy/queuewatch/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// QueuesLister backs the optional `/queues` endpoint.
type QueuesLister interface {
	ListQueues() ([]common.QueueResponse, error)
}

type Router struct {
	connectionService *services.ConnectionService
	monitoringService *services.MonitoringService
	queuesLister      QueuesLister
	metricsHandler    http.Handler
	connectLimiter    *rate.Limiter
	authSecret        string
}

// NewRouter builds the JSON API. queuesLister and metricsHandler are optional:
// the matching endpoints are only mounted when they are not nil.
func NewRouter(
	connectionService *services.ConnectionService,
	monitoringService *services.MonitoringService,
	queuesLister QueuesLister,
	metricsHandler http.Handler,
	appConfigs *configs.AppConfigs,
) *Router {
	return &Router{
		connectionService: connectionService,
		monitoringService: monitoringService,
		queuesLister:      queuesLister,
		metricsHandler:    metricsHandler,
		connectLimiter:    rate.NewLimiter(rate.Every(appConfigs.ConnectMinGap()), appConfigs.Polling.ConnectBurst),
		authSecret:        appConfigs.AuthSecret,
	}
}

func (ar *Router) NewRouter() *chi.Mux {
	router := chi.NewRouter()

	router.Get("/healthcheck", ar.healthcheck)

	if ar.metricsHandler != nil {
		router.Handle("/metrics", ar.metricsHandler)
	}
	if ar.queuesLister != nil {
		router.Get("/queues", ar.listQueues)
	}

	router.Route("/api/v1", func(r chi.Router) {
		if ar.authSecret != "" {
			r.Use(apiKeyTokenAuth(ar.authSecret))
		}

		r.Route("/connection", func(r chi.Router) {
			r.Get("/", ar.getConnection)
			r.Post("/", ar.connect)
			r.Post("/refresh", ar.refresh)
			r.Put("/address", ar.setAddress)
			r.Delete("/notifications/{notificationId}", ar.dismissNotification)
		})
	})

	return router
}

func (ar *Router) getConnection(w http.ResponseWriter, req *http.Request) {
	ar.sendJsonResponse(w, http.StatusOK, toConnectionResponse(ar.connectionService.View()))
}

func (ar *Router) connect(w http.ResponseWriter, req *http.Request) {
	var addressReq common.AddressRequest
	err := json.NewDecoder(req.Body).Decode(&addressReq)
	// an empty address is a connect attempt that fails as malformed, not a bad request
	if err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		ar.sendErrorResponse(w, http.StatusBadRequest, common.ErrCodeBadRequestInvalidBody)
		return
	}

	if !ar.connectLimiter.Allow() {
		ar.sendResponseFromError(w, common.ErrTooManyRequests)
		return
	}

	// the connect outcome is committed even if the caller goes away mid-fetch
	err = ar.connectionService.Connect(context.WithoutCancel(req.Context()), addressReq.Address)
	if err != nil {
		ar.sendResponseFromError(w, err)
		return
	}
	ar.sendJsonResponse(w, http.StatusOK, toConnectionResponse(ar.connectionService.View()))
}

func (ar *Router) refresh(w http.ResponseWriter, req *http.Request) {
	err := ar.connectionService.Refresh(req.Context())
	if err != nil {
		ar.sendResponseFromError(w, err)
		return
	}
	ar.sendJsonResponse(w, http.StatusOK, toConnectionResponse(ar.connectionService.View()))
}

func (ar *Router) setAddress(w http.ResponseWriter, req *http.Request) {
	var addressReq common.AddressRequest
	err := json.NewDecoder(req.Body).Decode(&addressReq)
	if err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		ar.sendErrorResponse(w, http.StatusBadRequest, common.ErrCodeBadRequestInvalidBody)
		return
	}

	err = ar.connectionService.SetAddress(addressReq.Address)
	if err != nil {
		ar.sendResponseFromError(w, err)
		return
	}
	ar.sendJsonResponse(w, http.StatusOK, toConnectionResponse(ar.connectionService.View()))
}

func (ar *Router) dismissNotification(w http.ResponseWriter, req *http.Request) {
	notificationId := chi.URLParam(req, "notificationId")

	if !ar.connectionService.DismissNotification(notificationId) {
		ar.sendResponseFromError(w, common.ErrNotFoundNotification)
		return
	}
	ar.sendNoContentEmptyResponse(w)
}

func (ar *Router) listQueues(w http.ResponseWriter, req *http.Request) {
	queues, err := ar.queuesLister.ListQueues()
	if err != nil {
		ar.sendResponseFromError(w, err)
		return
	}
	ar.sendJsonResponse(w, http.StatusOK, queues)
}

func (ar *Router) healthcheck(w http.ResponseWriter, req *http.Request) {
	if !ar.monitoringService.IsHealthy(req.Context()) {
		ar.sendErrorResponse(w, http.StatusServiceUnavailable, common.ErrCodeInternal)
		return
	}
	ar.sendNoContentEmptyResponse(w)
}

func (ar *Router) sendNoContentEmptyResponse(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func (ar *Router) sendJsonResponse(w http.ResponseWriter, httpCode int, payload interface{}) {
	respBody, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Error marshaling response body")
		ar.sendErrorResponse(w, http.StatusInternalServerError, common.ErrCodeInternal)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	w.Write(respBody)
}

func (ar *Router) sendErrorResponse(w http.ResponseWriter, httpCode int, errCode string) {
	ar.sendJsonResponse(w, httpCode, common.ErrorResponse{Code: errCode})
}

func (ar *Router) sendResponseFromError(w http.ResponseWriter, err error) {
	var me common.MonitorError
	if !errors.As(err, &me) {
		ar.sendErrorResponse(w, http.StatusInternalServerError, common.ErrCodeInternal)
		return
	}
	ar.sendErrorResponse(w, httpCodeFor(me), me.Code)
}

func httpCodeFor(me common.MonitorError) int {
	switch me {
	case common.ErrBadRequestInvalidBody:
		return http.StatusBadRequest
	case common.ErrNotFoundNotification:
		return http.StatusNotFound
	case common.ErrTooManyRequests:
		return http.StatusTooManyRequests
	case common.ErrFetchFailed, common.ErrBrokerUnreachable:
		return http.StatusBadGateway
	case common.ErrFetchSuperseded, common.ErrNotLive:
		return http.StatusConflict
	case common.ErrClosed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
