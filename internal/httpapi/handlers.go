package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gust-labs/weather-alerts-backend/internal/domain"
	"github.com/gust-labs/weather-alerts-backend/internal/service"
)

type Handlers struct {
	service *service.Service
}

type subscribeRequest struct {
	Token string   `json:"token"`
	Tags  []string `json:"tags"`
}

type broadcastResponse struct {
	OK      bool             `json:"ok"`
	Sent    int              `json:"sent"`
	Results []map[string]any `json:"results,omitempty"`
	Reason  string           `json:"reason,omitempty"`
}

func NewRouter(service *service.Service, metricsHandler http.Handler) http.Handler {
	handlers := &Handlers{service: service}
	router := chi.NewRouter()

	// Every response is structured JSON, including routing misses.
	router.NotFound(func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(writer, http.StatusNotFound, map[string]string{"error": "not_found"})
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(writer, http.StatusMethodNotAllowed, map[string]string{"error": "method_not_allowed"})
	})

	router.Get("/healthz", handlers.healthz)
	router.Handle("/metrics", metricsHandler)
	router.Route("/api", func(r chi.Router) {
		r.Post("/subscribe", handlers.subscribe)
		r.Get("/subscriptions/me", handlers.subscriptionMe)

		r.With(handlers.adminSecretAuth).Post("/trigger-alert", handlers.triggerAlert)
	})

	return router
}

func (handlers *Handlers) adminSecretAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		header := request.Header.Get("X-Admin-Secret")
		if !handlers.service.ValidateAdminSecret(header) {
			writeJSON(writer, http.StatusForbidden, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(writer, request)
	})
}

func (handlers *Handlers) healthz(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write([]byte("ok"))
}

func (handlers *Handlers) subscribe(writer http.ResponseWriter, request *http.Request) {
	clientIP := requestIP(request)
	if !handlers.service.AllowSubscribe(clientIP) {
		writeJSON(writer, http.StatusTooManyRequests, map[string]string{"error": "rate_limited"})
		return
	}

	var payload subscribeRequest
	if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
		writeJSON(writer, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}

	err := handlers.service.Register(request.Context(), strings.TrimSpace(payload.Token), payload.Tags)
	if err != nil {
		if errors.Is(err, service.ErrTokenRequired) {
			writeJSON(writer, http.StatusBadRequest, map[string]string{"error": "push_token_required"})
			return
		}
		log.Printf("subscribe failed: %v", err)
		writeJSON(writer, http.StatusInternalServerError, map[string]string{"error": "internal_server_error"})
		return
	}

	writeJSON(writer, http.StatusOK, map[string]bool{"success": true})
}

func (handlers *Handlers) subscriptionMe(writer http.ResponseWriter, request *http.Request) {
	token := strings.TrimSpace(request.URL.Query().Get("token"))
	if token == "" {
		writeJSON(writer, http.StatusOK, map[string]any{"status": "inactive", "tags": []string{}})
		return
	}

	status, tags, err := handlers.service.SubscriptionStatus(request.Context(), token)
	if err != nil {
		log.Printf("subscriptions/me query failed: %v", err)
		writeJSON(writer, http.StatusInternalServerError, map[string]string{"error": "internal_server_error"})
		return
	}

	writeJSON(writer, http.StatusOK, map[string]any{"status": status, "tags": tags})
}

func (handlers *Handlers) triggerAlert(writer http.ResponseWriter, request *http.Request) {
	// Title and body are both optional; an unreadable body is treated as an
	// empty request so the defaults apply.
	var payload domain.AlertRequest
	_ = json.NewDecoder(request.Body).Decode(&payload)

	result, err := handlers.service.Broadcast(request.Context(), payload)
	if err != nil {
		log.Printf("trigger-alert failed: %v", err)
		writeJSON(writer, http.StatusInternalServerError, map[string]string{"error": "internal_server_error"})
		return
	}

	writeJSON(writer, http.StatusOK, broadcastResponse{
		OK:      true,
		Sent:    result.Sent,
		Results: result.Results,
		Reason:  result.Reason,
	})
}

func requestIP(request *http.Request) string {
	forwardedFor := strings.TrimSpace(strings.Split(request.Header.Get("X-Forwarded-For"), ",")[0])
	if forwardedFor != "" {
		return forwardedFor
	}

	realIP := strings.TrimSpace(request.Header.Get("X-Real-IP"))
	if realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(request.RemoteAddr))
	if err != nil {
		return request.RemoteAddr
	}
	return host
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}
