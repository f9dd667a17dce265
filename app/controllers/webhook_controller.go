package controllers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"

	"pressroom/app/models"
	"pressroom/app/ratelimit"
	"pressroom/app/services"
)

// maxPayloadBytes caps the declared size of an inbound payload at 5 MiB.
const maxPayloadBytes = 5 << 20

// WebhookController handles the content ingestion endpoint.
type WebhookController struct {
	secret  string
	ingest  *services.IngestService
	limiter *ratelimit.Limiter
}

// NewWebhookController creates a WebhookController. secret is the bearer
// token upstream tools must present.
func NewWebhookController(secret string, ingest *services.IngestService, limiter *ratelimit.Limiter) *WebhookController {
	return &WebhookController{
		secret:  secret,
		ingest:  ingest,
		limiter: limiter,
	}
}

// Handle runs the ingestion pipeline for one request: auth, rate limit, size
// check, JSON parsing, test-ping short circuit, then normalize/validate/
// persist/translate/revalidate via the ingest service.
func (wc *WebhookController) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		wc.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if wc.secret == "" {
		log.Printf("webhook rejected: WEBHOOK_SECRET is not configured")
		wc.sendError(w, "Server configuration error", http.StatusInternalServerError)
		return
	}
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		wc.sendError(w, "Missing authentication token", http.StatusUnauthorized)
		return
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if subtle.ConstantTimeCompare([]byte(token), []byte(wc.secret)) != 1 {
		wc.sendError(w, "Invalid authentication token", http.StatusForbidden)
		return
	}

	if !wc.limiter.Allow(clientIP(r)) {
		wc.sendError(w, "Rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	if r.ContentLength > maxPayloadBytes {
		wc.sendError(w, "Payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes)).Decode(&payload); err != nil {
		wc.sendError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if isTestPing(payload) {
		wc.sendJSON(w, http.StatusOK, models.WebhookResponse{
			Success: true,
			Message: "Test connection successful",
		})
		return
	}

	result, err := wc.ingest.Ingest(payload)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			wc.sendError(w, vErr.Reason, http.StatusBadRequest)
			return
		}
		wc.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	message := "Post published"
	switch {
	case result.Translated:
		message = "Post published, translations created"
	case result.Attempted:
		message = "Post published, translation attempted but failed"
	}
	wc.sendJSON(w, http.StatusOK, models.WebhookResponse{
		Success: true,
		Slug:    result.Slug,
		Path:    result.Path,
		Message: message,
	})
}

// isTestPing recognizes a connectivity probe: a truthy test flag and no
// content fields. Probes are acknowledged without touching the store.
func isTestPing(payload map[string]interface{}) bool {
	if !isTruthy(payload["test"]) {
		return false
	}
	_, hasTitle := payload["title"]
	_, hasContent := payload["content"]
	return !hasTitle && !hasContent
}

func isTruthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	case float64:
		return t != 0
	}
	return false
}

// clientIP extracts the client identifier used for rate limiting.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (wc *WebhookController) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (wc *WebhookController) sendError(w http.ResponseWriter, message string, status int) {
	wc.sendJSON(w, status, models.WebhookResponse{Success: false, Error: message})
}
