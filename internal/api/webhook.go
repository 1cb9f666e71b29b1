package api

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
)

// E.164 with a leading plus, as Twilio presents numbers.
var phonePattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// InboundProcessor handles one inbound message end to end. It must not
// fail: the webhook acknowledges receipt regardless of internal outcome.
type InboundProcessor interface {
	HandleInbound(ctx context.Context, phoneNumber, body string)
}

// WebhookHandler receives inbound SMS posts from the carrier.
type WebhookHandler struct {
	processor InboundProcessor
}

// NewWebhookHandler creates the webhook handler.
func NewWebhookHandler(processor InboundProcessor) *WebhookHandler {
	return &WebhookHandler{processor: processor}
}

// RegisterRoutes mounts the webhook endpoint.
func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/webhook", h.handleInbound)
}

// handleInbound validates the carrier payload and dispatches it. Validation
// failures are the caller's fault (400); everything past validation is
// acknowledged with 200 so the carrier does not retry.
func (h *WebhookHandler) handleInbound(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		Error(w, http.StatusBadRequest, "invalid form payload")
		return
	}

	from := r.PostFormValue("From")
	body := r.PostFormValue("Body")

	if !phonePattern.MatchString(from) {
		Error(w, http.StatusBadRequest, "invalid phone number format")
		return
	}
	if strings.TrimSpace(body) == "" {
		Error(w, http.StatusBadRequest, "message body is required")
		return
	}

	h.processor.HandleInbound(r.Context(), from, body)
	JSON(w, http.StatusOK, map[string]string{"status": "success"})
}
