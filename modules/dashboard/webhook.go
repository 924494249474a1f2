package dashboard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/tagbridge/tagbridge/svc/billing"
)

// Webhook signature headers, Stripe-style: hex HMAC plus the unix timestamp
// it is bound to.
const (
	SignatureHeader = "X-Webhook-Signature"
	TimestampHeader = "X-Webhook-Timestamp"
)

// maxWebhookBody caps the payload read; billing events are tiny.
const maxWebhookBody = 64 << 10

// billingWebhook verifies the provider signature and applies the event.
// Unknown event types return 200 so the provider stops redelivering them.
func (m *Module) billingWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable payload")
			return
		}

		timestamp, err := strconv.ParseInt(r.Header.Get(TimestampHeader), 10, 64)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "missing signature timestamp")
			return
		}

		if err := billing.VerifySignature(
			m.cfg.WebhookSecret, payload, r.Header.Get(SignatureHeader), timestamp, m.cfg.WebhookMaxAge,
		); err != nil {
			m.deps.Logger.WarnContext(r.Context(), "billing webhook rejected", "error", err.Error())
			writeError(w, http.StatusUnauthorized, "invalid signature")
			return
		}

		var event billing.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			writeError(w, http.StatusBadRequest, "malformed event")
			return
		}

		if err := m.deps.Billing.ApplyEvent(r.Context(), event); err != nil {
			switch {
			case errors.Is(err, billing.ErrUnknownEventType):
				writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
			case errors.Is(err, billing.ErrInvalidEvent), errors.Is(err, billing.ErrUnknownPlan):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				m.deps.Logger.ErrorContext(r.Context(), "billing event failed", "error", err.Error())
				writeError(w, http.StatusInternalServerError, "event processing failed")
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
	}
}
