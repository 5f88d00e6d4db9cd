package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/groomer-scheduler/internal/domain/payment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/logger"
	ucAppointment "github.com/BruksfildServices01/groomer-scheduler/internal/usecase/appointment"
)

const (
	maxWebhookBody = 1 << 20
	stripeActor    = "stripe"
)

// StripeWebhookHandler turns a paid PaymentIntent into a recorded payment.
// The signature is the authentication; the route carries no JWT.
type StripeWebhookHandler struct {
	record    *ucAppointment.RecordPayment
	secret    string
	tolerance time.Duration
}

func NewStripeWebhookHandler(record *ucAppointment.RecordPayment, secret string) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		record:    record,
		secret:    strings.TrimSpace(secret),
		tolerance: webhook.DefaultTolerance,
	}
}

func (h *StripeWebhookHandler) Handle(c *gin.Context) {
	log := logger.FromContext(c)

	if h.secret == "" {
		httperr.Write(c, http.StatusServiceUnavailable, "stripe_not_configured", "Stripe webhook is not configured.")
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	if strings.TrimSpace(sig) == "" {
		httperr.BadRequest(c, "missing_signature", "Missing Stripe-Signature header.")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		httperr.BadRequest(c, "invalid_body", "Could not read the request body.")
		return
	}

	evt, err := webhook.ConstructEventWithOptions(body, sig, h.secret, webhook.ConstructEventOptions{
		Tolerance:                h.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		httperr.BadRequest(c, "invalid_signature", "Invalid signature.")
		return
	}

	log.Info("stripe event received",
		zap.String("event_id", evt.ID),
		zap.String("event_type", string(evt.Type)),
	)

	if evt.Type != "payment_intent.succeeded" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
		httperr.BadRequest(c, "invalid_payload", "Invalid payment intent payload.")
		return
	}

	salonID, err := uuid.Parse(strings.TrimSpace(pi.Metadata["salon_id"]))
	if err != nil {
		// Not ours to record. Acknowledge so Stripe stops retrying.
		log.Warn("stripe payment intent without salon_id", zap.String("payment_intent", pi.ID))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	in := ucAppointment.RecordPaymentInput{
		SalonID:       salonID,
		Amount:        majorUnits(pi.Amount, pi.Currency),
		Method:        string(payment.MethodStripe),
		TransactionID: &pi.ID,
		Notes:         "Stripe payment " + pi.ID,
		Actor:         stripeActor,
	}

	if raw := strings.TrimSpace(pi.Metadata["appointment_id"]); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_appointment_id", "Invalid appointment_id metadata.")
			return
		}
		in.AppointmentID = &id
	}

	p, err := h.record.Execute(c.Request.Context(), in)
	if err != nil {
		if httperr.IsKnown(err) {
			// A rejected payment will be rejected again on retry.
			log.Warn("stripe payment not recorded",
				zap.String("payment_intent", pi.ID),
				zap.Error(err),
			)
			c.JSON(http.StatusOK, gin.H{"status": "rejected", "error_code": err.Error()})
			return
		}
		fail(c, "stripe payment", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "recorded", "payment_id": p.ID})
}

// Stripe amounts are in the currency's smallest unit. Most currencies have
// two decimals; these have none or three.
var currencyExponent = map[stripe.Currency]int32{
	"bif": 0, "clp": 0, "djf": 0, "gnf": 0, "jpy": 0, "kmf": 0,
	"krw": 0, "mga": 0, "pyg": 0, "rwf": 0, "ugx": 0, "vnd": 0,
	"vuv": 0, "xaf": 0, "xof": 0, "xpf": 0,
	"bhd": 3, "jod": 3, "kwd": 3, "omr": 3, "tnd": 3,
}

func majorUnits(amount int64, currency stripe.Currency) decimal.Decimal {
	exp, ok := currencyExponent[stripe.Currency(strings.ToLower(string(currency)))]
	if !ok {
		exp = 2
	}
	return decimal.New(amount, -exp)
}
