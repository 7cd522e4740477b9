package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// CheckoutSessionRequest describes the hosted checkout a payment needs.
type CheckoutSessionRequest struct {
	PaymentID     string
	TripID        string
	Amount        int64 // minor units
	Currency      string
	Description   string
	CustomerEmail string
	Metadata      map[string]string
}

// CheckoutSession is a hosted checkout page created by the provider.
type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutProvider creates hosted checkout sessions.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)
}

// HostedCheckout builds hosted checkout URLs from configuration.
// The provider reports back through the success and cancel return URLs.
type HostedCheckout struct {
	baseURL       string
	returnBaseURL string
}

// NewHostedCheckout creates a HostedCheckout.
func NewHostedCheckout(baseURL, returnBaseURL string) *HostedCheckout {
	return &HostedCheckout{
		baseURL:       strings.TrimRight(baseURL, "/"),
		returnBaseURL: returnBaseURL,
	}
}

// CreateSession returns a new session whose URL carries the amount, metadata and return URLs.
func (h *HostedCheckout) CreateSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error) {
	sessionID := "cs_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	q := url.Values{}
	q.Set("payment_id", req.PaymentID)
	q.Set("amount", strconv.FormatInt(req.Amount, 10))
	q.Set("currency", req.Currency)
	q.Set("description", req.Description)
	if req.CustomerEmail != "" {
		q.Set("customer_email", req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		q.Set("metadata["+k+"]", v)
	}
	q.Set("success_url", h.returnURL(req, "success"))
	q.Set("cancel_url", h.returnURL(req, "canceled"))

	return &CheckoutSession{
		ID:  sessionID,
		URL: h.baseURL + "/" + sessionID + "?" + q.Encode(),
	}, nil
}

func (h *HostedCheckout) returnURL(req CheckoutSessionRequest, result string) string {
	tripID := req.TripID
	if tripID == "" {
		tripID = "direct"
	}

	q := url.Values{}
	q.Set("payment_id", req.PaymentID)
	q.Set("trip_id", tripID)
	q.Set(result, "true")

	return h.returnBaseURL + "?" + q.Encode()
}
