package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
)

func TestRoutingKeyFor(t *testing.T) {
	tests := map[domain.PaymentStatus]string{
		domain.PaymentStatusPending:   PaymentCreated,
		domain.PaymentStatusSucceeded: PaymentSucceeded,
		domain.PaymentStatusFailed:    PaymentFailed,
		domain.PaymentStatusCanceled:  PaymentCanceled,
	}

	for status, want := range tests {
		if got := RoutingKeyFor(status); got != want {
			t.Errorf("%s: expected %s, got %s", status, want, got)
		}
	}
}

func TestNewPaymentEvent_CarriesSplit(t *testing.T) {
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	event := NewPaymentEvent(&domain.Payment{
		ID:                   "pay-1",
		TripID:               "trip-1",
		Status:               domain.PaymentStatusSucceeded,
		GrossAmount:          999,
		CommissionPercentage: decimal.NewFromInt(15),
		CommissionAmount:     150,
		DriverAmount:         849,
		Currency:             "mxn",
	}, at)

	body, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	if decoded["commission_amount"].(float64) != 150 || decoded["driver_amount"].(float64) != 849 {
		t.Errorf("unexpected split in event: %s", body)
	}
	if decoded["commission_percentage"] != "15" {
		t.Errorf("expected percentage \"15\", got %v", decoded["commission_percentage"])
	}
	if _, ok := decoded["driver_name"]; ok {
		t.Error("expected empty driver_name to be omitted")
	}
}
