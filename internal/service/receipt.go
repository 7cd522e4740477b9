package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
)

// ReceiptService handles receipt generation.
type ReceiptService struct {
	payments *PaymentService
	now      func() time.Time
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(payments *PaymentService) *ReceiptService {
	return &ReceiptService{
		payments: payments,
		now:      time.Now,
	}
}

// GenerateReceipt builds the receipt for a payment.
func (s *ReceiptService) GenerateReceipt(ctx context.Context, paymentID string) (*domain.Receipt, error) {
	payment, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return BuildReceipt(payment, s.now()), nil
}

// BuildReceipt converts a payment into a receipt issued at issuedAt.
func BuildReceipt(payment *domain.Payment, issuedAt time.Time) *domain.Receipt {
	receipt := &domain.Receipt{
		PaymentID:            payment.ID,
		TripID:               payment.TripID,
		UserName:             payment.UserName,
		DriverName:           payment.DriverName,
		Description:          payment.Description,
		Currency:             payment.Currency,
		GrossAmount:          payment.GrossAmount,
		CommissionPercentage: payment.CommissionPercentage.String(),
		CommissionAmount:     payment.CommissionAmount,
		DriverAmount:         payment.DriverAmount,
		Status:               payment.Status,
		Reconciled:           payment.Reconciled(),
		IssuedAt:             issuedAt.UTC(),
	}

	if payment.Status == domain.PaymentStatusSucceeded {
		receipt.PaidAt = payment.UpdatedAt
	}

	return receipt
}

// FormatReceipt formats the receipt as plain text.
func (s *ReceiptService) FormatReceipt(receipt *domain.Receipt) string {
	var b strings.Builder

	b.WriteString("=====================================\n")
	b.WriteString("          PAYMENT RECEIPT\n")
	b.WriteString("=====================================\n")
	fmt.Fprintf(&b, "Payment ID: %s\n", receipt.PaymentID)
	if receipt.TripID != "" {
		fmt.Fprintf(&b, "Trip ID:    %s\n", receipt.TripID)
	}
	fmt.Fprintf(&b, "Issued:     %s\n", receipt.IssuedAt.Format("Jan 02, 2006 3:04 PM"))
	if !receipt.PaidAt.IsZero() {
		fmt.Fprintf(&b, "Paid:       %s\n", receipt.PaidAt.UTC().Format("Jan 02, 2006 3:04 PM"))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Customer:   %s\n", receipt.UserName)
	fmt.Fprintf(&b, "Driver:     %s\n", orDash(receipt.DriverName))
	fmt.Fprintf(&b, "For:        %s\n", receipt.Description)
	b.WriteString("\nBREAKDOWN\n")
	b.WriteString("-------------------------------------\n")
	fmt.Fprintf(&b, "Total:             %s\n", formatMoney(receipt.GrossAmount, receipt.Currency))
	fmt.Fprintf(&b, "Commission (%s%%): %s\n", receipt.CommissionPercentage, formatMoney(receipt.CommissionAmount, receipt.Currency))
	fmt.Fprintf(&b, "Driver payout:     %s\n", formatMoney(receipt.DriverAmount, receipt.Currency))
	b.WriteString("-------------------------------------\n")
	fmt.Fprintf(&b, "Status: %s\n", receipt.Status)
	if !receipt.Reconciled {
		b.WriteString("WARNING: split does not reconcile\n")
	}
	b.WriteString("=====================================\n")

	return b.String()
}

// RenderPDF renders the receipt as an A4 PDF document.
func (s *ReceiptService) RenderPDF(receipt *domain.Receipt) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payment Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		"Payment ID : " + receipt.PaymentID,
		"Trip ID    : " + orDash(receipt.TripID),
		"Issued     : " + receipt.IssuedAt.Format("2006-01-02 15:04"),
		"Customer   : " + receipt.UserName,
		"Driver     : " + orDash(receipt.DriverName),
		"Status     : " + string(receipt.Status),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Breakdown:")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, receipt.Description, "", "", false)
	pdf.Cell(0, 6, "Commission ("+receipt.CommissionPercentage+"%): "+formatMoney(receipt.CommissionAmount, receipt.Currency))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Driver payout: "+formatMoney(receipt.DriverAmount, receipt.Currency))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+formatMoney(receipt.GrossAmount, receipt.Currency))
	pdf.Ln(12)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// formatMoney renders minor units as a two-decimal amount with the currency code.
func formatMoney(amount int64, currency string) string {
	return decimal.New(amount, -2).StringFixed(2) + " " + strings.ToUpper(currency)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
