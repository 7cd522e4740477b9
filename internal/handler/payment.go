package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
	"fleetpay/internal/service"
)

const idempotencyHeader = "Idempotency-Key"

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
	receiptService *service.ReceiptService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService, receiptService *service.ReceiptService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		receiptService: receiptService,
	}
}

// PreviewRequest is the HTTP request body for a commission preview.
type PreviewRequest struct {
	GrossAmount          int64            `json:"gross_amount"`
	CommissionPercentage *decimal.Decimal `json:"commission_percentage"`
}

// PreviewResponse is the HTTP response for a commission preview.
type PreviewResponse struct {
	GrossAmount          int64           `json:"gross_amount"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	CommissionAmount     int64           `json:"commission_amount"`
	DriverAmount         int64           `json:"driver_amount"`
}

// CreatePaymentRequest is the HTTP request body for creating a checkout.
type CreatePaymentRequest struct {
	TripID               string           `json:"trip_id"`
	GrossAmount          int64            `json:"gross_amount"`
	CommissionPercentage *decimal.Decimal `json:"commission_percentage"`
	UserName             string           `json:"user_name"`
	UserEmail            string           `json:"user_email"`
	DriverName           string           `json:"driver_name"`
	Description          string           `json:"description"`
}

// NotificationRequest is the HTTP request body for a provider notification.
type NotificationRequest struct {
	Status string `json:"status"`
}

// PaymentResponse is the HTTP response for payment operations.
type PaymentResponse struct {
	ID                   string          `json:"id"`
	TripID               string          `json:"trip_id,omitempty"`
	GrossAmount          int64           `json:"gross_amount"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	CommissionAmount     int64           `json:"commission_amount"`
	DriverAmount         int64           `json:"driver_amount"`
	Currency             string          `json:"currency"`
	Status               string          `json:"status"`
	UserName             string          `json:"user_name"`
	UserEmail            string          `json:"user_email,omitempty"`
	DriverName           string          `json:"driver_name,omitempty"`
	Description          string          `json:"description"`
	CheckoutURL          string          `json:"checkout_url,omitempty"`
	IdempotencyKey       string          `json:"idempotency_key,omitempty"`
	Reconciled           bool            `json:"reconciled"`
	CreatedAt            string          `json:"created_at"`
	UpdatedAt            string          `json:"updated_at"`
}

// StatsResponse is the HTTP response for payment statistics.
type StatsResponse struct {
	TotalAmount       int64 `json:"total_amount"`
	TotalCommission   int64 `json:"total_commission"`
	TotalDriverAmount int64 `json:"total_driver_amount"`
	PendingPayments   int   `json:"pending_payments"`
	CompletedPayments int   `json:"completed_payments"`
	TotalPayments     int   `json:"total_payments"`
}

// Preview handles POST /v1/payments/preview
func (h *PaymentHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	split, err := h.paymentService.Preview(c.Request.Context(), service.PreviewRequest{
		GrossAmount:          req.GrossAmount,
		CommissionPercentage: req.CommissionPercentage,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PreviewResponse{
		GrossAmount:          split.Gross,
		CommissionPercentage: split.Percentage,
		CommissionAmount:     split.Commission,
		DriverAmount:         split.Driver,
	})
}

// CreatePayment handles POST /v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.paymentService.CreateCheckout(c.Request.Context(), service.CreateCheckoutRequest{
		TripID:               strings.TrimSpace(req.TripID),
		UserName:             req.UserName,
		UserEmail:            req.UserEmail,
		DriverName:           req.DriverName,
		Description:          req.Description,
		IdempotencyKey:       c.GetHeader(idempotencyHeader),
		GrossAmount:          req.GrossAmount,
		CommissionPercentage: req.CommissionPercentage,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	code := http.StatusOK
	if result.Created {
		code = http.StatusCreated
	}
	respondJSON(c, code, toPaymentResponse(result.Payment))
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	paymentID := c.Param("id")

	payment, err := h.paymentService.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// ListPayments handles GET /v1/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	filter, ok := bindPaymentFilter(c)
	if !ok {
		return
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		response = append(response, toPaymentResponse(p))
	}

	respondJSON(c, http.StatusOK, response)
}

// Stats handles GET /v1/payments/stats
func (h *PaymentHandler) Stats(c *gin.Context) {
	filter, ok := bindPaymentFilter(c)
	if !ok {
		return
	}

	stats, err := h.paymentService.Stats(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, StatsResponse{
		TotalAmount:       stats.TotalAmount,
		TotalCommission:   stats.TotalCommission,
		TotalDriverAmount: stats.TotalDriverAmount,
		PendingPayments:   stats.PendingPayments,
		CompletedPayments: stats.CompletedPayments,
		TotalPayments:     stats.TotalPayments,
	})
}

// ApplyNotification handles POST /v1/payments/:id/notifications
func (h *PaymentHandler) ApplyNotification(c *gin.Context) {
	var req NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	payment, err := h.paymentService.ApplyNotification(c.Request.Context(), c.Param("id"), domain.PaymentStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// Return handles GET /v1/payments/return
func (h *PaymentHandler) Return(c *gin.Context) {
	payment, err := h.paymentService.ApplyRedirectResult(c.Request.Context(), service.RedirectResult{
		PaymentID: c.Query("payment_id"),
		Success:   queryBool(c, "success"),
		Canceled:  queryBool(c, "canceled"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// Receipt handles GET /v1/payments/:id/receipt
func (h *PaymentHandler) Receipt(c *gin.Context) {
	receipt, err := h.receiptService.GenerateReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	switch c.DefaultQuery("format", "text") {
	case "pdf":
		data, err := h.receiptService.RenderPDF(receipt)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", `inline; filename="receipt-`+receipt.PaymentID+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", data)
	case "text":
		c.String(http.StatusOK, h.receiptService.FormatReceipt(receipt))
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "format must be text or pdf"})
	}
}

func bindPaymentFilter(c *gin.Context) (domain.PaymentFilter, bool) {
	filter := domain.PaymentFilter{
		Status:     domain.PaymentStatus(c.Query("status")),
		DriverName: c.Query("driver"),
		TripID:     c.Query("trip_id"),
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return filter, false
		}
		filter.Limit = limit
	}

	return filter, true
}

func queryBool(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                   p.ID,
		TripID:               p.TripID,
		GrossAmount:          p.GrossAmount,
		CommissionPercentage: p.CommissionPercentage,
		CommissionAmount:     p.CommissionAmount,
		DriverAmount:         p.DriverAmount,
		Currency:             p.Currency,
		Status:               string(p.Status),
		UserName:             p.UserName,
		UserEmail:            p.UserEmail,
		DriverName:           p.DriverName,
		Description:          p.Description,
		CheckoutURL:          p.CheckoutURL,
		IdempotencyKey:       p.IdempotencyKey,
		Reconciled:           p.Reconciled(),
		CreatedAt:            formatTime(p.CreatedAt),
		UpdatedAt:            formatTime(p.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
