package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetpay/internal/domain"
	"fleetpay/internal/service"
)

// DriverHandler handles HTTP requests for driver earnings.
type DriverHandler struct {
	earningsService *service.EarningsService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(earningsService *service.EarningsService) *DriverHandler {
	return &DriverHandler{earningsService: earningsService}
}

// DailyEarningsResponse is one day of a driver's earnings.
type DailyEarningsResponse struct {
	Date   string `json:"date"`
	Amount int64  `json:"amount"`
}

// EarningsResponse is the HTTP response for driver earnings.
type EarningsResponse struct {
	DriverName        string                  `json:"driver_name"`
	TotalEarnings     int64                   `json:"total_earnings"`
	PendingEarnings   int64                   `json:"pending_earnings"`
	TotalTrips        int                     `json:"total_trips"`
	AveragePerTrip    int64                   `json:"average_per_trip"`
	ThisMonthEarnings int64                   `json:"this_month_earnings"`
	LastMonthEarnings int64                   `json:"last_month_earnings"`
	MonthlyChange     float64                 `json:"monthly_change"`
	Daily             []DailyEarningsResponse `json:"daily"`
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	names, err := h.earningsService.Drivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	if names == nil {
		names = []string{}
	}
	respondJSON(c, http.StatusOK, names)
}

// GetEarnings handles GET /v1/drivers/:name/earnings
func (h *DriverHandler) GetEarnings(c *gin.Context) {
	earnings, err := h.earningsService.DriverEarnings(c.Request.Context(), c.Param("name"), service.EarningsQuery{
		Range:  domain.EarningsRange(c.DefaultQuery("range", string(domain.EarningsRangeAll))),
		Search: c.Query("search"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	daily := make([]DailyEarningsResponse, 0, len(earnings.Daily))
	for _, d := range earnings.Daily {
		daily = append(daily, DailyEarningsResponse{Date: d.Date, Amount: d.Amount})
	}

	respondJSON(c, http.StatusOK, EarningsResponse{
		DriverName:        earnings.DriverName,
		TotalEarnings:     earnings.TotalEarnings,
		PendingEarnings:   earnings.PendingEarnings,
		TotalTrips:        earnings.TotalTrips,
		AveragePerTrip:    earnings.AveragePerTrip,
		ThisMonthEarnings: earnings.ThisMonthEarnings,
		LastMonthEarnings: earnings.LastMonthEarnings,
		MonthlyChange:     earnings.MonthlyChange,
		Daily:             daily,
	})
}
