package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
	"fleetpay/internal/service"
)

// SettingsHandler handles HTTP requests for commission settings.
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// UpdateSettingsRequest is the HTTP request body for updating commission settings.
type UpdateSettingsRequest struct {
	CommissionPercentage *decimal.Decimal `json:"commission_percentage"`
	MinCommission        int64            `json:"min_commission"`
}

// SettingsResponse is the HTTP response for commission settings.
type SettingsResponse struct {
	ID                   string          `json:"id,omitempty"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	MinCommission        int64           `json:"min_commission"`
	IsActive             bool            `json:"is_active"`
	UpdatedAt            string          `json:"updated_at,omitempty"`
}

// GetActive handles GET /v1/commission-settings
func (h *SettingsHandler) GetActive(c *gin.Context) {
	settings, err := h.settingsService.Active(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSettingsResponse(settings))
}

// Update handles PUT /v1/commission-settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.CommissionPercentage == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "commission_percentage is required"})
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), service.UpdateSettingsRequest{
		CommissionPercentage: *req.CommissionPercentage,
		MinCommission:        req.MinCommission,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSettingsResponse(settings))
}

func toSettingsResponse(s *domain.CommissionSettings) SettingsResponse {
	return SettingsResponse{
		ID:                   s.ID,
		CommissionPercentage: s.CommissionPercentage,
		MinCommission:        s.MinCommission,
		IsActive:             s.IsActive,
		UpdatedAt:            formatTime(s.UpdatedAt),
	}
}
