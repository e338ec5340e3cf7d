package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/foodorder/internal/domain/errors"
	"github.com/polkiloo/foodorder/internal/domain/model"
	"github.com/polkiloo/foodorder/internal/server/http/dto"
)

// StaffHandler serves the kitchen back office.
type StaffHandler struct {
	facade StaffFacade
}

// NewStaffHandler constructs StaffHandler.
func NewStaffHandler(facade StaffFacade) *StaffHandler {
	return &StaffHandler{facade: facade}
}

// UpdateStatus handles PATCH /api/staff/orders/:id/status.
func (h *StaffHandler) UpdateStatus(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.UpdateOrderStatus(c.Request.Context(), id, model.OrderStatus(req.Status))
	if err != nil {
		var validationErr *domainErrors.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrInvalidTransition):
			c.Status(http.StatusConflict)
		default:
			_ = c.Error(err)
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Notifications handles GET /api/staff/orders/:id/notifications.
func (h *StaffHandler) Notifications(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	records, err := h.facade.OrderNotifications(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}

	response := make([]dto.NotificationResponse, 0, len(records))
	for _, r := range records {
		response = append(response, toNotificationResponse(r))
	}
	c.JSON(http.StatusOK, response)
}
