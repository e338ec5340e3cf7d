package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/foodorder/internal/domain/errors"
	"github.com/polkiloo/foodorder/internal/domain/model"
	"github.com/polkiloo/foodorder/internal/server/http/dto"
	"github.com/polkiloo/foodorder/internal/usecase"
)

// Customer-facing failure reasons, displayed as-is by the storefront.
const (
	reasonCreateOrder = "Erreur lors de la création de la commande"
	reasonCreateLines = "Erreur lors de l'ajout des articles à la commande"
	reasonRateLimited = "Trop de commandes récentes. Veuillez réessayer plus tard."
	reasonInternal    = "Erreur interne. Veuillez réessayer."
)

// OrderHandler manages customer order endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Submit handles POST /api/orders.
func (h *OrderHandler) Submit(c *gin.Context) {
	var req dto.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.SubmitOrderResponse{Reason: "invalid JSON payload"})
		return
	}

	receipt, err := h.facade.SubmitOrder(c.Request.Context(), toOrderRequest(req))
	if err != nil {
		h.submitFailed(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SubmitOrderResponse{
		Success:          true,
		OrderID:          receipt.OrderID.String(),
		DailyOrderNumber: receipt.DailyNumber,
	})
}

func (h *OrderHandler) submitFailed(c *gin.Context, err error) {
	var (
		validationErr *domainErrors.ValidationError
		rateErr       *domainErrors.RateLimitError
		storageErr    *domainErrors.StorageError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, dto.SubmitOrderResponse{Reason: validationErr.Error()})
	case errors.As(err, &rateErr):
		retry := int(math.Ceil(rateErr.Window.Seconds()))
		c.Header("Retry-After", strconv.Itoa(retry))
		c.JSON(http.StatusTooManyRequests, dto.SubmitOrderResponse{Reason: reasonRateLimited})
	case errors.As(err, &storageErr):
		_ = c.Error(err)
		reason := reasonInternal
		switch storageErr.Step {
		case usecase.StepCreateOrder:
			reason = reasonCreateOrder
		case usecase.StepCreateLines:
			reason = reasonCreateLines
		}
		c.JSON(http.StatusInternalServerError, dto.SubmitOrderResponse{Reason: reason})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.SubmitOrderResponse{Reason: reasonInternal})
	}
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := h.facade.Order(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// History handles GET /api/orders?phone=.
func (h *OrderHandler) History(c *gin.Context) {
	orders, err := h.facade.OrderHistory(c.Request.Context(), c.Query("phone"))
	if err != nil {
		var validationErr *domainErrors.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusUnprocessableEntity, dto.SubmitOrderResponse{Reason: validationErr.Error()})
			return
		}
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}

	c.JSON(http.StatusOK, response)
}

func toOrderRequest(req dto.SubmitOrderRequest) model.OrderRequest {
	lines := make([]model.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, model.OrderLine{
			MenuItemID: it.MenuItemID,
			NameFr:     it.ItemNameFr,
			NameAr:     it.ItemNameAr,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
		})
	}
	return model.OrderRequest{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Lines:         lines,
		ClaimedTotal:  req.TotalAmount,
	}
}
