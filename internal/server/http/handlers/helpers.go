package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polkiloo/foodorder/internal/domain/model"
	pkgAuth "github.com/polkiloo/foodorder/internal/pkg/auth"
	"github.com/polkiloo/foodorder/internal/pkg/phone"
	"github.com/polkiloo/foodorder/internal/server/http/dto"
	"github.com/polkiloo/foodorder/internal/server/http/middleware"
)

// CurrentStaff extracts authenticated staff claims from context.
func CurrentStaff(c *gin.Context) (pkgAuth.Claims, bool) {
	val, ok := c.Get(middleware.StaffContextKey)
	if !ok {
		return pkgAuth.Claims{}, false
	}
	claims, ok := val.(pkgAuth.Claims)
	return claims, ok
}

// orderIDParam parses the :id path segment and answers 400 when it is not a UUID.
func orderIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Lines))
	for _, l := range order.Lines {
		items = append(items, dto.OrderItemResponse{
			MenuItemID: l.MenuItemID,
			ItemNameFr: l.NameFr,
			ItemNameAr: l.NameAr,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Subtotal:   l.Subtotal(),
		})
	}
	return dto.OrderResponse{
		ID:                   order.ID.String(),
		CustomerName:         order.CustomerName,
		CustomerPhone:        order.CustomerPhone,
		CustomerPhoneDisplay: phone.FormatForDisplay(order.CustomerPhone),
		TotalAmount:          order.Total,
		Status:               string(order.Status),
		DailyOrderNumber:     order.DailyNumber,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
		Items:                items,
	}
}

func toNotificationResponse(rec model.NotificationRecord) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:                rec.ID,
		RecipientPhone:    rec.RecipientPhone,
		Kind:              string(rec.Kind),
		TemplateName:      rec.TemplateName,
		Status:            string(rec.Status),
		ProviderMessageID: rec.ProviderMessageID,
		ErrorCode:         rec.ErrorCode,
		ErrorMessage:      rec.ErrorMessage,
		Attempt:           rec.Attempt,
		RetryOf:           rec.RetryOf,
		CreatedAt:         rec.CreatedAt,
		SentAt:            rec.SentAt,
	}
}
