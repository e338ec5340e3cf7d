package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/foodorder/internal/domain/errors"
	"github.com/polkiloo/foodorder/internal/server/http/dto"
	"github.com/polkiloo/foodorder/internal/server/http/middleware"
)

// AuthHandler processes staff login.
type AuthHandler struct {
	facade StaffFacade
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade StaffFacade) *AuthHandler {
	return &AuthHandler{facade: facade}
}

// Login handles POST /api/staff/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.StaffLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	token, err := h.facade.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidCredentials):
			c.Status(http.StatusUnauthorized)
		default:
			_ = c.Error(err)
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	middleware.SetAuthCookie(c, token)
	c.Status(http.StatusOK)
}
