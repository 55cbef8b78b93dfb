package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"edpharma/logger"
	"edpharma/models"
	"edpharma/services"
)

type AdminController struct {
	admin  *services.Admin
	orders *services.Orders
	logger *logger.Logger
}

func NewAdminController(admin *services.Admin, orders *services.Orders, log *logger.Logger) *AdminController {
	return &AdminController{admin: admin, orders: orders, logger: log}
}

func (h *AdminController) GetStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.admin.Stats(ctx, principal(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Fetch success", stats)
}

func (h *AdminController) GetUsers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	users, err := h.admin.Users(ctx, principal(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if users == nil {
		users = []models.UserSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "count": len(users), "data": users})
}

func (h *AdminController) GetOrdersAdmin(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, err := h.admin.Orders(ctx, principal(c), listQuery(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "count": len(orders), "data": orders})
}

func (h *AdminController) GetOrderByIDAdmin(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.admin.Order(ctx, principal(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Fetch success", order)
}

func (h *AdminController) UpdateOrderStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	status, err := models.ParseOrderStatus(body.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.orders.SetStatus(ctx, principal(c), c.Param("id"), status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Order status updated", order)
}

func (h *AdminController) CancelOrderAdmin(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.orders.Cancel(ctx, principal(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Order cancelled", order)
}
