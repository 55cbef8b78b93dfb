package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"edpharma/invoice"
	"edpharma/logger"
	"edpharma/models"
	"edpharma/notify"
	"edpharma/services"
)

type OrderController struct {
	orders *services.Orders
	hub    *notify.Hub
	logger *logger.Logger
}

func NewOrderController(orders *services.Orders, hub *notify.Hub, log *logger.Logger) *OrderController {
	return &OrderController{orders: orders, hub: hub, logger: log}
}

func listQuery(c *gin.Context) services.ListQuery {
	return services.ListQuery{
		Status: c.Query("status"),
		Search: c.Query("q"),
		Sort:   c.Query("sort"),
	}
}

func (h *OrderController) GetOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, err := h.orders.List(ctx, principal(c), listQuery(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "count": len(orders), "data": orders})
}

func (h *OrderController) GetOrderSummary(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	summary, err := h.orders.Summary(ctx, principal(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Fetch success", summary)
}

func (h *OrderController) GetOrderByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.orders.Get(ctx, principal(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Fetch success", order)
}

func (h *OrderController) GetInvoice(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.orders.Get(ctx, principal(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	pdf, err := invoice.Render(*order)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, order.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *OrderController) CancelOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.orders.Cancel(ctx, principal(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Order cancelled", order)
}

// OrdersWS streams order events for the caller until the socket closes.
func (h *OrderController) OrdersWS(c *gin.Context) {
	if err := h.hub.Serve(c.Writer, c.Request, principal(c)); err != nil {
		h.logger.Warn("Websocket session failed", "error", err)
	}
}
