package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"edpharma/logger"
	"edpharma/services"
)

type CartController struct {
	cart   *services.Cart
	logger *logger.Logger
}

func NewCartController(cart *services.Cart, log *logger.Logger) *CartController {
	return &CartController{cart: cart, logger: log}
}

func (h *CartController) AddToCart(c *gin.Context) {
	var body struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"omitempty,min=1,max=999"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	summary, err := h.cart.AddItem(ctx, principal(c).ID, body.ProductID, body.Quantity)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Added to cart", summary)
}

func (h *CartController) GetCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	summary, err := h.cart.Summary(ctx, principal(c).ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Fetch success", summary)
}

func (h *CartController) UpdateCart(c *gin.Context) {
	var body struct {
		Quantity *int `json:"quantity" binding:"required,max=999"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity cannot exceed 999"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	summary, err := h.cart.SetQuantity(ctx, principal(c).ID, c.Param("productId"), *body.Quantity)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found in cart"})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Cart updated", summary)
}

func (h *CartController) RemoveFromCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	summary, err := h.cart.RemoveItem(ctx, principal(c).ID, c.Param("productId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Product removed from cart", summary)
}

func (h *CartController) ClearCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.cart.Clear(ctx, principal(c).ID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
