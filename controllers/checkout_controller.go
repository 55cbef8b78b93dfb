package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"edpharma/logger"
	"edpharma/models"
	"edpharma/services"
)

type CheckoutController struct {
	checkout *services.Checkout
	logger   *logger.Logger
}

func NewCheckoutController(checkout *services.Checkout, log *logger.Logger) *CheckoutController {
	return &CheckoutController{checkout: checkout, logger: log}
}

type paymentInput struct {
	Method     models.PaymentMethod `json:"method" binding:"required"`
	CardNumber string               `json:"cardNumber"`
	CardName   string               `json:"cardName"`
	Expiry     string               `json:"expiry"`
	CVV        string               `json:"cvv"`
	UPIID      string               `json:"upiId"`
	Bank       string               `json:"bank"`
}

func (in paymentInput) details() (models.PaymentDetails, bool) {
	switch in.Method {
	case models.PaymentCard:
		return models.CardDetails{Number: in.CardNumber, Holder: in.CardName, Expiry: in.Expiry, CVV: in.CVV}, true
	case models.PaymentUPI:
		return models.UPIDetails{Handle: in.UPIID}, true
	case models.PaymentNetBanking:
		return models.NetBankingDetails{Bank: in.Bank}, true
	}
	return nil, false
}

func (h *CheckoutController) BeginCheckout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	view, err := h.checkout.Begin(ctx, principal(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Checkout started", view)
}

func (h *CheckoutController) GetCheckout(c *gin.Context) {
	view, err := h.checkout.Draft(principal(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Fetch success", view)
}

func (h *CheckoutController) UpdateContact(c *gin.Context) {
	var body services.Contact
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	view, err := h.checkout.UpdateContact(principal(c), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Contact saved", view)
}

func (h *CheckoutController) UpdateShipping(c *gin.Context) {
	var body models.Address
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	view, err := h.checkout.UpdateShipping(principal(c), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Shipping address saved", view)
}

func (h *CheckoutController) UpdatePayment(c *gin.Context) {
	var body paymentInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment method is required"})
		return
	}
	details, ok := body.details()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported payment method"})
		return
	}

	view, err := h.checkout.UpdatePayment(principal(c), details)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Payment saved", view)
}

// ValidateField answers blur-time checks for a single input.
func (h *CheckoutController) ValidateField(c *gin.Context) {
	var body struct {
		Field string `json:"field" binding:"required"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	msg, err := h.checkout.ValidateField(body.Field, body.Value)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Validated", gin.H{"field": body.Field, "valid": msg == "", "error": msg})
}

func (h *CheckoutController) NextStep(c *gin.Context) {
	view, err := h.checkout.Advance(principal(c))
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please correct the highlighted fields", "fields": verr.Fields, "data": view})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Step completed", view)
}

func (h *CheckoutController) PreviousStep(c *gin.Context) {
	view, exited, err := h.checkout.Back(principal(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if exited {
		c.JSON(http.StatusOK, gin.H{"message": "Checkout left", "exited": true})
		return
	}
	respondOK(c, "Went back", view)
}

func (h *CheckoutController) ConfirmOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.checkout.Confirm(ctx, principal(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed", "data": order})
}

func (h *CheckoutController) DiscardCheckout(c *gin.Context) {
	h.checkout.Discard(principal(c))
	c.JSON(http.StatusOK, gin.H{"message": "Checkout discarded"})
}
