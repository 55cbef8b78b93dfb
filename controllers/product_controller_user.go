package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"edpharma/logger"
	"edpharma/models"
	"edpharma/store"
)

type ProductController struct {
	products store.ProductRepository
	logger   *logger.Logger
	now      func() time.Time
}

func NewProductController(products store.ProductRepository, log *logger.Logger) *ProductController {
	return &ProductController{products: products, logger: log, now: time.Now}
}

func (h *ProductController) GetProductsPublic(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	products, err := h.products.List(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fetch products success", "count": len(products), "data": products})
}

func (h *ProductController) GetProductByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	product, err := h.products.FindByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Fetch success", product)
}
