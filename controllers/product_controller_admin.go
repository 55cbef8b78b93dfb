package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"edpharma/models"
	"edpharma/store"
)

func (h *ProductController) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and a positive price are required"})
		return
	}

	now := h.now().UTC()
	product.ID = ""
	product.CreatedAt = now
	product.UpdatedAt = now

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.products.Create(ctx, &product); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Product created", "product_id", product.ID, "admin_id", principal(c).ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "data": product})
}

func (h *ProductController) GetProductsAdmin(c *gin.Context) {
	h.GetProductsPublic(c)
}

func (h *ProductController) UpdateProduct(c *gin.Context) {
	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	product, err := h.products.Update(ctx, c.Param("id"), patch, h.now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Product updated", product)
}

// DeleteProduct removes the catalog entry only; placed orders keep their snapshot.
func (h *ProductController) DeleteProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.products.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
