package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"edpharma/logger"
	"edpharma/middleware"
	"edpharma/services"
)

type AuthController struct {
	identity *services.Identity
	logger   *logger.Logger
}

func NewAuthController(identity *services.Identity, log *logger.Logger) *AuthController {
	return &AuthController{identity: identity, logger: log}
}

func (h *AuthController) Register(c *gin.Context) {
	var input struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		Password  string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	profile := services.Profile{FirstName: input.FirstName, LastName: input.LastName, Email: input.Email, Phone: input.Phone}
	session, err := h.identity.CreateAccount(ctx, profile, input.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "data": session})
}

func (h *AuthController) Login(c *gin.Context) {
	var input struct {
		Identifier string `json:"identifier"`
		Email      string `json:"email"`
		Phone      string `json:"phone"`
		Password   string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" {
		identifier = strings.TrimSpace(input.Email)
	}
	if identifier == "" {
		identifier = strings.TrimSpace(input.Phone)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	session, err := h.identity.Authenticate(ctx, identifier, input.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Login successful", session)
}

func (h *AuthController) Logout(c *gin.Context) {
	tokenString := middleware.BearerToken(c)
	if tokenString == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.identity.Logout(ctx, tokenString); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthController) Me(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	me, err := h.identity.Me(ctx, principal(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Fetch success", me)
}
