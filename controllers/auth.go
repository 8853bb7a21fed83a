package controllers

import (
	"net/http"

	"marketplace-hub/models"
	"marketplace-hub/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type registerRequest struct {
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Password     string         `json:"password"`
	Phone        string         `json:"phone"`
	Address      models.Address `json:"address"`
	Role         string         `json:"role"`
	BusinessName string         `json:"businessName"`
	BusinessType string         `json:"businessType"`
	GSTNumber    string         `json:"gstNumber"`
	Description  string         `json:"description"`
}

func (h *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	res, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Phone:        req.Phone,
		Address:      req.Address,
		Role:         req.Role,
		BusinessName: req.BusinessName,
		BusinessType: req.BusinessType,
		GSTNumber:    req.GSTNumber,
		Description:  req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AuthController) Profile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	profile, err := h.auth.Profile(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
