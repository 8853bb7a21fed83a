package controllers

import (
	"net/http"

	"marketplace-hub/services"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	admin *services.AdminService
}

func NewAdminController(admin *services.AdminService) *AdminController {
	return &AdminController{admin: admin}
}

func (h *AdminController) ListUsers(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	users, err := h.admin.ListUsers(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminController) ListVendors(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	vendors, err := h.admin.ListVendors(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendors)
}

type userStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

func (h *AdminController) SetUserStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req userStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		badRequest(c, "Please provide isActive")
		return
	}

	user, err := h.admin.SetUserActive(c.Request.Context(), p, c.Param("id"), *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User status updated successfully", "user": user})
}

type vendorVerifyRequest struct {
	IsVerified *bool `json:"isVerified"`
}

func (h *AdminController) VerifyVendor(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req vendorVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsVerified == nil {
		badRequest(c, "Please provide isVerified")
		return
	}

	vendor, err := h.admin.SetVendorVerified(c.Request.Context(), p, c.Param("id"), *req.IsVerified)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vendor verification updated", "vendor": vendor})
}

func (h *AdminController) Stats(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	stats, err := h.admin.Stats(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminController) ListRequests(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	items, err := h.admin.ListRequests(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type requestStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminController) SetRequestStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req requestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	item, err := h.admin.SetRequestStatus(c.Request.Context(), p, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
