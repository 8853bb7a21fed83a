package controllers

import (
	"net/http"

	"marketplace-hub/services"

	"github.com/gin-gonic/gin"
)

type VendorController struct {
	vendors *services.VendorService
}

func NewVendorController(vendors *services.VendorService) *VendorController {
	return &VendorController{vendors: vendors}
}

func (h *VendorController) GetProfile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	vendor, err := h.vendors.Profile(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

type vendorProfileRequest struct {
	BusinessName string `json:"businessName"`
	BusinessType string `json:"businessType"`
	GSTNumber    string `json:"gstNumber"`
	Description  string `json:"description"`
}

func (h *VendorController) UpdateProfile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req vendorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	vendor, err := h.vendors.UpdateProfile(c.Request.Context(), p, services.VendorProfileUpdate(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}
