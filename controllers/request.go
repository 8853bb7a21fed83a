package controllers

import (
	"net/http"

	"marketplace-hub/services"

	"github.com/gin-gonic/gin"
)

type RequestController struct {
	requests *services.RequestService
}

func NewRequestController(requests *services.RequestService) *RequestController {
	return &RequestController{requests: requests}
}

type requestItemRequest struct {
	ItemName        string `json:"itemName"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	PreferredVendor string `json:"preferredVendor"`
}

func (h *RequestController) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req requestItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	item, err := h.requests.Create(c.Request.Context(), p, services.RequestInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *RequestController) ListMine(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	items, err := h.requests.ListMine(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
