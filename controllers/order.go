package controllers

import (
	"net/http"

	"marketplace-hub/models"
	"marketplace-hub/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

type orderLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type placeOrderRequest struct {
	Items           []orderLineRequest `json:"items"`
	PaymentMethod   string             `json:"paymentMethod"`
	ShippingAddress models.Address     `json:"shippingAddress"`
}

func (h *OrderController) Place(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	lines := make([]services.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, services.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	order, err := h.orders.PlaceOrder(c.Request.Context(), p, services.PlaceOrderInput{
		Items:           lines,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderController) ListMine(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	orders, err := h.orders.ListMine(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderController) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type orderStatusRequest struct {
	OrderStatus string `json:"orderStatus"`
}

// UpdateStatus serves both /orders/:id/status and /vendors/orders/:orderId/status.
func (h *OrderController) UpdateStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	id := c.Param("id")
	if id == "" {
		id = c.Param("orderId")
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), p, id, req.OrderStatus)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderController) ListForVendor(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	orders, err := h.orders.ListForVendor(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
