package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Cash"
	PaymentUPI  PaymentMethod = "UPI"
	PaymentCard PaymentMethod = "Card"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentCash, PaymentUPI, PaymentCard:
		return m, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", s)
	}
}

// InitialPaymentStatus is pending for cash on delivery and completed for everything else.
// Payments are recorded, never processed.
func (m PaymentMethod) InitialPaymentStatus() PaymentStatus {
	if m == PaymentCash {
		return PaymentPending
	}
	return PaymentCompleted
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// ParseOrderStatus only checks membership. Any status may follow any other.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown order status %q", s)
	}
}

// OrderItem is the product snapshot taken when the order was placed.
type OrderItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	VendorID  primitive.ObjectID `json:"vendorId" bson:"vendorId"`
	Name      string             `json:"name" bson:"name"`
	Price     float64            `json:"price" bson:"price"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Total     float64            `json:"total" bson:"total"`
}

type Order struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"userId" bson:"userId"`
	Items           []OrderItem        `json:"items" bson:"items"`
	TotalAmount     float64            `json:"totalAmount" bson:"totalAmount"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod" bson:"paymentMethod"`
	PaymentStatus   PaymentStatus      `json:"paymentStatus" bson:"paymentStatus"`
	OrderStatus     OrderStatus        `json:"orderStatus" bson:"orderStatus"`
	ShippingAddress Address            `json:"shippingAddress" bson:"shippingAddress"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
}

// HasVendor reports whether any line was sold by vendorID.
func (o *Order) HasVendor(vendorID primitive.ObjectID) bool {
	for _, it := range o.Items {
		if it.VendorID == vendorID {
			return true
		}
	}
	return false
}
