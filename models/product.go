package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductStatus string

const (
	ProductAvailable    ProductStatus = "available"
	ProductOutOfStock   ProductStatus = "out_of_stock"
	ProductDiscontinued ProductStatus = "discontinued"
)

func ParseProductStatus(s string) (ProductStatus, error) {
	switch st := ProductStatus(s); st {
	case ProductAvailable, ProductOutOfStock, ProductDiscontinued:
		return st, nil
	default:
		return "", fmt.Errorf("unknown product status %q", s)
	}
}

// Product is a catalog entry owned by one vendor. Quantity is the stock counter.
type Product struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	VendorID       primitive.ObjectID `json:"vendorId" bson:"vendorId"`
	Name           string             `json:"name" bson:"name"`
	Category       string             `json:"category" bson:"category"`
	Description    string             `json:"description" bson:"description"`
	Price          float64            `json:"price" bson:"price"`
	Quantity       int                `json:"quantity" bson:"quantity"`
	Images         []string           `json:"images" bson:"images"`
	Specifications map[string]string  `json:"specifications,omitempty" bson:"specifications,omitempty"`
	Status         ProductStatus      `json:"status" bson:"status"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}
