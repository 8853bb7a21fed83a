package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vendor is the business profile attached 1:1 to an account with RoleVendor.
type Vendor struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"userId" bson:"userId"`
	BusinessName string             `json:"businessName" bson:"businessName"`
	BusinessType string             `json:"businessType" bson:"businessType"`
	GSTNumber    string             `json:"gstNumber" bson:"gstNumber"`
	Description  string             `json:"description" bson:"description"`
	Rating       float64            `json:"rating" bson:"rating"`
	TotalSales   int                `json:"totalSales" bson:"totalSales"`
	IsVerified   bool               `json:"isVerified" bson:"isVerified"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}
