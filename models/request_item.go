package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestFulfilled RequestStatus = "fulfilled"
)

func ParseRequestStatus(s string) (RequestStatus, error) {
	switch st := RequestStatus(s); st {
	case RequestPending, RequestApproved, RequestRejected, RequestFulfilled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown request status %q", s)
	}
}

// RequestItem is a buyer asking for something nobody lists yet.
type RequestItem struct {
	ID              primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID  `json:"userId" bson:"userId"`
	ItemName        string              `json:"itemName" bson:"itemName"`
	Category        string              `json:"category" bson:"category"`
	Description     string              `json:"description" bson:"description"`
	PreferredVendor *primitive.ObjectID `json:"preferredVendor,omitempty" bson:"preferredVendor,omitempty"`
	Status          RequestStatus       `json:"status" bson:"status"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
}
