package services

import (
	"marketplace-hub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the authenticated caller, rebuilt from the token and a fresh account
// lookup on every request.
type Principal struct {
	UserID primitive.ObjectID
	Role   models.Role
}

// canManageProduct: admins always, vendors only for their own products.
func (p Principal) canManageProduct(product *models.Product) bool {
	switch p.Role {
	case models.RoleAdmin:
		return true
	case models.RoleVendor:
		return product.VendorID == p.UserID
	case models.RoleUser:
		return false
	default:
		return false
	}
}

// canReadOrder: the buyer who placed it, or an admin.
func (p Principal) canReadOrder(order *models.Order) bool {
	switch p.Role {
	case models.RoleAdmin:
		return true
	case models.RoleVendor, models.RoleUser:
		return order.UserID == p.UserID
	default:
		return false
	}
}

// canUpdateOrderStatus: admins, or a vendor who sold at least one line of the order.
// The vendor id is the snapshot taken at order time.
func (p Principal) canUpdateOrderStatus(order *models.Order) bool {
	switch p.Role {
	case models.RoleAdmin:
		return true
	case models.RoleVendor:
		return order.HasVendor(p.UserID)
	case models.RoleUser:
		return false
	default:
		return false
	}
}
