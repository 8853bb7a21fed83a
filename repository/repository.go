// Package repository holds the persistence ports used by the services together with
// their MongoDB and in-memory implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"marketplace-hub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound          = errors.New("repository: not found")
	ErrDuplicate         = errors.New("repository: duplicate key")
	ErrInsufficientStock = errors.New("repository: insufficient stock")
)

// DefaultTimeout bounds every single store call.
const DefaultTimeout = 5 * time.Second

type UserUpdate struct {
	Name    *string
	Phone   *string
	Address *models.Address
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, upd UserUpdate) (*models.User, error)
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*models.User, error)
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	CountByRole(ctx context.Context, role models.Role) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type VendorUpdate struct {
	BusinessName *string
	BusinessType *string
	GSTNumber    *string
	Description  *string
}

type VendorRepository interface {
	Create(ctx context.Context, v *models.Vendor) error
	FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Vendor, error)
	List(ctx context.Context) ([]models.Vendor, error)
	Update(ctx context.Context, userID primitive.ObjectID, upd VendorUpdate) (*models.Vendor, error)
	SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) (*models.Vendor, error)
}

// ProductFilter selects a page of products. Search is matched case-insensitively
// as a literal substring of name or description.
type ProductFilter struct {
	Category string
	VendorID *primitive.ObjectID
	Search   string
	Skip     int64
	Limit    int64
}

type ProductUpdate struct {
	VendorID       *primitive.ObjectID
	Name           *string
	Category       *string
	Description    *string
	Price          *float64
	Quantity       *int
	Images         *[]string
	Specifications map[string]string
	Status         *models.ProductStatus
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error)
	Categories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id primitive.ObjectID, upd ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddImages(ctx context.Context, id primitive.ObjectID, urls []string) (*models.Product, error)
	Count(ctx context.Context) (int64, error)

	// ReserveStock decrements quantity by qty only if at least qty is in stock.
	// It returns ErrInsufficientStock when the conditional update matched nothing.
	ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error
	// ReleaseStock gives back a quantity taken by ReserveStock.
	ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error
	// SyncStockStatus flips available/out_of_stock to match quantity and returns the number of products changed.
	SyncStockStatus(ctx context.Context) (int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error)
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, n int64) ([]models.Order, error)
	// Revenue sums totalAmount over orders whose payment completed.
	Revenue(ctx context.Context) (float64, error)
}

type RequestItemRepository interface {
	Create(ctx context.Context, r *models.RequestItem) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.RequestItem, error)
	List(ctx context.Context) ([]models.RequestItem, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus) (*models.RequestItem, error)
}
