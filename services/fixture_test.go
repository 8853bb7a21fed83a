package services

import (
	"context"
	"testing"
	"time"

	"marketplace-hub/models"
	"marketplace-hub/repository"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	users    *repository.MemoryUserRepository
	vendors  *repository.MemoryVendorRepository
	products *repository.MemoryProductRepository
	orders   *repository.MemoryOrderRepository
	requests *repository.MemoryRequestItemRepository
	tokens   *TokenManager
}

func newFixture() *fixture {
	return &fixture{
		users:    repository.NewMemoryUserRepository(),
		vendors:  repository.NewMemoryVendorRepository(),
		products: repository.NewMemoryProductRepository(),
		orders:   repository.NewMemoryOrderRepository(),
		requests: repository.NewMemoryRequestItemRepository(),
		tokens:   NewTokenManager("test-secret", time.Hour),
	}
}

func (f *fixture) auth() *AuthService {
	return NewAuthService(f.users, f.vendors, f.tokens)
}

// account stores a user directly, with a cheap bcrypt hash of password.
func (f *fixture) account(t *testing.T, role models.Role, email, password string) Principal {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Name:      "Account " + email,
		Email:     email,
		Password:  string(hash),
		Phone:     "555-0100",
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return Principal{UserID: u.ID, Role: role}
}

func (f *fixture) product(t *testing.T, vendor primitive.ObjectID, name string, price float64, qty int) *models.Product {
	t.Helper()
	p := &models.Product{
		VendorID:  vendor,
		Name:      name,
		Category:  "toys",
		Price:     price,
		Quantity:  qty,
		Status:    models.ProductAvailable,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) stock(t *testing.T, id primitive.ObjectID) int {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), err.Error())
}

func repositoryPriceUpdate(price float64) repository.ProductUpdate {
	return repository.ProductUpdate{Price: &price}
}

func repositoryVendorUpdate(vendor primitive.ObjectID) repository.ProductUpdate {
	return repository.ProductUpdate{VendorID: &vendor}
}

// racingProducts lets a competing buyer take 3 units of steal right before
// the order under test reserves it.
type racingProducts struct {
	*repository.MemoryProductRepository
	steal primitive.ObjectID
}

func (r *racingProducts) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	if id == r.steal {
		if err := r.MemoryProductRepository.ReserveStock(ctx, id, 3); err != nil {
			return err
		}
	}
	return r.MemoryProductRepository.ReserveStock(ctx, id, qty)
}

func repositoryStatusUpdate(status models.ProductStatus) repository.ProductUpdate {
	return repository.ProductUpdate{Status: &status}
}
