package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"marketplace-hub/models"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Emails collide regardless of case.
func TestMemoryUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "Jane@Example.com"}))
	require.ErrorIs(t, repo.Create(ctx, &models.User{Email: "jane@example.COM"}), ErrDuplicate)

	u, err := repo.FindByEmail(ctx, "JANE@example.com")
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", u.Email)
}

func TestMemoryProductRepository_ListFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProductRepository()
	vendor := primitive.NewObjectID()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, p := range []models.Product{
		{Name: "Red Mug", Category: "kitchen", VendorID: vendor},
		{Name: "Blue Mug", Category: "kitchen"},
		{Name: "Lamp", Description: "a mug-shaped lamp", Category: "home", VendorID: vendor},
		{Name: "Chair", Category: "home"},
	} {
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, &p))
	}

	got, total, err := repo.List(ctx, ProductFilter{Search: "MUG"})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Equal(t, []string{"Lamp", "Blue Mug", "Red Mug"}, names(got))

	got, total, err = repo.List(ctx, ProductFilter{VendorID: &vendor, Category: "home"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Lamp", got[0].Name)

	got, total, err = repo.List(ctx, ProductFilter{Skip: 2, Limit: 5})
	require.NoError(t, err)
	require.EqualValues(t, 4, total)
	require.Equal(t, []string{"Blue Mug", "Red Mug"}, names(got))

	got, _, err = repo.List(ctx, ProductFilter{Skip: 10, Limit: 5})
	require.NoError(t, err)
	require.Empty(t, got)

	cats, err := repo.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"home", "kitchen"}, cats)
}

func names(ps []models.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

// ReserveStock never lets quantity go below zero, even under contention.
func TestMemoryProductRepository_ReserveStockConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProductRepository()
	p := &models.Product{Name: "Widget", Quantity: 5}
	require.NoError(t, repo.Create(ctx, p))

	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.ReserveStock(ctx, p.ID, 1) == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 5, ok.Load())
	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Quantity)
	require.ErrorIs(t, repo.ReserveStock(ctx, p.ID, 1), ErrInsufficientStock)

	require.NoError(t, repo.ReleaseStock(ctx, p.ID, 2))
	got, _ = repo.FindByID(ctx, p.ID)
	require.Equal(t, 2, got.Quantity)
}

func TestMemoryProductRepository_SyncStockStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProductRepository()
	soldOut := &models.Product{Quantity: 0, Status: models.ProductAvailable}
	restocked := &models.Product{Quantity: 3, Status: models.ProductOutOfStock}
	discontinued := &models.Product{Quantity: 0, Status: models.ProductDiscontinued}
	for _, p := range []*models.Product{soldOut, restocked, discontinued} {
		require.NoError(t, repo.Create(ctx, p))
	}

	n, err := repo.SyncStockStatus(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	got, _ := repo.FindByID(ctx, soldOut.ID)
	require.Equal(t, models.ProductOutOfStock, got.Status)
	got, _ = repo.FindByID(ctx, restocked.ID)
	require.Equal(t, models.ProductAvailable, got.Status)
	got, _ = repo.FindByID(ctx, discontinued.ID)
	require.Equal(t, models.ProductDiscontinued, got.Status)
}

// Returned products are copies; mutating them does not touch the store.
func TestMemoryProductRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProductRepository()
	p := &models.Product{Name: "Widget", Images: []string{"a"}}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	got.Images[0] = "changed"
	got.Quantity = 99

	again, _ := repo.FindByID(ctx, p.ID)
	require.Equal(t, []string{"a"}, again.Images)
	require.Equal(t, 0, again.Quantity)
}

func TestMemoryOrderRepository_QueriesAndRevenue(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()
	buyer, vendor := primitive.NewObjectID(), primitive.NewObjectID()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		o := &models.Order{
			UserID:        buyer,
			TotalAmount:   10,
			PaymentStatus: models.PaymentCompleted,
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		}
		if i%2 == 0 {
			o.PaymentStatus = models.PaymentPending
		}
		if i == 3 {
			o.Items = []models.OrderItem{{VendorID: vendor}}
		}
		require.NoError(t, repo.Create(ctx, o))
	}

	recent, err := repo.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	require.True(t, recent[0].CreatedAt.After(recent[4].CreatedAt))

	byVendor, err := repo.ListByVendor(ctx, vendor)
	require.NoError(t, err)
	require.Len(t, byVendor, 1)

	revenue, err := repo.Revenue(ctx)
	require.NoError(t, err)
	require.Equal(t, 30.0, revenue)

	updated, err := repo.UpdateStatus(ctx, byVendor[0].ID, models.OrderShipped)
	require.NoError(t, err)
	require.Equal(t, models.OrderShipped, updated.OrderStatus)

	_, err = repo.UpdateStatus(ctx, primitive.NewObjectID(), models.OrderShipped)
	require.ErrorIs(t, err, ErrNotFound)
}
