package services

import (
	"context"
	"errors"
	"strings"

	"marketplace-hub/logger"
	"marketplace-hub/models"
	"marketplace-hub/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const recentOrdersOnDashboard = 5

type AdminService struct {
	users    repository.UserRepository
	vendors  repository.VendorRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	requests repository.RequestItemRepository
}

func NewAdminService(
	users repository.UserRepository,
	vendors repository.VendorRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	requests repository.RequestItemRepository,
) *AdminService {
	return &AdminService{users: users, vendors: vendors, products: products, orders: orders, requests: requests}
}

func requireAdmin(p Principal) error {
	switch p.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleUser, models.RoleVendor:
		return forbidden("User role " + string(p.Role) + " is not authorized to access this route")
	default:
		return forbidden("Not authorized")
	}
}

// VendorListing is a vendor profile with the owning account's contact details.
type VendorListing struct {
	models.Vendor
	User *models.UserSummary `json:"user,omitempty"`
}

// RecentOrder is an order with the buyer's name and email attached.
type RecentOrder struct {
	models.Order
	Buyer *models.UserSummary `json:"buyer,omitempty"`
}

type DashboardStats struct {
	TotalUsers    int64         `json:"totalUsers"`
	TotalVendors  int64         `json:"totalVendors"`
	TotalProducts int64         `json:"totalProducts"`
	TotalOrders   int64         `json:"totalOrders"`
	TotalRevenue  float64       `json:"totalRevenue"`
	RecentOrders  []RecentOrder `json:"recentOrders"`
}

func (s *AdminService) ListUsers(ctx context.Context, p Principal) ([]models.User, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, internal("Server error", err)
	}
	return users, nil
}

func (s *AdminService) ListVendors(ctx context.Context, p Principal) ([]VendorListing, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	vendors, err := s.vendors.List(ctx)
	if err != nil {
		return nil, internal("Server error", err)
	}

	ids := make([]primitive.ObjectID, 0, len(vendors))
	for _, v := range vendors {
		ids = append(ids, v.UserID)
	}
	accounts, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, internal("Server error", err)
	}

	out := make([]VendorListing, 0, len(vendors))
	for _, v := range vendors {
		listing := VendorListing{Vendor: v}
		if u, ok := accounts[v.UserID]; ok {
			listing.User = u.Summary()
		}
		out = append(out, listing)
	}
	return out, nil
}

func (s *AdminService) SetUserActive(ctx context.Context, p Principal, id string, active bool) (*models.User, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	oid, err := parseObjectID(id, "User not found")
	if err != nil {
		return nil, err
	}
	user, err := s.users.SetActive(ctx, oid, active)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, internal("Server error", err)
	}
	logger.FromContext(ctx).Info("account status changed",
		zap.String("user_id", user.ID.Hex()),
		zap.Bool("active", active),
		zap.String("admin_id", p.UserID.Hex()),
	)
	return user, nil
}

func (s *AdminService) SetVendorVerified(ctx context.Context, p Principal, id string, verified bool) (*models.Vendor, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	oid, err := parseObjectID(id, "Vendor not found")
	if err != nil {
		return nil, err
	}
	vendor, err := s.vendors.SetVerified(ctx, oid, verified)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Vendor not found")
		}
		return nil, internal("Server error", err)
	}
	logger.FromContext(ctx).Info("vendor verification changed",
		zap.String("vendor_id", vendor.ID.Hex()),
		zap.Bool("verified", verified),
		zap.String("admin_id", p.UserID.Hex()),
	)
	return vendor, nil
}

// Stats builds the dashboard summary. totalUsers counts buyer accounts only.
func (s *AdminService) Stats(ctx context.Context, p Principal) (*DashboardStats, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	var (
		stats DashboardStats
		err   error
	)
	if stats.TotalUsers, err = s.users.CountByRole(ctx, models.RoleUser); err != nil {
		return nil, internal("Server error", err)
	}
	if stats.TotalVendors, err = s.users.CountByRole(ctx, models.RoleVendor); err != nil {
		return nil, internal("Server error", err)
	}
	if stats.TotalProducts, err = s.products.Count(ctx); err != nil {
		return nil, internal("Server error", err)
	}
	if stats.TotalOrders, err = s.orders.Count(ctx); err != nil {
		return nil, internal("Server error", err)
	}
	if stats.TotalRevenue, err = s.orders.Revenue(ctx); err != nil {
		return nil, internal("Server error", err)
	}

	recent, err := s.orders.Recent(ctx, recentOrdersOnDashboard)
	if err != nil {
		return nil, internal("Server error", err)
	}
	ids := make([]primitive.ObjectID, 0, len(recent))
	for _, o := range recent {
		ids = append(ids, o.UserID)
	}
	buyers, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, internal("Server error", err)
	}
	stats.RecentOrders = make([]RecentOrder, 0, len(recent))
	for _, o := range recent {
		ro := RecentOrder{Order: o}
		if u, ok := buyers[o.UserID]; ok {
			ro.Buyer = u.Summary()
		}
		stats.RecentOrders = append(stats.RecentOrders, ro)
	}
	return &stats, nil
}

func (s *AdminService) ListRequests(ctx context.Context, p Principal) ([]models.RequestItem, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	items, err := s.requests.List(ctx)
	if err != nil {
		return nil, internal("Server error", err)
	}
	return items, nil
}

func (s *AdminService) SetRequestStatus(ctx context.Context, p Principal, id, status string) (*models.RequestItem, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	st, err := models.ParseRequestStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, validationError("Invalid request status")
	}
	oid, err := parseObjectID(id, "Request not found")
	if err != nil {
		return nil, err
	}
	item, err := s.requests.SetStatus(ctx, oid, st)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Request not found")
		}
		return nil, internal("Server error", err)
	}
	return item, nil
}
