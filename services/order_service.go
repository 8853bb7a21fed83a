package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace-hub/logger"
	"marketplace-hub/models"
	"marketplace-hub/repository"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "marketplace-hub/services"

// OrderPublisher announces placed orders to other systems.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *models.Order) error
}

// OrderNotifier tells the buyer their order went through.
type OrderNotifier interface {
	OrderConfirmation(ctx context.Context, to string, order *models.Order) error
}

// OrderObserver receives placement outcomes, usually for metrics.
type OrderObserver interface {
	OrderPlaced(totalAmount float64)
	OrderRejected(reason string)
}

type OrderService struct {
	products  repository.ProductRepository
	orders    repository.OrderRepository
	users     repository.UserRepository
	publisher OrderPublisher
	notifier  OrderNotifier
	observer  OrderObserver
	tracer    trace.Tracer
}

type OrderOption func(*OrderService)

func WithPublisher(p OrderPublisher) OrderOption {
	return func(s *OrderService) { s.publisher = p }
}

func WithNotifier(n OrderNotifier) OrderOption {
	return func(s *OrderService) { s.notifier = n }
}

func WithObserver(o OrderObserver) OrderOption {
	return func(s *OrderService) { s.observer = o }
}

func NewOrderService(products repository.ProductRepository, orders repository.OrderRepository, users repository.UserRepository, opts ...OrderOption) *OrderService {
	s := &OrderService{
		products: products,
		orders:   orders,
		users:    users,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type OrderLine struct {
	ProductID string
	Quantity  int
}

type PlaceOrderInput struct {
	Items           []OrderLine
	PaymentMethod   string
	ShippingAddress models.Address
}

type reservation struct {
	productID primitive.ObjectID
	quantity  int
}

// PlaceOrder checks stock, snapshots prices, reserves every line and writes the order.
// Either the order is stored with all its stock taken, or nothing changes.
func (s *OrderService) PlaceOrder(ctx context.Context, p Principal, in PlaceOrderInput) (_ *models.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder", trace.WithAttributes(
		attribute.String("order.user_id", p.UserID.Hex()),
		attribute.Int("order.lines", len(in.Items)),
	))
	log := logger.FromContext(ctx).With(zap.String("user_id", p.UserID.Hex()))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, KindOf(err).String())
			if s.observer != nil {
				s.observer.OrderRejected(KindOf(err).String())
			}
		}
		span.End()
	}()

	if len(in.Items) == 0 {
		return nil, validationError("No order items")
	}
	method, perr := models.ParsePaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if perr != nil {
		return nil, validationError("Invalid payment method")
	}

	ids := make([]primitive.ObjectID, len(in.Items))
	for i, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, validationError("Quantity must be at least 1")
		}
		id, perr := primitive.ObjectIDFromHex(strings.TrimSpace(line.ProductID))
		if perr != nil {
			return nil, &AppError{Kind: KindNotFound, Message: "Product not found: " + line.ProductID, ProductID: line.ProductID}
		}
		ids[i] = id
	}

	products := make(map[primitive.ObjectID]*models.Product, len(ids))
	demand := make(map[primitive.ObjectID]int, len(ids))
	for i, id := range ids {
		if _, ok := products[id]; !ok {
			product, ferr := s.products.FindByID(ctx, id)
			if ferr != nil {
				if errors.Is(ferr, repository.ErrNotFound) {
					return nil, &AppError{Kind: KindNotFound, Message: "Product not found: " + id.Hex(), ProductID: id.Hex()}
				}
				return nil, internal("Server error", ferr)
			}
			products[id] = product
		}
		demand[id] += in.Items[i].Quantity
	}
	for _, id := range ids {
		if product := products[id]; product.Quantity < demand[id] {
			return nil, insufficientStock(product)
		}
	}

	items := make([]models.OrderItem, len(in.Items))
	for i, line := range in.Items {
		product := products[ids[i]]
		lineTotal := decimal.NewFromFloat(product.Price).Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		items[i] = models.OrderItem{
			ProductID: product.ID,
			VendorID:  product.VendorID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  line.Quantity,
			Total:     lineTotal.InexactFloat64(),
		}
	}

	reserved := make([]reservation, 0, len(items))
	for _, item := range items {
		if rerr := s.products.ReserveStock(ctx, item.ProductID, item.Quantity); rerr != nil {
			s.release(ctx, reserved)
			if errors.Is(rerr, repository.ErrInsufficientStock) {
				log.Info("stock reservation lost", zap.String("product_id", item.ProductID.Hex()))
				return nil, insufficientStock(products[item.ProductID])
			}
			return nil, internal("Server error", rerr)
		}
		reserved = append(reserved, reservation{productID: item.ProductID, quantity: item.Quantity})
	}

	order := &models.Order{
		UserID:          p.UserID,
		Items:           items,
		TotalAmount:     sumLineTotals(items),
		PaymentMethod:   method,
		PaymentStatus:   method.InitialPaymentStatus(),
		OrderStatus:     models.OrderPending,
		ShippingAddress: in.ShippingAddress,
		CreatedAt:       time.Now().UTC(),
	}
	if cerr := s.orders.Create(ctx, order); cerr != nil {
		s.release(ctx, reserved)
		return nil, internal("Server error", cerr)
	}

	span.SetAttributes(
		attribute.String("order.id", order.ID.Hex()),
		attribute.Float64("order.total_amount", order.TotalAmount),
	)
	log.Info("order placed",
		zap.String("order_id", order.ID.Hex()),
		zap.Float64("total_amount", order.TotalAmount),
		zap.String("payment_method", string(order.PaymentMethod)),
	)
	s.afterPlaced(ctx, order)
	return order, nil
}

func insufficientStock(product *models.Product) *AppError {
	return &AppError{
		Kind:      KindInsufficientStock,
		Message:   "Insufficient quantity for product: " + product.Name,
		ProductID: product.ID.Hex(),
	}
}

// release gives back reserved stock. It runs even if the request was cancelled.
func (s *OrderService) release(ctx context.Context, reserved []reservation) {
	ctx = context.WithoutCancel(ctx)
	log := logger.FromContext(ctx)
	for _, r := range reserved {
		if err := s.products.ReleaseStock(ctx, r.productID, r.quantity); err != nil {
			log.Error("stock release failed",
				zap.String("product_id", r.productID.Hex()),
				zap.Int("quantity", r.quantity),
				zap.Error(err),
			)
		}
	}
}

// afterPlaced runs the side effects of a committed order. None of them can fail the request.
func (s *OrderService) afterPlaced(ctx context.Context, order *models.Order) {
	log := logger.FromContext(ctx).With(zap.String("order_id", order.ID.Hex()))

	if s.observer != nil {
		s.observer.OrderPlaced(order.TotalAmount)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
			log.Warn("order event not published", zap.Error(err))
		}
	}
	if s.notifier != nil {
		buyer, err := s.users.FindByID(ctx, order.UserID)
		if err != nil {
			log.Warn("order confirmation skipped", zap.Error(err))
			return
		}
		if err := s.notifier.OrderConfirmation(ctx, buyer.Email, order); err != nil {
			log.Warn("order confirmation not sent", zap.Error(err))
		}
	}
}

// ListMine returns the caller's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, p Principal) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, internal("Server error", err)
	}
	return orders, nil
}

func (s *OrderService) find(ctx context.Context, id string) (*models.Order, error) {
	oid, err := parseObjectID(id, "Order not found")
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Order not found")
		}
		return nil, internal("Server error", err)
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, p Principal, id string) (*models.Order, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.canReadOrder(order) {
		return nil, forbidden("Not authorized to view this order")
	}
	return order, nil
}

// UpdateStatus sets any of the order statuses. Admins may update every order,
// vendors only orders containing at least one of their lines.
func (s *OrderService) UpdateStatus(ctx context.Context, p Principal, id, status string) (*models.Order, error) {
	st, err := models.ParseOrderStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, validationError("Invalid order status")
	}
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.canUpdateOrderStatus(order) {
		return nil, forbidden("Not authorized to update this order")
	}

	updated, err := s.orders.UpdateStatus(ctx, order.ID, st)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Order not found")
		}
		return nil, internal("Server error", err)
	}
	logger.FromContext(ctx).Info("order status updated",
		zap.String("order_id", order.ID.Hex()),
		zap.String("from", string(order.OrderStatus)),
		zap.String("to", string(st)),
	)
	return updated, nil
}

// ListForVendor returns orders containing at least one line sold by the calling vendor.
func (s *OrderService) ListForVendor(ctx context.Context, p Principal) ([]models.Order, error) {
	switch p.Role {
	case models.RoleVendor:
	case models.RoleUser, models.RoleAdmin:
		return nil, forbidden(fmt.Sprintf("User role %s is not authorized to access this route", p.Role))
	default:
		return nil, forbidden("Not authorized")
	}
	orders, err := s.orders.ListByVendor(ctx, p.UserID)
	if err != nil {
		return nil, internal("Server error", err)
	}
	return orders, nil
}

// sumLineTotals adds the stored float line totals in order, so totalAmount equals
// what a reader summing items[].total gets back.
func sumLineTotals(items []models.OrderItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Total
	}
	return sum
}
