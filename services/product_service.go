package services

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"time"

	"marketplace-hub/logger"
	"marketplace-hub/models"
	"marketplace-hub/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ImageUploader stores one image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, r io.Reader, contentType, folder string) (string, error)
}

type ProductService struct {
	products repository.ProductRepository
	users    repository.UserRepository
	images   ImageUploader
}

func NewProductService(products repository.ProductRepository, users repository.UserRepository, images ImageUploader) *ProductService {
	return &ProductService{products: products, users: users, images: images}
}

type ProductQuery struct {
	Category string
	Vendor   string
	Search   string
	Page     int64
	Limit    int64
}

// ProductView is a product with its vendor's account details attached.
type ProductView struct {
	models.Product
	Vendor *models.UserSummary `json:"vendor,omitempty"`
}

type ProductPage struct {
	Products    []ProductView `json:"products"`
	TotalPages  int64         `json:"totalPages"`
	CurrentPage int64         `json:"currentPage"`
	Total       int64         `json:"total"`
}

func parseObjectID(s, msg string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return primitive.NilObjectID, notFound(msg)
	}
	return id, nil
}

func (s *ProductService) List(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	f := repository.ProductFilter{
		Category: strings.TrimSpace(q.Category),
		Search:   strings.TrimSpace(q.Search),
		Skip:     (page - 1) * limit,
		Limit:    limit,
	}
	if v := strings.TrimSpace(q.Vendor); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return nil, validationError("Invalid vendor id")
		}
		f.VendorID = &id
	}

	items, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, internal("Server error", err)
	}
	views, err := s.withVendors(ctx, items)
	if err != nil {
		return nil, err
	}
	return &ProductPage{
		Products:    views,
		TotalPages:  int64(math.Ceil(float64(total) / float64(limit))),
		CurrentPage: page,
		Total:       total,
	}, nil
}

func (s *ProductService) withVendors(ctx context.Context, items []models.Product) ([]ProductView, error) {
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.VendorID)
	}
	vendors, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, internal("Server error", err)
	}

	views := make([]ProductView, 0, len(items))
	for _, p := range items {
		view := ProductView{Product: p}
		if u, ok := vendors[p.VendorID]; ok {
			view.Vendor = u.Summary()
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.products.Categories(ctx)
	if err != nil {
		return nil, internal("Server error", err)
	}
	return cats, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*ProductView, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.withVendors(ctx, []models.Product{*product})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ProductService) find(ctx context.Context, id string) (*models.Product, error) {
	oid, err := parseObjectID(id, "Product not found")
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, internal("Server error", err)
	}
	return product, nil
}

type ProductInput struct {
	Name           string
	Category       string
	Description    string
	Price          float64
	Quantity       int
	Images         []string
	Specifications map[string]string
}

// Create lists a new product for the calling vendor.
func (s *ProductService) Create(ctx context.Context, p Principal, in ProductInput) (*models.Product, error) {
	switch p.Role {
	case models.RoleVendor:
	case models.RoleUser, models.RoleAdmin:
		return nil, forbidden("Only vendors can create products")
	default:
		return nil, forbidden("Only vendors can create products")
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" || in.Category == "" {
		return nil, validationError("Please provide product name and category")
	}
	if in.Price <= 0 {
		return nil, validationError("Price must be greater than 0")
	}
	if in.Quantity < 0 {
		return nil, validationError("Quantity cannot be negative")
	}

	status := models.ProductAvailable
	if in.Quantity == 0 {
		status = models.ProductOutOfStock
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}
	product := &models.Product{
		VendorID:       p.UserID,
		Name:           in.Name,
		Category:       in.Category,
		Description:    strings.TrimSpace(in.Description),
		Price:          in.Price,
		Quantity:       in.Quantity,
		Images:         images,
		Specifications: in.Specifications,
		Status:         status,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, internal("Server error", err)
	}
	logger.FromContext(ctx).Info("product created",
		zap.String("product_id", product.ID.Hex()),
		zap.String("vendor_id", p.UserID.Hex()),
	)
	return product, nil
}

// ProductPatch carries only the fields the caller sent.
type ProductPatch struct {
	VendorID       *string
	Name           *string
	Category       *string
	Description    *string
	Price          *float64
	Quantity       *int
	Images         *[]string
	Specifications map[string]string
	Status         *string
}

func (s *ProductService) Update(ctx context.Context, p Principal, id string, in ProductPatch) (*models.Product, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.canManageProduct(product) {
		return nil, forbidden("Not authorized to update this product")
	}

	var upd repository.ProductUpdate
	if in.VendorID != nil {
		switch p.Role {
		case models.RoleAdmin:
			vid, err := primitive.ObjectIDFromHex(*in.VendorID)
			if err != nil {
				return nil, validationError("Invalid vendor id")
			}
			owner, err := s.users.FindByID(ctx, vid)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return nil, validationError("Vendor not found")
			case err != nil:
				return nil, internal("Server error", err)
			case owner.Role != models.RoleVendor:
				return nil, validationError("Products can only be assigned to vendor accounts")
			}
			upd.VendorID = &vid
		case models.RoleVendor, models.RoleUser:
			if *in.VendorID != product.VendorID.Hex() {
				return nil, forbidden("Only administrators can reassign products")
			}
		}
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validationError("Product name cannot be empty")
		}
		upd.Name = &name
	}
	if in.Category != nil {
		cat := strings.TrimSpace(*in.Category)
		if cat == "" {
			return nil, validationError("Category cannot be empty")
		}
		upd.Category = &cat
	}
	upd.Description = in.Description
	if in.Price != nil && *in.Price <= 0 {
		return nil, validationError("Price must be greater than 0")
	}
	upd.Price = in.Price
	if in.Quantity != nil && *in.Quantity < 0 {
		return nil, validationError("Quantity cannot be negative")
	}
	upd.Quantity = in.Quantity
	upd.Images = in.Images
	upd.Specifications = in.Specifications
	if in.Status != nil {
		st, err := models.ParseProductStatus(*in.Status)
		if err != nil {
			return nil, validationError("Invalid product status")
		}
		upd.Status = &st
	}

	updated, err := s.products.Update(ctx, product.ID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, internal("Server error", err)
	}
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, p Principal, id string) error {
	product, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !p.canManageProduct(product) {
		return forbidden("Not authorized to delete this product")
	}
	if err := s.products.Delete(ctx, product.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Product not found")
		}
		return internal("Server error", err)
	}
	logger.FromContext(ctx).Info("product deleted", zap.String("product_id", product.ID.Hex()))
	return nil
}

type ImageFile struct {
	Reader      io.Reader
	ContentType string
}

// AddImages uploads every file and appends the resulting URLs to the product.
func (s *ProductService) AddImages(ctx context.Context, p Principal, id string, files []ImageFile) (*models.Product, error) {
	if s.images == nil {
		return nil, internal("Image uploads are not configured", nil)
	}
	if len(files) == 0 {
		return nil, validationError("No images uploaded")
	}

	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.canManageProduct(product) {
		return nil, forbidden("Not authorized to update this product")
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.images.Upload(ctx, f.Reader, f.ContentType, "products/"+product.ID.Hex())
		if err != nil {
			return nil, internal("Failed to upload image", err)
		}
		urls = append(urls, url)
	}

	updated, err := s.products.AddImages(ctx, product.ID, urls)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, internal("Server error", err)
	}
	return updated, nil
}

// SweepStockStatus aligns available/out_of_stock with the stock counter.
func (s *ProductService) SweepStockStatus(ctx context.Context) (int64, error) {
	n, err := s.products.SyncStockStatus(ctx)
	if err != nil {
		return 0, internal("Stock status sweep failed", err)
	}
	return n, nil
}
