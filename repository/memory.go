package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"marketplace-hub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The in-memory repositories are test doubles for the Mongo ones. They keep copies of
// every document so callers never share state with the store.

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[primitive.ObjectID]models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = models.NormalizeEmail(u.Email)
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = models.NormalizeEmail(email)
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[primitive.ObjectID]models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, id primitive.ObjectID, upd UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Address != nil {
		u.Address = *upd.Address
	}
	r.users[id] = u
	return &u, nil
}

func (r *MemoryUserRepository) SetActive(_ context.Context, id primitive.ObjectID, active bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.IsActive = active
	r.users[id] = u
	return &u, nil
}

func (r *MemoryUserRepository) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Password = hash
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepository) CountByRole(_ context.Context, role models.Role) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type MemoryVendorRepository struct {
	mu      sync.RWMutex
	vendors map[primitive.ObjectID]models.Vendor
	// FailCreate makes Create fail, for exercising rollback paths.
	FailCreate error
}

func NewMemoryVendorRepository() *MemoryVendorRepository {
	return &MemoryVendorRepository{vendors: make(map[primitive.ObjectID]models.Vendor)}
}

func (r *MemoryVendorRepository) Create(_ context.Context, v *models.Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailCreate != nil {
		return r.FailCreate
	}
	for _, existing := range r.vendors {
		if existing.UserID == v.UserID {
			return ErrDuplicate
		}
	}
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	r.vendors[v.ID] = *v
	return nil
}

func (r *MemoryVendorRepository) FindByUserID(_ context.Context, userID primitive.ObjectID) (*models.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.vendors {
		if v.UserID == userID {
			return &v, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryVendorRepository) List(_ context.Context) ([]models.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Vendor, 0, len(r.vendors))
	for _, v := range r.vendors {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryVendorRepository) Update(_ context.Context, userID primitive.ObjectID, upd VendorUpdate) (*models.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, v := range r.vendors {
		if v.UserID != userID {
			continue
		}
		if upd.BusinessName != nil {
			v.BusinessName = *upd.BusinessName
		}
		if upd.BusinessType != nil {
			v.BusinessType = *upd.BusinessType
		}
		if upd.GSTNumber != nil {
			v.GSTNumber = *upd.GSTNumber
		}
		if upd.Description != nil {
			v.Description = *upd.Description
		}
		r.vendors[id] = v
		return &v, nil
	}
	return nil, ErrNotFound
}

func (r *MemoryVendorRepository) SetVerified(_ context.Context, id primitive.ObjectID, verified bool) (*models.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.vendors[id]
	if !ok {
		return nil, ErrNotFound
	}
	v.IsVerified = verified
	r.vendors[id] = v
	return &v, nil
}

type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]models.Product
	seq      map[primitive.ObjectID]int
	next     int
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[primitive.ObjectID]models.Product),
		seq:      make(map[primitive.ObjectID]int),
	}
}

func cloneProduct(p models.Product) models.Product {
	p.Images = append([]string{}, p.Images...)
	if p.Specifications != nil {
		specs := make(map[string]string, len(p.Specifications))
		for k, v := range p.Specifications {
			specs[k] = v
		}
		p.Specifications = specs
	}
	return p
}

func (r *MemoryProductRepository) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	r.products[p.ID] = cloneProduct(*p)
	r.next++
	r.seq[p.ID] = r.next
	return nil
}

func (r *MemoryProductRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = cloneProduct(p)
	return &p, nil
}

func (f ProductFilter) matches(p models.Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.VendorID != nil && p.VendorID != *f.VendorID {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	return true
}

func (r *MemoryProductRepository) List(_ context.Context, f ProductFilter) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Product, 0)
	for _, p := range r.products {
		if f.matches(p) {
			matched = append(matched, cloneProduct(p))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return r.seq[a.ID] > r.seq[b.ID]
	})

	total := int64(len(matched))
	start := f.Skip
	if start > total {
		start = total
	}
	end := total
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	return matched[start:end], total, nil
}

func (r *MemoryProductRepository) Categories(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]bool{}
	out := []string{}
	for _, p := range r.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *MemoryProductRepository) Update(_ context.Context, id primitive.ObjectID, upd ProductUpdate) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.VendorID != nil {
		p.VendorID = *upd.VendorID
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Quantity != nil {
		p.Quantity = *upd.Quantity
	}
	if upd.Images != nil {
		p.Images = *upd.Images
	}
	if upd.Specifications != nil {
		p.Specifications = upd.Specifications
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	p = cloneProduct(p)
	r.products[id] = p
	p = cloneProduct(p)
	return &p, nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	delete(r.seq, id)
	return nil
}

func (r *MemoryProductRepository) AddImages(_ context.Context, id primitive.ObjectID, urls []string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = cloneProduct(p)
	p.Images = append(p.Images, urls...)
	r.products[id] = p
	p = cloneProduct(p)
	return &p, nil
}

func (r *MemoryProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

func (r *MemoryProductRepository) ReserveStock(_ context.Context, id primitive.ObjectID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok || p.Quantity < qty {
		return ErrInsufficientStock
	}
	p.Quantity -= qty
	r.products[id] = p
	return nil
}

func (r *MemoryProductRepository) ReleaseStock(_ context.Context, id primitive.ObjectID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Quantity += qty
	r.products[id] = p
	return nil
}

func (r *MemoryProductRepository) SyncStockStatus(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changed int64
	for id, p := range r.products {
		switch {
		case p.Quantity <= 0 && p.Status == models.ProductAvailable:
			p.Status = models.ProductOutOfStock
		case p.Quantity > 0 && p.Status == models.ProductOutOfStock:
			p.Status = models.ProductAvailable
		default:
			continue
		}
		r.products[id] = p
		changed++
	}
	return changed, nil
}

type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders []models.Order
	// FailCreate makes Create fail, for exercising rollback paths.
	FailCreate error
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{}
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem{}, o.Items...)
	return o
}

func (r *MemoryOrderRepository) Create(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailCreate != nil {
		return r.FailCreate
	}
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	r.orders = append(r.orders, cloneOrder(*o))
	return nil
}

func (r *MemoryOrderRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.ID == id {
			o = cloneOrder(o)
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

// newest walks the orders newest first, insertion order breaking timestamp ties.
func (r *MemoryOrderRepository) newest(keep func(models.Order) bool, limit int64) []models.Order {
	idx := make([]int, 0, len(r.orders))
	for i := range r.orders {
		if keep(r.orders[i]) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		oa, ob := r.orders[idx[a]], r.orders[idx[b]]
		if !oa.CreatedAt.Equal(ob.CreatedAt) {
			return oa.CreatedAt.After(ob.CreatedAt)
		}
		return idx[a] > idx[b]
	})

	out := []models.Order{}
	for _, i := range idx {
		if limit > 0 && int64(len(out)) == limit {
			break
		}
		out = append(out, cloneOrder(r.orders[i]))
	}
	return out
}

func (r *MemoryOrderRepository) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.newest(func(o models.Order) bool { return o.UserID == userID }, 0), nil
}

func (r *MemoryOrderRepository) ListByVendor(_ context.Context, vendorID primitive.ObjectID) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.newest(func(o models.Order) bool { return o.HasVendor(vendorID) }, 0), nil
}

func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders[i].OrderStatus = status
			o := cloneOrder(r.orders[i])
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryOrderRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.orders)), nil
}

func (r *MemoryOrderRepository) Recent(_ context.Context, n int64) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.newest(func(models.Order) bool { return true }, n), nil
}

func (r *MemoryOrderRepository) Revenue(_ context.Context) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	for _, o := range r.orders {
		if o.PaymentStatus == models.PaymentCompleted {
			total += o.TotalAmount
		}
	}
	return total, nil
}

type MemoryRequestItemRepository struct {
	mu    sync.RWMutex
	items []models.RequestItem
}

func NewMemoryRequestItemRepository() *MemoryRequestItemRepository {
	return &MemoryRequestItemRepository{}
}

func (r *MemoryRequestItemRepository) Create(_ context.Context, item *models.RequestItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	r.items = append(r.items, *item)
	return nil
}

func (r *MemoryRequestItemRepository) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.RequestItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.RequestItem{}
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].UserID == userID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

func (r *MemoryRequestItemRepository) List(_ context.Context) ([]models.RequestItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.RequestItem, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		out = append(out, r.items[i])
	}
	return out, nil
}

func (r *MemoryRequestItemRepository) SetStatus(_ context.Context, id primitive.ObjectID, status models.RequestStatus) (*models.RequestItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Status = status
			item := r.items[i]
			return &item, nil
		}
	}
	return nil, ErrNotFound
}
