package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"marketplace-hub/models"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUploader struct {
	uploaded []string
	err      error
}

func (u *fakeUploader) Upload(_ context.Context, r io.Reader, contentType, folder string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	b, _ := io.ReadAll(r)
	url := "https://storage.example/" + folder + "/" + string(b)
	u.uploaded = append(u.uploaded, contentType)
	return url, nil
}

func ptr[T any](v T) *T { return &v }

func TestProductList_PagesAndAttachesVendor(t *testing.T) {
	f := newFixture()
	vendor := f.account(t, models.RoleVendor, "v@example.com", "pw")
	for i := 0; i < 12; i++ {
		f.product(t, vendor.UserID, "Robot", 10, 1)
	}
	f.product(t, primitive.NewObjectID(), "Kite", 10, 1)
	svc := NewProductService(f.products, f.users, nil)

	page, err := svc.List(context.Background(), ProductQuery{})
	require.NoError(t, err)
	require.EqualValues(t, 13, page.Total)
	require.EqualValues(t, 2, page.TotalPages)
	require.EqualValues(t, 1, page.CurrentPage)
	require.Len(t, page.Products, 10)

	page, err = svc.List(context.Background(), ProductQuery{Vendor: vendor.UserID.Hex(), Page: 2, Limit: 5})
	require.NoError(t, err)
	require.EqualValues(t, 12, page.Total)
	require.EqualValues(t, 3, page.TotalPages)
	require.Len(t, page.Products, 5)
	require.NotNil(t, page.Products[0].Vendor)
	require.Equal(t, "v@example.com", page.Products[0].Vendor.Email)

	page, err = svc.List(context.Background(), ProductQuery{Search: "kit", Limit: 1000})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	require.Nil(t, page.Products[0].Vendor)

	_, err = svc.List(context.Background(), ProductQuery{Vendor: "nope"})
	requireKind(t, err, KindValidation)
}

func TestProductCreate(t *testing.T) {
	f := newFixture()
	vendor := f.account(t, models.RoleVendor, "v@example.com", "pw")
	buyer := f.account(t, models.RoleUser, "b@example.com", "pw")
	admin := f.account(t, models.RoleAdmin, "a@example.com", "pw")
	svc := NewProductService(f.products, f.users, nil)

	in := ProductInput{Name: "Robot", Category: "toys", Price: 25, Quantity: 0}
	p, err := svc.Create(context.Background(), vendor, in)
	require.NoError(t, err)
	require.Equal(t, vendor.UserID, p.VendorID)
	require.Equal(t, models.ProductOutOfStock, p.Status)

	_, err = svc.Create(context.Background(), buyer, in)
	requireKind(t, err, KindForbidden)
	_, err = svc.Create(context.Background(), admin, in)
	requireKind(t, err, KindForbidden)

	for _, bad := range []ProductInput{
		{Category: "toys", Price: 1},
		{Name: "Robot", Price: 1},
		{Name: "Robot", Category: "toys", Price: 0},
		{Name: "Robot", Category: "toys", Price: 1, Quantity: -1},
	} {
		_, err = svc.Create(context.Background(), vendor, bad)
		requireKind(t, err, KindValidation)
	}

	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"toys"}, cats)
}

// Vendors may only change their own products. Administrators may change any.
func TestProductUpdate_Ownership(t *testing.T) {
	f := newFixture()
	owner := f.account(t, models.RoleVendor, "v@example.com", "pw")
	other := f.account(t, models.RoleVendor, "v2@example.com", "pw")
	admin := f.account(t, models.RoleAdmin, "a@example.com", "pw")
	buyer := f.account(t, models.RoleUser, "b@example.com", "pw")
	p := f.product(t, owner.UserID, "Robot", 10, 5)
	svc := NewProductService(f.products, f.users, nil)
	id := p.ID.Hex()

	_, err := svc.Update(context.Background(), other, id, ProductPatch{Price: ptr(1.0)})
	requireKind(t, err, KindForbidden)
	_, err = svc.Update(context.Background(), buyer, id, ProductPatch{Price: ptr(1.0)})
	requireKind(t, err, KindForbidden)

	updated, err := svc.Update(context.Background(), admin, id, ProductPatch{Price: ptr(12.5)})
	require.NoError(t, err)
	require.Equal(t, 12.5, updated.Price)

	updated, err = svc.Update(context.Background(), owner, id, ProductPatch{Name: ptr("Robot v2"), Status: ptr("discontinued")})
	require.NoError(t, err)
	require.Equal(t, "Robot v2", updated.Name)
	require.Equal(t, models.ProductDiscontinued, updated.Status)
	require.Equal(t, 12.5, updated.Price)

	_, err = svc.Update(context.Background(), owner, id, ProductPatch{VendorID: ptr(other.UserID.Hex())})
	requireKind(t, err, KindForbidden)
	_, err = svc.Update(context.Background(), admin, id, ProductPatch{VendorID: ptr(buyer.UserID.Hex())})
	requireKind(t, err, KindValidation)
	_, err = svc.Update(context.Background(), admin, id, ProductPatch{VendorID: ptr(primitive.NewObjectID().Hex())})
	requireKind(t, err, KindValidation)
	unchanged, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, owner.UserID, unchanged.VendorID)

	updated, err = svc.Update(context.Background(), admin, id, ProductPatch{VendorID: ptr(other.UserID.Hex())})
	require.NoError(t, err)
	require.Equal(t, other.UserID, updated.VendorID)

	_, err = svc.Update(context.Background(), admin, id, ProductPatch{Price: ptr(-1.0)})
	requireKind(t, err, KindValidation)
	_, err = svc.Update(context.Background(), admin, id, ProductPatch{Status: ptr("gone")})
	requireKind(t, err, KindValidation)
	_, err = svc.Update(context.Background(), admin, primitive.NewObjectID().Hex(), ProductPatch{})
	requireKind(t, err, KindNotFound)
}

func TestProductDelete(t *testing.T) {
	f := newFixture()
	owner := f.account(t, models.RoleVendor, "v@example.com", "pw")
	other := f.account(t, models.RoleVendor, "v2@example.com", "pw")
	p := f.product(t, owner.UserID, "Robot", 10, 5)
	svc := NewProductService(f.products, f.users, nil)

	requireKind(t, svc.Delete(context.Background(), other, p.ID.Hex()), KindForbidden)
	require.NoError(t, svc.Delete(context.Background(), owner, p.ID.Hex()))
	_, err := svc.Get(context.Background(), p.ID.Hex())
	requireKind(t, err, KindNotFound)
	_, err = svc.Get(context.Background(), "bogus")
	requireKind(t, err, KindNotFound)
}

func TestProductAddImages(t *testing.T) {
	f := newFixture()
	owner := f.account(t, models.RoleVendor, "v@example.com", "pw")
	other := f.account(t, models.RoleVendor, "v2@example.com", "pw")
	p := f.product(t, owner.UserID, "Robot", 10, 5)
	uploader := &fakeUploader{}
	svc := NewProductService(f.products, f.users, uploader)

	files := []ImageFile{
		{Reader: strings.NewReader("front.png"), ContentType: "image/png"},
		{Reader: strings.NewReader("back.jpg"), ContentType: "image/jpeg"},
	}
	updated, err := svc.AddImages(context.Background(), owner, p.ID.Hex(), files)
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://storage.example/products/" + p.ID.Hex() + "/front.png",
		"https://storage.example/products/" + p.ID.Hex() + "/back.jpg",
	}, updated.Images)

	_, err = svc.AddImages(context.Background(), other, p.ID.Hex(), files)
	requireKind(t, err, KindForbidden)
	_, err = svc.AddImages(context.Background(), owner, p.ID.Hex(), nil)
	requireKind(t, err, KindValidation)

	uploader.err = errors.New("bucket gone")
	_, err = svc.AddImages(context.Background(), owner, p.ID.Hex(), []ImageFile{{Reader: strings.NewReader("x")}})
	requireKind(t, err, KindInternal)

	_, err = NewProductService(f.products, f.users, nil).AddImages(context.Background(), owner, p.ID.Hex(), files)
	requireKind(t, err, KindInternal)
}

// The sweep follows the stock counter and leaves discontinued products alone.
func TestSweepStockStatus(t *testing.T) {
	f := newFixture()
	vendor := primitive.NewObjectID()
	empty := f.product(t, vendor, "Empty", 1, 0)
	restocked := f.product(t, vendor, "Restocked", 1, 4)
	_, err := f.products.Update(context.Background(), restocked.ID, repositoryStatusUpdate(models.ProductOutOfStock))
	require.NoError(t, err)
	gone := f.product(t, vendor, "Gone", 1, 0)
	_, err = f.products.Update(context.Background(), gone.ID, repositoryStatusUpdate(models.ProductDiscontinued))
	require.NoError(t, err)

	svc := NewProductService(f.products, f.users, nil)
	n, err := svc.SweepStockStatus(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	for id, want := range map[primitive.ObjectID]models.ProductStatus{
		empty.ID:     models.ProductOutOfStock,
		restocked.ID: models.ProductAvailable,
		gone.ID:      models.ProductDiscontinued,
	} {
		p, err := f.products.FindByID(context.Background(), id)
		require.NoError(t, err)
		require.Equal(t, want, p.Status, p.Name)
	}
}
