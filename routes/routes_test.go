package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace-hub/controllers"
	"marketplace-hub/metrics"
	"marketplace-hub/repository"
	"marketplace-hub/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubImages struct{}

func (stubImages) Upload(_ context.Context, _ io.Reader, _, folder string) (string, error) {
	return "https://storage.example/" + folder + "/img.png", nil
}

type app struct {
	t       *testing.T
	engine  *gin.Engine
	auth    *services.AuthService
	healthy error
}

func newApp(t *testing.T) *app {
	gin.SetMode(gin.TestMode)

	users := repository.NewMemoryUserRepository()
	vendors := repository.NewMemoryVendorRepository()
	products := repository.NewMemoryProductRepository()
	orders := repository.NewMemoryOrderRepository()
	requests := repository.NewMemoryRequestItemRepository()
	m := metrics.New()

	auth := services.NewAuthService(users, vendors, services.NewTokenManager("route-test", time.Hour))
	a := &app{t: t, engine: gin.New(), auth: auth}

	SetupRoutes(a.engine, Handlers{
		Auth:     controllers.NewAuthController(auth),
		Users:    controllers.NewUserController(auth),
		Products: controllers.NewProductController(services.NewProductService(products, users, stubImages{})),
		Orders:   controllers.NewOrderController(services.NewOrderService(products, orders, users, services.WithObserver(m))),
		Vendors:  controllers.NewVendorController(services.NewVendorService(vendors)),
		Admin:    controllers.NewAdminController(services.NewAdminService(users, vendors, products, orders, requests)),
		Requests: controllers.NewRequestController(services.NewRequestService(requests)),
	}, Options{
		ServiceName:   "marketplace-test",
		Logger:        zap.NewNop(),
		Metrics:       m,
		Authenticator: auth,
		CORSOrigins:   []string{"http://localhost:3000"},
		Health:        func(context.Context) error { return a.healthy },
	})
	return a
}

func (a *app) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *app) register(email, role string) string {
	a.t.Helper()
	rec := a.do("POST", "/api/auth/register", "", gin.H{
		"name": "Someone", "email": email, "password": "secret", "phone": "555-0100", "role": role,
		"businessName": "Shop of " + email,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]any](a.t, rec)["token"].(string)
}

func (a *app) adminToken() string {
	a.t.Helper()
	res, err := a.auth.CreateAdmin(context.Background(), services.RegisterInput{
		Name: "Root", Email: "root@example.com", Password: "secret", Phone: "555-0199",
	})
	require.NoError(a.t, err)
	return res.Token
}

// Walks the main flow: a vendor lists a product, a buyer orders it, the vendor ships it.
func TestMarketplaceFlow(t *testing.T) {
	a := newApp(t)
	vendor := a.register("shop@example.com", "vendor")
	buyer := a.register("buyer@example.com", "")

	rec := a.do("POST", "/api/products", vendor, gin.H{"name": "Robot", "category": "toys", "price": 100, "quantity": 5})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	productID := decode[map[string]any](t, rec)["_id"].(string)

	rec = a.do("POST", "/api/products", buyer, gin.H{"name": "Fake", "category": "toys", "price": 1})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do("GET", "/api/products?search=rob&page=1&limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[map[string]any](t, rec)
	require.EqualValues(t, 1, page["total"])
	require.EqualValues(t, 1, page["totalPages"])

	rec = a.do("POST", "/api/orders", buyer, gin.H{
		"items":           []gin.H{{"productId": productID, "quantity": 3}},
		"paymentMethod":   "UPI",
		"shippingAddress": gin.H{"street": "1 Main St", "city": "Pune"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[map[string]any](t, rec)
	require.EqualValues(t, 300, order["totalAmount"])
	require.Equal(t, "completed", order["paymentStatus"])
	require.Equal(t, "pending", order["orderStatus"])
	orderID := order["_id"].(string)

	rec = a.do("GET", "/api/products/"+productID, "", nil)
	require.EqualValues(t, 2, decode[map[string]any](t, rec)["quantity"])

	rec = a.do("POST", "/api/orders", buyer, gin.H{
		"items":         []gin.H{{"productId": productID, "quantity": 3}},
		"paymentMethod": "Cash",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]any](t, rec)
	require.Equal(t, "Insufficient quantity for product: Robot", body["message"])
	require.Equal(t, productID, body["productId"])

	rec = a.do("GET", "/api/orders/myorders", buyer, nil)
	require.Len(t, decode[[]any](t, rec), 1)

	rec = a.do("GET", "/api/vendors/orders", vendor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]any](t, rec), 1)

	rec = a.do("PUT", "/api/vendors/orders/"+orderID+"/status", vendor, gin.H{"orderStatus": "shipped"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "shipped", decode[map[string]any](t, rec)["orderStatus"])

	rec = a.do("PUT", "/api/orders/"+orderID+"/status", buyer, gin.H{"orderStatus": "delivered"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do("GET", "/api/orders/"+orderID, vendor, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthRoutes(t *testing.T) {
	a := newApp(t)
	token := a.register("jane@example.com", "")

	rec := a.do("POST", "/api/auth/register", "", gin.H{"name": "J", "email": "JANE@example.com", "password": "x", "phone": "1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"message":"User already exists"}`, rec.Body.String())

	wrong := a.do("POST", "/api/auth/login", "", gin.H{"email": "jane@example.com", "password": "nope"})
	unknown := a.do("POST", "/api/auth/login", "", gin.H{"email": "ghost@example.com", "password": "secret"})
	require.Equal(t, http.StatusUnauthorized, wrong.Code)
	require.Equal(t, wrong.Code, unknown.Code)
	require.Equal(t, wrong.Body.String(), unknown.Body.String())

	rec = a.do("POST", "/api/auth/login", "", gin.H{"email": "Jane@Example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do("GET", "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[map[string]map[string]any](t, rec)
	require.Equal(t, "jane@example.com", profile["user"]["email"])
	require.NotContains(t, profile["user"], "password")

	rec = a.do("GET", "/api/auth/profile", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do("PUT", "/api/users/password", token, gin.H{"oldPassword": "secret", "newPassword": "better"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do("PUT", "/api/users/profile", token, gin.H{"name": "Jane D"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Jane D", decode[map[string]any](t, rec)["name"])
}

// Admin routes are closed to everyone but administrators, and deactivation locks the account out.
func TestAdminRoutes(t *testing.T) {
	a := newApp(t)
	admin := a.adminToken()
	buyer := a.register("buyer@example.com", "")
	a.register("shop@example.com", "vendor")

	rec := a.do("GET", "/api/admin/stats", buyer, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do("GET", "/api/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	require.EqualValues(t, 1, stats["totalUsers"])
	require.EqualValues(t, 1, stats["totalVendors"])

	rec = a.do("GET", "/api/admin/vendors", admin, nil)
	vendors := decode[[]map[string]any](t, rec)
	require.Len(t, vendors, 1)
	vendorID := vendors[0]["_id"].(string)

	rec = a.do("PUT", "/api/admin/vendors/"+vendorID+"/verify", admin, gin.H{"isVerified": true})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Vendor verification updated", decode[map[string]any](t, rec)["message"])

	rec = a.do("GET", "/api/admin/users", admin, nil)
	var buyerID string
	for _, u := range decode[[]map[string]any](t, rec) {
		if u["email"] == "buyer@example.com" {
			buyerID = u["_id"].(string)
		}
	}
	require.NotEmpty(t, buyerID)

	rec = a.do("PUT", "/api/admin/users/"+buyerID+"/status", admin, gin.H{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.do("PUT", "/api/admin/users/"+buyerID+"/status", admin, gin.H{"isActive": false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do("GET", "/api/orders/myorders", buyer, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestRoutes(t *testing.T) {
	a := newApp(t)
	admin := a.adminToken()
	buyer := a.register("buyer@example.com", "")

	rec := a.do("POST", "/api/requests", buyer, gin.H{"itemName": "Vintage robot", "category": "toys"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[map[string]any](t, rec)["_id"].(string)

	rec = a.do("GET", "/api/requests/mine", buyer, nil)
	require.Len(t, decode[[]any](t, rec), 1)

	rec = a.do("PUT", "/api/admin/requests/"+id+"/status", admin, gin.H{"status": "fulfilled"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "fulfilled", decode[map[string]any](t, rec)["status"])
}

func TestProductImageUpload(t *testing.T) {
	a := newApp(t)
	vendor := a.register("shop@example.com", "vendor")
	rec := a.do("POST", "/api/products", vendor, gin.H{"name": "Robot", "category": "toys", "price": 10, "quantity": 1})
	productID := decode[map[string]any](t, rec)["_id"].(string)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("images", "robot.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/products/"+productID+"/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+vendor)
	res := httptest.NewRecorder()
	a.engine.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	images := decode[map[string]any](t, res)["images"].([]any)
	require.Equal(t, []any{"https://storage.example/products/" + productID + "/img.png"}, images)
}

func TestOperationalRoutes(t *testing.T) {
	a := newApp(t)

	rec := a.do("GET", "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	a.healthy = errors.New("mongo down")
	rec = a.do("GET", "/healthz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = a.do("GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `marketplace_http_requests_total{method="GET",route="/healthz",status="200"} 1`)

	req := httptest.NewRequest("OPTIONS", "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	res := httptest.NewRecorder()
	a.engine.ServeHTTP(res, req)
	require.Equal(t, "http://localhost:3000", res.Header().Get("Access-Control-Allow-Origin"))
}
