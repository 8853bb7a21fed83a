package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"marketplace-hub/services"

	"github.com/gin-gonic/gin"
)

const maxImagesPerUpload = 10

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

func queryInt(c *gin.Context, key string) int64 {
	n, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (h *ProductController) List(c *gin.Context) {
	page, err := h.products.List(c.Request.Context(), services.ProductQuery{
		Category: c.Query("category"),
		Vendor:   c.Query("vendor"),
		Search:   c.Query("search"),
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ProductController) Categories(c *gin.Context) {
	cats, err := h.products.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *ProductController) Get(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

type productRequest struct {
	Name           string            `json:"name"`
	Category       string            `json:"category"`
	Description    string            `json:"description"`
	Price          float64           `json:"price"`
	Quantity       int               `json:"quantity"`
	Images         []string          `json:"images"`
	Specifications map[string]string `json:"specifications"`
}

func (h *ProductController) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	product, err := h.products.Create(c.Request.Context(), p, services.ProductInput{
		Name:           req.Name,
		Category:       req.Category,
		Description:    req.Description,
		Price:          req.Price,
		Quantity:       req.Quantity,
		Images:         req.Images,
		Specifications: req.Specifications,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

type productPatchRequest struct {
	VendorID       *string           `json:"vendorId"`
	Name           *string           `json:"name"`
	Category       *string           `json:"category"`
	Description    *string           `json:"description"`
	Price          *float64          `json:"price"`
	Quantity       *int              `json:"quantity"`
	Images         *[]string         `json:"images"`
	Specifications map[string]string `json:"specifications"`
	Status         *string           `json:"status"`
}

func (h *ProductController) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req productPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	product, err := h.products.Update(c.Request.Context(), p, c.Param("id"), services.ProductPatch(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductController) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed successfully"})
}

// UploadImages accepts multipart files under the "images" field.
func (h *ProductController) UploadImages(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "Invalid multipart form")
		return
	}
	headers := form.File["images"]
	if len(headers) > maxImagesPerUpload {
		badRequest(c, "Too many images")
		return
	}

	files := make([]services.ImageFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			badRequest(c, "Cannot read uploaded file")
			return
		}
		defer func(f multipart.File) { _ = f.Close() }(f)
		files = append(files, services.ImageFile{Reader: f, ContentType: fh.Header.Get("Content-Type")})
	}

	product, err := h.products.AddImages(c.Request.Context(), p, c.Param("id"), files)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
