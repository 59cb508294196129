package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"chorescape-server/models"
	"chorescape-server/services"
	"chorescape-server/types"
)

type adminShopHandler struct {
	db       *gorm.DB
	uploader *services.Uploader
}

func RegisterAdminShopRoutes(admin *gin.RouterGroup, d *Deps) {
	h := &adminShopHandler{db: d.DB, uploader: d.Uploader}

	shop := admin.Group("/shop")
	shop.GET("/categories", h.listCategories)
	shop.POST("/categories", h.createCategory)
	shop.PATCH("/categories/:id", h.updateCategory)
	shop.DELETE("/categories/:id", h.deleteCategory)

	shop.GET("/products", h.listProducts)
	shop.GET("/products/:id", h.getProduct)
	shop.POST("/products", h.createProduct)
	shop.PATCH("/products/:id", h.updateProduct)
	shop.DELETE("/products/:id", h.deleteProduct)

	orders := admin.Group("/orders")
	orders.GET("", h.listOrders)
	orders.GET("/:id", h.getOrder)
	orders.PATCH("/:id/status", h.updateOrderStatus)
}

type categoryRequest struct {
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	IsActive *bool   `json:"isActive"`
}

func (h *adminShopHandler) listCategories(c *gin.Context) {
	var categories []models.ProductCategory
	err := h.db.Preload("Products").Order("name ASC").Find(&categories).Error
	if err != nil {
		fail(c, types.Internal("Failed to load categories", err))
		return
	}
	respond(c, http.StatusOK, "Categories retrieved successfully", categories)
}

func (h *adminShopHandler) createCategory(c *gin.Context) {
	var req categoryRequest
	if !bind(c, &req) {
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" || req.Slug == nil || strings.TrimSpace(*req.Slug) == "" {
		fail(c, types.Validation("Name and slug are required"))
		return
	}

	slug := strings.ToLower(strings.TrimSpace(*req.Slug))
	if appErr := validateSlug(slug); appErr != nil {
		fail(c, appErr)
		return
	}

	var count int64
	h.db.Model(&models.ProductCategory{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		fail(c, types.Conflict("Category with this slug already exists"))
		return
	}

	category := models.ProductCategory{
		Name:     strings.TrimSpace(*req.Name),
		Slug:     slug,
		IsActive: true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := h.db.Create(&category).Error; err != nil {
		fail(c, types.Internal("Failed to create category", err))
		return
	}
	respond(c, http.StatusCreated, "Category created successfully", category)
}

func (h *adminShopHandler) updateCategory(c *gin.Context) {
	var req categoryRequest
	if !bind(c, &req) {
		return
	}

	var category models.ProductCategory
	err := h.db.First(&category, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Category"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load category", err))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*req.Slug))
		if appErr := validateSlug(slug); appErr != nil {
			fail(c, appErr)
			return
		}
		var count int64
		h.db.Model(&models.ProductCategory{}).Where("slug = ? AND id <> ?", slug, category.ID).Count(&count)
		if count > 0 {
			fail(c, types.Conflict("Category with this slug already exists"))
			return
		}
		updates["slug"] = slug
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := h.db.Model(&category).Updates(updates).Error; err != nil {
			fail(c, types.Internal("Failed to update category", err))
			return
		}
	}
	respond(c, http.StatusOK, "Category updated successfully", category)
}

func (h *adminShopHandler) deleteCategory(c *gin.Context) {
	var category models.ProductCategory
	err := h.db.First(&category, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Category"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load category", err))
		return
	}

	var productCount int64
	h.db.Model(&models.Product{}).Where("category_id = ?", category.ID).Count(&productCount)
	if productCount > 0 {
		fail(c, types.Validation("Cannot delete category with %d product(s). Please remove or reassign products first.", productCount))
		return
	}

	if err := h.db.Delete(&category).Error; err != nil {
		fail(c, types.Internal("Failed to delete category", err))
		return
	}
	respond(c, http.StatusOK, "Category deleted successfully", nil)
}

type productRequest struct {
	Name        *string  `json:"name"`
	Slug        *string  `json:"slug"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	CategoryID  *string  `json:"categoryId"`
	ImageURL    *string  `json:"imageUrl"`
	ImageData   *string  `json:"imageData"`
	IsActive    *bool    `json:"isActive"`
}

// resolveImage prefers an uploaded base64 payload over a raw URL.
func (h *adminShopHandler) resolveImage(c *gin.Context, req *productRequest) (*string, bool) {
	if req.ImageData != nil && strings.TrimSpace(*req.ImageData) != "" {
		url, appErr := h.uploader.Upload(c.Request.Context(), *req.ImageData, "shop/products")
		if appErr != nil {
			fail(c, appErr)
			return nil, false
		}
		return &url, true
	}
	return req.ImageURL, true
}

func (h *adminShopHandler) listProducts(c *gin.Context) {
	var products []models.Product
	err := h.db.Preload("Category").Order("name ASC").Find(&products).Error
	if err != nil {
		fail(c, types.Internal("Failed to load products", err))
		return
	}
	respond(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *adminShopHandler) getProduct(c *gin.Context) {
	var product models.Product
	err := h.db.Preload("Category").First(&product, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Product"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load product", err))
		return
	}
	respond(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *adminShopHandler) createProduct(c *gin.Context) {
	var req productRequest
	if !bind(c, &req) {
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" ||
		req.Slug == nil || strings.TrimSpace(*req.Slug) == "" || req.Price == nil {
		fail(c, types.Validation("Name, slug, and price are required"))
		return
	}
	if *req.Price < 0 {
		fail(c, types.Validation("Price must be a valid positive number"))
		return
	}

	slug := strings.ToLower(strings.TrimSpace(*req.Slug))
	if appErr := validateSlug(slug); appErr != nil {
		fail(c, appErr)
		return
	}

	var count int64
	h.db.Model(&models.Product{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		fail(c, types.Conflict("Product with this slug already exists"))
		return
	}

	if req.CategoryID != nil && *req.CategoryID != "" {
		var catCount int64
		h.db.Model(&models.ProductCategory{}).Where("id = ?", *req.CategoryID).Count(&catCount)
		if catCount == 0 {
			fail(c, types.NotFound("Category"))
			return
		}
	}

	imageURL, ok := h.resolveImage(c, &req)
	if !ok {
		return
	}

	product := models.Product{
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(*req.Name),
		Slug:        slug,
		Description: req.Description,
		Price:       *req.Price,
		ImageURL:    imageURL,
		IsActive:    true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.db.Create(&product).Error; err != nil {
		fail(c, types.Internal("Failed to create product", err))
		return
	}
	respond(c, http.StatusCreated, "Product created successfully", product)
}

func (h *adminShopHandler) updateProduct(c *gin.Context) {
	var req productRequest
	if !bind(c, &req) {
		return
	}

	var product models.Product
	err := h.db.First(&product, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Product"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load product", err))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*req.Slug))
		if appErr := validateSlug(slug); appErr != nil {
			fail(c, appErr)
			return
		}
		var count int64
		h.db.Model(&models.Product{}).Where("slug = ? AND id <> ?", slug, product.ID).Count(&count)
		if count > 0 {
			fail(c, types.Conflict("Product with this slug already exists"))
			return
		}
		updates["slug"] = slug
	}
	if req.Price != nil {
		if *req.Price < 0 {
			fail(c, types.Validation("Price must be a valid positive number"))
			return
		}
		updates["price"] = *req.Price
	}
	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			updates["category_id"] = nil
		} else {
			var catCount int64
			h.db.Model(&models.ProductCategory{}).Where("id = ?", *req.CategoryID).Count(&catCount)
			if catCount == 0 {
				fail(c, types.NotFound("Category"))
				return
			}
			updates["category_id"] = *req.CategoryID
		}
	}
	if req.Description != nil {
		updates["description"] = nilIfBlank(*req.Description)
	}
	if req.ImageData != nil || req.ImageURL != nil {
		imageURL, ok := h.resolveImage(c, &req)
		if !ok {
			return
		}
		updates["image_url"] = imageURL
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := h.db.Model(&product).Updates(updates).Error; err != nil {
			fail(c, types.Internal("Failed to update product", err))
			return
		}
	}
	respond(c, http.StatusOK, "Product updated successfully", product)
}

// deleteProduct deactivates products with order history instead of
// removing them so past order items keep resolving.
func (h *adminShopHandler) deleteProduct(c *gin.Context) {
	var product models.Product
	err := h.db.First(&product, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Product"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load product", err))
		return
	}

	var orderCount int64
	h.db.Model(&models.OrderItem{}).Where("product_id = ?", product.ID).Count(&orderCount)
	if orderCount > 0 {
		if err := h.db.Model(&product).Update("is_active", false).Error; err != nil {
			fail(c, types.Internal("Failed to deactivate product", err))
			return
		}
		respond(c, http.StatusOK, "Product deactivated (has order history)", product)
		return
	}

	if err := h.db.Delete(&product).Error; err != nil {
		fail(c, types.Internal("Failed to delete product", err))
		return
	}
	respond(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *adminShopHandler) listOrders(c *gin.Context) {
	query := h.db.Preload("Customer").Preload("Items.Product")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", strings.ToUpper(status))
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		fail(c, types.Internal("Failed to load orders", err))
		return
	}
	respond(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *adminShopHandler) getOrder(c *gin.Context) {
	var order models.Order
	err := h.db.Preload("Customer").Preload("Items.Product").
		First(&order, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Order"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load order", err))
		return
	}
	respond(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *adminShopHandler) updateOrderStatus(c *gin.Context) {
	var req models.StatusUpdateRequest
	if !bind(c, &req) {
		return
	}

	status := models.OrderStatus(strings.ToUpper(req.Status))
	switch status {
	case models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusFulfilled, models.OrderStatusCancelled:
	default:
		fail(c, types.Validation("Invalid order status"))
		return
	}

	var order models.Order
	err := h.db.First(&order, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Order"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load order", err))
		return
	}

	updates := map[string]interface{}{"status": status}
	if status == models.OrderStatusPaid {
		updates["payment_status"] = "paid"
	}
	if err := h.db.Model(&order).Updates(updates).Error; err != nil {
		fail(c, types.Internal("Failed to update order", err))
		return
	}
	respond(c, http.StatusOK, "Order status updated successfully", order)
}
