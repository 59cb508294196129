package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"chorescape-server/middleware"
	"chorescape-server/models"
	"chorescape-server/services"
	"chorescape-server/types"
)

// taxRate is the Saskatchewan combined rate applied to shop orders.
const taxRate = 0.13

type shopHandler struct {
	db *gorm.DB
}

func RegisterShopRoutes(api *gin.RouterGroup, d *Deps) {
	h := &shopHandler{db: d.DB}

	grp := api.Group("/shop")
	grp.GET("/categories", h.categories)
	grp.GET("/products", h.products)
	grp.GET("/products/:id", h.product)

	grp.Use(middleware.RequireAuth(d.Cfg.Identity.JWTSecret))
	grp.POST("/orders", h.createOrder)
	grp.GET("/orders/mine", h.myOrders)
}

func (h *shopHandler) categories(c *gin.Context) {
	var categories []models.ProductCategory
	err := h.db.Where("is_active = ?", true).Order("name ASC").Find(&categories).Error
	if err != nil {
		fail(c, types.Internal("Failed to load categories", err))
		return
	}
	respond(c, http.StatusOK, "Categories retrieved successfully", categories)
}

func (h *shopHandler) products(c *gin.Context) {
	query := h.db.Where("is_active = ?", true)
	if categoryID := c.Query("categoryId"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var products []models.Product
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		fail(c, types.Internal("Failed to load products", err))
		return
	}
	respond(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *shopHandler) product(c *gin.Context) {
	var product models.Product
	err := h.db.Where("id = ? AND is_active = ?", c.Param("id"), true).First(&product).Error
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

type orderRequest struct {
	Items []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// createOrder snapshots current prices into order items and applies the
// provincial tax to the subtotal.
func (h *shopHandler) createOrder(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	profile, appErr := services.EnsureProfile(h.db, user)
	if appErr != nil {
		fail(c, appErr)
		return
	}

	var req orderRequest
	if !bind(c, &req) {
		return
	}
	if len(req.Items) == 0 {
		fail(c, types.Validation("Order must contain at least one item"))
		return
	}

	productIDs := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	var products []models.Product
	err := h.db.Where("id IN ? AND is_active = ?", productIDs, true).Find(&products).Error
	if err != nil {
		fail(c, types.Internal("Failed to load products", err))
		return
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var subtotal float64
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			fail(c, types.Validation("One or more products not found or inactive"))
			return
		}

		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if quantity < 1 {
			fail(c, types.Validation("Invalid quantity for product %s", product.Name))
			return
		}

		itemSubtotal := product.Price * float64(quantity)
		subtotal += itemSubtotal
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Quantity:  quantity,
			Price:     product.Price,
			Subtotal:  itemSubtotal,
		})
	}

	taxAmount := subtotal * taxRate
	order := models.Order{
		CustomerID:    profile.ID,
		Status:        models.OrderStatusPending,
		Subtotal:      subtotal,
		TaxAmount:     taxAmount,
		TotalAmount:   subtotal + taxAmount,
		PaymentStatus: "pending",
		Items:         items,
	}

	if err := h.db.Create(&order).Error; err != nil {
		fail(c, types.Internal("Failed to create order", err))
		return
	}

	// TODO: send order confirmation email once a mail provider is wired up.

	if err := h.db.Preload("Items.Product").First(&order, "id = ?", order.ID).Error; err != nil {
		fail(c, types.Internal("Failed to load order", err))
		return
	}
	respond(c, http.StatusCreated, "Order created successfully", order)
}

func (h *shopHandler) myOrders(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	profile, appErr := services.EnsureProfile(h.db, user)
	if appErr != nil {
		fail(c, appErr)
		return
	}

	var orders []models.Order
	err := h.db.Where("customer_id = ?", profile.ID).
		Preload("Items.Product").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		fail(c, types.Internal("Failed to load orders", err))
		return
	}
	respond(c, http.StatusOK, "Orders retrieved successfully", orders)
}
