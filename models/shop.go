package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductCategory struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Slug      string    `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	IsActive  bool      `json:"isActive" gorm:"default:true"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

func (ProductCategory) TableName() string {
	return "product_categories"
}

func (c *ProductCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	CategoryID  *string   `json:"categoryId" gorm:"size:36;index"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Slug        string    `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Description *string   `json:"description" gorm:"size:2000"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	ImageURL    *string   `json:"imageUrl" gorm:"size:500"`
	IsActive    bool      `json:"isActive" gorm:"default:true"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Category *ProductCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusFulfilled OrderStatus = "FULFILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type Order struct {
	ID            string      `json:"id" gorm:"primaryKey;size:36"`
	CustomerID    string      `json:"customerId" gorm:"size:36;not null;index"`
	Status        OrderStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';check:status IN ('PENDING','PAID','FULFILLED','CANCELLED')"`
	Subtotal      float64     `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	TaxAmount     float64     `json:"taxAmount" gorm:"type:decimal(10,2);not null"`
	TotalAmount   float64     `json:"totalAmount" gorm:"type:decimal(10,2);not null"`
	PaymentStatus string      `json:"paymentStatus" gorm:"size:50;default:'pending'"`
	CreatedAt     time.Time   `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time   `json:"updatedAt" gorm:"autoUpdateTime"`

	Customer *Profile    `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items    []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem snapshots the unit price at purchase time.
type OrderItem struct {
	ID        string  `json:"id" gorm:"primaryKey;size:36"`
	OrderID   string  `json:"orderId" gorm:"size:36;not null;index"`
	ProductID string  `json:"productId" gorm:"size:36;not null"`
	Quantity  int     `json:"quantity" gorm:"not null"`
	Price     float64 `json:"price" gorm:"type:decimal(10,2);not null"`
	Subtotal  float64 `json:"subtotal" gorm:"type:decimal(10,2);not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
