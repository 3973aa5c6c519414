// internal/models/order.go
package models

import (
	"github.com/google/uuid"
)

// ShippingAddress is embedded into Order; the column prefix keeps the
// order table flat instead of introducing a one-row address table.
type ShippingAddress struct {
	Address string `json:"address" gorm:"size:255;not null"`
	City    string `json:"city" gorm:"size:100;not null"`
	State   string `json:"state" gorm:"size:100;not null"`
	Zip     string `json:"zip" gorm:"size:20;not null"`
	Country string `json:"country" gorm:"size:100;not null"`
	Phone   string `json:"phone,omitempty" gorm:"size:30"`
}

type Order struct {
	BaseModel
	Reference       string          `json:"reference" gorm:"size:30;uniqueIndex"`
	UserID          uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	TotalAmount     float64         `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);default:'Pending';index"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:shipping_"`

	// Relationships
	User  User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem carries the price the customer saw at checkout; later
// catalog edits must not change historical totals.
type OrderItem struct {
	BaseModel
	OrderID      uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Quantity     int       `json:"quantity" gorm:"not null"`
	PriceAtOrder float64   `json:"price_at_order" gorm:"type:decimal(10,2);not null"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
