// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	Name             string         `json:"name" gorm:"size:255;not null;index"`
	Description      string         `json:"description" gorm:"type:text"`
	Category         string         `json:"category" gorm:"size:100;index"`
	Price            float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	StockQuantity    int            `json:"stock_quantity" gorm:"default:0"`
	ImageURL         string         `json:"image_url" gorm:"size:500"`
	AdditionalImages pq.StringArray `json:"additional_images" gorm:"type:text[]"`
	Offers           pq.StringArray `json:"offers" gorm:"type:text[]"`
	AverageRating    float64        `json:"average_rating" gorm:"type:decimal(3,2);default:0"`
	NumReviews       int64          `json:"num_reviews" gorm:"default:0"`

	// Relationships
	Reviews []Review `json:"reviews,omitempty" gorm:"foreignKey:ProductID"`
}

type Review struct {
	BaseModel
	ProductID    uuid.UUID  `json:"product_id" gorm:"type:uuid;not null;index"`
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	CustomerName string     `json:"customer_name" gorm:"size:200;not null"`
	Rating       int        `json:"rating" gorm:"not null"`
	Comment      string     `json:"comment" gorm:"type:text"`
}
