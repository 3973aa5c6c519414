// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/shoplite/backend/internal/models"
	"github.com/shoplite/backend/internal/utils"
)

type ProductService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	Name             string   `json:"name" validate:"required,min=3,max=255"`
	Description      string   `json:"description" validate:"required,min=10"`
	Category         string   `json:"category,omitempty"`
	Price            float64  `json:"price" validate:"required,gt=0"`
	StockQuantity    int      `json:"stock_quantity" validate:"min=0"`
	ImageURL         string   `json:"image_url,omitempty"`
	AdditionalImages []string `json:"additional_images,omitempty"`
	Offers           []string `json:"offers,omitempty"`
}

type UpdateProductRequest struct {
	Name             string   `json:"name,omitempty" validate:"omitempty,min=3,max=255"`
	Description      string   `json:"description,omitempty" validate:"omitempty,min=10"`
	Category         string   `json:"category,omitempty"`
	Price            *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	StockQuantity    *int     `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
	ImageURL         string   `json:"image_url,omitempty"`
	AdditionalImages []string `json:"additional_images,omitempty"`
	Offers           []string `json:"offers,omitempty"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	product := &models.Product{
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		Price:            req.Price,
		StockQuantity:    req.StockQuantity,
		ImageURL:         req.ImageURL,
		AdditionalImages: pq.StringArray(req.AdditionalImages),
		Offers:           pq.StringArray(req.Offers),
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *ProductService) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Reviews").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &product, nil
}

func (s *ProductService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.StockQuantity != nil {
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}
	if req.AdditionalImages != nil {
		updates["additional_images"] = pq.StringArray(req.AdditionalImages)
	}
	if req.Offers != nil {
		updates["offers"] = pq.StringArray(req.Offers)
	}

	if err := s.db.Model(&product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.db.Preload("Reviews").First(&product, "id = ?", id)

	return &product, nil
}

func (s *ProductService) DeleteProduct(id uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("product not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	// Soft delete; historical order items keep their snapshots.
	if err := s.db.Delete(&product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

func (s *ProductService) SearchProducts(params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{})

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price", "average_rating"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// AddReview stores a customer review and refreshes the product's
// aggregate rating in the same transaction.
func (s *ProductService) AddReview(productID uuid.UUID, user *models.User, req *CreateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var review *models.Review

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("product not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		review = &models.Review{
			ProductID:    productID,
			UserID:       &user.ID,
			CustomerName: user.FullName(),
			Rating:       req.Rating,
			Comment:      req.Comment,
		}

		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}

		var agg struct {
			Avg   float64
			Count int64
		}
		if err := tx.Model(&models.Review{}).
			Where("product_id = ?", productID).
			Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
			Scan(&agg).Error; err != nil {
			return fmt.Errorf("failed to aggregate reviews: %w", err)
		}

		if err := tx.Model(&product).Updates(map[string]interface{}{
			"average_rating": agg.Avg,
			"num_reviews":    agg.Count,
		}).Error; err != nil {
			return fmt.Errorf("failed to update rating: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return review, nil
}

func (s *ProductService) GetCategories() ([]string, error) {
	var categories []string
	if err := s.db.Model(&models.Product{}).
		Where("category != ''").
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	return categories, nil
}
