// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplite/backend/internal/models"
	"github.com/shoplite/backend/internal/utils"
)

type OrderService struct {
	db                  *gorm.DB
	auditService        *AuditService
	notificationService *NotificationService
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" validate:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shipping_address" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

type OrderSearchParams struct {
	utils.PaginationParams
	CustomerEmail string `json:"customer_email,omitempty"`
}

// OrderPage mirrors what the storefront admin table expects.
type OrderPage struct {
	Orders      []models.Order `json:"orders"`
	Page        int            `json:"page"`
	Pages       int            `json:"pages"`
	TotalOrders int64          `json:"total_orders"`
}

func NewOrderService(db *gorm.DB, auditService *AuditService, notificationService *NotificationService) *OrderService {
	return &OrderService{
		db:                  db,
		auditService:        auditService,
		notificationService: notificationService,
	}
}

// CreateOrder places an order for the given user. Stock checks, the
// per-item decrements and the order insert all run in one transaction,
// so a failing line item leaves every product untouched.
func (s *OrderService) CreateOrder(userID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if len(req.Items) == 0 {
		return nil, errors.New("no order items")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	reference, err := utils.GenerateOrderReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate order reference: %w", err)
	}

	order := &models.Order{
		Reference:       reference,
		UserID:          userID,
		Status:          models.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var total float64
		items := make([]models.OrderItem, 0, len(req.Items))

		for _, item := range req.Items {
			var product models.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product not found: %s", item.ProductID)
				}
				return fmt.Errorf("database error: %w", err)
			}

			if product.StockQuantity < item.Quantity {
				return fmt.Errorf("not enough stock for %s, only %d left", product.Name, product.StockQuantity)
			}

			// Guarded decrement so concurrent checkouts cannot drive
			// stock below zero.
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", product.ID, item.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
			if result.Error != nil {
				return fmt.Errorf("failed to update stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("not enough stock for %s, only %d left", product.Name, product.StockQuantity)
			}

			items = append(items, models.OrderItem{
				ProductID:    product.ID,
				Quantity:     item.Quantity,
				PriceAtOrder: product.Price,
			})
			total += product.Price * float64(item.Quantity)
		}

		order.TotalAmount = total
		order.Items = items

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	s.db.Preload("Items.Product").First(order, "id = ?", order.ID)

	if s.notificationService != nil {
		go s.notificationService.SendOrderConfirmation(&user, order)
	}

	return order, nil
}

// GetMyOrders returns the caller's orders, newest first.
func (s *OrderService) GetMyOrders(userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Where("user_id = ?", userID).
		Preload("Items.Product").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, nil
}

// GetAllOrders lists orders for the admin table. The customer email
// filter is resolved through the users table; no matching customer
// means an empty page, not an error.
func (s *OrderService) GetAllOrders(params OrderSearchParams) (*OrderPage, error) {
	query := s.db.Model(&models.Order{}).
		Preload("User").Preload("Items.Product")

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	if params.CustomerEmail != "" {
		var userIDs []uuid.UUID
		emailTerm := "%" + strings.ToLower(params.CustomerEmail) + "%"
		if err := s.db.Model(&models.User{}).
			Where("LOWER(email) LIKE ?", emailTerm).
			Pluck("id", &userIDs).Error; err != nil {
			return nil, fmt.Errorf("failed to look up customers: %w", err)
		}

		if len(userIDs) == 0 {
			return &OrderPage{
				Orders:      []models.Order{},
				Page:        params.Page,
				Pages:       0,
				TotalOrders: 0,
			}, nil
		}

		query = query.Where("user_id IN ?", userIDs)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params.PaginationParams)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	result := utils.CreatePaginationResult(orders, total, params.PaginationParams)

	return &OrderPage{
		Orders:      orders,
		Page:        result.Page,
		Pages:       result.TotalPages,
		TotalOrders: total,
	}, nil
}

// GetOrder returns an order readable by its owner or an admin.
func (s *OrderService) GetOrder(orderID uuid.UUID, requesterID uuid.UUID, isAdmin bool) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("User").Preload("Items.Product").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if order.UserID != requesterID && !isAdmin {
		return nil, errors.New("not authorized to view this order")
	}

	return &order, nil
}

// UpdateOrderStatus moves an order to any known status. Transitions are
// deliberately unrestricted beyond enum membership.
func (s *OrderService) UpdateOrderStatus(orderID uuid.UUID, actorID uuid.UUID, req *UpdateOrderStatusRequest) (*models.Order, error) {
	if !models.IsValidOrderStatus(req.Status) {
		return nil, fmt.Errorf("invalid order status: %s", req.Status)
	}

	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	oldStatus := order.Status
	order.Status = req.Status

	if err := s.db.Save(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if s.auditService != nil {
		go s.auditService.Record(&actorID, models.AuditActionOrderStatusSet, "order", &order.ID,
			models.JSONB{"status": string(oldStatus)},
			models.JSONB{"status": string(req.Status)})
	}

	s.db.Preload("User").Preload("Items.Product").First(&order, "id = ?", order.ID)

	if s.notificationService != nil && order.User.Email != "" {
		go s.notificationService.SendOrderStatusUpdate(&order.User, &order)
	}

	return &order, nil
}

// DeleteOrder removes an order and returns its line items to stock.
// Items whose product has since been deleted are skipped.
func (s *OrderService) DeleteOrder(orderID uuid.UUID, actorID uuid.UUID) error {
	var order models.Order
	if err := s.db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("order not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			result := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity))
			if result.Error != nil {
				return fmt.Errorf("failed to restore stock: %w", result.Error)
			}
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}

		if err := tx.Delete(&order).Error; err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	if s.auditService != nil {
		go s.auditService.Record(&actorID, models.AuditActionOrderDelete, "order", &order.ID,
			models.JSONB{"status": string(order.Status), "total_amount": order.TotalAmount}, nil)
	}

	return nil
}

// DashboardStats aggregates the numbers shown on the admin landing page.
type DashboardStats struct {
	TotalUsers     int64            `json:"total_users"`
	TotalProducts  int64            `json:"total_products"`
	TotalOrders    int64            `json:"total_orders"`
	TotalRevenue   float64          `json:"total_revenue"`
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	LowStockCount  int64            `json:"low_stock_count"`
}

func (s *OrderService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{
		OrdersByStatus: make(map[string]int64),
	}

	s.db.Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.Model(&models.Product{}).Count(&stats.TotalProducts)
	s.db.Model(&models.Order{}).Count(&stats.TotalOrders)

	if err := s.db.Model(&models.Order{}).
		Where("status != ?", models.OrderStatusCancelled).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return nil, fmt.Errorf("failed to compute revenue: %w", err)
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := s.db.Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to group orders by status: %w", err)
	}
	for _, row := range rows {
		stats.OrdersByStatus[row.Status] = row.Count
	}

	s.db.Model(&models.Product{}).Where("stock_quantity < ?", 10).Count(&stats.LowStockCount)

	return stats, nil
}
