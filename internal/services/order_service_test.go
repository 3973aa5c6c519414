// internal/services/order_service_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplite/backend/internal/models"
	"github.com/shoplite/backend/internal/utils"
)

func testShippingAddress() models.ShippingAddress {
	return models.ShippingAddress{
		Address: "1 Main St",
		City:    "Springfield",
		State:   "IL",
		Zip:     "62701",
		Country: "USA",
	}
}

func TestCreateOrderComputesTotalFromSnapshots(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, NewAuditService(db), nil)

	user := createTestUser(t, db, "buyer@example.com", models.UserRoleCustomer)
	laptop := createTestProduct(t, db, "Laptop", 1000.00, 10)
	mouse := createTestProduct(t, db, "Mouse", 25.50, 40)

	order, err := svc.CreateOrder(user.ID, &CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: laptop.ID, Quantity: 2},
			{ProductID: mouse.ID, Quantity: 3},
		},
		ShippingAddress: testShippingAddress(),
	})
	require.NoError(t, err)

	assert.InDelta(t, 2*1000.00+3*25.50, order.TotalAmount, 0.001)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.NotEmpty(t, order.Reference)
	require.Len(t, order.Items, 2)

	// Snapshots survive later price edits.
	require.NoError(t, db.Model(laptop).Update("price", 1.00).Error)
	var reloaded models.Order
	require.NoError(t, db.Preload("Items").First(&reloaded, "id = ?", order.ID).Error)
	for _, item := range reloaded.Items {
		if item.ProductID == laptop.ID {
			assert.InDelta(t, 1000.00, item.PriceAtOrder, 0.001)
		}
	}

	var updatedLaptop, updatedMouse models.Product
	require.NoError(t, db.First(&updatedLaptop, "id = ?", laptop.ID).Error)
	require.NoError(t, db.First(&updatedMouse, "id = ?", mouse.ID).Error)
	assert.Equal(t, 8, updatedLaptop.StockQuantity)
	assert.Equal(t, 37, updatedMouse.StockQuantity)
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, nil, nil)

	user := createTestUser(t, db, "buyer@example.com", models.UserRoleCustomer)
	first := createTestProduct(t, db, "Keyboard", 45.00, 20)
	scarce := createTestProduct(t, db, "Monitor", 250.00, 1)

	_, err := svc.CreateOrder(user.ID, &CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: first.ID, Quantity: 5},
			{ProductID: scarce.ID, Quantity: 2},
		},
		ShippingAddress: testShippingAddress(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Monitor")
	assert.Contains(t, err.Error(), "only 1 left")

	// The earlier item's decrement must be rolled back too.
	var reloadedFirst, reloadedScarce models.Product
	require.NoError(t, db.First(&reloadedFirst, "id = ?", first.ID).Error)
	require.NoError(t, db.First(&reloadedScarce, "id = ?", scarce.ID).Error)
	assert.Equal(t, 20, reloadedFirst.StockQuantity)
	assert.Equal(t, 1, reloadedScarce.StockQuantity)

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	assert.Zero(t, orderCount)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, nil, nil)

	user := createTestUser(t, db, "buyer@example.com", models.UserRoleCustomer)
	missingID := uuid.New()

	_, err := svc.CreateOrder(user.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: missingID, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product not found")
	assert.Contains(t, err.Error(), missingID.String())
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, nil, nil)

	user := createTestUser(t, db, "buyer@example.com", models.UserRoleCustomer)

	_, err := svc.CreateOrder(user.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{},
		ShippingAddress: testShippingAddress(),
	})
	assert.Error(t, err)
}

func TestGetMyOrdersNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, nil, nil)

	user := createTestUser(t, db, "buyer@example.com", models.UserRoleCustomer)
	other := createTestUser(t, db, "other@example.com", models.UserRoleCustomer)
	product := createTestProduct(t, db, "Tablet", 199.00, 100)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		order, err := svc.CreateOrder(user.ID, &CreateOrderRequest{
			Items:           []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
			ShippingAddress: testShippingAddress(),
		})
		require.NoError(t, err)
		// Spread creation times so the sort is deterministic.
		require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("created_at", time.Now().Add(time.Duration(i)*time.Minute)).Error)
		ids = append(ids, order.ID)
	}

	_, err := svc.CreateOrder(other.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
	})
	require.NoError(t, err)

	orders, err := svc.GetMyOrders(user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, ids[2], orders[0].ID)
	assert.Equal(t, ids[0], orders[2].ID)
}

func TestGetAllOrdersEmailFilterNoMatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, nil, nil)

	user := createTestUser(t, db, "buyer@example.com", models.UserRoleCustomer)
	product := createTestProduct(t, db, "Camera", 499.00, 10)

	_, err := svc.CreateOrder(user.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
	})
	require.NoError(t, err)

	page, err := svc.GetAllOrders(OrderSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 20},
		CustomerEmail:    "nobody@nowhere.test",
	})
	require.NoError(t, err)
	assert.Empty(t, page.Orders)
	assert.Zero(t, page.Pages)
	assert.Zero(t, page.TotalOrders)
}

func TestGetAllOrdersFiltersAndPaginates(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, nil, nil)

	alice := createTestUser(t, db, "alice@example.com", models.UserRoleCustomer)
	bob := createTestUser(t, db, "bob@example.com", models.UserRoleCustomer)
	product := createTestProduct(t, db, "Phone", 349.00, 100)

	for i := 0; i < 5; i++ {
		_, err := svc.CreateOrder(alice.ID, &CreateOrderRequest{
			Items:           []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
			ShippingAddress: testShippingAddress(),
		})
		require.NoError(t, err)
	}
	bobOrder, err := svc.CreateOrder(bob.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", bobOrder.ID).
		Update("status", models.OrderStatusShipped).Error)

	// Case-insensitive substring email filter.
	page, err := svc.GetAllOrders(OrderSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 2},
		CustomerEmail:    "ALICE",
	})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 2)
	assert.Equal(t, int64(5), page.TotalOrders)
	assert.Equal(t, 3, page.Pages)

	// Exact status filter.
	page, err = svc.GetAllOrders(OrderSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 20, Status: string(models.OrderStatusShipped)},
	})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, bobOrder.ID, page.Orders[0].ID)
}

func TestGetOrderAuthorization(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, nil, nil)

	owner := createTestUser(t, db, "owner@example.com", models.UserRoleCustomer)
	stranger := createTestUser(t, db, "stranger@example.com", models.UserRoleCustomer)
	product := createTestProduct(t, db, "Speaker", 89.00, 10)

	order, err := svc.CreateOrder(owner.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
	})
	require.NoError(t, err)

	_, err = svc.GetOrder(order.ID, owner.ID, false)
	assert.NoError(t, err)

	_, err = svc.GetOrder(order.ID, stranger.ID, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authorized")

	_, err = svc.GetOrder(order.ID, stranger.ID, true)
	assert.NoError(t, err)

	_, err = svc.GetOrder(uuid.New(), owner.ID, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestUpdateOrderStatus(t *testing.T) {
	db := newTestDB(t)
	// A wired notification service (without SMTP credentials it only
	// logs) so the status-change email path runs.
	svc := NewOrderService(db, nil, NewNotificationService(newTestConfig()))

	user := createTestUser(t, db, "buyer@example.com", models.UserRoleCustomer)
	admin := createTestUser(t, db, "admin@example.com", models.UserRoleAdmin)
	product := createTestProduct(t, db, "Charger", 19.00, 10)

	order, err := svc.CreateOrder(user.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateOrderStatus(order.ID, admin.ID, &UpdateOrderStatusRequest{Status: models.OrderStatusDelivered})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)

	// Any known status may replace any other, including going backwards.
	updated, err = svc.UpdateOrderStatus(order.ID, admin.ID, &UpdateOrderStatusRequest{Status: models.OrderStatusPending})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, updated.Status)

	_, err = svc.UpdateOrderStatus(order.ID, admin.ID, &UpdateOrderStatusRequest{Status: "Teleported"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid order status")
}

func TestDeleteOrderRestoresStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, nil, nil)

	user := createTestUser(t, db, "buyer@example.com", models.UserRoleCustomer)
	admin := createTestUser(t, db, "admin@example.com", models.UserRoleAdmin)
	kept := createTestProduct(t, db, "Headphones", 120.00, 30)
	doomed := createTestProduct(t, db, "Webcam", 60.00, 12)

	order, err := svc.CreateOrder(user.ID, &CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: kept.ID, Quantity: 4},
			{ProductID: doomed.ID, Quantity: 2},
		},
		ShippingAddress: testShippingAddress(),
	})
	require.NoError(t, err)

	// Remove one product before the order is deleted; its line item is
	// skipped during restore.
	require.NoError(t, db.Delete(&models.Product{}, "id = ?", doomed.ID).Error)

	require.NoError(t, svc.DeleteOrder(order.ID, admin.ID))

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", kept.ID).Error)
	assert.Equal(t, 30, reloaded.StockQuantity)

	_, err = svc.GetOrder(order.ID, admin.ID, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, nil, nil)

	user := createTestUser(t, db, "buyer@example.com", models.UserRoleCustomer)
	product := createTestProduct(t, db, "Console", 500.00, 50)
	createTestProduct(t, db, "Cable", 9.00, 3)

	for i := 0; i < 2; i++ {
		_, err := svc.CreateOrder(user.ID, &CreateOrderRequest{
			Items:           []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
			ShippingAddress: testShippingAddress(),
		})
		require.NoError(t, err)
	}

	cancelled, err := svc.CreateOrder(user.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", cancelled.ID).
		Update("status", models.OrderStatusCancelled).Error)

	stats, err := svc.GetDashboardStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.InDelta(t, 1000.00, stats.TotalRevenue, 0.001)
	assert.Equal(t, int64(2), stats.OrdersByStatus[string(models.OrderStatusPending)])
	assert.Equal(t, int64(1), stats.LowStockCount)
}

func TestOrderReferencesAreUnique(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, nil, nil)

	user := createTestUser(t, db, "buyer@example.com", models.UserRoleCustomer)
	product := createTestProduct(t, db, "Drive", 75.00, 100)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		order, err := svc.CreateOrder(user.ID, &CreateOrderRequest{
			Items:           []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
			ShippingAddress: testShippingAddress(),
		})
		require.NoError(t, err, fmt.Sprintf("order %d", i))
		assert.False(t, seen[order.Reference])
		seen[order.Reference] = true
	}
}
