// internal/database/seed.go
package database

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shoplite/backend/internal/models"
)

// SeedInitialData creates the default admin account and, on an empty
// catalog, a starter set of products so a fresh install is browsable.
func SeedInitialData(db *gorm.DB) error {
	logrus.Info("Seeding initial data...")

	if err := seedAdminUser(db); err != nil {
		return err
	}

	if err := seedCatalog(db); err != nil {
		return err
	}

	logrus.Info("Initial data seeding completed")
	return nil
}

func seedAdminUser(db *gorm.DB) error {
	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&adminCount)

	if adminCount > 0 {
		return nil
	}

	admin := &models.User{
		FirstName: "Store",
		LastName:  "Admin",
		Email:     "admin@shoplite.dev",
		Role:      models.UserRoleAdmin,
		IsActive:  true,
	}

	if err := admin.SetPassword("admin123!@#"); err != nil {
		return fmt.Errorf("failed to set admin password: %w", err)
	}

	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logrus.Info("Default admin user created")
	return nil
}

func seedCatalog(db *gorm.DB) error {
	var productCount int64
	db.Model(&models.Product{}).Count(&productCount)

	if productCount > 0 {
		return nil
	}

	products := []models.Product{
		{
			Name:          "Gaming Laptop Pro 15",
			Description:   "Unleash ultimate gaming performance with Intel Core i9, RTX 4080, and 32GB RAM. 15.6\" QHD 240Hz display.",
			Category:      "Laptops",
			Price:         1899.99,
			StockQuantity: 25,
			ImageURL:      "https://placehold.co/400x300/a8dadc/1d3557?text=Gaming+Laptop",
			AdditionalImages: pq.StringArray{
				"https://placehold.co/400x300/a8dadc/1d3557?text=Laptop+Side",
				"https://placehold.co/400x300/a8dadc/1d3557?text=Laptop+Keyboard",
			},
			Offers:        pq.StringArray{"Free Gaming Headset", "10% off next purchase", "Extended Warranty"},
			AverageRating: 4.6,
			NumReviews:    38,
		},
		{
			Name:          "UltraBook Air 13",
			Description:   "Feather-light and powerful, perfect for on-the-go productivity. Intel Evo certified, 16GB RAM, 512GB SSD.",
			Category:      "Laptops",
			Price:         1199.00,
			StockQuantity: 40,
			ImageURL:      "https://placehold.co/400x300/f1faee/457b9d?text=UltraBook",
			AdditionalImages: pq.StringArray{
				"https://placehold.co/400x300/f1faee/457b9d?text=UltraBook+Open",
			},
			Offers:        pq.StringArray{"Free Carrying Sleeve", "Student Discount Available"},
			AverageRating: 4.3,
			NumReviews:    52,
		},
		{
			Name:          "Budget Laptop 14",
			Description:   "Reliable performance for daily tasks and online learning. AMD Ryzen 3, 8GB RAM, 256GB SSD.",
			Category:      "Laptops",
			Price:         499.99,
			StockQuantity: 80,
			ImageURL:      "https://placehold.co/400x300/e63946/f1faee?text=Budget+Laptop",
			Offers:        pq.StringArray{"Limited Time Offer"},
			AverageRating: 3.9,
			NumReviews:    17,
		},
		{
			Name:          "High-End Gaming PC",
			Description:   "Custom-built powerhouse for extreme gaming and content creation. Liquid-cooled, RGB case.",
			Category:      "Desktops",
			Price:         2499.00,
			StockQuantity: 15,
			ImageURL:      "https://placehold.co/400x300/1d3557/a8dadc?text=Gaming+PC",
			AdditionalImages: pq.StringArray{
				"https://placehold.co/400x300/1d3557/a8dadc?text=PC+Interior",
			},
			Offers:        pq.StringArray{"Free Gaming Mouse & Keyboard", "Professional Assembly"},
			AverageRating: 4.8,
			NumReviews:    12,
		},
		{
			Name:          "Mini PC Home Office",
			Description:   "Compact and energy-efficient mini PC, perfect for home office or media center.",
			Category:      "Desktops",
			Price:         399.00,
			StockQuantity: 50,
			ImageURL:      "https://placehold.co/400x300/457b9d/f1faee?text=Mini+PC",
			Offers:        pq.StringArray{"Compact Design"},
			AverageRating: 4.1,
			NumReviews:    23,
		},
		{
			Name:          "Flagship Smartphone X",
			Description:   "Capture stunning photos with a 108MP camera, powered by the latest A17 Bionic chip. 5G ready.",
			Category:      "Phones",
			Price:         999.00,
			StockQuantity: 60,
			ImageURL:      "https://placehold.co/400x300/f1faee/e63946?text=Smartphone+X",
			AdditionalImages: pq.StringArray{
				"https://placehold.co/400x300/f1faee/e63946?text=Phone+Camera",
			},
			Offers:        pq.StringArray{"Free Case & Screen Protector", "Trade-in Bonus"},
			AverageRating: 4.5,
			NumReviews:    87,
		},
		{
			Name:          "Mid-Range Android Phone",
			Description:   "Great features at an affordable price. Long-lasting battery, vibrant display, and dual cameras.",
			Category:      "Phones",
			Price:         349.00,
			StockQuantity: 120,
			ImageURL:      "https://placehold.co/400x300/a8dadc/1d3557?text=Android+Phone",
			Offers:        pq.StringArray{"Limited Stock"},
			AverageRating: 4.0,
			NumReviews:    44,
		},
		{
			Name:          "Pro Tablet 11-inch",
			Description:   "Powerful tablet for creativity and productivity. Liquid Retina display, M2 chip, stylus support.",
			Category:      "Tablets",
			Price:         799.00,
			StockQuantity: 35,
			ImageURL:      "https://placehold.co/400x300/457b9d/f1faee?text=Pro+Tablet",
			Offers:        pq.StringArray{"Optional Keyboard Case"},
			AverageRating: 4.4,
			NumReviews:    31,
		},
		{
			Name:          "Budget Android Tablet",
			Description:   "Affordable tablet for entertainment and casual use. Great for kids and media consumption.",
			Category:      "Tablets",
			Price:         199.00,
			StockQuantity: 90,
			ImageURL:      "https://placehold.co/400x300/e63946/f1faee?text=Android+Tablet",
			Offers:        pq.StringArray{"Bundle with Kids Case"},
			AverageRating: 3.8,
			NumReviews:    29,
		},
		{
			Name:          "Smartwatch Series 8",
			Description:   "Advanced health features, always-on display, and cellular connectivity.",
			Category:      "Wearables",
			Price:         399.00,
			StockQuantity: 70,
			ImageURL:      "https://placehold.co/400x300/a8dadc/1d3557?text=Smartwatch",
			Offers:        pq.StringArray{"Free Extra Band"},
			AverageRating: 4.2,
			NumReviews:    63,
		},
	}

	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			return fmt.Errorf("failed to seed product %q: %w", products[i].Name, err)
		}
	}

	reviews := []models.Review{
		{ProductID: products[0].ID, CustomerName: "Alice J.", Rating: 5, Comment: "Absolutely love this product! Highly recommend."},
		{ProductID: products[0].ID, CustomerName: "Bob K.", Rating: 4, Comment: "Great quality for the price. Very satisfied."},
		{ProductID: products[5].ID, CustomerName: "Diana M.", Rating: 5, Comment: "Impressive performance, worth every penny."},
		{ProductID: products[7].ID, CustomerName: "Frank O.", Rating: 4, Comment: "Good product, easy to set up."},
	}

	for i := range reviews {
		if err := db.Create(&reviews[i]).Error; err != nil {
			logrus.WithError(err).Warn("Failed to seed review")
		}
	}

	logrus.Infof("Seeded %d catalog products", len(products))
	return nil
}
