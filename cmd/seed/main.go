package main

import (
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"orderdesk/internal/database"
	"orderdesk/internal/domain"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "orderdesk.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Product{},
		&domain.Event{},
		&domain.CartItem{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.Booking{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// cleanup in FK-safe order
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM order_items")
	db.Exec("DELETE FROM orders")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM cart_items")
	db.Exec("DELETE FROM events")
	db.Exec("DELETE FROM products")
	db.Exec("DELETE FROM users")

	log.Println("Creating users...")

	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	admin := domain.User{
		Email:        "admin@orderdesk.local",
		PasswordHash: string(adminHash),
		Role:         domain.RoleAdmin,
		Name:         "Admin",
	}
	db.Create(&admin)
	log.Println("Admin created: admin@orderdesk.local / admin123")

	customerHash, _ := bcrypt.GenerateFromPassword([]byte("customer123"), bcrypt.DefaultCost)
	customer := domain.User{
		Email:        "alice@example.com",
		PasswordHash: string(customerHash),
		Role:         domain.RoleCustomer,
		Name:         "Alice",
	}
	db.Create(&customer)
	log.Println("Customer created: alice@example.com / customer123")

	log.Println("Creating products...")
	products := []domain.Product{
		{Name: "Espresso Beans 1kg", Description: "Dark roast arabica", Category: "coffee", Price: 18.50, TotalCapacity: 40, AvailableCapacity: 40},
		{Name: "Ceramic Mug", Description: "350ml stoneware mug", Category: "accessories", Price: 9.90, TotalCapacity: 120, AvailableCapacity: 120},
		{Name: "Pour-over Kit", Description: "Dripper, server and filters", Category: "brewing", Price: 34.00, TotalCapacity: 15, AvailableCapacity: 15},
		{Name: "Margherita Pizza", Description: "Tomato, mozzarella, basil", Category: "food", Price: 11.00, TotalCapacity: 60, AvailableCapacity: 60},
	}
	for i := range products {
		db.Create(&products[i])
	}

	log.Println("Creating events...")
	events := []domain.Event{
		{Name: "Latte Art Workshop", Description: "Two hour hands-on class", Venue: "Roastery Loft", StartsAt: time.Now().Add(7 * 24 * time.Hour), Price: 45.00, TotalCapacity: 12, AvailableCapacity: 12},
		{Name: "Cupping Session", Description: "Taste six single origins", Venue: "Tasting Room", StartsAt: time.Now().Add(14 * 24 * time.Hour), Price: 25.00, TotalCapacity: 20, AvailableCapacity: 20},
	}
	for i := range events {
		db.Create(&events[i])
	}

	log.Println("Seed complete.")
}
