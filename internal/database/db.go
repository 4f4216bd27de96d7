package database

import (
	"log"

	"pharmacy-backend/internal/model"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Item{},
		&model.SupplyRequest{},
		&model.PaymentTransaction{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// SeedDemoData inserts a small demo catalog and one user per role, but
// only into an empty database. Intended for local development behind the
// SEED_DEMO_DATA env flag.
func SeedDemoData(db *gorm.DB) error {
	var itemCount int64
	if err := db.Model(&model.Item{}).Count(&itemCount).Error; err != nil {
		return err
	}
	if itemCount > 0 {
		return nil
	}

	items := []model.Item{
		{ItemName: "Paracetamol", Category: "Medicine", Quantity: 100, UnitPrice: decimal.NewFromFloat(2.50)},
		{ItemName: "Hand Sanitizer", Category: "Skin Care", Quantity: 50, UnitPrice: decimal.NewFromFloat(5.00)},
		{ItemName: "Bandages", Category: "First Aid", Quantity: 200, UnitPrice: decimal.NewFromFloat(1.25)},
		{ItemName: "Vitamin C", Category: "Supplements", Quantity: 75, UnitPrice: decimal.NewFromFloat(7.99)},
	}
	if err := db.Create(&items).Error; err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []model.User{
		{Username: "admin", Email: "admin@pharmacy.local", Password: string(hash), Role: model.RoleAdmin},
		{Username: "manager", Email: "manager@pharmacy.local", Password: string(hash), Role: model.RoleManager},
		{Username: "distributor", Email: "distributor@pharmacy.local", Password: string(hash), Role: model.RoleDistributor},
		{Username: "cfo", Email: "cfo@pharmacy.local", Password: string(hash), Role: model.RoleCFO},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	log.Println("Seeded demo inventory and users")
	return nil
}
