package services

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"Restaurant/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	// sqlite同一時間只允許一個寫入者
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}

type fixture struct {
	db       *gorm.DB
	category models.Category
	borscht  models.Dish
	caesar   models.Dish
	hidden   models.Dish
}

func seedMenu(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	f := fixture{db: db, category: models.Category{Name: "Soups"}}
	if err := db.Create(&f.category).Error; err != nil {
		t.Fatal(err)
	}
	f.borscht = models.Dish{Name: "Borscht", Price: models.MustMoney("250.00"), IsAvailable: true, CategoryID: f.category.ID}
	f.caesar = models.Dish{Name: "Caesar", Price: models.MustMoney("320.00"), IsAvailable: true, CategoryID: f.category.ID}
	f.hidden = models.Dish{Name: "Seasonal", Price: models.MustMoney("99.90"), IsAvailable: false, CategoryID: f.category.ID}
	for _, dish := range []*models.Dish{&f.borscht, &f.caesar, &f.hidden} {
		if err := db.Create(dish).Error; err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func createCustomer(t *testing.T, db *gorm.DB, phone string) models.Customer {
	t.Helper()
	customer := models.Customer{Phone: phone}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatal(err)
	}
	return customer
}

func createAddress(t *testing.T, db *gorm.DB, customerID uint) models.Address {
	t.Helper()
	address := models.Address{CustomerID: customerID, Label: "Home", Street: "Main st 1", City: "Kazan"}
	if err := db.Create(&address).Error; err != nil {
		t.Fatal(err)
	}
	return address
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}
