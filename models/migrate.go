package models

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate 建立或更新六張資料表，順序依外鍵相依
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Category{},
		&Dish{},
		&Customer{},
		&Address{},
		&Order{},
		&OrderItem{},
	)
}

func strPtr(s string) *string { return &s }

// Seed 在沒有任何分類時寫入預設菜單，已有資料則略過
func Seed(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&Category{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		soups := Category{Name: "Soups", Description: strPtr("Hot dishes")}
		salads := Category{Name: "Salads", Description: strPtr("Light starters")}
		drinks := Category{Name: "Drinks", Description: strPtr("Refreshing drinks")}
		for _, category := range []*Category{&soups, &salads, &drinks} {
			if err := tx.Create(category).Error; err != nil {
				return err
			}
		}

		image := "https://placehold.co/600x400"
		dishes := []Dish{
			{Name: "Borscht", Description: strPtr("Classic borscht with sour cream"), Price: MustMoney("250.00"), ImageURL: strPtr(image), IsAvailable: true, CategoryID: soups.ID},
			{Name: "Caesar", Description: strPtr("Chicken salad with caesar dressing"), Price: MustMoney("320.00"), ImageURL: strPtr(image), IsAvailable: true, CategoryID: salads.ID},
			{Name: "Cranberry mors", Description: strPtr("Refreshing berry drink"), Price: MustMoney("150.00"), ImageURL: strPtr(image), IsAvailable: true, CategoryID: drinks.ID},
		}
		return tx.Create(&dishes).Error
	})
	if err != nil {
		return false, fmt.Errorf("seed menu: %w", err)
	}
	return true, nil
}
