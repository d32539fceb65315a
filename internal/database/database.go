package database

import (
	"studygate-bot/internal/database/models"
	"studygate-bot/pkg/config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(config.DatabaseFile), &gorm.Config{})
	if err != nil {
		panic(err)
	}
	db.Config.Logger = logger.Default.LogMode(logger.Silent)

	if err := Migrate(db); err != nil {
		panic(err)
	}

	SeedPaymentMethods(db)

	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ManagedGroup{},
		&models.Category{},
		&models.Plan{},
		&models.PaymentMethod{},

		&models.Subscription{},
		&models.Invoice{},
		&models.ManualPayment{},
		&models.PromoCode{},
		&models.PromoUsage{},
	)
}

// SeedPaymentMethods inserts the two built-in payment methods on first run.
// Admins edit the manual method's bank details afterwards.
func SeedPaymentMethods(db *gorm.DB) {
	var count int64
	db.Model(&models.PaymentMethod{}).Count(&count)
	if count > 0 {
		return
	}

	methods := []models.PaymentMethod{
		{
			Name:        "💳 Банковская карта",
			Type:        models.PaymentMethodCard,
			IsActive:    true,
			Description: "Оплата банковской картой",
		},
		{
			Name:        "👨‍💻 Ручная оплата",
			Type:        models.PaymentMethodManual,
			IsActive:    true,
			Description: "Оплата по реквизитам с подтверждением чека",
			Details:     "Реквизиты для оплаты:\n\nБанк: Пример Банк\nСчет: 0000 0000 0000 0000\nПолучатель: Иван Иванов\nНазначение: Оплата подписки",
		},
	}

	for _, m := range methods {
		db.Create(&m)
	}
}
