// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/exetool/store-backend/internal/config"
	"github.com/exetool/store-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.Coupon{},
		&models.Order{},
		&models.OrderItem{},
		&models.License{},
		&models.Review{},
		&models.AdminLog{},
		&models.ContactSubmission{},
		&models.ReconciliationTask{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	// Install change-feed triggers
	if err := createChangeTriggers(db); err != nil {
		return fmt.Errorf("failed to create change triggers: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Coupon indexes
		"CREATE INDEX IF NOT EXISTS idx_coupons_active ON coupons(is_active)",
		"CREATE INDEX IF NOT EXISTS idx_coupons_valid_until ON coupons(valid_until)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",

		// License indexes
		"CREATE INDEX IF NOT EXISTS idx_licenses_user_product ON licenses(user_id, product_id)",
		"CREATE INDEX IF NOT EXISTS idx_licenses_order ON licenses(order_id)",

		// Review indexes
		"CREATE INDEX IF NOT EXISTS idx_reviews_product_status ON product_reviews(product_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_reviews_user_product ON product_reviews(user_id, product_id)",

		// Admin log indexes
		"CREATE INDEX IF NOT EXISTS idx_admin_logs_action ON admin_logs(action_type, created_at DESC)",

		// Reconciliation indexes
		"CREATE INDEX IF NOT EXISTS idx_reconciliation_pending ON reconciliation_tasks(done, created_at)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// createChangeTriggers installs a pg_notify trigger on the tables the dashboard
// subscribes to. The realtime hub LISTENs on the table_changes channel and
// clients refetch whenever an event arrives for a table they care about.
func createChangeTriggers(db *gorm.DB) error {
	fn := `
CREATE OR REPLACE FUNCTION notify_table_change() RETURNS trigger AS $$
BEGIN
    PERFORM pg_notify('table_changes', json_build_object(
        'table', TG_TABLE_NAME,
        'action', TG_OP
    )::text);
    RETURN NULL;
END;
$$ LANGUAGE plpgsql`

	if err := db.Exec(fn).Error; err != nil {
		return fmt.Errorf("failed to create notify function: %w", err)
	}

	tables := []string{"orders", "order_items", "licenses", "product_reviews"}
	for _, table := range tables {
		stmt := fmt.Sprintf(`
DROP TRIGGER IF EXISTS %s_notify_change ON %s;
CREATE TRIGGER %s_notify_change
AFTER INSERT OR UPDATE OR DELETE ON %s
FOR EACH STATEMENT EXECUTE FUNCTION notify_table_change()`,
			table, table, table, table)

		if err := db.Exec(stmt).Error; err != nil {
			log.Printf("Warning: Failed to create change trigger on %s: %v", table, err)
		}
	}

	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
