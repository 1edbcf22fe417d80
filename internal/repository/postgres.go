package repository

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/streamtip/donatio/internal/models"
	"github.com/streamtip/donatio/pkg/logger"
)

type PostgresDB struct {
	logger *logger.Logger

	Conn *gorm.DB
}

func NewPostgresDB(user, password, dbname, host string, port int, logger *logger.Logger) (models.Repository, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)

	// Configure GORM logger to suppress "record not found" messages
	gormLogger := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.AutoMigrate(&models.Donor{}, &models.DonationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %w", err)
	}
	logger.Info("Successfully connected to PostgreSQL!")
	return &PostgresDB{Conn: db, logger: logger}, nil
}

func (db *PostgresDB) Close() error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}

func (db *PostgresDB) AddDonation(record *models.DonationRecord) error {
	db.logger.Debug("Adding donation", "id", record.ID, "donor", record.Donor, "amount", record.Amount)
	if err := db.Conn.Create(record).Error; err != nil {
		return fmt.Errorf("failed to add donation: %w", err)
	}
	return nil
}

func (db *PostgresDB) ListDonations(limit int) ([]*models.DonationRecord, error) {
	var records []*models.DonationRecord
	if err := db.Conn.Order("timestamp DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	return records, nil
}

func (db *PostgresDB) AddToDonorTotal(name string, amount float64, timestamp int64) (*models.Donor, error) {
	var donor models.Donor
	err := db.Conn.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("name = ?", name).First(&donor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			donor = models.Donor{
				ID:           uuid.NewString(),
				Name:         name,
				TotalDonated: amount,
				Level:        1,
				LastDonation: timestamp,
			}
			return tx.Create(&donor).Error
		}
		if err != nil {
			return err
		}
		donor.TotalDonated += amount
		donor.LastDonation = timestamp
		return tx.Save(&donor).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update donor total: %w", err)
	}
	return &donor, nil
}

func (db *PostgresDB) GetDonor(name string) (*models.Donor, error) {
	var donor models.Donor
	if err := db.Conn.Where("name = ?", name).First(&donor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrDonorNotFound, name)
		}
		return nil, fmt.Errorf("failed to get donor: %w", err)
	}
	return &donor, nil
}

func (db *PostgresDB) ListDonors(limit int) ([]*models.Donor, error) {
	var donors []*models.Donor
	if err := db.Conn.Order("total_donated DESC").Order("name").Limit(limit).Find(&donors).Error; err != nil {
		return nil, fmt.Errorf("failed to list donors: %w", err)
	}
	return donors, nil
}

func (db *PostgresDB) SeedDonors(donors []*models.Donor) error {
	for _, d := range donors {
		if err := db.Conn.Where(models.Donor{Name: d.Name}).FirstOrCreate(d).Error; err != nil {
			return fmt.Errorf("failed to seed donor %s: %w", d.Name, err)
		}
	}
	return nil
}
