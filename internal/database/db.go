package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance
var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string, logLevel logger.LogLevel) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established")
	return nil
}

// AutoMigrate runs database migrations
func AutoMigrate() error {
	log.Println("Running database migrations...")

	err := DB.AutoMigrate(
		&Organization{},
		&MonitoringCapability{},
		&Alert{},
		&SlackSettings{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// InitializeDefaults creates default records if they don't exist
func InitializeDefaults() error {
	log.Println("Initializing default database records...")

	// Create the default organization on first run
	var orgCount int64
	DB.Model(&Organization{}).Count(&orgCount)
	if orgCount == 0 {
		defaultOrg := &Organization{Name: "Default Organization"}
		if err := DB.Create(defaultOrg).Error; err != nil {
			return fmt.Errorf("failed to create default organization: %w", err)
		}
		log.Printf("Created default organization (ID: %s)", defaultOrg.ID)
	}

	// Create default Slack settings if they don't exist
	var slackCount int64
	DB.Model(&SlackSettings{}).Count(&slackCount)
	if slackCount == 0 {
		defaultSlackSettings := &SlackSettings{
			Enabled: false, // Disabled by default until configured
		}
		if err := DB.Create(defaultSlackSettings).Error; err != nil {
			return fmt.Errorf("failed to create default slack settings: %w", err)
		}
		log.Println("Created default Slack settings (disabled)")
	}

	// Seed the monitoring capability catalog from the embedded file
	if err := SeedCapabilities(DB); err != nil {
		return fmt.Errorf("failed to seed monitoring capabilities: %w", err)
	}

	return nil
}

// GetDefaultOrganization returns the first organization. Multi-org user
// membership is handled by the external identity layer; the admin session
// issued by this service is scoped to the default organization.
func GetDefaultOrganization() (*Organization, error) {
	var org Organization
	if err := DB.Order("created_at asc").First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// GetSlackSettings retrieves Slack settings from the database
func GetSlackSettings() (*SlackSettings, error) {
	var settings SlackSettings
	if err := DB.First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSlackSettings updates Slack settings in the database
func UpdateSlackSettings(settings *SlackSettings) error {
	return DB.Model(&SlackSettings{}).Where("id = ?", settings.ID).Updates(map[string]interface{}{
		"bot_token":      settings.BotToken,
		"alerts_channel": settings.AlertsChannel,
		"enabled":        settings.Enabled,
	}).Error
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// Close closes the database connection
func Close() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
