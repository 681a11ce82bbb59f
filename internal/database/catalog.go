package database

import (
	_ "embed"
	"fmt"
	"log"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed capabilities.yaml
var capabilitiesYAML []byte

// catalogFile is the on-disk shape of capabilities.yaml
type catalogFile struct {
	Capabilities []catalogEntry `yaml:"capabilities"`
}

type catalogEntry struct {
	Key               string            `yaml:"key"`
	Name              string            `yaml:"name"`
	Description       string            `yaml:"description"`
	Category          string            `yaml:"category"`
	Metric            string            `yaml:"metric"`
	Parameters        map[string]string `yaml:"parameters"`
	Template          string            `yaml:"template"`
	DefaultThreshold  float64           `yaml:"default_threshold"`
	DefaultWindow     string            `yaml:"default_window"`
	SuggestedSeverity string            `yaml:"suggested_severity"`
}

// SeedCapabilities upserts the embedded capability catalog into the
// database, keyed by capability_key. Re-running after a catalog change
// updates existing rows in place.
func SeedCapabilities(db *gorm.DB) error {
	var file catalogFile
	if err := yaml.Unmarshal(capabilitiesYAML, &file); err != nil {
		return fmt.Errorf("failed to parse embedded capability catalog: %w", err)
	}
	if len(file.Capabilities) == 0 {
		return fmt.Errorf("embedded capability catalog is empty")
	}

	for _, entry := range file.Capabilities {
		if entry.Key == "" || entry.Template == "" {
			return fmt.Errorf("capability entry %q is missing key or template", entry.Key)
		}

		params := make(JSONB, len(entry.Parameters))
		for name, typ := range entry.Parameters {
			params[name] = typ
		}

		cap := MonitoringCapability{
			CapabilityKey:     entry.Key,
			Name:              entry.Name,
			Description:       entry.Description,
			Category:          entry.Category,
			Metric:            entry.Metric,
			Parameters:        params,
			AlertTemplate:     entry.Template,
			DefaultThreshold:  entry.DefaultThreshold,
			DefaultWindow:     entry.DefaultWindow,
			SuggestedSeverity: entry.SuggestedSeverity,
		}

		err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "capability_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "category", "metric", "parameters",
				"alert_template", "default_threshold", "default_window",
				"suggested_severity", "updated_at",
			}),
		}).Create(&cap).Error
		if err != nil {
			return fmt.Errorf("failed to seed capability %s: %w", entry.Key, err)
		}
	}

	log.Printf("Seeded %d monitoring capabilities", len(file.Capabilities))
	return nil
}

// ListCapabilities returns the capability catalog, optionally filtered by
// category. Pure read.
func ListCapabilities(db *gorm.DB, category string) ([]MonitoringCapability, error) {
	var caps []MonitoringCapability
	query := db.Order("capability_key asc")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Find(&caps).Error; err != nil {
		return nil, err
	}
	return caps, nil
}

// GetCapabilityByKey resolves a capability by its stable key. Returns
// gorm.ErrRecordNotFound if the key is not in the catalog.
func GetCapabilityByKey(db *gorm.DB, key string) (*MonitoringCapability, error) {
	var cap MonitoringCapability
	if err := db.Where("capability_key = ?", key).First(&cap).Error; err != nil {
		return nil, err
	}
	return &cap, nil
}

// GetCapabilityByID resolves a capability by numeric ID.
func GetCapabilityByID(db *gorm.DB, id uint) (*MonitoringCapability, error) {
	var cap MonitoringCapability
	if err := db.First(&cap, id).Error; err != nil {
		return nil, err
	}
	return &cap, nil
}
