package database

import (
	"errors"

	"gorm.io/gorm"
)

// Alert queries. Everything here is scoped by organization ID — callers
// pass the tenant from the authenticated session and never see rows
// belonging to another organization.

// ListAlerts returns the organization's alerts ordered by creation time,
// optionally filtered by status.
func ListAlerts(db *gorm.DB, orgID, status string) ([]Alert, error) {
	var alerts []Alert
	query := db.Where("organization_id = ?", orgID).Order("created_at asc")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// GetAlertByUUID returns one of the organization's alerts by UUID.
func GetAlertByUUID(db *gorm.DB, orgID, uuid string) (*Alert, error) {
	var alert Alert
	if err := db.Where("uuid = ? AND organization_id = ?", uuid, orgID).First(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// FindDuplicateAlert returns the first alert with the same
// (organization, capability, machine) triple, or nil if none exists.
// The check and any subsequent insert are not transactional: two
// concurrent creations for the same triple can both pass and both insert.
// That duplicate is benign — nothing at the storage level requires the
// triple to be unique, and force-created duplicates share it anyway.
func FindDuplicateAlert(db *gorm.DB, orgID string, capabilityID uint, machine string) (*Alert, error) {
	var alert Alert
	err := db.Where("organization_id = ? AND capability_id = ? AND machine = ?", orgID, capabilityID, machine).
		Order("created_at asc").
		First(&alert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// CreateAlert inserts a new alert record.
func CreateAlert(db *gorm.DB, alert *Alert) error {
	return db.Create(alert).Error
}

// UpdateAlertStatus sets the status of one of the organization's alerts.
// Returns the updated record, or gorm.ErrRecordNotFound if the alert does
// not exist in this organization.
func UpdateAlertStatus(db *gorm.DB, orgID, uuid, status string) (*Alert, error) {
	alert, err := GetAlertByUUID(db, orgID, uuid)
	if err != nil {
		return nil, err
	}
	if err := db.Model(alert).Update("status", status).Error; err != nil {
		return nil, err
	}
	return alert, nil
}

// DeleteAlertByUUID deletes one of the organization's alerts. Returns
// gorm.ErrRecordNotFound if no row matched.
func DeleteAlertByUUID(db *gorm.DB, orgID, uuid string) error {
	result := db.Where("uuid = ? AND organization_id = ?", uuid, orgID).Delete(&Alert{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
