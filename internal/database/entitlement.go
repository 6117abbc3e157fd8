package database

import (
	"context"
	"errors"

	"entitlement-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLEntitlementStore keeps entitlements in the entitlement table, one row per uid
type SQLEntitlementStore struct {
	db *gorm.DB
}

// NewSQLEntitlementStore creates a new SQL entitlement store
func NewSQLEntitlementStore(db *gorm.DB) *SQLEntitlementStore {
	return &SQLEntitlementStore{db: db}
}

// GrantPremium upserts the entitlement row for uid.
// Concurrent grants for the same uid are last-write-wins.
func (s *SQLEntitlementStore) GrantPremium(ctx context.Context, uid string, state models.EntitlementState) error {
	row := models.Entitlement{
		UID:               uid,
		IsPremium:         state.IsPremium,
		PremiumExpiryDate: state.PremiumExpiryDate,
		PurchaseToken:     state.PurchaseToken,
		ProductID:         state.ProductID,
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_premium", "premium_expiry_date", "purchase_token", "product_id", "updated_at",
		}),
	}).Create(&row).Error
}

// Get returns the entitlement for uid, or nil when none was ever granted
func (s *SQLEntitlementStore) Get(ctx context.Context, uid string) (*models.EntitlementState, error) {
	var row models.Entitlement
	err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row.State(), nil
}
