package services

import (
	"context"
	"time"

	"entitlement-api/internal/apperror"
	"entitlement-api/internal/models"
)

// EntitlementService reads a caller's current entitlement
type EntitlementService struct {
	store EntitlementStore
	now   func() time.Time
}

// NewEntitlementService creates a new entitlement service
func NewEntitlementService(store EntitlementStore) *EntitlementService {
	return &EntitlementService{store: store, now: time.Now}
}

// GetEntitlement returns the stored entitlement of caller. It never revokes.
func (s *EntitlementService) GetEntitlement(ctx context.Context, caller *models.Caller) (*models.EntitlementStatus, error) {
	if !caller.Authenticated() {
		return nil, apperror.Unauthenticated("User must be authenticated")
	}

	state, err := s.store.Get(ctx, caller.UID)
	if err != nil {
		return nil, apperror.Internal("Failed to read entitlement", err)
	}
	if state == nil {
		return &models.EntitlementStatus{}, nil
	}

	status := &models.EntitlementStatus{
		IsPremium: state.IsPremium,
		Active:    state.Active(s.now()),
		ProductID: state.ProductID,
	}
	if !state.PremiumExpiryDate.IsZero() {
		status.PremiumExpiryDate = state.PremiumExpiryDate.UTC().Format(time.RFC3339)
	}
	return status, nil
}
