package services

import (
	"context"
	"fmt"
	"time"

	"entitlement-api/internal/apperror"
	"entitlement-api/internal/metrics"
	"entitlement-api/internal/models"
	"entitlement-api/pkg/logging"
)

// BillingAuthorizer hands out clients authorized against the billing authority
type BillingAuthorizer interface {
	Authorize(ctx context.Context) (BillingAuthority, error)
}

// BillingAuthority is the source of truth for purchases.
// Both lookups return (nil, nil) when the authority has no record.
type BillingAuthority interface {
	GetSubscription(ctx context.Context, packageName, subscriptionID, token string) (*models.PurchaseRecord, error)
	GetProduct(ctx context.Context, packageName, productID, token string) (*models.PurchaseRecord, error)
}

// EntitlementStore persists entitlements keyed by caller uid
type EntitlementStore interface {
	GrantPremium(ctx context.Context, uid string, state models.EntitlementState) error
	Get(ctx context.Context, uid string) (*models.EntitlementState, error)
}

// PurchaseConfig configures purchase verification
type PurchaseConfig struct {
	DefaultPackageName string
	// PremiumFallback is the grant length used when the authority reports no expiry.
	PremiumFallback time.Duration
}

// PurchaseService verifies Play purchases and grants premium entitlements
type PurchaseService struct {
	authorizer BillingAuthorizer
	store      EntitlementStore
	cfg        PurchaseConfig
	now        func() time.Time
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(authorizer BillingAuthorizer, store EntitlementStore, cfg PurchaseConfig) *PurchaseService {
	if cfg.PremiumFallback == 0 {
		cfg.PremiumFallback = 30 * 24 * time.Hour
	}
	return &PurchaseService{
		authorizer: authorizer,
		store:      store,
		cfg:        cfg,
		now:        time.Now,
	}
}

// VerifyPurchase checks receipt with the billing authority and, when it
// grants premium, records the entitlement for caller. The store is written
// only after the decision is complete, so a failed call leaves it untouched.
func (s *PurchaseService) VerifyPurchase(ctx context.Context, caller *models.Caller, receipt models.PurchaseReceipt) (*models.VerifyResult, error) {
	if !caller.Authenticated() {
		return nil, apperror.Unauthenticated("You must be logged in to verify purchases.")
	}
	if receipt.PurchaseToken == "" || receipt.ProductID == "" {
		return nil, apperror.InvalidArgument("Missing required purchase information.")
	}

	kind := models.ClassifyProduct(receipt.ProductID)
	packageName := receipt.PackageName
	if packageName == "" {
		packageName = s.cfg.DefaultPackageName
	}

	authority, err := s.authorizer.Authorize(ctx)
	if err != nil {
		return nil, s.fail(caller, receipt, kind, err)
	}

	var record *models.PurchaseRecord
	if kind == models.ProductKindSubscription {
		record, err = authority.GetSubscription(ctx, packageName, receipt.ProductID, receipt.PurchaseToken)
	} else {
		record, err = authority.GetProduct(ctx, packageName, receipt.ProductID, receipt.PurchaseToken)
	}
	if err != nil {
		return nil, s.fail(caller, receipt, kind, err)
	}

	if record == nil {
		logging.Infof("No purchase record - uid: %s, product: %s, package: %s", caller.UID, receipt.ProductID, packageName)
		metrics.RecordVerification(string(kind), metrics.OutcomeInvalid)
		return &models.VerifyResult{Valid: false}, nil
	}

	// Only product ids containing "premium" grant premium, even when the
	// id was classified as a subscription through "subscription".
	isPremium := models.GrantsPremium(receipt.ProductID) && (record.PaymentReceived() || record.AutoRenewing)

	if isPremium {
		state := models.EntitlementState{
			IsPremium:         true,
			PremiumExpiryDate: s.expiryOf(record),
			PurchaseToken:     receipt.PurchaseToken,
			ProductID:         receipt.ProductID,
		}
		if err := s.store.GrantPremium(ctx, caller.UID, state); err != nil {
			return nil, s.fail(caller, receipt, kind, err)
		}
		logging.Infof("Premium granted - uid: %s, product: %s, kind: %s, expires: %s",
			caller.UID, receipt.ProductID, record.Kind, state.PremiumExpiryDate.Format(time.RFC3339))
		metrics.RecordVerification(string(record.Kind), metrics.OutcomePremium)
	} else {
		metrics.RecordVerification(string(record.Kind), metrics.OutcomeVerified)
	}

	return &models.VerifyResult{
		Valid:        true,
		IsPremium:    isPremium,
		PurchaseData: record.Raw,
	}, nil
}

func (s *PurchaseService) expiryOf(record *models.PurchaseRecord) time.Time {
	if record.ExpiryTimeMillis > 0 {
		return time.UnixMilli(record.ExpiryTimeMillis).UTC()
	}
	return s.now().Add(s.cfg.PremiumFallback).UTC()
}

func (s *PurchaseService) fail(caller *models.Caller, receipt models.PurchaseReceipt, kind models.ProductKind, err error) error {
	logging.Errorf("Purchase verification error - uid: %s, product: %s, error: %v", caller.UID, receipt.ProductID, err)
	metrics.RecordVerification(string(kind), metrics.OutcomeError)
	return apperror.Internal(fmt.Sprintf("Error verifying purchase: %s", err.Error()), err)
}
