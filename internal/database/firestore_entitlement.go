package database

import (
	"context"

	"entitlement-api/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreEntitlementStore keeps entitlements on the caller's user document
type FirestoreEntitlementStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreEntitlementStore creates a store writing to collection/{uid}
func NewFirestoreEntitlementStore(client *firestore.Client, collection string) *FirestoreEntitlementStore {
	return &FirestoreEntitlementStore{client: client, collection: collection}
}

// GrantPremium merges the entitlement fields into the user document,
// creating it when missing. Fields it does not own are left untouched.
// Concurrent grants for the same uid are last-write-wins.
func (s *FirestoreEntitlementStore) GrantPremium(ctx context.Context, uid string, state models.EntitlementState) error {
	_, err := s.client.Collection(s.collection).Doc(uid).Set(ctx, map[string]interface{}{
		"isPremium":         state.IsPremium,
		"premiumExpiryDate": state.PremiumExpiryDate,
		"purchaseToken":     state.PurchaseToken,
		"productId":         state.ProductID,
	}, firestore.MergeAll)
	return err
}

// Get returns the entitlement fields of the user document, or nil when the document does not exist
func (s *FirestoreEntitlementStore) Get(ctx context.Context, uid string) (*models.EntitlementState, error) {
	snap, err := s.client.Collection(s.collection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var state models.EntitlementState
	if err := snap.DataTo(&state); err != nil {
		return nil, err
	}
	return &state, nil
}
