package services

import (
	"context"
	"fmt"
	"sync"

	"entitlement-api/internal/models"
)

type fakeAuthority struct {
	subscription *models.PurchaseRecord
	product      *models.PurchaseRecord
	err          error
	calls        []string
}

func (f *fakeAuthority) GetSubscription(ctx context.Context, packageName, subscriptionID, token string) (*models.PurchaseRecord, error) {
	f.calls = append(f.calls, fmt.Sprintf("subscriptions:%s:%s:%s", packageName, subscriptionID, token))
	return f.subscription, f.err
}

func (f *fakeAuthority) GetProduct(ctx context.Context, packageName, productID, token string) (*models.PurchaseRecord, error) {
	f.calls = append(f.calls, fmt.Sprintf("products:%s:%s:%s", packageName, productID, token))
	return f.product, f.err
}

type fakeAuthorizer struct {
	authority *fakeAuthority
	err       error
	calls     int
}

func (f *fakeAuthorizer) Authorize(ctx context.Context) (BillingAuthority, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.authority, nil
}

type fakeStore struct {
	mu     sync.Mutex
	states map[string]models.EntitlementState
	err    error
	writes int
	reads  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{states: make(map[string]models.EntitlementState)}
}

func (f *fakeStore) GrantPremium(ctx context.Context, uid string, state models.EntitlementState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.err != nil {
		return f.err
	}
	f.states[uid] = state
	return nil
}

func (f *fakeStore) Get(ctx context.Context, uid string) (*models.EntitlementState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	state, ok := f.states[uid]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

type fakeGateway struct {
	sessionID string
	createErr error
	updateErr error
	creates   int
	updates   []models.GatewayUpdateSessionRequest
}

func (f *fakeGateway) CreateSession(ctx context.Context) (string, error) {
	f.creates++
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.sessionID, nil
}

func (f *fakeGateway) UpdateSession(ctx context.Context, sessionID string, update models.GatewayUpdateSessionRequest) error {
	f.updates = append(f.updates, update)
	return f.updateErr
}

type fakeJournal struct {
	orphans map[string]string
	err     error
}

func (f *fakeJournal) RecordOrphan(ctx context.Context, sessionID, orderID, uid string) error {
	if f.err != nil {
		return f.err
	}
	if f.orphans == nil {
		f.orphans = make(map[string]string)
	}
	f.orphans[sessionID] = orderID
	return nil
}

func int64Ptr(v int64) *int64 {
	return &v
}
