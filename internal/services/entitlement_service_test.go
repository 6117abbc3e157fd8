package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"entitlement-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestGetEntitlement(t *testing.T) {
	store := newFakeStore()
	store.states["active"] = models.EntitlementState{
		IsPremium: true, ProductID: "premium_monthly", PremiumExpiryDate: fixedNow.Add(time.Hour),
	}
	store.states["lapsed"] = models.EntitlementState{
		IsPremium: true, ProductID: "premium_monthly", PremiumExpiryDate: fixedNow.Add(-time.Hour),
	}

	svc := NewEntitlementService(store)
	svc.now = func() time.Time { return fixedNow }

	status, err := svc.GetEntitlement(context.Background(), &models.Caller{UID: "active"})
	require.NoError(t, err)
	assert.True(t, status.IsPremium)
	assert.True(t, status.Active)
	assert.Equal(t, "2026-03-01T13:00:00Z", status.PremiumExpiryDate)

	// Expired grants are reported, never revoked
	status, err = svc.GetEntitlement(context.Background(), &models.Caller{UID: "lapsed"})
	require.NoError(t, err)
	assert.True(t, status.IsPremium)
	assert.False(t, status.Active)
	assert.Zero(t, store.writes)

	status, err = svc.GetEntitlement(context.Background(), &models.Caller{UID: "nobody"})
	require.NoError(t, err)
	assert.Equal(t, &models.EntitlementStatus{}, status)
}

func TestGetEntitlement_Errors(t *testing.T) {
	store := newFakeStore()
	svc := NewEntitlementService(store)

	_, err := svc.GetEntitlement(context.Background(), nil)
	requireCode(t, err, codes.Unauthenticated)
	assert.Zero(t, store.reads)

	store.err = errors.New("connection refused")
	_, err = svc.GetEntitlement(context.Background(), &models.Caller{UID: "u1"})
	requireCode(t, err, codes.Internal)
}
