package services

import (
	"context"

	"entitlement-api/internal/apperror"
	"entitlement-api/internal/models"
	"entitlement-api/pkg/logging"
)

// PaymentGateway is the hosted payment gateway's session API
type PaymentGateway interface {
	CreateSession(ctx context.Context) (string, error)
	UpdateSession(ctx context.Context, sessionID string, update models.GatewayUpdateSessionRequest) error
}

// OrphanRecorder remembers sessions left behind by a failed update
type OrphanRecorder interface {
	RecordOrphan(ctx context.Context, sessionID, orderID, uid string) error
}

// SessionService opens hosted payment sessions
type SessionService struct {
	gateway PaymentGateway
	journal OrphanRecorder
}

// NewSessionService creates a new session service. journal may be nil.
func NewSessionService(gateway PaymentGateway, journal OrphanRecorder) *SessionService {
	return &SessionService{gateway: gateway, journal: journal}
}

// OpenSession creates a gateway session and fills in the order.
// When the update fails the created session is left at the gateway.
func (s *SessionService) OpenSession(ctx context.Context, caller *models.Caller, order models.OrderRequest) (*models.PaymentSession, error) {
	if !caller.Authenticated() {
		return nil, apperror.Unauthenticated("User must be authenticated")
	}

	sessionID, err := s.gateway.CreateSession(ctx)
	if err != nil {
		logging.Errorf("Error creating payment session - uid: %s, order: %s, error: %v", caller.UID, order.Reference(), err)
		return nil, apperror.Internal("Failed to create payment session", err)
	}

	if err := s.gateway.UpdateSession(ctx, sessionID, models.NewGatewayUpdateSessionRequest(order)); err != nil {
		logging.Errorf("Error updating payment session - uid: %s, order: %s, session: %s, error: %v",
			caller.UID, order.Reference(), sessionID, err)
		s.recordOrphan(ctx, sessionID, order.Reference(), caller.UID)
		return nil, apperror.Internal("Failed to create payment session", err)
	}

	logging.Infof("Payment session created - uid: %s, order: %s, session: %s", caller.UID, order.Reference(), sessionID)
	return &models.PaymentSession{SessionID: sessionID}, nil
}

func (s *SessionService) recordOrphan(ctx context.Context, sessionID, orderID, uid string) {
	if s.journal == nil {
		return
	}
	// Journal failures never change the result
	if err := s.journal.RecordOrphan(context.WithoutCancel(ctx), sessionID, orderID, uid); err != nil {
		logging.Warnf("Failed to journal orphaned session %s: %v", sessionID, err)
	}
}
