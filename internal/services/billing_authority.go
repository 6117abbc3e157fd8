package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"entitlement-api/internal/models"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	androidpublisher "google.golang.org/api/androidpublisher/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GooglePlayConfig holds the service account used to read Play purchases.
// Either ServiceAccountJSON or ClientEmail and PrivateKey must be set.
type GooglePlayConfig struct {
	ServiceAccountJSON string
	ClientEmail        string
	PrivateKey         string

	// TokenURL and Endpoint override Google's defaults when set.
	TokenURL string
	Endpoint string
}

// GooglePlayAuthorizer exchanges the service account for an authorized Android Publisher client
type GooglePlayAuthorizer struct {
	cfg GooglePlayConfig
}

// NewGooglePlayAuthorizer creates a new authorizer
func NewGooglePlayAuthorizer(cfg GooglePlayConfig) (*GooglePlayAuthorizer, error) {
	if strings.TrimSpace(cfg.ServiceAccountJSON) == "" &&
		(strings.TrimSpace(cfg.ClientEmail) == "" || strings.TrimSpace(cfg.PrivateKey) == "") {
		return nil, errors.New("GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_CLIENT_EMAIL and GOOGLE_PRIVATE_KEY are required")
	}
	return &GooglePlayAuthorizer{cfg: cfg}, nil
}

// Authorize performs the credential exchange and returns a client bound to the token
func (a *GooglePlayAuthorizer) Authorize(ctx context.Context) (BillingAuthority, error) {
	conf, err := a.jwtConfig()
	if err != nil {
		return nil, err
	}

	ts := conf.TokenSource(ctx)
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("failed to authorize billing client: %w", err)
	}

	opts := []option.ClientOption{option.WithTokenSource(ts)}
	if a.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(a.cfg.Endpoint))
	}

	svc, err := androidpublisher.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("androidpublisher.NewService: %w", err)
	}

	return &GooglePlayAuthority{svc: svc}, nil
}

func (a *GooglePlayAuthorizer) jwtConfig() (*jwt.Config, error) {
	if a.cfg.ServiceAccountJSON != "" {
		conf, err := google.JWTConfigFromJSON([]byte(a.cfg.ServiceAccountJSON), androidpublisher.AndroidpublisherScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account: %w", err)
		}
		if a.cfg.TokenURL != "" {
			conf.TokenURL = a.cfg.TokenURL
		}
		return conf, nil
	}

	tokenURL := a.cfg.TokenURL
	if tokenURL == "" {
		tokenURL = google.JWTTokenURL
	}

	return &jwt.Config{
		Email: a.cfg.ClientEmail,
		// Keys passed through env files often carry literal \n sequences
		PrivateKey: []byte(strings.ReplaceAll(a.cfg.PrivateKey, `\n`, "\n")),
		Scopes:     []string{androidpublisher.AndroidpublisherScope},
		TokenURL:   tokenURL,
	}, nil
}

// GooglePlayAuthority reads purchases from the Android Publisher API
type GooglePlayAuthority struct {
	svc *androidpublisher.Service
}

// GetSubscription looks up a subscription purchase. A token unknown to Play yields (nil, nil).
func (a *GooglePlayAuthority) GetSubscription(ctx context.Context, packageName, subscriptionID, token string) (*models.PurchaseRecord, error) {
	resp, err := a.svc.Purchases.Subscriptions.Get(packageName, subscriptionID, token).
		Context(ctx).
		Do()
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("google subscriptions.get: %w", err)
	}

	return &models.PurchaseRecord{
		Kind:             models.ProductKindSubscription,
		PaymentState:     resp.PaymentState,
		AutoRenewing:     resp.AutoRenewing,
		ExpiryTimeMillis: resp.ExpiryTimeMillis,
		Raw:              resp,
	}, nil
}

// GetProduct looks up a one-time product purchase. A token unknown to Play yields (nil, nil).
func (a *GooglePlayAuthority) GetProduct(ctx context.Context, packageName, productID, token string) (*models.PurchaseRecord, error) {
	resp, err := a.svc.Purchases.Products.Get(packageName, productID, token).
		Context(ctx).
		Do()
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("google products.get: %w", err)
	}

	// Product purchases carry neither a payment state nor renewal
	return &models.PurchaseRecord{
		Kind: models.ProductKindOneTime,
		Raw:  resp,
	}, nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
