package models

import "strings"

// ProductKind tells which billing API a product is looked up with
type ProductKind string

const (
	ProductKindOneTime      ProductKind = "one_time"
	ProductKindSubscription ProductKind = "subscription"
)

// ClassifyProduct treats any product id containing "subscription" or
// "premium" as a subscription and everything else as a one-time product.
func ClassifyProduct(productID string) ProductKind {
	if strings.Contains(productID, "subscription") || strings.Contains(productID, "premium") {
		return ProductKindSubscription
	}
	return ProductKindOneTime
}

// GrantsPremium reports whether productID names a premium product.
func GrantsPremium(productID string) bool {
	return strings.Contains(productID, "premium")
}

// PurchaseReceipt is the payload of verifyPurchase
type PurchaseReceipt struct {
	PurchaseToken string `json:"purchaseToken"`
	ProductID     string `json:"productId"`
	PackageName   string `json:"packageName,omitempty"`
}

// PurchaseRecord is the billing authority's view of a purchase at query time
type PurchaseRecord struct {
	Kind ProductKind

	// PaymentState is nil for one-time products, which have no payment state.
	// 0 pending, 1 received, 2 free trial, 3 deferred.
	PaymentState     *int64
	AutoRenewing     bool
	ExpiryTimeMillis int64

	// Raw is the authority response, returned to the caller as purchaseData.
	Raw interface{}
}

// PaymentReceived reports whether the authority saw the payment as received.
func (r *PurchaseRecord) PaymentReceived() bool {
	return r.PaymentState != nil && *r.PaymentState == 1
}

// VerifyResult is the result of verifyPurchase
type VerifyResult struct {
	Valid        bool        `json:"valid"`
	IsPremium    bool        `json:"isPremium"`
	PurchaseData interface{} `json:"purchaseData,omitempty"`
}
