package models

import (
	"time"
)

// EntitlementState is the premium-access record kept per caller
type EntitlementState struct {
	IsPremium         bool      `json:"isPremium" firestore:"isPremium"`
	PremiumExpiryDate time.Time `json:"premiumExpiryDate" firestore:"premiumExpiryDate"`
	PurchaseToken     string    `json:"purchaseToken" firestore:"purchaseToken"`
	ProductID         string    `json:"productId" firestore:"productId"`
}

// Active reports whether the entitlement grants premium access at now.
func (s *EntitlementState) Active(now time.Time) bool {
	return s != nil && s.IsPremium && s.PremiumExpiryDate.After(now)
}

// Entitlement is the SQL row backing EntitlementState
type Entitlement struct {
	UID               string    `json:"uid" gorm:"primaryKey;size:128"`
	IsPremium         bool      `json:"is_premium" gorm:"not null;default:false"`
	PremiumExpiryDate time.Time `json:"premium_expiry_date" gorm:"index"`
	PurchaseToken     string    `json:"purchase_token" gorm:"type:text"`
	ProductID         string    `json:"product_id" gorm:"size:100"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// State converts the row into an EntitlementState
func (e *Entitlement) State() *EntitlementState {
	return &EntitlementState{
		IsPremium:         e.IsPremium,
		PremiumExpiryDate: e.PremiumExpiryDate,
		PurchaseToken:     e.PurchaseToken,
		ProductID:         e.ProductID,
	}
}

// EntitlementStatus is the result of getEntitlement
type EntitlementStatus struct {
	IsPremium         bool   `json:"isPremium"`
	Active            bool   `json:"active"`
	PremiumExpiryDate string `json:"premiumExpiryDate,omitempty"`
	ProductID         string `json:"productId,omitempty"`
}
