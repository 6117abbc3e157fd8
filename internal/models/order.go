package models

import (
	"encoding/json"
)

// OrderRequest is the payload of createPaymentSession. Its fields are
// forwarded to the gateway exactly as received; absent fields stay absent.
type OrderRequest struct {
	OrderID  json.RawMessage `json:"orderId,omitempty"`
	Amount   json.RawMessage `json:"amount,omitempty"`
	Currency json.RawMessage `json:"currency,omitempty"` // ISO-4217
}

// Reference returns the order id for logs and the session journal
func (o OrderRequest) Reference() string {
	var id string
	if err := json.Unmarshal(o.OrderID, &id); err == nil {
		return id
	}
	return string(o.OrderID)
}

// PaymentSession is a hosted session opened at the gateway
type PaymentSession struct {
	SessionID string `json:"sessionId"`
}

// GatewayCreateSessionResponse is the subset of the gateway's create-session reply we read
type GatewayCreateSessionResponse struct {
	Session struct {
		ID string `json:"id"`
	} `json:"session"`
}

// GatewayOrder is the order block of an update-session request
type GatewayOrder struct {
	ID       json.RawMessage `json:"id,omitempty"`
	Amount   json.RawMessage `json:"amount,omitempty"`
	Currency json.RawMessage `json:"currency,omitempty"`
}

// GatewayAuthentication is the 3-D Secure block of an update-session request
type GatewayAuthentication struct {
	AcceptVersions string `json:"acceptVersions"`
	Channel        string `json:"channel"`
	Purpose        string `json:"purpose"`
}

// GatewayUpdateSessionRequest is the body of an update-session request
type GatewayUpdateSessionRequest struct {
	Order          GatewayOrder          `json:"order"`
	Authentication GatewayAuthentication `json:"authentication"`
}

// NewGatewayUpdateSessionRequest builds the update body for order, requesting 3DS2 for an in-app payer.
func NewGatewayUpdateSessionRequest(order OrderRequest) GatewayUpdateSessionRequest {
	return GatewayUpdateSessionRequest{
		Order: GatewayOrder{
			ID:       order.OrderID,
			Amount:   order.Amount,
			Currency: order.Currency,
		},
		Authentication: GatewayAuthentication{
			AcceptVersions: "3DS2",
			Channel:        "PAYER_APP",
			Purpose:        "PAYMENT_TRANSACTION",
		},
	}
}
