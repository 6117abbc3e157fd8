package api

import (
	"encoding/json"

	"entitlement-api/internal/apperror"
	"entitlement-api/internal/middleware"
	"entitlement-api/internal/models"
	"entitlement-api/internal/response"

	"github.com/gin-gonic/gin"
)

// Handler serves the callable functions
type Handler struct {
	sessions     SessionOpener
	purchases    PurchaseVerifier
	entitlements EntitlementReader
}

// callableRequest is the request envelope of a callable function
type callableRequest struct {
	Data json.RawMessage `json:"data"`
}

// decodeData unmarshals the envelope's data into target. A missing or null data leaves target zero.
func decodeData(c *gin.Context, target interface{}) error {
	var req callableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return err
	}
	if len(req.Data) == 0 || string(req.Data) == "null" {
		return nil
	}
	return json.Unmarshal(req.Data, target)
}

// CreatePaymentSession opens a hosted payment session for the order
// POST /createPaymentSession
func (h *Handler) CreatePaymentSession(c *gin.Context) {
	caller := middleware.CallerFrom(c)

	var order models.OrderRequest
	// Anonymous callers get Unauthenticated from the service, whatever the payload
	if err := decodeData(c, &order); err != nil && caller.Authenticated() {
		response.ErrorJSON(c, apperror.InvalidArgument("Invalid request format: "+err.Error()))
		return
	}

	session, err := h.sessions.OpenSession(c.Request.Context(), caller, order)
	if err != nil {
		response.ErrorJSON(c, err)
		return
	}

	response.SuccessJSON(c, session)
}

// VerifyPurchase verifies a Play purchase token and reconciles the caller's entitlement
// POST /verifyPurchase
func (h *Handler) VerifyPurchase(c *gin.Context) {
	caller := middleware.CallerFrom(c)

	var receipt models.PurchaseReceipt
	if err := decodeData(c, &receipt); err != nil && caller.Authenticated() {
		response.ErrorJSON(c, apperror.InvalidArgument("Invalid request format: "+err.Error()))
		return
	}

	result, err := h.purchases.VerifyPurchase(c.Request.Context(), caller, receipt)
	if err != nil {
		response.ErrorJSON(c, err)
		return
	}

	response.SuccessJSON(c, result)
}

// GetEntitlement returns the caller's stored entitlement
// POST /getEntitlement
func (h *Handler) GetEntitlement(c *gin.Context) {
	status, err := h.entitlements.GetEntitlement(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		response.ErrorJSON(c, err)
		return
	}

	response.SuccessJSON(c, status)
}
