package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"conference-system/internal/services"
	"conference-system/internal/status"
	"conference-system/monitoring"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type PurchaseHandler struct {
	app             *pocketbase.PocketBase
	purchaseService *services.PurchaseService
	currency        string
}

func NewPurchaseHandler(app *pocketbase.PocketBase, purchaseService *services.PurchaseService, currency string) *PurchaseHandler {
	return &PurchaseHandler{
		app:             app,
		purchaseService: purchaseService,
		currency:        currency,
	}
}

// InitializePurchase - Create a pending order and open a checkout session
func (h *PurchaseHandler) InitializePurchase(e *core.RequestEvent) error {
	var req services.InitiateRequest
	if err := e.BindBody(&req); err != nil {
		return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
	}
	if e.Auth != nil {
		req.UserID = e.Auth.Id
	}

	ctx := e.Request.Context()

	result, err := h.purchaseService.Initiate(ctx, &req)
	if err != nil {
		monitoring.TrackPurchaseInitiated("error")
		return h.purchaseError(e, err)
	}

	monitoring.TrackPurchaseInitiated("ok")

	return e.JSON(http.StatusOK, map[string]any{
		"order_id":          result.OrderID,
		"reference":         result.Reference,
		"amount":            result.Amount,
		"authorization_url": result.AuthorizationURL,
		"access_code":       result.AccessCode,
		"currency":          h.currency,
		"breakdown":         result.Breakdown,
	})
}

// VerifyPurchase - Client-initiated confirmation by reference
func (h *PurchaseHandler) VerifyPurchase(e *core.RequestEvent) error {
	var req struct {
		Reference string `json:"reference"`
	}
	if err := e.BindBody(&req); err != nil || req.Reference == "" {
		return e.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": "Reference required"})
	}

	ctx := e.Request.Context()

	result, err := h.purchaseService.Confirm(ctx, req.Reference)
	if err != nil {
		monitoring.TrackPaymentConfirmed("client", "error")
		slog.Error("verify purchase", "reference", req.Reference, "error", err)

		switch {
		case errors.Is(err, status.ErrNotFound):
			return e.JSON(http.StatusNotFound, map[string]any{"success": false, "error": "Order not found"})
		case errors.Is(err, status.ErrGatewayFailure):
			return e.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": "Payment not confirmed"})
		default:
			return e.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "Something went wrong"})
		}
	}

	if !result.AlreadyProcessed {
		monitoring.TrackPaymentConfirmed("client", "ok")
		monitoring.TrackTicketsIssued(len(result.Tickets))
	}

	qrCode := ""
	if len(result.Tickets) > 0 {
		qrCode = result.Tickets[0].QRCode
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success": true,
		"order": map[string]any{
			"id":           result.Order.ID,
			"reference":    result.Order.Reference,
			"quantity":     result.Order.Quantity,
			"total_amount": result.Order.TotalAmount.StringFixed(2),
			"currency":     result.Order.Currency,
			"status":       result.Order.Status,
		},
		"qr_code": qrCode,
		"tickets": result.Tickets,
	})
}

// HandleWebhook - Server-to-server confirmation from the gateway
func (h *PurchaseHandler) HandleWebhook(e *core.RequestEvent) error {
	body, err := io.ReadAll(e.Request.Body)
	if err != nil {
		return e.JSON(http.StatusBadRequest, map[string]any{"error": "Unreadable body"})
	}

	signature := e.Request.Header.Get("x-paystack-signature")
	if err := h.purchaseService.ValidateWebhook(body, signature); err != nil {
		monitoring.TrackWebhookSignatureFailure()
		slog.Warn("webhook rejected", "ip", e.RealIP(), "error", err)
		return e.JSON(http.StatusUnauthorized, map[string]any{"error": "Invalid signature"})
	}

	var event struct {
		Event string `json:"event"`
		Data  struct {
			Reference string `json:"reference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid payload"})
	}

	// only successful charges trigger issuance; everything else is acked
	if event.Event != "charge.success" {
		return e.JSON(http.StatusOK, map[string]any{"received": true})
	}

	ctx := e.Request.Context()

	result, err := h.purchaseService.Confirm(ctx, event.Data.Reference)
	if err != nil {
		monitoring.TrackPaymentConfirmed("webhook", "error")
		slog.Error("webhook confirm", "reference", event.Data.Reference, "error", err)

		if errors.Is(err, status.ErrNotFound) {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Order not found"})
		}
		return e.JSON(http.StatusInternalServerError, map[string]any{"error": "Something went wrong"})
	}

	if !result.AlreadyProcessed {
		monitoring.TrackPaymentConfirmed("webhook", "ok")
		monitoring.TrackTicketsIssued(len(result.Tickets))
	}

	return e.JSON(http.StatusOK, map[string]any{"received": true})
}

// GatewayConfig - Public key for client-side checkout initialization
func (h *PurchaseHandler) GatewayConfig(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, map[string]any{
		"public_key": h.purchaseService.GatewayPublicKey(),
		"currency":   h.currency,
	})
}

func (h *PurchaseHandler) purchaseError(e *core.RequestEvent, err error) error {
	slog.Error("initialize purchase", "error", err)

	switch {
	case errors.Is(err, status.ErrValidation):
		return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid purchase request"})
	case errors.Is(err, status.ErrNotFound):
		return e.JSON(http.StatusNotFound, map[string]any{"error": "Ticket not available"})
	case errors.Is(err, status.ErrGatewayFailure):
		return e.JSON(http.StatusBadRequest, map[string]any{"error": "Payment service unavailable, try again"})
	default:
		return e.JSON(http.StatusInternalServerError, map[string]any{"error": "Something went wrong"})
	}
}
