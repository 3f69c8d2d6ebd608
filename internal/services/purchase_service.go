package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"conference-system/internal/events"
	"conference-system/internal/gateway/paystack"
	"conference-system/internal/reference"
	"conference-system/internal/status"
	"conference-system/internal/store"
	"conference-system/internal/tax"
	"conference-system/models"

	"github.com/shopspring/decimal"
)

const maxQuantityPerOrder = 10

// Gateway abstracts the payment provider so tests can substitute doubles.
type Gateway interface {
	Initialize(ctx context.Context, req *paystack.InitializeRequest) (*paystack.InitializeResponse, error)
	Verify(ctx context.Context, ref string) (*paystack.Transaction, error)
	ValidateWebhook(body []byte, signature string) bool
	PublicKey() string
}

// Issuer mints tickets for a confirmed-paid order.
type Issuer interface {
	Issue(ctx context.Context, order *models.Order, ticketType *models.TicketType, count int) ([]*models.UserTicket, error)
}

// EventPublisher queues post-commit events (email dispatch is a consumer).
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// RealtimeNotifier pushes payment updates to connected checkout pages.
type RealtimeNotifier interface {
	NotifyPaymentSuccess(orderID, reference string, ticketNumbers []string)
}

// PurchaseService sequences the ticket purchase workflow:
// initiate → pending order + gateway checkout, confirm → verify,
// single paid transition, issuance, best-effort notification.
type PurchaseService struct {
	store    store.OrderStore
	gateway  Gateway
	issuer   Issuer
	eventBus EventPublisher
	realtime RealtimeNotifier

	refPrefix string
	currency  string
}

func NewPurchaseService(
	orderStore store.OrderStore,
	gateway Gateway,
	issuer Issuer,
	eventBus EventPublisher,
	realtime RealtimeNotifier,
	refPrefix, currency string,
) *PurchaseService {
	return &PurchaseService{
		store:     orderStore,
		gateway:   gateway,
		issuer:    issuer,
		eventBus:  eventBus,
		realtime:  realtime,
		refPrefix: refPrefix,
		currency:  currency,
	}
}

type InitiateRequest struct {
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	UserID       string `json:"-"`
}

type InitiateResult struct {
	OrderID          string        `json:"order_id"`
	Reference        string        `json:"reference"`
	Amount           int64         `json:"amount"` // pesewas
	AuthorizationURL string        `json:"authorization_url"`
	AccessCode       string        `json:"access_code"`
	Breakdown        tax.Breakdown `json:"breakdown"`
}

type ConfirmResult struct {
	Order            *models.Order        `json:"order"`
	Tickets          []*models.UserTicket `json:"tickets"`
	AlreadyProcessed bool                 `json:"already_processed"`
}

func (r *InitiateRequest) validate() error {
	switch {
	case r.TicketTypeID == "":
		return fmt.Errorf("ticket_type_id is required: %w", status.ErrValidation)
	case r.Quantity < 1 || r.Quantity > maxQuantityPerOrder:
		return fmt.Errorf("quantity must be between 1 and %d: %w", maxQuantityPerOrder, status.ErrValidation)
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("name is required: %w", status.ErrValidation)
	case !strings.Contains(r.Email, "@"):
		return fmt.Errorf("valid email is required: %w", status.ErrValidation)
	}
	return nil
}

// Initiate validates the request, prices the order with the statutory
// levies, persists it pending and opens a gateway checkout session.
// Validation failures persist nothing.
func (s *PurchaseService) Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	ticketType, err := s.store.FindTicketType(ctx, req.TicketTypeID)
	if err != nil {
		return nil, err
	}
	if !ticketType.Active {
		return nil, fmt.Errorf("ticket %q is not on sale: %w", ticketType.Name, status.ErrNotFound)
	}

	subtotal := ticketType.Price.Mul(decimalFromInt(req.Quantity))
	breakdown := tax.Calculate(subtotal)

	ref, err := reference.New(s.refPrefix)
	if err != nil {
		return nil, fmt.Errorf("Initiate: %w", err)
	}

	order, err := s.store.CreateOrder(ctx, store.CreateOrderInput{
		TicketTypeID:  ticketType.ID,
		Quantity:      req.Quantity,
		Subtotal:      subtotal,
		TotalAmount:   breakdown.Total,
		Currency:      s.currency,
		Reference:     ref,
		CustomerName:  strings.TrimSpace(req.Name),
		CustomerEmail: strings.TrimSpace(req.Email),
		CustomerPhone: strings.TrimSpace(req.Phone),
		UserID:        req.UserID,
	})
	if err != nil {
		return nil, err
	}

	amount := paystack.CedisToPesewas(breakdown.Total)

	init, err := s.gateway.Initialize(ctx, &paystack.InitializeRequest{
		Email:     order.CustomerEmail,
		Amount:    amount,
		Reference: ref,
		Currency:  s.currency,
		Metadata: map[string]any{
			"order_id":    order.ID,
			"ticket_type": ticketType.Name,
			"quantity":    req.Quantity,
		},
	})
	if err != nil {
		// keep the audit trail but make the order unusable for payment
		if failErr := s.store.MarkOrderFailed(ctx, order.ID); failErr != nil {
			slog.Error("purchase.Initiate: mark failed", "order_id", order.ID, "error", failErr)
		}
		return nil, err
	}

	return &InitiateResult{
		OrderID:          order.ID,
		Reference:        ref,
		Amount:           amount,
		AuthorizationURL: init.AuthorizationURL,
		AccessCode:       init.AccessCode,
		Breakdown:        breakdown,
	}, nil
}

// Confirm resolves a payment reference to issued tickets. It is entered
// from the signed webhook or the client verify call; both converge on
// one pending→paid transition via the store's conditional update.
func (s *PurchaseService) Confirm(ctx context.Context, ref string) (*ConfirmResult, error) {
	order, err := s.store.FindOrderByReference(ctx, ref)
	if err != nil {
		return nil, err
	}

	// already confirmed: return the existing ticket set, topping up any
	// units a failed earlier issuance left behind
	if order.Status == models.OrderStatusPaid {
		return s.resumePaidOrder(ctx, order)
	}

	tx, err := s.gateway.Verify(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !tx.Succeeded() {
		// order stays pending so a later retry with the same reference works
		return nil, fmt.Errorf("transaction %s not successful (%s): %w", ref, tx.Status, status.ErrGatewayFailure)
	}

	payload, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("Confirm: marshal gateway payload: %w", err)
	}

	won, err := s.store.MarkOrderPaid(ctx, order.ID, payload)
	if err != nil {
		return nil, err
	}
	if !won {
		// a concurrent confirmation already transitioned and issued
		order.Status = models.OrderStatusPaid
		return s.resumePaidOrder(ctx, order)
	}

	ticketType, err := s.store.FindTicketType(ctx, order.TicketTypeID)
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusPaid
	tickets, err := s.issuer.Issue(ctx, order, ticketType, order.Quantity)
	if err != nil {
		// the order is paid; the next Confirm mints the missing units
		return nil, err
	}

	s.publishOrderPaid(ctx, order, ticketType, tickets)

	if s.realtime != nil {
		s.realtime.NotifyPaymentSuccess(order.ID, ref, ticketNumbers(tickets))
	}

	return &ConfirmResult{Order: order, Tickets: tickets}, nil
}

// resumePaidOrder returns the ticket set of an order that already
// transitioned to paid. When an earlier confirmation died partway through
// issuance the order holds fewer tickets than its quantity; the missing
// units are minted here so every paid order converges on a full set.
func (s *PurchaseService) resumePaidOrder(ctx context.Context, order *models.Order) (*ConfirmResult, error) {
	tickets, err := s.store.ListTicketsByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	if missing := order.Quantity - len(tickets); missing > 0 {
		ticketType, err := s.store.FindTicketType(ctx, order.TicketTypeID)
		if err != nil {
			return nil, err
		}

		minted, err := s.issuer.Issue(ctx, order, ticketType, missing)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, minted...)

		// the interrupted confirmation never reached the notification
		// steps either
		s.publishOrderPaid(ctx, order, ticketType, tickets)
		if s.realtime != nil {
			s.realtime.NotifyPaymentSuccess(order.ID, order.Reference, ticketNumbers(tickets))
		}
	}

	return &ConfirmResult{Order: order, Tickets: tickets, AlreadyProcessed: true}, nil
}

// GatewayPublicKey exposes the key for client-side checkout init.
func (s *PurchaseService) GatewayPublicKey() string {
	return s.gateway.PublicKey()
}

// ValidateWebhook delegates to the gateway's signature check.
func (s *PurchaseService) ValidateWebhook(body []byte, signature string) error {
	if !s.gateway.ValidateWebhook(body, signature) {
		return fmt.Errorf("webhook signature mismatch: %w", status.ErrInvalidSignature)
	}
	return nil
}

func (s *PurchaseService) publishOrderPaid(ctx context.Context, order *models.Order, ticketType *models.TicketType, tickets []*models.UserTicket) {
	if s.eventBus == nil {
		return
	}

	event := events.OrderPaid{
		Header:        events.NewHeader(),
		OrderID:       order.ID,
		Reference:     order.Reference,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		TicketType:    ticketType.Name,
		TicketNumbers: ticketNumbers(tickets),
		Quantity:      order.Quantity,
		TotalAmount:   order.TotalAmount.StringFixed(2),
		Currency:      order.Currency,
	}

	// best effort: the purchase is already committed
	if err := s.eventBus.Publish(ctx, event); err != nil {
		slog.Error("purchase.Confirm: publish OrderPaid", "order_id", order.ID, "error", err)
	}
}

func ticketNumbers(tickets []*models.UserTicket) []string {
	numbers := make([]string, 0, len(tickets))
	for _, ticket := range tickets {
		numbers = append(numbers, ticket.TicketNumber)
	}
	return numbers
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
