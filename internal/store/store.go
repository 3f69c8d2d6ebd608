package store

import (
	"context"

	"conference-system/models"

	"github.com/shopspring/decimal"
)

type CreateOrderInput struct {
	TicketTypeID  string
	Quantity      int
	Subtotal      decimal.Decimal
	TotalAmount   decimal.Decimal
	Currency      string
	Reference     string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	UserID        string
}

type CreateUserTicketInput struct {
	OrderID       string
	TicketNumber  string
	QRCode        string
	AttendeeName  string
	AttendeeEmail string
}

// OrderStore is the persistence surface of the purchase workflow. The
// orchestrator depends on this interface so tests can substitute doubles.
type OrderStore interface {
	FindTicketType(ctx context.Context, id string) (*models.TicketType, error)

	CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error)
	FindOrderByReference(ctx context.Context, reference string) (*models.Order, error)

	// MarkOrderPaid performs the single authoritative pending→paid
	// transition as a conditional update. It returns false when the
	// order was no longer pending, i.e. another confirmation won.
	MarkOrderPaid(ctx context.Context, orderID string, gatewayPayload []byte) (bool, error)

	MarkOrderFailed(ctx context.Context, orderID string) error

	CreateUserTicket(ctx context.Context, in CreateUserTicketInput) (*models.UserTicket, error)
	ListTicketsByOrder(ctx context.Context, orderID string) ([]*models.UserTicket, error)
}
