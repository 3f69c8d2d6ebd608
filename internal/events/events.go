package events

import (
	"time"

	"github.com/google/uuid"
)

// Header is attached to every published event.
type Header struct {
	ID         string `json:"id"`
	OccurredAt string `json:"occurred_at"`
}

func NewHeader() Header {
	return Header{
		ID:         uuid.NewString(),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// OrderPaid is published after the pending→paid transition commits and
// tickets are issued. Consumers are best-effort: the purchase itself is
// already authoritative when this event exists.
type OrderPaid struct {
	Header Header `json:"header"`

	OrderID       string   `json:"order_id"`
	Reference     string   `json:"reference"`
	CustomerName  string   `json:"customer_name"`
	CustomerEmail string   `json:"customer_email"`
	TicketType    string   `json:"ticket_type"`
	TicketNumbers []string `json:"ticket_numbers"`
	Quantity      int      `json:"quantity"`
	TotalAmount   string   `json:"total_amount"`
	Currency      string   `json:"currency"`
}
