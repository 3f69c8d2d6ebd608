package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketType is a catalog entry sold on the tickets page.
type TicketType struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     string          `json:"type"` // category label: regular, student, vip
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Active   bool            `json:"active"`
}

// UserTicket is one issued admission ticket belonging to a paid order.
type UserTicket struct {
	ID            string     `json:"id"`
	OrderID       string     `json:"order_id"`
	TicketNumber  string     `json:"ticket_number"`
	QRCode        string     `json:"qr_code"` // PNG data URL
	AttendeeName  string     `json:"attendee_name"`
	AttendeeEmail string     `json:"attendee_email"`
	CheckedIn     bool       `json:"checked_in"`
	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
}

// QRPayload is the serialized contract embedded in a ticket's QR image.
// Version lets future decoders evolve without breaking issued tickets.
type QRPayload struct {
	Version       int    `json:"v"`
	TicketNumber  string `json:"ticket_number"`
	OrderID       string `json:"order_id"`
	AttendeeName  string `json:"attendee_name"`
	AttendeeEmail string `json:"attendee_email"`
	TicketType    string `json:"ticket_type"`
	PurchasedAt   string `json:"purchased_at"`
	EventName     string `json:"event_name"`
	EventDate     string `json:"event_date"`
	EventVenue    string `json:"event_venue"`
}
