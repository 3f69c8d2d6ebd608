package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"conference-system/internal/store"
	"conference-system/models"

	qrcode "github.com/skip2/go-qrcode"
)

// qrPayloadVersion tags the QR serialization contract so scanners can
// evolve without breaking already-issued tickets.
const qrPayloadVersion = 1

const qrImageSize = 256

// ticketSeq is process-wide so concurrent orders never mint the same
// number within one millisecond.
var ticketSeq atomic.Uint64

// EventInfo is the fixed event metadata stamped into every QR payload.
type EventInfo struct {
	Name  string
	Date  string
	Venue string
}

// TicketIssuer mints one UserTicket per purchased unit of a paid order.
// It does not guard idempotency itself; the purchase service decides how
// many units are still owed before each invocation.
type TicketIssuer struct {
	store  store.OrderStore
	event  EventInfo
	prefix string
}

func NewTicketIssuer(orderStore store.OrderStore, event EventInfo, numberPrefix string) *TicketIssuer {
	return &TicketIssuer{
		store:  orderStore,
		event:  event,
		prefix: numberPrefix,
	}
}

// Issue creates count tickets for the order, each with a unique ticket
// number and a scannable QR image, and returns the created records.
// Count is passed separately from order.Quantity so an interrupted
// issuance can be resumed by minting only the missing units.
func (i *TicketIssuer) Issue(ctx context.Context, order *models.Order, ticketType *models.TicketType, count int) ([]*models.UserTicket, error) {
	tickets := make([]*models.UserTicket, 0, count)

	for unit := 1; unit <= count; unit++ {
		number := i.NextTicketNumber()

		payload := models.QRPayload{
			Version:       qrPayloadVersion,
			TicketNumber:  number,
			OrderID:       order.ID,
			AttendeeName:  order.CustomerName,
			AttendeeEmail: order.CustomerEmail,
			TicketType:    ticketType.Name,
			PurchasedAt:   time.Now().UTC().Format(time.RFC3339),
			EventName:     i.event.Name,
			EventDate:     i.event.Date,
			EventVenue:    i.event.Venue,
		}

		qrImage, err := EncodeQRPayload(payload)
		if err != nil {
			return nil, fmt.Errorf("issuer.Issue: unit %d: %w", unit, err)
		}

		ticket, err := i.store.CreateUserTicket(ctx, store.CreateUserTicketInput{
			OrderID:       order.ID,
			TicketNumber:  number,
			QRCode:        qrImage,
			AttendeeName:  order.CustomerName,
			AttendeeEmail: order.CustomerEmail,
		})
		if err != nil {
			return nil, fmt.Errorf("issuer.Issue: unit %d: %w", unit, err)
		}

		tickets = append(tickets, ticket)
	}

	return tickets, nil
}

// NextTicketNumber returns a human-readable number unique across
// concurrent orders: prefix, millisecond timestamp, global sequence.
func (i *TicketIssuer) NextTicketNumber() string {
	seq := ticketSeq.Add(1)
	return fmt.Sprintf("%s-%d-%04d", i.prefix, time.Now().UnixMilli(), seq%10000)
}

// EncodeQRPayload serializes the payload and renders it as a PNG QR
// image (error correction level M), returned as a data URL.
func EncodeQRPayload(payload models.QRPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("EncodeQRPayload: json.Marshal: %w", err)
	}

	png, err := qrcode.Encode(string(data), qrcode.Medium, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("EncodeQRPayload: qrcode.Encode: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// DecodeQRPayload parses a payload previously produced by EncodeQRPayload's
// JSON stage. Used by check-in tooling and tests.
func DecodeQRPayload(data []byte) (*models.QRPayload, error) {
	var payload models.QRPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("DecodeQRPayload: %w", err)
	}
	return &payload, nil
}
