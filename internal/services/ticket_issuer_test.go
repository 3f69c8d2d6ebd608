package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"conference-system/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIssuer(st *fakeStore) *TicketIssuer {
	return NewTicketIssuer(st, EventInfo{
		Name:  "DevCongress Accra",
		Date:  "2026-11-14",
		Venue: "Accra International Conference Centre",
	}, "ACC")
}

func TestTicketIssuer_Issue_OneTicketPerUnit(t *testing.T) {
	st := newFakeStore()
	issuer := testIssuer(st)

	order := &models.Order{
		ID:            "order1",
		Quantity:      4,
		Status:        models.OrderStatusPaid,
		CustomerName:  "Kofi Boateng",
		CustomerEmail: "kofi@example.com",
	}
	ticketType := &models.TicketType{ID: "tt1", Name: "VIP", Price: decimal.NewFromInt(400)}

	tickets, err := issuer.Issue(context.Background(), order, ticketType, order.Quantity)
	require.NoError(t, err)
	require.Len(t, tickets, 4)

	seen := map[string]bool{}
	for _, ticket := range tickets {
		assert.Equal(t, "order1", ticket.OrderID)
		assert.Equal(t, "Kofi Boateng", ticket.AttendeeName)
		assert.False(t, seen[ticket.TicketNumber])
		seen[ticket.TicketNumber] = true
	}
}

func TestTicketIssuer_Issue_PartialCount(t *testing.T) {
	st := newFakeStore()
	issuer := testIssuer(st)

	order := &models.Order{
		ID:            "order1",
		Quantity:      4,
		Status:        models.OrderStatusPaid,
		CustomerName:  "Kofi Boateng",
		CustomerEmail: "kofi@example.com",
	}
	ticketType := &models.TicketType{ID: "tt1", Name: "VIP", Price: decimal.NewFromInt(400)}

	// resuming after a crash mints only the units still owed
	tickets, err := issuer.Issue(context.Background(), order, ticketType, 2)
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
}

func TestTicketIssuer_NextTicketNumber_Format(t *testing.T) {
	issuer := testIssuer(newFakeStore())

	number := issuer.NextTicketNumber()
	parts := strings.Split(number, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "ACC", parts[0])
	assert.Len(t, parts[2], 4)
}

func TestTicketIssuer_NextTicketNumber_DistinctUnderConcurrency(t *testing.T) {
	issuer := testIssuer(newFakeStore())

	const n = 1000
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		go func() { numbers <- issuer.NextTicketNumber() }()
	}

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		number := <-numbers
		assert.False(t, seen[number], "duplicate ticket number %s", number)
		seen[number] = true
	}
}

func TestEncodeQRPayload_RoundTrip(t *testing.T) {
	payload := models.QRPayload{
		Version:       1,
		TicketNumber:  "ACC-1700000000000-0001",
		OrderID:       "order1",
		AttendeeName:  "Kofi Boateng",
		AttendeeEmail: "kofi@example.com",
		TicketType:    "VIP",
		PurchasedAt:   "2026-09-01T10:00:00Z",
		EventName:     "DevCongress Accra",
		EventDate:     "2026-11-14",
		EventVenue:    "Accra International Conference Centre",
	}

	image, err := EncodeQRPayload(payload)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(image, "data:image/png;base64,"))

	// the JSON stage of the encoding must decode back to the same payload
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	decoded, err := DecodeQRPayload(data)
	require.NoError(t, err)
	assert.Equal(t, payload, *decoded)
	assert.Equal(t, 1, decoded.Version)
}

func TestDecodeQRPayload_Invalid(t *testing.T) {
	_, err := DecodeQRPayload([]byte("not json"))
	assert.Error(t, err)
}
