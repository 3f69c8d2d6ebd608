package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"conference-system/internal/events"
	"conference-system/internal/gateway/paystack"
	"conference-system/internal/status"
	"conference-system/internal/store"
	"conference-system/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu          sync.Mutex
	ticketTypes map[string]*models.TicketType
	orders      map[string]*models.Order
	tickets     map[string][]*models.UserTicket
	seq         int

	forceLoseRace bool

	// failTicketsAfter > 0 makes CreateUserTicket fail once the order
	// already holds that many tickets, simulating a mid-issuance crash
	failTicketsAfter int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		ticketTypes: map[string]*models.TicketType{},
		orders:      map[string]*models.Order{},
		tickets:     map[string][]*models.UserTicket{},
	}
}

func (f *fakeStore) addTicketType(tt *models.TicketType) {
	f.ticketTypes[tt.ID] = tt
}

func (f *fakeStore) FindTicketType(ctx context.Context, id string) (*models.TicketType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tt, ok := f.ticketTypes[id]
	if !ok {
		return nil, fmt.Errorf("ticket type %s: %w", id, status.ErrNotFound)
	}
	copied := *tt
	return &copied, nil
}

func (f *fakeStore) CreateOrder(ctx context.Context, in store.CreateOrderInput) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	order := &models.Order{
		ID:            fmt.Sprintf("order%d", f.seq),
		TicketTypeID:  in.TicketTypeID,
		Quantity:      in.Quantity,
		Subtotal:      in.Subtotal,
		TotalAmount:   in.TotalAmount,
		Currency:      in.Currency,
		Status:        models.OrderStatusPending,
		Reference:     in.Reference,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		UserID:        in.UserID,
	}
	f.orders[order.ID] = order
	copied := *order
	return &copied, nil
}

func (f *fakeStore) FindOrderByReference(ctx context.Context, reference string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.Reference == reference {
			copied := *order
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("order %s: %w", reference, status.ErrNotFound)
}

func (f *fakeStore) MarkOrderPaid(ctx context.Context, orderID string, gatewayPayload []byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forceLoseRace {
		return false, nil
	}
	order, ok := f.orders[orderID]
	if !ok {
		return false, fmt.Errorf("order %s: %w", orderID, status.ErrNotFound)
	}
	if order.Status != models.OrderStatusPending {
		return false, nil
	}
	order.Status = models.OrderStatusPaid
	return true, nil
}

func (f *fakeStore) MarkOrderFailed(ctx context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, status.ErrNotFound)
	}
	if order.Status != models.OrderStatusPaid {
		order.Status = models.OrderStatusFailed
	}
	return nil
}

func (f *fakeStore) CreateUserTicket(ctx context.Context, in store.CreateUserTicketInput) (*models.UserTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTicketsAfter > 0 && len(f.tickets[in.OrderID]) >= f.failTicketsAfter {
		return nil, fmt.Errorf("create ticket: %w", status.ErrPersistence)
	}
	f.seq++
	ticket := &models.UserTicket{
		ID:            fmt.Sprintf("ticket%d", f.seq),
		OrderID:       in.OrderID,
		TicketNumber:  in.TicketNumber,
		QRCode:        in.QRCode,
		AttendeeName:  in.AttendeeName,
		AttendeeEmail: in.AttendeeEmail,
	}
	f.tickets[in.OrderID] = append(f.tickets[in.OrderID], ticket)
	copied := *ticket
	return &copied, nil
}

func (f *fakeStore) ListTicketsByOrder(ctx context.Context, orderID string) ([]*models.UserTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.UserTicket, 0, len(f.tickets[orderID]))
	for _, ticket := range f.tickets[orderID] {
		copied := *ticket
		out = append(out, &copied)
	}
	return out, nil
}

type fakeGateway struct {
	initErr       error
	initCalls     int
	verifyTx      *paystack.Transaction
	verifyErr     error
	verifyCalls   int
	rejectWebhook bool
}

func (g *fakeGateway) Initialize(ctx context.Context, req *paystack.InitializeRequest) (*paystack.InitializeResponse, error) {
	g.initCalls++
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &paystack.InitializeResponse{
		AuthorizationURL: "https://checkout.paystack.com/abc123",
		AccessCode:       "abc123",
		Reference:        req.Reference,
	}, nil
}

func (g *fakeGateway) Verify(ctx context.Context, ref string) (*paystack.Transaction, error) {
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.verifyTx, nil
}

func (g *fakeGateway) ValidateWebhook(body []byte, signature string) bool { return !g.rejectWebhook }

func (g *fakeGateway) PublicKey() string { return "pk_test_abc" }

type fakeBus struct {
	mu        sync.Mutex
	published []any
}

func (b *fakeBus) Publish(ctx context.Context, event any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
	return nil
}

func newTestService(st *fakeStore, gw *fakeGateway, bus *fakeBus) *PurchaseService {
	issuer := NewTicketIssuer(st, EventInfo{
		Name:  "DevCongress Accra",
		Date:  "2026-11-14",
		Venue: "Accra International Conference Centre",
	}, "ACC")
	return NewPurchaseService(st, gw, issuer, bus, nil, "CONF", "GHS")
}

func regularTicketType() *models.TicketType {
	return &models.TicketType{
		ID:       "tt1",
		Name:     "Regular",
		Type:     "regular",
		Price:    decimal.NewFromInt(100),
		Currency: "GHS",
		Active:   true,
	}
}

func TestPurchaseService_Initiate_CreatesPendingOrder(t *testing.T) {
	st := newFakeStore()
	st.addTicketType(regularTicketType())
	gw := &fakeGateway{}
	svc := newTestService(st, gw, &fakeBus{})

	result, err := svc.Initiate(context.Background(), &InitiateRequest{
		TicketTypeID: "tt1",
		Quantity:     2,
		Name:         "Ama Mensah",
		Email:        "ama@example.com",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Reference, "CONF-"))
	assert.Equal(t, "https://checkout.paystack.com/abc123", result.AuthorizationURL)

	// 2 x 100.00 priced with levies and VAT, charged in pesewas
	assert.Equal(t, int64(24380), result.Amount)
	assert.Equal(t, "243.80", result.Breakdown.Total.StringFixed(2))

	order, err := st.FindOrderByReference(context.Background(), result.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 2, order.Quantity)
	assert.Equal(t, "200.00", order.Subtotal.StringFixed(2))
}

func TestPurchaseService_Initiate_ValidationPersistsNothing(t *testing.T) {
	st := newFakeStore()
	st.addTicketType(regularTicketType())
	gw := &fakeGateway{}
	svc := newTestService(st, gw, &fakeBus{})

	cases := []InitiateRequest{
		{TicketTypeID: "", Quantity: 1, Name: "Ama", Email: "ama@example.com"},
		{TicketTypeID: "tt1", Quantity: 0, Name: "Ama", Email: "ama@example.com"},
		{TicketTypeID: "tt1", Quantity: 11, Name: "Ama", Email: "ama@example.com"},
		{TicketTypeID: "tt1", Quantity: 1, Name: "  ", Email: "ama@example.com"},
		{TicketTypeID: "tt1", Quantity: 1, Name: "Ama", Email: "not-an-email"},
	}
	for _, req := range cases {
		_, err := svc.Initiate(context.Background(), &req)
		assert.ErrorIs(t, err, status.ErrValidation)
	}

	assert.Empty(t, st.orders)
	assert.Zero(t, gw.initCalls)
}

func TestPurchaseService_Initiate_InactiveTicketType(t *testing.T) {
	st := newFakeStore()
	tt := regularTicketType()
	tt.Active = false
	st.addTicketType(tt)
	svc := newTestService(st, &fakeGateway{}, &fakeBus{})

	_, err := svc.Initiate(context.Background(), &InitiateRequest{
		TicketTypeID: "tt1",
		Quantity:     1,
		Name:         "Ama Mensah",
		Email:        "ama@example.com",
	})
	assert.ErrorIs(t, err, status.ErrNotFound)
	assert.Empty(t, st.orders)
}

func TestPurchaseService_Initiate_GatewayFailureMarksOrderFailed(t *testing.T) {
	st := newFakeStore()
	st.addTicketType(regularTicketType())
	gw := &fakeGateway{initErr: fmt.Errorf("gateway down: %w", status.ErrGatewayFailure)}
	svc := newTestService(st, gw, &fakeBus{})

	_, err := svc.Initiate(context.Background(), &InitiateRequest{
		TicketTypeID: "tt1",
		Quantity:     1,
		Name:         "Ama Mensah",
		Email:        "ama@example.com",
	})
	assert.ErrorIs(t, err, status.ErrGatewayFailure)

	// the order stays for audit but can never be paid
	require.Len(t, st.orders, 1)
	for _, order := range st.orders {
		assert.Equal(t, models.OrderStatusFailed, order.Status)
	}
}

func TestPurchaseService_Confirm_IssuesTicketsOnce(t *testing.T) {
	st := newFakeStore()
	st.addTicketType(regularTicketType())
	gw := &fakeGateway{}
	bus := &fakeBus{}
	svc := newTestService(st, gw, bus)

	init, err := svc.Initiate(context.Background(), &InitiateRequest{
		TicketTypeID: "tt1",
		Quantity:     3,
		Name:         "Ama Mensah",
		Email:        "ama@example.com",
	})
	require.NoError(t, err)

	gw.verifyTx = &paystack.Transaction{
		Status:    "success",
		Reference: init.Reference,
		Amount:    init.Amount,
		Currency:  "GHS",
	}

	first, err := svc.Confirm(context.Background(), init.Reference)
	require.NoError(t, err)
	assert.False(t, first.AlreadyProcessed)
	require.Len(t, first.Tickets, 3)

	seen := map[string]bool{}
	for _, ticket := range first.Tickets {
		assert.True(t, strings.HasPrefix(ticket.TicketNumber, "ACC-"))
		assert.False(t, seen[ticket.TicketNumber], "duplicate ticket number %s", ticket.TicketNumber)
		seen[ticket.TicketNumber] = true
		assert.True(t, strings.HasPrefix(ticket.QRCode, "data:image/png;base64,"))
	}

	// second confirmation must return the same set, not mint new tickets
	second, err := svc.Confirm(context.Background(), init.Reference)
	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)
	require.Len(t, second.Tickets, 3)
	for _, ticket := range second.Tickets {
		assert.True(t, seen[ticket.TicketNumber])
	}

	assert.Equal(t, 1, gw.verifyCalls)
	require.Len(t, bus.published, 1)
	paid, ok := bus.published[0].(events.OrderPaid)
	require.True(t, ok)
	assert.Equal(t, init.Reference, paid.Reference)
	assert.Len(t, paid.TicketNumbers, 3)
}

func TestPurchaseService_Confirm_FailedTransactionStaysPending(t *testing.T) {
	st := newFakeStore()
	st.addTicketType(regularTicketType())
	gw := &fakeGateway{}
	svc := newTestService(st, gw, &fakeBus{})

	init, err := svc.Initiate(context.Background(), &InitiateRequest{
		TicketTypeID: "tt1",
		Quantity:     1,
		Name:         "Ama Mensah",
		Email:        "ama@example.com",
	})
	require.NoError(t, err)

	gw.verifyTx = &paystack.Transaction{Status: "failed", Reference: init.Reference}

	_, err = svc.Confirm(context.Background(), init.Reference)
	assert.ErrorIs(t, err, status.ErrGatewayFailure)

	order, err := st.FindOrderByReference(context.Background(), init.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Empty(t, st.tickets[order.ID])
}

func TestPurchaseService_Confirm_UnknownReference(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeGateway{}, &fakeBus{})

	_, err := svc.Confirm(context.Background(), "CONF-000-XXXX")
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestPurchaseService_Confirm_LostRaceReturnsExistingTickets(t *testing.T) {
	st := newFakeStore()
	st.addTicketType(regularTicketType())
	gw := &fakeGateway{}
	bus := &fakeBus{}
	svc := newTestService(st, gw, bus)

	init, err := svc.Initiate(context.Background(), &InitiateRequest{
		TicketTypeID: "tt1",
		Quantity:     1,
		Name:         "Ama Mensah",
		Email:        "ama@example.com",
	})
	require.NoError(t, err)

	order, err := st.FindOrderByReference(context.Background(), init.Reference)
	require.NoError(t, err)

	// the concurrent winner already issued this ticket
	existing, err := st.CreateUserTicket(context.Background(), store.CreateUserTicketInput{
		OrderID:      order.ID,
		TicketNumber: "ACC-1-0001",
	})
	require.NoError(t, err)

	st.forceLoseRace = true
	gw.verifyTx = &paystack.Transaction{Status: "success", Reference: init.Reference}

	result, err := svc.Confirm(context.Background(), init.Reference)
	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)
	require.Len(t, result.Tickets, 1)
	assert.Equal(t, existing.TicketNumber, result.Tickets[0].TicketNumber)
	assert.Empty(t, bus.published)
}

func TestPurchaseService_Confirm_ResumesPartialIssuance(t *testing.T) {
	st := newFakeStore()
	st.addTicketType(regularTicketType())
	gw := &fakeGateway{}
	bus := &fakeBus{}
	svc := newTestService(st, gw, bus)

	init, err := svc.Initiate(context.Background(), &InitiateRequest{
		TicketTypeID: "tt1",
		Quantity:     3,
		Name:         "Ama Mensah",
		Email:        "ama@example.com",
	})
	require.NoError(t, err)

	gw.verifyTx = &paystack.Transaction{Status: "success", Reference: init.Reference}

	// issuance dies after the first ticket, past the paid transition
	st.failTicketsAfter = 1
	_, err = svc.Confirm(context.Background(), init.Reference)
	require.Error(t, err)

	order, err := st.FindOrderByReference(context.Background(), init.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Len(t, st.tickets[order.ID], 1)
	assert.Empty(t, bus.published)

	// the retry mints the two missing units instead of shipping a short set
	st.failTicketsAfter = 0
	result, err := svc.Confirm(context.Background(), init.Reference)
	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)
	require.Len(t, result.Tickets, 3)

	seen := map[string]bool{}
	for _, ticket := range result.Tickets {
		assert.False(t, seen[ticket.TicketNumber], "duplicate ticket number %s", ticket.TicketNumber)
		seen[ticket.TicketNumber] = true
	}

	// the interrupted run never notified; the completing run does, once
	require.Len(t, bus.published, 1)
	paid, ok := bus.published[0].(events.OrderPaid)
	require.True(t, ok)
	assert.Len(t, paid.TicketNumbers, 3)

	// already-paid orders are not re-verified with the gateway
	assert.Equal(t, 1, gw.verifyCalls)

	// a further confirm is a plain idempotent read
	again, err := svc.Confirm(context.Background(), init.Reference)
	require.NoError(t, err)
	assert.Len(t, again.Tickets, 3)
	assert.Len(t, bus.published, 1)
}

func TestPurchaseService_ValidateWebhook(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(newFakeStore(), gw, &fakeBus{})

	assert.NoError(t, svc.ValidateWebhook([]byte(`{}`), "sig"))

	gw.rejectWebhook = true
	err := svc.ValidateWebhook([]byte(`{}`), "bad")
	assert.ErrorIs(t, err, status.ErrInvalidSignature)
}

func TestPurchaseService_GatewayPublicKey(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeGateway{}, &fakeBus{})
	assert.Equal(t, "pk_test_abc", svc.GatewayPublicKey())
}
