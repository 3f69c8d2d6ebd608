package pb

import (
	"context"
	"fmt"

	"conference-system/internal/status"
	"conference-system/internal/store"
	"conference-system/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

// Store persists the purchase workflow against PocketBase collections.
type Store struct {
	app core.App
}

func NewStore(app core.App) *Store {
	return &Store{app: app}
}

func (s *Store) FindTicketType(ctx context.Context, id string) (*models.TicketType, error) {
	record, err := s.app.FindRecordById("ticket_types", id)
	if err != nil {
		return nil, fmt.Errorf("FindTicketType: %s: %w", id, status.ErrNotFound)
	}

	return &models.TicketType{
		ID:       record.Id,
		Name:     record.GetString("name"),
		Type:     record.GetString("type"),
		Price:    decimal.NewFromFloat(record.GetFloat("price")),
		Currency: record.GetString("currency"),
		Active:   record.GetBool("active"),
	}, nil
}

func (s *Store) CreateOrder(ctx context.Context, in store.CreateOrderInput) (*models.Order, error) {
	collection, err := s.app.FindCollectionByNameOrId("orders")
	if err != nil {
		return nil, fmt.Errorf("CreateOrder: %w: %w", status.ErrPersistence, err)
	}

	record := core.NewRecord(collection)
	record.Set("ticket_type", in.TicketTypeID)
	record.Set("quantity", in.Quantity)
	record.Set("subtotal", in.Subtotal.InexactFloat64())
	record.Set("total_amount", in.TotalAmount.InexactFloat64())
	record.Set("currency", in.Currency)
	record.Set("status", models.OrderStatusPending)
	record.Set("reference", in.Reference)
	record.Set("customer_name", in.CustomerName)
	record.Set("customer_email", in.CustomerEmail)
	record.Set("customer_phone", in.CustomerPhone)
	if in.UserID != "" {
		record.Set("user", in.UserID)
	}

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return nil, fmt.Errorf("CreateOrder: %w: %w", status.ErrPersistence, err)
	}

	return orderFromRecord(record), nil
}

func (s *Store) FindOrderByReference(ctx context.Context, reference string) (*models.Order, error) {
	record, err := s.app.FindFirstRecordByFilter(
		"orders",
		"reference = {:ref}",
		dbx.Params{"ref": reference},
	)
	if err != nil {
		return nil, fmt.Errorf("FindOrderByReference: %s: %w", reference, status.ErrNotFound)
	}

	return orderFromRecord(record), nil
}

// MarkOrderPaid runs a conditional UPDATE so that concurrent confirmation
// attempts (webhook vs client poll) converge on exactly one transition.
func (s *Store) MarkOrderPaid(ctx context.Context, orderID string, gatewayPayload []byte) (bool, error) {
	now := types.NowDateTime()

	res, err := s.app.NonconcurrentDB().NewQuery(
		`UPDATE orders SET status = {:paid}, paid_at = {:now}, gateway_payload = {:payload}, updated = {:now}
		 WHERE id = {:id} AND status = {:pending}`,
	).Bind(dbx.Params{
		"paid":    models.OrderStatusPaid,
		"pending": models.OrderStatusPending,
		"now":     now.String(),
		"payload": string(gatewayPayload),
		"id":      orderID,
	}).WithContext(ctx).Execute()
	if err != nil {
		return false, fmt.Errorf("MarkOrderPaid: %w: %w", status.ErrPersistence, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("MarkOrderPaid: rows affected: %w", err)
	}

	return rows == 1, nil
}

func (s *Store) MarkOrderFailed(ctx context.Context, orderID string) error {
	record, err := s.app.FindRecordById("orders", orderID)
	if err != nil {
		return fmt.Errorf("MarkOrderFailed: %s: %w", orderID, status.ErrNotFound)
	}

	// a paid order never regresses to failed
	if record.GetString("status") == models.OrderStatusPaid {
		return nil
	}

	record.Set("status", models.OrderStatusFailed)
	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return fmt.Errorf("MarkOrderFailed: %w: %w", status.ErrPersistence, err)
	}
	return nil
}

func (s *Store) CreateUserTicket(ctx context.Context, in store.CreateUserTicketInput) (*models.UserTicket, error) {
	collection, err := s.app.FindCollectionByNameOrId("user_tickets")
	if err != nil {
		return nil, fmt.Errorf("CreateUserTicket: %w: %w", status.ErrPersistence, err)
	}

	record := core.NewRecord(collection)
	record.Set("order", in.OrderID)
	record.Set("ticket_number", in.TicketNumber)
	record.Set("qr_code", in.QRCode)
	record.Set("attendee_name", in.AttendeeName)
	record.Set("attendee_email", in.AttendeeEmail)
	record.Set("checked_in", false)

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return nil, fmt.Errorf("CreateUserTicket: %w: %w", status.ErrPersistence, err)
	}

	return userTicketFromRecord(record), nil
}

func (s *Store) ListTicketsByOrder(ctx context.Context, orderID string) ([]*models.UserTicket, error) {
	records, err := s.app.FindRecordsByFilter(
		"user_tickets",
		"order = {:orderId}",
		"created",
		0,
		0,
		dbx.Params{"orderId": orderID},
	)
	if err != nil {
		return nil, fmt.Errorf("ListTicketsByOrder: %w", err)
	}

	tickets := make([]*models.UserTicket, 0, len(records))
	for _, record := range records {
		tickets = append(tickets, userTicketFromRecord(record))
	}
	return tickets, nil
}

func orderFromRecord(record *core.Record) *models.Order {
	order := &models.Order{
		ID:            record.Id,
		TicketTypeID:  record.GetString("ticket_type"),
		Quantity:      record.GetInt("quantity"),
		Subtotal:      decimal.NewFromFloat(record.GetFloat("subtotal")),
		TotalAmount:   decimal.NewFromFloat(record.GetFloat("total_amount")),
		Currency:      record.GetString("currency"),
		Status:        record.GetString("status"),
		Reference:     record.GetString("reference"),
		CustomerName:  record.GetString("customer_name"),
		CustomerEmail: record.GetString("customer_email"),
		CustomerPhone: record.GetString("customer_phone"),
		UserID:        record.GetString("user"),
		CreatedAt:     record.GetDateTime("created").Time(),
	}

	if paidAt := record.GetDateTime("paid_at"); !paidAt.IsZero() {
		t := paidAt.Time()
		order.PaidAt = &t
	}
	return order
}

func userTicketFromRecord(record *core.Record) *models.UserTicket {
	ticket := &models.UserTicket{
		ID:            record.Id,
		OrderID:       record.GetString("order"),
		TicketNumber:  record.GetString("ticket_number"),
		QRCode:        record.GetString("qr_code"),
		AttendeeName:  record.GetString("attendee_name"),
		AttendeeEmail: record.GetString("attendee_email"),
		CheckedIn:     record.GetBool("checked_in"),
	}

	if checkedInAt := record.GetDateTime("checked_in_at"); !checkedInAt.IsZero() {
		t := checkedInAt.Time()
		ticket.CheckedInAt = &t
	}
	return ticket
}
