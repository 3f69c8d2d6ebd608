package handlers

import (
	"net/http"

	"conference-system/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

type AdminHandler struct {
	app *pocketbase.PocketBase
}

func NewAdminHandler(app *pocketbase.PocketBase) *AdminHandler {
	return &AdminHandler{app: app}
}

// requireStaff allows superusers and auth records with a staff/admin role.
func requireStaff(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Staff access required", nil)
	}
	if e.Auth.IsSuperuser() {
		return nil
	}
	role := e.Auth.GetString("role")
	if role != "admin" && role != "staff" {
		return apis.NewForbiddenError("Staff access required", nil)
	}
	return nil
}

// GetSalesDashboard - Aggregate order/ticket stats for the admin UI
func (h *AdminHandler) GetSalesDashboard(e *core.RequestEvent) error {
	if err := requireStaff(e); err != nil {
		return err
	}

	type statusCount struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	var byStatus []statusCount
	if err := h.app.DB().NewQuery(
		`SELECT status, COUNT(*) AS count FROM orders GROUP BY status`,
	).All(&byStatus); err != nil {
		return apis.NewInternalServerError("internal error", err)
	}

	var revenue struct {
		Total float64 `db:"total"`
	}
	if err := h.app.DB().NewQuery(
		`SELECT COALESCE(SUM(total_amount), 0) AS total FROM orders WHERE status = {:paid}`,
	).Bind(dbx.Params{"paid": models.OrderStatusPaid}).One(&revenue); err != nil {
		return apis.NewInternalServerError("internal error", err)
	}

	var tickets struct {
		Issued    int `db:"issued"`
		CheckedIn int `db:"checked_in"`
	}
	if err := h.app.DB().NewQuery(
		`SELECT COUNT(*) AS issued, COALESCE(SUM(checked_in), 0) AS checked_in FROM user_tickets`,
	).One(&tickets); err != nil {
		return apis.NewInternalServerError("internal error", err)
	}

	orders := map[string]int{}
	for _, row := range byStatus {
		orders[row.Status] = row.Count
	}

	return e.JSON(http.StatusOK, map[string]any{
		"orders_by_status":   orders,
		"revenue":            revenue.Total,
		"tickets_issued":     tickets.Issued,
		"tickets_checked_in": tickets.CheckedIn,
	})
}

// ListOrders - Recent orders, optionally filtered by status
func (h *AdminHandler) ListOrders(e *core.RequestEvent) error {
	if err := requireStaff(e); err != nil {
		return err
	}

	filter := "id != ''"
	params := dbx.Params{}
	if status := e.Request.URL.Query().Get("status"); status != "" {
		filter = "status = {:status}"
		params["status"] = status
	}

	records, err := h.app.FindRecordsByFilter("orders", filter, "-created", 100, 0, params)
	if err != nil {
		return apis.NewBadRequestError("Failed to list orders", err)
	}

	result := []map[string]any{}
	for _, order := range records {
		result = append(result, map[string]any{
			"id":             order.Id,
			"reference":      order.GetString("reference"),
			"customer_name":  order.GetString("customer_name"),
			"customer_email": order.GetString("customer_email"),
			"quantity":       order.GetInt("quantity"),
			"total_amount":   order.GetFloat("total_amount"),
			"currency":       order.GetString("currency"),
			"status":         order.GetString("status"),
			"created":        order.GetDateTime("created"),
			"paid_at":        order.GetDateTime("paid_at"),
		})
	}

	return e.JSON(http.StatusOK, result)
}

// CheckInTicket - Mark a ticket as used at the entrance, exactly once
func (h *AdminHandler) CheckInTicket(e *core.RequestEvent) error {
	if err := requireStaff(e); err != nil {
		return err
	}

	var req struct {
		TicketNumber string `json:"ticket_number"`
	}
	if err := e.BindBody(&req); err != nil || req.TicketNumber == "" {
		return apis.NewBadRequestError("Ticket number required", nil)
	}

	ticket, err := h.app.FindFirstRecordByFilter(
		"user_tickets",
		"ticket_number = {:number}",
		dbx.Params{"number": req.TicketNumber},
	)
	if err != nil {
		return apis.NewNotFoundError("Ticket not found", nil)
	}

	// conditional update so two scanners can't both admit the ticket
	res, err := h.app.NonconcurrentDB().NewQuery(
		`UPDATE user_tickets SET checked_in = TRUE, checked_in_at = {:now}, updated = {:now}
		 WHERE id = {:id} AND checked_in = FALSE`,
	).Bind(dbx.Params{
		"now": types.NowDateTime().String(),
		"id":  ticket.Id,
	}).WithContext(e.Request.Context()).Execute()
	if err != nil {
		return apis.NewInternalServerError("internal error", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return apis.NewInternalServerError("internal error", err)
	}
	if rows == 0 {
		return e.JSON(http.StatusOK, map[string]any{
			"checked_in":    false,
			"already_used":  true,
			"ticket_number": req.TicketNumber,
			"attendee_name": ticket.GetString("attendee_name"),
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"checked_in":    true,
		"already_used":  false,
		"ticket_number": req.TicketNumber,
		"attendee_name": ticket.GetString("attendee_name"),
	})
}
