package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"conference-system/internal/notify"
	"conference-system/internal/status"
	"conference-system/utils"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"golang.org/x/crypto/bcrypt"
)

type AttendeeHandler struct {
	app        *pocketbase.PocketBase
	dispatcher *notify.Dispatcher
}

func NewAttendeeHandler(app *pocketbase.PocketBase, dispatcher *notify.Dispatcher) *AttendeeHandler {
	return &AttendeeHandler{
		app:        app,
		dispatcher: dispatcher,
	}
}

// SubmitProfile - Follow-up attendee form, one submission per ticket
func (h *AttendeeHandler) SubmitProfile(e *core.RequestEvent) error {
	var req struct {
		TicketNumber string `json:"ticket_number"`
		Organization string `json:"organization"`
		RoleTitle    string `json:"role_title"`
		Country      string `json:"country"`
		City         string `json:"city"`
		Dietary      string `json:"dietary"`
		TshirtSize   string `json:"tshirt_size"`
		Phone        string `json:"phone"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.TicketNumber == "" {
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

	existing, _ := h.app.FindRecordsByFilter(
		"attendees",
		"user_ticket = {:ticketId}",
		"",
		1,
		0,
		dbx.Params{"ticketId": ticket.Id},
	)
	if len(existing) > 0 {
		return apis.NewBadRequestError("Profile already submitted for this ticket", status.ErrAlreadySubmitted)
	}

	token, err := utils.GenerateOTP(6)
	if err != nil {
		return apis.NewInternalServerError("internal error", err)
	}
	tokenHash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return apis.NewInternalServerError("internal error", err)
	}

	collection, err := h.app.FindCollectionByNameOrId("attendees")
	if err != nil {
		return apis.NewInternalServerError("internal error", err)
	}

	record := core.NewRecord(collection)
	record.Set("user_ticket", ticket.Id)
	record.Set("organization", req.Organization)
	record.Set("role_title", req.RoleTitle)
	record.Set("country", req.Country)
	record.Set("city", req.City)
	record.Set("dietary", req.Dietary)
	record.Set("tshirt_size", req.TshirtSize)
	record.Set("phone", req.Phone)
	record.Set("verification_token", string(tokenHash))

	ctx := e.Request.Context()
	if err := h.app.SaveWithContext(ctx, record); err != nil {
		// unique index on user_ticket catches concurrent double submits
		return apis.NewBadRequestError("Profile already submitted for this ticket", status.ErrAlreadySubmitted)
	}

	// best effort, never blocks the response
	go func() {
		name := ticket.GetString("attendee_name")
		email := ticket.GetString("attendee_email")
		if err := h.dispatcher.SendAttendeeVerification(context.Background(), name, email, token); err != nil {
			slog.Error("attendee verification email", "ticket", req.TicketNumber, "error", err)
		}
	}()

	return e.JSON(http.StatusOK, map[string]any{
		"id":            record.Id,
		"ticket_number": req.TicketNumber,
		"submitted":     true,
	})
}

// GetTicket - Look up an issued ticket by number (for the profile form)
func (h *AttendeeHandler) GetTicket(e *core.RequestEvent) error {
	number := e.Request.PathValue("ticketNumber")

	ticket, err := h.app.FindFirstRecordByFilter(
		"user_tickets",
		"ticket_number = {:number}",
		dbx.Params{"number": number},
	)
	if err != nil {
		return apis.NewNotFoundError("Ticket not found", nil)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"ticket_number":  ticket.GetString("ticket_number"),
		"attendee_name":  ticket.GetString("attendee_name"),
		"attendee_email": ticket.GetString("attendee_email"),
		"qr_code":        ticket.GetString("qr_code"),
		"checked_in":     ticket.GetBool("checked_in"),
	})
}
