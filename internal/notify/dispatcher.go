package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"conference-system/internal/events"
	"conference-system/monitoring"
)

// Mailer is implemented by the Resend client and by test fakes.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

var confirmationTmpl = template.Must(template.New("purchase_confirmation").Parse(`
<h2>You're going to {{.EventName}}!</h2>
<p>Hi {{.CustomerName}},</p>
<p>Your payment of {{.Currency}} {{.TotalAmount}} for {{.Quantity}} x {{.TicketType}} was received.</p>
<p>Order reference: <strong>{{.Reference}}</strong></p>
<p>Your ticket number{{if gt .Quantity 1}}s{{end}}:</p>
<ul>{{range .TicketNumbers}}<li><strong>{{.}}</strong></li>{{end}}</ul>
<p>Present the QR code from your ticket page at the entrance.</p>
`))

var verificationTmpl = template.Must(template.New("attendee_verification").Parse(`
<p>Hi {{.Name}},</p>
<p>Thanks for completing your attendee profile for {{.EventName}}.</p>
<p>Your verification code is <strong>{{.Token}}</strong>.</p>
`))

// Dispatcher consumes post-purchase events and sends transactional
// email. Send failures are logged and swallowed: issuance and payment
// confirmation are authoritative regardless of notification outcome.
type Dispatcher struct {
	mailer    Mailer
	eventName string
}

func NewDispatcher(mailer Mailer, eventName string) *Dispatcher {
	return &Dispatcher{
		mailer:    mailer,
		eventName: eventName,
	}
}

// HandleOrderPaid sends the purchase confirmation for a paid order.
// Always returns nil so the message is acked and never redelivered.
func (d *Dispatcher) HandleOrderPaid(ctx context.Context, event *events.OrderPaid) error {
	var html bytes.Buffer
	err := confirmationTmpl.Execute(&html, struct {
		events.OrderPaid
		EventName string
	}{OrderPaid: *event, EventName: d.eventName})
	if err != nil {
		slog.Error("notify.HandleOrderPaid: render", "order_id", event.OrderID, "error", err)
		return nil
	}

	subject := fmt.Sprintf("Your %s tickets (%s)", d.eventName, event.Reference)
	if err := d.mailer.Send(ctx, event.CustomerEmail, subject, html.String()); err != nil {
		slog.Error("notify.HandleOrderPaid: send", "order_id", event.OrderID, "to", event.CustomerEmail, "error", err)
		monitoring.TrackEmailSent("purchase_confirmation", "error")
		return nil
	}

	slog.Info("purchase confirmation sent", "order_id", event.OrderID, "to", event.CustomerEmail)
	monitoring.TrackEmailSent("purchase_confirmation", "success")
	return nil
}

// SendAttendeeVerification mails the profile verification code.
func (d *Dispatcher) SendAttendeeVerification(ctx context.Context, name, email, token string) error {
	var html bytes.Buffer
	err := verificationTmpl.Execute(&html, struct {
		Name      string
		EventName string
		Token     string
	}{Name: name, EventName: d.eventName, Token: token})
	if err != nil {
		return fmt.Errorf("SendAttendeeVerification: render: %w", err)
	}

	subject := fmt.Sprintf("%s attendee profile verification", d.eventName)
	if err := d.mailer.Send(ctx, email, subject, html.String()); err != nil {
		monitoring.TrackEmailSent("attendee_verification", "error")
		return err
	}
	monitoring.TrackEmailSent("attendee_verification", "success")
	return nil
}
