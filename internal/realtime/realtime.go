package realtime

import (
	"fmt"
	"log/slog"

	pubnub "github.com/pubnub/go/v7"
)

type Config struct {
	PublishKey   string
	SubscribeKey string
	SecretKey    string
	UUID         string
}

// Notifier pushes payment updates to the checkout page so the browser
// can stop polling the verify endpoint.
type Notifier struct {
	pn *pubnub.PubNub
}

func New(cfg *Config) *Notifier {
	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.UUID))
	pnCfg.PublishKey = cfg.PublishKey
	pnCfg.SubscribeKey = cfg.SubscribeKey
	pnCfg.SecretKey = cfg.SecretKey

	return &Notifier{pn: pubnub.NewPubNub(pnCfg)}
}

// NotifyPaymentSuccess publishes to the order's channel. Failures are
// logged only; the confirmation flow never depends on delivery.
func (n *Notifier) NotifyPaymentSuccess(orderID, reference string, ticketNumbers []string) {
	channel := fmt.Sprintf("order-%s", orderID)

	_, _, err := n.pn.Publish().
		Channel(channel).
		Message(map[string]any{
			"type":           "payment_success",
			"order_id":       orderID,
			"reference":      reference,
			"ticket_numbers": ticketNumbers,
		}).
		Execute()
	if err != nil {
		slog.Error("realtime.NotifyPaymentSuccess", "order_id", orderID, "error", err)
	}
}
