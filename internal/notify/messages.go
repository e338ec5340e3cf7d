package notify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/polkiloo/foodorder/internal/domain/model"
)

var statusTexts = map[model.OrderStatus]string{
	model.OrderStatusConfirmed: "✅ Votre commande a été confirmée et est en préparation!",
	model.OrderStatusReady:     "🎉 Votre commande est prête! Vous pouvez venir la récupérer.",
	model.OrderStatusCompleted: "✅ Merci! Votre commande a été complétée avec succès.",
	model.OrderStatusCancelled: "❌ Votre commande a été annulée. Contactez-nous pour plus d'informations.",
}

// Messages renders customer-facing texts.
type Messages struct {
	Currency             string
	Restaurant           string
	ConfirmationTemplate string
}

// FormatAmount renders a whole-unit amount followed by its currency.
func FormatAmount(amount int64, currency string) string {
	s := strconv.FormatInt(amount, 10)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// ConfirmationText is the session body sent after an order is placed.
func (m Messages) ConfirmationText(order *model.Order) string {
	var b strings.Builder
	b.WriteString("Commande ")
	if order.DailyNumber != nil {
		b.WriteString(strconv.Itoa(*order.DailyNumber))
	} else {
		b.WriteString("#" + order.ShortID())
	}
	for _, line := range order.Lines {
		fmt.Fprintf(&b, "\n%dx %s", line.Quantity, line.NameFr)
	}
	b.WriteString("\nTotal: " + FormatAmount(order.Total, m.Currency))
	return b.String()
}

// Confirmation builds the request announcing a new order. A configured
// template takes precedence over the session text.
func (m Messages) Confirmation(order *model.Order) Request {
	id := order.ID
	req := Request{Phone: order.CustomerPhone, OrderID: &id}
	if m.ConfirmationTemplate != "" {
		req.Kind = model.MessageKindTemplate
		req.TemplateName = m.ConfirmationTemplate
		return req
	}
	req.Kind = model.MessageKindSession
	req.Body = m.ConfirmationText(order)
	return req
}

// StatusUpdate builds the message for a status change. Statuses without a
// customer-facing text report false.
func (m Messages) StatusUpdate(order *model.Order, status model.OrderStatus) (Request, bool) {
	text, ok := statusTexts[status]
	if !ok {
		return Request{}, false
	}
	id := order.ID
	body := fmt.Sprintf("📋 *Mise à jour de commande #%s*\n\n%s\n\n🍽️ *%s*", order.ShortID(), text, m.Restaurant)
	return Request{Phone: order.CustomerPhone, Kind: model.MessageKindSession, Body: body, OrderID: &id}, true
}
