package utils

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"marketplace-hub/models"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends order confirmations through an authenticated SMTP relay.
type Mailer struct {
	host string
	port string
	from string
	pass string
	send sendFunc
}

func NewMailer(host, port, from, pass string) *Mailer {
	return &Mailer{host: host, port: port, from: from, pass: pass, send: smtp.SendMail}
}

func (m *Mailer) OrderConfirmation(_ context.Context, to string, order *models.Order) error {
	if to == "" {
		return fmt.Errorf("order %s: buyer has no email", order.ID.Hex())
	}
	return m.send(
		net.JoinHostPort(m.host, m.port),
		smtp.PlainAuth("", m.from, m.pass, m.host),
		m.from,
		[]string{to},
		[]byte(orderConfirmationMessage(m.from, to, order)),
	)
}

func orderConfirmationMessage(from, to string, order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: Marketplace - Order %s confirmed\r\n", order.ID.Hex())
	b.WriteString("\r\n")
	b.WriteString("Thank you for your order.\r\n\r\n")
	for _, it := range order.Items {
		fmt.Fprintf(&b, "%d x %s @ %.2f = %.2f\r\n", it.Quantity, it.Name, it.Price, it.Total)
	}
	fmt.Fprintf(&b, "\r\nTotal: %.2f\r\n", order.TotalAmount)
	fmt.Fprintf(&b, "Payment: %s (%s)\r\n", order.PaymentMethod, order.PaymentStatus)
	b.WriteString("\r\nMarketplace Team\r\n")
	return b.String()
}
