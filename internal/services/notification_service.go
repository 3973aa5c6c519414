// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/shoplite/backend/internal/config"
	"github.com/shoplite/backend/internal/models"
)

// NotificationService sends transactional email. Delivery is
// best-effort; without SMTP credentials messages are logged instead.
type NotificationService struct {
	cfg *config.Config
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	return &NotificationService{cfg: cfg}
}

const orderConfirmationTemplate = `
<h2>Thanks for your order, {{.FirstName}}!</h2>
<p>Your order <strong>{{.Reference}}</strong> has been received.</p>
<table>
{{range .Items}}
  <tr><td>{{.Quantity}} ×</td><td>{{.Name}}</td><td>${{printf "%.2f" .Price}}</td></tr>
{{end}}
</table>
<p>Order total: <strong>${{printf "%.2f" .Total}}</strong></p>
<p><a href="{{.OrderURL}}">View your order</a></p>
`

func (s *NotificationService) SendOrderConfirmation(user *models.User, order *models.Order) error {
	type lineItem struct {
		Name     string
		Quantity int
		Price    float64
	}

	items := make([]lineItem, 0, len(order.Items))
	for _, item := range order.Items {
		name := "Item"
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, lineItem{
			Name:     name,
			Quantity: item.Quantity,
			Price:    item.PriceAtOrder,
		})
	}

	data := map[string]interface{}{
		"FirstName": user.FirstName,
		"Reference": order.Reference,
		"Items":     items,
		"Total":     order.TotalAmount,
		"OrderURL":  fmt.Sprintf("%s/orders/%s", s.cfg.Frontend.BaseURL, order.ID),
	}

	body, err := s.renderTemplate(orderConfirmationTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Order confirmation %s", order.Reference)
	return s.sendEmail(user.Email, subject, body)
}

func (s *NotificationService) SendOrderStatusUpdate(user *models.User, order *models.Order) error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your order <strong>%s</strong> is now <strong>%s</strong>.</p>",
		template.HTMLEscapeString(user.FirstName),
		template.HTMLEscapeString(order.Reference),
		template.HTMLEscapeString(string(order.Status)),
	)

	subject := fmt.Sprintf("Order %s update", order.Reference)
	return s.sendEmail(user.Email, subject, body)
}

func (s *NotificationService) renderTemplate(tmpl string, data map[string]interface{}) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.cfg.Email.SMTPUsername == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("SMTP not configured, skipping email send")
		return nil
	}

	from := s.cfg.Email.FromEmail
	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.cfg.Email.FromName, from, to, subject, body,
	))

	auth := smtp.PlainAuth("", s.cfg.Email.SMTPUsername, s.cfg.Email.SMTPPassword, s.cfg.Email.SMTPHost)
	addr := s.cfg.Email.SMTPHost + ":" + s.cfg.Email.SMTPPort

	if err := smtp.SendMail(addr, auth, from, []string{to}, msg); err != nil {
		logrus.WithError(err).WithField("to", to).Error("Failed to send email")
		return err
	}

	return nil
}
