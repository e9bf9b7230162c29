// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/exetool/store-backend/internal/config"
	"github.com/exetool/store-backend/internal/models"
)

type NotificationService struct {
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(config *config.Config) *NotificationService {
	return &NotificationService{config: config}
}

// SendPurchaseReceipt emails the buyer their license keys and download links
// after a verified payment. Failures are logged, never surfaced to the buyer.
func (s *NotificationService) SendPurchaseReceipt(to string, order *models.Order, licenseKeys, downloadLinks []string) {
	tmpl := s.getEmailTemplate("purchase_receipt")

	data := map[string]interface{}{
		"OrderID":       order.ID.String(),
		"Amount":        order.Amount.StringFixed(2),
		"LicenseKeys":   licenseKeys,
		"DownloadLinks": downloadLinks,
		"StoreURL":      s.config.Frontend.BaseURL,
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		logrus.WithError(err).Warn("Failed to render receipt email")
		return
	}

	if err := s.sendEmail(to, tmpl.Subject, body); err != nil {
		logrus.WithError(err).WithField("to", to).Warn("Failed to send receipt email")
	}
}

// RelayContactSubmission forwards a contact-form submission to the configured
// admin address.
func (s *NotificationService) RelayContactSubmission(sub *models.ContactSubmission) error {
	if s.config.Email.AdminEmail == "" {
		return nil
	}

	tmpl := s.getEmailTemplate("contact_relay")

	data := map[string]interface{}{
		"Name":    sub.Name,
		"Email":   sub.Email,
		"Subject": sub.Subject,
		"Message": sub.Message,
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := "New contact submission"
	if sub.Subject != "" {
		subject = "Contact: " + sub.Subject
	}

	return s.sendEmail(s.config.Email.AdminEmail, subject, body)
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email delivery skipped (SMTP not configured)")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"purchase_receipt": {
			Subject: "Your EXE TOOL purchase",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Thank you for your purchase!</h2>
	<p>Order <strong>{{.OrderID}}</strong> — total {{.Amount}}</p>
	<h3>License keys</h3>
	<ul>
	{{range .LicenseKeys}}<li><code>{{.}}</code></li>{{end}}
	</ul>
	{{if .DownloadLinks}}
	<h3>Downloads</h3>
	<ul>
	{{range .DownloadLinks}}<li><a href="{{.}}">{{.}}</a></li>{{end}}
	</ul>
	{{end}}
	<p>Keep this email — your keys are shown only once on the confirmation page.</p>
	<p><a href="{{.StoreURL}}">EXE TOOL</a></p>
</body>
</html>`,
		},
		"contact_relay": {
			Subject: "New contact submission",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Contact form submission</h2>
	<p><strong>From:</strong> {{.Name}} ({{.Email}})</p>
	{{if .Subject}}<p><strong>Subject:</strong> {{.Subject}}</p>{{end}}
	<p>{{.Message}}</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    `<html><body><p>{{.Message}}</p></body></html>`,
	}
}
