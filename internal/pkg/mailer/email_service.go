package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendDocument(toEmail, clientName, docType, number, title, total, currency string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)
	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

var docTypeLabels = map[string]string{
	"quote":   "cotización",
	"invoice": "factura",
}

func (s *emailService) SendDocument(toEmail, clientName, docType, number, title, total, currency string) error {
	label := docTypeLabels[docType]
	if label == "" {
		label = "documento"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.senderEmail, s.senderName))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Tu %s %s", label, number))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hola %s,</h2>
			<p>Te enviamos tu %s <strong>%s</strong>.</p>
			<p><strong>Concepto:</strong> %s</p>
			<p><strong>Total:</strong> %s %s</p>
			<p>Gracias por tu confianza.</p>
		</div>
	`, clientName, label, number, title, total, currency)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send %s to %s: %v\n", number, toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] %s sent to %s\n", number, toEmail)
	return nil
}
