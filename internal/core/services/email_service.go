package services

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService sends contract emails through SendGrid. With no API key
// configured it degrades to logging only, consistent with the best-effort
// notification policy.
type EmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
	enabled   bool
}

// NewEmailService creates a new email service
func NewEmailService(apiKey, fromEmail, fromName string) *EmailService {
	return &EmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   apiKey != "",
	}
}

// IsEnabled checks if email sending is configured
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendContractReady tells the owner a contract was generated and awaits
// signature.
func (s *EmailService) SendContractReady(to, name string, data ContractEmail) error {
	subject := "Your financing contract is ready to sign"
	intro := "Your financing was approved and the contract is ready. Sign it on the platform to start your plan."
	return s.send(to, name, subject, contractHTML(name, intro, data))
}

// SendContractSigned confirms a signed contract to the owner.
func (s *EmailService) SendContractSigned(to, name string, data ContractEmail) error {
	subject := "Financing contract signed"
	intro := "Your financing contract has been signed. Your installment plan is now in progress."
	return s.send(to, name, subject, contractHTML(name, intro, data))
}

func (s *EmailService) send(to, name, subject, html string) error {
	if !s.enabled {
		log.Printf("email disabled, skipping %q to %s", subject, to)
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(name, to)
	message := mail.NewSingleEmail(from, subject, recipient, "", html)

	client := sendgrid.NewSendClient(s.apiKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// contractHTML renders the contract summary mail body.
func contractHTML(name, intro string, d ContractEmail) string {
	if name == "" {
		name = "customer"
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #4CAF50; color: white; padding: 20px; text-align: center;">
      <h1>Financing Contract</h1>
    </div>
    <div style="padding: 20px; background: #f9f9f9;">
      <p>Hello <strong>%s</strong>,</p>
      <p>%s</p>
      <h3>Contract details:</h3>
      <ul>
        <li><strong>Contract number:</strong> %s</li>
        <li><strong>Vehicle:</strong> %s %s</li>
        <li><strong>Total value:</strong> %.2f</li>
        <li><strong>Down payment:</strong> %.2f</li>
        <li><strong>Installments:</strong> %dx of %.2f</li>
      </ul>
      <p style="margin-top: 30px;">Best regards,<br><strong>The FinTech Team</strong></p>
    </div>
    <div style="text-align: center; padding: 20px; font-size: 12px; color: #666;">
      <p>This is an automated message. Please do not reply.</p>
    </div>
  </div>
</body>
</html>`, name, intro, d.ContractNumber, d.Brand, d.ModelName, d.Value, d.DownPayment, d.CountOfMonths, d.InstallmentValue)
}
