package email

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"timeledger/internal/config"
	"timeledger/internal/models"
)

// Sender delivers notification mail over SMTP. When email is disabled in
// configuration every method is a logged no-op, so callers never branch.
type Sender struct {
	cfg    config.EmailConfig
	dialer *gomail.Dialer
	logger *zap.Logger
}

// NewSender creates an email sender
func NewSender(cfg config.EmailConfig, logger *zap.Logger) *Sender {
	var dialer *gomail.Dialer
	if cfg.Enabled {
		dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	}
	return &Sender{
		cfg:    cfg,
		dialer: dialer,
		logger: logger,
	}
}

// SendExpenseStatusChanged notifies the relevant party about a status
// transition. Submission goes to the approver; decisions go back to the
// owner.
func (s *Sender) SendExpenseStatusChanged(expense *models.Expense, recipient string) error {
	subject := fmt.Sprintf("Expense #%d %s - %s %s",
		expense.ID, expense.Status, expense.Amount.StringFixed(2), expense.Currency)
	body := s.buildStatusBody(expense)
	return s.send(recipient, subject, body)
}

// SendPasswordReset mails a reset token to the user
func (s *Sender) SendPasswordReset(user *models.User, token string) error {
	subject := "Password reset requested"
	body := fmt.Sprintf(`Hello %s,

A password reset was requested for your account. Use this token to set a
new password:

    %s

The token expires shortly and can be used once. If you did not request a
reset, ignore this message.
`, user.Username, token)
	return s.send(user.Email, subject, body)
}

func (s *Sender) buildStatusBody(expense *models.Expense) string {
	body := fmt.Sprintf(`Expense update

Owner:     %s
Date:      %s
Amount:    %s %s
Status:    %s
`,
		expense.Username,
		expense.ExpenseDate.Format("2006-01-02"),
		expense.Amount.StringFixed(2),
		expense.Currency,
		expense.Status,
	)
	if expense.Vendor != "" {
		body += fmt.Sprintf("Vendor:    %s\n", expense.Vendor)
	}
	if expense.Description != "" {
		body += fmt.Sprintf("\n%s\n", expense.Description)
	}
	return body
}

// send delivers one message. Delivery failures are logged and returned, but
// callers treat notification mail as best-effort.
func (s *Sender) send(to, subject, body string) error {
	if !s.cfg.Enabled {
		s.logger.Debug("Email disabled, skipping send",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}
	if to == "" {
		return fmt.Errorf("no recipient address")
	}

	message := gomail.NewMessage()
	message.SetHeader("From", s.cfg.FromAddress)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(message); err != nil {
		s.logger.Error("Failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Email sent",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
