package utils

import (
	"fmt"
	"net/smtp"

	"learnhub/config"
)

var smtpCfg *config.Config

// SetEmailConfig stores the loaded config for outgoing mail
func SetEmailConfig(cfg *config.Config) {
	smtpCfg = cfg
}

func sendMail(to, subject, htmlBody string) error {
	if smtpCfg == nil || smtpCfg.SMTP.Host == "" {
		return fmt.Errorf("smtp is not configured")
	}

	auth := smtp.PlainAuth("", smtpCfg.SMTP.Username, smtpCfg.SMTP.Password, smtpCfg.SMTP.Host)
	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s <%s>\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n"+
			"%s\r\n",
		to, smtpCfg.SMTP.SenderName, smtpCfg.SMTP.SenderEmail, subject, htmlBody))

	addr := fmt.Sprintf("%s:%d", smtpCfg.SMTP.Host, smtpCfg.SMTP.Port)
	if err := smtp.SendMail(addr, auth, smtpCfg.SMTP.SenderEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// SendPurchaseConfirmationEmail notifies a user their payment went through
func SendPurchaseConfirmationEmail(email string, courseTitles []string, amount int64, currency string) error {
	body := "<p>Thanks for your purchase! You are now enrolled in:</p><ul>"
	for _, title := range courseTitles {
		body += "<li><strong>" + title + "</strong></li>"
	}
	body += fmt.Sprintf("</ul><p>Amount paid: %.2f %s</p>", float64(amount)/100, currency)
	return sendMail(email, "Your LearnHub purchase", body)
}

// SendApplicationStatusEmail notifies an applicant about a review decision
func SendApplicationStatusEmail(email, status string) error {
	body := fmt.Sprintf("<p>Your instructor application has been <strong>%s</strong>.</p>", status)
	return sendMail(email, "Instructor application update", body)
}
