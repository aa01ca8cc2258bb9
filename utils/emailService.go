package utils

import (
	"fmt"
	"log"
	"net/url"

	"nextlevel/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail delivers one HTML message to each recipient through SendGrid.
// Without an API key the message is only logged.
func SendEmail(to []string, subject string, htmlBody string) error {
	cfg := config.AppConfig
	if cfg == nil || cfg.SendGridAPIKey == "" {
		log.Printf("[EMAIL] delivery disabled, would send %q to %v", subject, to)
		return nil
	}

	from := mail.NewEmail(cfg.EmailSenderName, cfg.EmailSender)
	client := sendgrid.NewSendClient(cfg.SendGridAPIKey)

	for _, addr := range to {
		message := mail.NewSingleEmail(from, subject, mail.NewEmail("", addr), "", htmlBody)
		resp, err := client.Send(message)
		if err != nil {
			log.Printf("[EMAIL] error sending %q to %s: %v", subject, addr, err)
			return err
		}
		if resp.StatusCode >= 400 {
			log.Printf("[EMAIL] SendGrid rejected %q to %s: %d %s", subject, addr, resp.StatusCode, resp.Body)
			return fmt.Errorf("sendgrid status %d", resp.StatusCode)
		}
	}

	log.Printf("[EMAIL] sent %q to %d recipient(s)", subject, len(to))
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F4F5F7; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #111827; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #111827; line-height: 1.6; }
			.footer { background-color: #F4F5F7; padding: 20px; text-align: center; font-size: 12px; color: #6B7280; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #F59E0B; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #FEF3C7; padding: 15px; border-radius: 4px; border-left: 4px solid #F59E0B; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>NEXT LEVEL</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">You receive this message because you have a Next Level account.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

func frontendLink(path, label string) string {
	base := ""
	if config.AppConfig != nil {
		base = config.AppConfig.FrontendURL
	}
	return fmt.Sprintf(`<a class="btn" href="%s%s">%s</a>`, base, path, label)
}

// --- Triggers ---

func SendWelcomeEmail(email, name string) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Thanks for signing up to <strong>Next Level</strong>.</p>
		<p>Your account is waiting for approval by an administrator. We will let you know as soon as you can sign in.</p>
	`, name)

	go SendEmail([]string{email}, "Welcome to Next Level", getEmailTemplate("Welcome!", body))
}

func SendApprovalEmail(email, name string) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your account has been approved. You can now sign in and start the first season.</p>
		%s
	`, name, frontendLink("/login", "Sign in"))

	go SendEmail([]string{email}, "Your account is active", getEmailTemplate("Account approved", body))
}

func SendRejectionEmail(email, name string) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your access request was not approved. Contact your administrator if you think this is a mistake.</p>
	`, name)

	go SendEmail([]string{email}, "Your access request", getEmailTemplate("Access not approved", body))
}

func SendCertificateEarnedEmail(email, name, examTitle string, score float64) {
	body := fmt.Sprintf(`
		<p>Congratulations %s!</p>
		<p>You passed <strong>%s</strong>.</p>
		<div class="info-box"><strong>Score:</strong> %.2f%%</div>
		<p>Your certificate is ready to download.</p>
		%s
	`, name, examTitle, score, frontendLink("/progress", "View my progress"))

	go SendEmail([]string{email}, "You earned a certificate: "+examTitle, getEmailTemplate("Certificate earned", body))
}

func SendSeasonReleasedEmail(email, name, seasonTitle string) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>A new season is available: <strong>%s</strong>.</p>
		%s
	`, name, seasonTitle, frontendLink("/seasons", "Start watching"))

	go SendEmail([]string{email}, "New season: "+seasonTitle, getEmailTemplate("New season released", body))
}

func SendPasswordResetEmail(email, name, token string) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>We received a request to reset your password. The link below is valid for a limited time and works once.</p>
		%s
		<p>If you did not ask for this, you can ignore this message.</p>
	`, name, frontendLink("/reset-password?token="+url.QueryEscape(token), "Reset password"))

	go SendEmail([]string{email}, "Reset your password", getEmailTemplate("Password reset", body))
}
