package services

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// convertHTMLToText converts HTML content to plain text for email sending
func convertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		// If parsing fails, return the original content
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "table", "tr":
				text.WriteString("\n")
			case "li":
				text.WriteString("- ")
			case "td", "th":
				text.WriteString(" | ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extractText(child)
		}
	}

	extractText(doc)

	result := text.String()
	result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	return strings.TrimSpace(result)
}

// EmailService sends alert digests over SMTP
type EmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewEmailService creates an email service from SMTP_* environment variables.
// Sending is disabled when SMTP_HOST is unset.
func NewEmailService() *EmailService {
	return &EmailService{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
	}
}

// Enabled reports whether SMTP delivery is configured
func (es *EmailService) Enabled() bool {
	return es.host != ""
}

// SendAlertDigest sends a council's outstanding report alerts as one email.
// The HTML body is converted to plain text before sending.
func (es *EmailService) SendAlertDigest(to, councilName string, alerts []ReportAlert) error {
	if !es.Enabled() {
		return fmt.Errorf("smtp not configured")
	}
	if len(alerts) == 0 {
		return nil
	}

	var body strings.Builder
	body.WriteString(fmt.Sprintf("<h2>Outstanding reports for %s</h2>", councilName))
	body.WriteString("<table><tr><th>Project</th><th>Alert</th><th>Severity</th></tr>")
	for _, a := range alerts {
		body.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td></tr>",
			a.Project, alertMessage(a), a.Severity))
	}
	body.WriteString("</table>")
	body.WriteString("<p>Please log in to the portal to submit the outstanding reports.</p>")

	subject := fmt.Sprintf("RICD Portal: %d outstanding report alerts", len(alerts))
	return es.sendEmail(to, subject, convertHTMLToText(body.String()))
}

// SendPasswordReset emails a reset link. The link expires with the token,
// which the caller owns.
func (es *EmailService) SendPasswordReset(to, resetLink string) error {
	if !es.Enabled() {
		return fmt.Errorf("smtp not configured")
	}
	body := fmt.Sprintf(
		"A password reset was requested for your RICD Portal account.\r\n\r\n"+
			"Reset your password here:\r\n%s\r\n\r\n"+
			"The link expires in 15 minutes. If you did not request this, ignore this email.",
		resetLink)
	return es.sendEmail(to, "RICD Portal: password reset", body)
}

func (es *EmailService) sendEmail(to, subject, body string) error {
	port := es.port
	if port == "" {
		port = "587"
	}

	headers := []string{
		"From: " + es.from,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}
	msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

	auth := smtp.PlainAuth("", es.username, es.password, es.host)
	return smtp.SendMail(es.host+":"+port, auth, es.from, []string{to}, msg)
}
