package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"net/url"
	"strings"
)

// SMTPSender envia correos via SMTP.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	useTLS   bool
	appName  string
	baseURL  string
}

func NewSMTPSender(host string, port int, username, password, from, fromName string, useTLS bool, appName, baseURL string) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
		useTLS:   useTLS,
		appName:  appName,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *SMTPSender) SendVerificationEmail(ctx context.Context, toEmail, rawToken string) error {
	verifyURL := s.tokenURL("/auth/verify", toEmail, rawToken)
	subject := fmt.Sprintf("Verify your %s account", s.appName)
	body := fmt.Sprintf(
		"Thanks for signing up. Please verify your email by opening the link below.\n\n%s\n\nThis link expires in 24 hours. If you didn't create an account, you can ignore this email.\n",
		verifyURL,
	)
	return s.send(ctx, toEmail, subject, body)
}

func (s *SMTPSender) SendPasswordResetEmail(ctx context.Context, toEmail, rawToken string) error {
	resetURL := s.tokenURL("/auth/reset", toEmail, rawToken)
	subject := fmt.Sprintf("Reset your %s password", s.appName)
	body := fmt.Sprintf(
		"You requested a password reset. Open the link below to set a new password.\n\n%s\n\nThis link expires in 1 hour. If you didn't request this, you can ignore this email.\n",
		resetURL,
	)
	return s.send(ctx, toEmail, subject, body)
}

func (s *SMTPSender) SendPasswordResetSuccessEmail(ctx context.Context, toEmail string) error {
	subject := fmt.Sprintf("Your %s password was reset", s.appName)
	body := "Your password was successfully changed. If you didn't make this change, please contact support.\n"
	return s.send(ctx, toEmail, subject, body)
}

func (s *SMTPSender) tokenURL(path, toEmail, rawToken string) string {
	params := url.Values{}
	params.Set("token", rawToken)
	params.Set("email", toEmail)
	return s.baseURL + path + "?" + params.Encode()
}

func (s *SMTPSender) send(_ context.Context, toEmail, subject, body string) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}

	msg := buildMessage(s.from, s.fromName, toEmail, subject, body)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if s.useTLS {
		conn, err := tls.Dial("tcp", addr, &tls.Config{
			ServerName: s.host,
		})
		if err != nil {
			return err
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.host)
		if err != nil {
			return err
		}
		defer client.Quit()

		if auth != nil {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
		if err := client.Mail(s.from); err != nil {
			return err
		}
		if err := client.Rcpt(toEmail); err != nil {
			return err
		}
		writer, err := client.Data()
		if err != nil {
			return err
		}
		if _, err := writer.Write([]byte(msg)); err != nil {
			_ = writer.Close()
			return err
		}
		return writer.Close()
	}

	return smtp.SendMail(addr, auth, s.from, []string{toEmail}, []byte(msg))
}

func buildMessage(from, fromName, to, subject, body string) string {
	fromHeader := from
	if strings.TrimSpace(fromName) != "" {
		fromHeader = fmt.Sprintf("%s <%s>", fromName, from)
	}

	headers := []string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
	}

	return strings.Join(headers, "\r\n") + "\r\n\r\n" + body
}
