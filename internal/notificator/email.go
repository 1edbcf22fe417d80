package notificator

import (
	"fmt"
	"mime"
	"net/smtp"
	"strconv"

	"github.com/streamtip/donatio/internal/models"
	"github.com/streamtip/donatio/pkg/logger"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotificator mails every shown alert to the streamer.
type EmailNotificator struct {
	logger *logger.Logger

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSender   string
	Recipient    string

	SMTPAuth smtp.Auth

	sendMail sendMailFunc
}

func NewEmailNotificator(logger *logger.Logger, SMTPHost string, SMTPPort int, SMTPUser string, SMTPPassword string, SMTPSender string, recipient string) *EmailNotificator {
	auth := smtp.PlainAuth(
		"",
		SMTPUser,
		SMTPPassword,
		SMTPHost,
	)

	return &EmailNotificator{
		logger:       logger,
		SMTPAuth:     auth,
		SMTPHost:     SMTPHost,
		SMTPPort:     SMTPPort,
		SMTPUser:     SMTPUser,
		SMTPPassword: SMTPPassword,
		SMTPSender:   SMTPSender,
		Recipient:    recipient,
		sendMail:     smtp.SendMail,
	}
}

func (e *EmailNotificator) Name() string { return "email" }

func (e *EmailNotificator) Relay(notification *models.DonationNotification) error {
	addr := e.SMTPHost + ":" + strconv.Itoa(e.SMTPPort)
	msg := e.compose(notification)
	if err := e.sendMail(addr, e.SMTPAuth, e.SMTPSender, []string{e.Recipient}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (e *EmailNotificator) compose(notification *models.DonationNotification) []byte {
	subject := mime.QEncoding.Encode("utf-8", fmt.Sprintf("New donation: %s ₽ from %s", models.FormatAmount(notification.Amount), notification.Donor))
	return []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		e.SMTPSender,
		e.Recipient,
		subject,
		notification.String(),
	))
}
