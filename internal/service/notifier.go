package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/iscbashan/contact/internal/metrics"
	"github.com/iscbashan/contact/internal/model"
	"github.com/iscbashan/contact/pkg/mailer"
)

// Notifier announces a stored contact message. Notify has no error result:
// a failed notification must not change the outcome of a submission.
type Notifier interface {
	Notify(ctx context.Context, msg *model.ContactMessage)
}

// NotifierConfig addresses the notification email.
type NotifierConfig struct {
	Brand       string
	FromAddress string
	To          []string
	Bcc         []string
}

// EmailNotifier sends an HTML summary of each stored message.
type EmailNotifier struct {
	sender  mailer.Sender
	cfg     NotifierConfig
	metrics *metrics.Metrics
}

// NewEmailNotifier creates an EmailNotifier. m may be nil.
func NewEmailNotifier(sender mailer.Sender, cfg NotifierConfig, m *metrics.Metrics) *EmailNotifier {
	return &EmailNotifier{sender: sender, cfg: cfg, metrics: m}
}

var _ Notifier = (*EmailNotifier)(nil)

// Notify sends the notification. Missing credentials skip it silently; send
// errors (and panics from the transport) are logged and swallowed.
func (n *EmailNotifier) Notify(ctx context.Context, msg *model.ContactMessage) {
	start := time.Now()
	defer n.metrics.ObserveStage(metrics.StageNotify, start)
	defer func() {
		if r := recover(); r != nil {
			n.fail(msg, fmt.Errorf("panic: %v", r))
		}
	}()

	if n.sender == nil || !n.sender.Configured() {
		slog.Info("email credentials not configured, skipping notification", "contact_id", msg.ID)
		n.metrics.Notification(metrics.NotificationSkipped)
		return
	}
	if len(n.cfg.To) == 0 && len(n.cfg.Bcc) == 0 {
		slog.Info("no notification recipients configured, skipping notification", "contact_id", msg.ID)
		n.metrics.Notification(metrics.NotificationSkipped)
		return
	}

	email, err := n.compose(msg)
	if err != nil {
		n.fail(msg, err)
		return
	}
	if err := n.sender.Send(ctx, email); err != nil {
		n.fail(msg, err)
		return
	}
	slog.Info("notification sent", "contact_id", msg.ID, "recipients", len(n.cfg.To)+len(n.cfg.Bcc))
	n.metrics.Notification(metrics.NotificationSent)
}

func (n *EmailNotifier) fail(msg *model.ContactMessage, err error) {
	nerr := &NotificationError{Err: err}
	slog.Error("notification failed", "contact_id", msg.ID, "error", nerr)
	n.metrics.Notification(metrics.NotificationFailed)
}

// compose builds the mail for msg.
func (n *EmailNotifier) compose(msg *model.ContactMessage) (mailer.Message, error) {
	var body bytes.Buffer
	err := notificationTemplate.Execute(&body, notificationData{
		Brand:   n.cfg.Brand,
		Message: msg,
		Year:    time.Now().Year(),
	})
	if err != nil {
		return mailer.Message{}, fmt.Errorf("render notification: %w", err)
	}
	return mailer.Message{
		From:    mail.Address{Name: n.cfg.Brand, Address: n.cfg.FromAddress},
		To:      n.cfg.To,
		Bcc:     n.cfg.Bcc,
		ReplyTo: msg.Email,
		Subject: "New contact message: " + foldLineBreaks(msg.Subject),
		HTML:    body.String(),
	}, nil
}

// headerLineBreaks folds CR/LF so user text can sit in a header value.
var headerLineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func foldLineBreaks(s string) string {
	return headerLineBreaks.Replace(s)
}

type notificationData struct {
	Brand   string
	Message *model.ContactMessage
	Year    int
}

var notificationTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html dir="auto">
<head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="margin:0;padding:0;font-family:'Segoe UI',Tahoma,Geneva,Verdana,sans-serif;background-color:#f5f5f5;">
<div style="max-width:600px;margin:40px auto;background-color:#ffffff;border-radius:12px;overflow:hidden;">
  <div style="background:#4788c8;padding:30px;text-align:center;">
    <h1 style="margin:0;color:#ffffff;font-size:24px;">{{.Brand}}</h1>
    <p style="margin:10px 0 0 0;color:#ffffff;font-size:14px;">New message from the contact form</p>
  </div>
  <div style="padding:30px;">
    <table style="width:100%;border-collapse:collapse;">
      <tr><td style="padding:10px 0;"><strong>Name</strong></td><td>{{.Message.Name}}</td></tr>
      <tr><td style="padding:10px 0;"><strong>Email</strong></td><td><a href="mailto:{{.Message.Email}}">{{.Message.Email}}</a></td></tr>
      <tr><td style="padding:10px 0;"><strong>Phone</strong></td><td dir="ltr"><a href="tel:{{.Message.Phone}}">{{.Message.Phone}}</a></td></tr>
      <tr><td style="padding:10px 0;"><strong>Subject</strong></td><td>{{.Message.Subject}}</td></tr>
    </table>
    <h3 style="margin:20px 0 10px 0;border-bottom:2px solid #4788c8;padding-bottom:8px;">Message</h3>
    <p style="margin:0;line-height:1.8;white-space:pre-wrap;">{{.Message.Message}}</p>
{{- if .Message.IdentityImageURL}}
    <h3 style="margin:20px 0 10px 0;border-bottom:2px solid #4788c8;padding-bottom:8px;">Identity image</h3>
    <div style="text-align:center;">
      <img src="{{.Message.IdentityImageURL}}" alt="Identity image" style="max-width:100%;height:auto;border-radius:8px;">
      <p style="font-size:13px;"><a href="{{.Message.IdentityImageURL}}" target="_blank">View full size</a></p>
    </div>
{{- end}}
    <div style="text-align:center;margin-top:30px;">
      <a href="mailto:{{.Message.Email}}" style="display:inline-block;background:#4788c8;color:#ffffff;padding:14px 40px;text-decoration:none;border-radius:8px;">Reply</a>
    </div>
  </div>
  <div style="background-color:#f8f9fa;padding:20px 30px;text-align:center;color:#888;font-size:12px;">
    Sent automatically by the {{.Brand}} contact form. &copy; {{.Year}}
  </div>
</div>
</body>
</html>
`))
