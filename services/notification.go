package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"sync"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"google.golang.org/api/option"

	"tripplanner-backend/models"
)

const deliveryTimeout = 30 * time.Second

// RecipientDirectory resolves who receives a notification.
type RecipientDirectory interface {
	PlanRecipients(ctx context.Context, planID uuid.UUID) ([]models.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// EmailSender is satisfied by *sendgrid.Client.
type EmailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// PushSender is satisfied by *messaging.Client.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// NotificationService implements Notifier over FCM push and SendGrid email.
// Every call returns immediately; delivery runs on its own goroutine and
// failures are only logged.
type NotificationService struct {
	recipients RecipientDirectory
	email      EmailSender
	push       PushSender
	from       *mail.Email
	wg         sync.WaitGroup
}

var _ Notifier = (*NotificationService)(nil)

// NewNotificationService builds the notifier. A nil email or push sender
// disables that channel.
func NewNotificationService(recipients RecipientDirectory, email EmailSender, push PushSender, fromAddress, appName string) *NotificationService {
	return &NotificationService{
		recipients: recipients,
		email:      email,
		push:       push,
		from:       mail.NewEmail(appName, fromAddress),
	}
}

// NewEmailClient returns a SendGrid sender, or nil without an API key.
func NewEmailClient(apiKey string) EmailSender {
	if apiKey == "" {
		return nil
	}
	return sendgrid.NewSendClient(apiKey)
}

// NewPushClient initialises Firebase Cloud Messaging from a service
// account file.
func NewPushClient(ctx context.Context, credentialsPath string) (*messaging.Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase messaging: %w", err)
	}
	return client, nil
}

func (ns *NotificationService) NotifyPlanMembers(ctx context.Context, planID, excludeUserID uuid.UUID, event models.NotificationEvent) {
	ns.dispatch(ctx, func(ctx context.Context) {
		users, err := ns.recipients.PlanRecipients(ctx, planID)
		if err != nil {
			slog.Error("Failed to load notification recipients", "plan_id", planID, "error", err)
			return
		}
		for i := range users {
			if users[i].ID == excludeUserID {
				continue
			}
			ns.deliver(ctx, &users[i], event)
		}
	})
}

func (ns *NotificationService) NotifyUser(ctx context.Context, userID uuid.UUID, event models.NotificationEvent) {
	ns.dispatch(ctx, func(ctx context.Context) {
		user, err := ns.recipients.GetUser(ctx, userID)
		if err != nil {
			slog.Error("Failed to load notification recipient", "user_id", userID, "error", err)
			return
		}
		ns.deliver(ctx, user, event)
	})
}

// Wait blocks until in-flight deliveries finish. Used on shutdown.
func (ns *NotificationService) Wait() {
	ns.wg.Wait()
}

func (ns *NotificationService) dispatch(ctx context.Context, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	ns.wg.Add(1)
	go func() {
		defer ns.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Notification delivery panicked", "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (ns *NotificationService) deliver(ctx context.Context, user *models.User, event models.NotificationEvent) {
	if ns.push != nil && user.FCMToken != "" {
		ns.sendPush(ctx, user, event)
	}
	if ns.email != nil && user.Email != "" {
		ns.sendEmail(ctx, user, event)
	}
}

func (ns *NotificationService) sendPush(ctx context.Context, user *models.User, event models.NotificationEvent) {
	_, err := ns.push.Send(ctx, &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: event.Title,
			Body:  event.Body,
		},
		Data: event.Data(),
	})
	if err != nil {
		notificationsSent.WithLabelValues("push", "error").Inc()
		slog.Warn("Push notification failed", "user_id", user.ID, "type", event.Type, "error", err)
		return
	}
	notificationsSent.WithLabelValues("push", "sent").Inc()
}

func (ns *NotificationService) sendEmail(ctx context.Context, user *models.User, event models.NotificationEvent) {
	html, err := renderEmail(user.Name, event)
	if err != nil {
		slog.Error("Failed to render notification email", "type", event.Type, "error", err)
		return
	}

	msg := mail.NewSingleEmail(ns.from, event.Title, mail.NewEmail(user.Name, user.Email), event.Body, html)
	resp, err := ns.email.SendWithContext(ctx, msg)
	if err != nil {
		notificationsSent.WithLabelValues("email", "error").Inc()
		slog.Warn("Email notification failed", "user_id", user.ID, "type", event.Type, "error", err)
		return
	}
	if resp.StatusCode >= 300 {
		notificationsSent.WithLabelValues("email", "error").Inc()
		slog.Warn("SendGrid rejected email", "user_id", user.ID, "status", resp.StatusCode)
		return
	}
	notificationsSent.WithLabelValues("email", "sent").Inc()
}

var emailTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #1D7FB9; margin-top: 0;">{{.Title}}</h2>
		<p>Hi <strong>{{.Name}}</strong>,</p>
		<p>{{.Body}}</p>
		<p>Open the app to see the details of your trip expenses.</p>
	</div>
</body>
</html>`))

func renderEmail(name string, event models.NotificationEvent) (string, error) {
	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, struct {
		Name  string
		Title string
		Body  string
	}{name, event.Title, event.Body})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
