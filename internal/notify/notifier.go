// internal/notify/notifier.go

// Package notify tells the fleet desk about finalized orders. Delivery is
// best-effort: a failed notification is logged, never surfaced to the
// requester.
package notify

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"logistics-intake/internal/common/config"
	cerrors "logistics-intake/internal/common/errors"
	"logistics-intake/internal/common/logger"
	"logistics-intake/internal/models"
)

// EmailSender matches the SES client wrapper.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSPublisher matches the SNS client wrapper.
type SMSPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Notifier struct {
	cfg    config.NotificationConfig
	email  EmailSender
	sms    SMSPublisher
	logger logger.Logger
}

func New(cfg config.NotificationConfig, email EmailSender, sms SMSPublisher, log logger.Logger) *Notifier {
	return &Notifier{
		cfg:   cfg,
		email: email,
		sms:   sms,
		logger: log.With(map[string]interface{}{
			"component": "notifier",
		}),
	}
}

// OrderFinalized pushes the dispatch summary through every enabled channel.
func (n *Notifier) OrderFinalized(ctx context.Context, order *models.ServiceOrder) {
	summary := dispatchSummary(order)

	if n.cfg.AWS.SES.Enabled && n.email != nil {
		if err := n.sendEmail(ctx, order, summary); err != nil {
			n.logger.WithError(err).Error("order email notification failed", map[string]interface{}{
				"orderId": order.ID,
			})
		}
	}

	if n.cfg.AWS.SNS.Enabled && n.sms != nil {
		if err := n.publishSMS(ctx, summary); err != nil {
			n.logger.WithError(err).Error("order SMS notification failed", map[string]interface{}{
				"orderId": order.ID,
			})
		}
	}
}

func (n *Notifier) sendEmail(ctx context.Context, order *models.ServiceOrder, summary string) error {
	subject := fmt.Sprintf("Nova OS #%d - %s", order.ID, order.Destination)

	_, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: awssdk.String(n.cfg.AWS.SES.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{n.cfg.AWS.SES.FleetDesk},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(summary)},
			},
		},
	})
	if err != nil {
		return cerrors.NewNotificationSendFailedError("ses", err)
	}
	return nil
}

func (n *Notifier) publishSMS(ctx context.Context, summary string) error {
	_, err := n.sms.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(n.cfg.AWS.SNS.TopicARN),
		Message:  awssdk.String(summary),
	})
	if err != nil {
		return cerrors.NewNotificationSendFailedError("sns", err)
	}
	return nil
}

func dispatchSummary(order *models.ServiceOrder) string {
	departure := "a definir"
	if order.DepartureAt != nil {
		departure = order.DepartureAt.Format("02/01/2006 15:04")
	}

	awaiting := "não"
	if order.AwaitReturn {
		awaiting = "sim"
	}

	proad := "-"
	if order.Proad != "" {
		proad = order.Proad
	}

	return fmt.Sprintf(
		"OS #%d\nSolicitante: %s\nDestino: %s\nSaída: %s\nPassageiros: %s\nVeículo: %s\nAguardar retorno: %s\nPROAD: %s",
		order.ID, order.RequesterName, order.Destination, departure,
		order.Passengers, order.VehicleType, awaiting, proad,
	)
}
