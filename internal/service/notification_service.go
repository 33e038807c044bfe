package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/campuskit/coursedesk/internal/domain"
	"github.com/campuskit/coursedesk/internal/events"
	"github.com/campuskit/coursedesk/internal/repository"
)

// NotificationService turns domain events into emails. Delivery is
// fire-and-forget: a failed send is logged and never fails the operation
// that emitted the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	users      repository.UserRepository
	mailer     Mailer
	logger     *zap.Logger
	publicURL  string
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, users repository.UserRepository, mailer Mailer, logger *zap.Logger, publicURL string) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		users:      users,
		mailer:     mailer,
		logger:     logger,
		publicURL:  strings.TrimRight(publicURL, "/"),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserInvited, n.handleUserInvited)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketForwarded, n.handleForwarded)
	n.dispatcher.Subscribe(events.EventTicketCommented, n.handleCommented)
}

func (n *NotificationService) handleUserInvited(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserInvitedPayload)
	if !ok {
		return nil
	}
	subject := "Welcome to Coursedesk"
	body := fmt.Sprintf(
		"Hello %s,\n\nan account was created for you.\n\nPlease open the following link to activate it:\n%s/activate/%s\n\nThe Coursedesk team",
		payload.Name, n.publicURL, payload.ActivationCode)
	n.send(payload.Email, payload.Name, subject, body)
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	// The creator triggered this change themselves; no mail needed.
	if payload.CreatorID == event.ActorID {
		return nil
	}
	creator, err := n.recipient(ctx, payload.CreatorID)
	if err != nil {
		return nil
	}
	subject := "Status of your ticket changed"
	body := fmt.Sprintf(
		"Hello %s,\n\nthe status of your ticket %q (#%d) changed from %s to %s.\n\nThe Coursedesk team",
		creator.Name, payload.TicketTitle, payload.TicketID, payload.OldStatus, payload.NewStatus)
	n.send(creator.Email, creator.Name, subject, body)
	return nil
}

func (n *NotificationService) handleForwarded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketForwardedPayload)
	if !ok {
		return nil
	}
	author, err := n.recipient(ctx, payload.AuthorID)
	if err != nil {
		return nil
	}
	subject := "A ticket was forwarded to you"
	body := fmt.Sprintf(
		"Hello %s,\n\nthe ticket %q (#%d) was forwarded to you as the course author.\n\nThe Coursedesk team",
		author.Name, payload.TicketTitle, payload.TicketID)
	n.send(author.Email, author.Name, subject, body)
	return nil
}

func (n *NotificationService) handleCommented(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCommentedPayload)
	if !ok {
		return nil
	}
	if payload.CreatorID == payload.WriterID {
		return nil
	}
	creator, err := n.recipient(ctx, payload.CreatorID)
	if err != nil {
		return nil
	}
	subject := "New comment on your ticket"
	body := fmt.Sprintf(
		"Hello %s,\n\nyour ticket %q (#%d) received a new comment:\n\n%s\n\nThe Coursedesk team",
		creator.Name, payload.TicketTitle, payload.TicketID, payload.BodyPreview)
	n.send(creator.Email, creator.Name, subject, body)
	return nil
}

func (n *NotificationService) recipient(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			n.logger.Warn("notification recipient lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		return nil, err
	}
	return user, nil
}

func (n *NotificationService) send(toEmail, toName, subject, body string) {
	if n.mailer == nil {
		return
	}
	// SMTP latency stays out of the request path; the caller never waits.
	go func() {
		if err := n.mailer.Send(toEmail, toName, subject, body); err != nil {
			n.logger.Error("failed sending email", zap.String("subject", subject), zap.Error(err))
		}
	}()
}
