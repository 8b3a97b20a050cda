package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/ltcare/familyhub/internal/database"
	"github.com/ltcare/familyhub/pkg/apperror"
)

// Common errors
var (
	ErrNotificationNotFound = apperror.New(apperror.NotFound, "notification not found")
	ErrNotRecipient         = apperror.New(apperror.Forbidden, "not the recipient of this notification")
)

// Service handles notification business logic
type Service struct {
	repo   *Repository
	logger *zap.Logger
}

// NewService creates a new notification service
func NewService(repo *Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// WithTx returns a service that writes through tx, so a notification commits
// or rolls back together with the change it reports.
func (s *Service) WithTx(tx database.Querier) *Service {
	return &Service{repo: s.repo.WithTx(tx), logger: s.logger}
}

// GetByID retrieves a notification by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Notification, error) {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification == nil {
		return nil, ErrNotificationNotFound
	}
	return notification, nil
}

// ListByRecipientID retrieves a page of notifications for a user
func (s *Service) ListByRecipientID(ctx context.Context, recipientID int64, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	notification, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification.RecipientID != userID {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	updated, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return err
	}
	s.logger.Debug("notifications marked read", zap.Int64("user_id", userID), zap.Int64("count", updated))
	return nil
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// NotifyFamilyInvite tells the invitee about a new invitation
func (s *Service) NotifyFamilyInvite(ctx context.Context, inviteeID, inviterID int64, inviterName string, familyID, invitationID int64) (*Notification, error) {
	message := inviterName + " invited you to join their family"
	return s.repo.Create(ctx, &Notification{
		RecipientID:  inviteeID,
		ActorID:      &inviterID,
		Type:         TypeFamilyInvite,
		Title:        "Family invitation",
		Message:      &message,
		FamilyID:     &familyID,
		InvitationID: &invitationID,
	})
}

// NotifyInvitationAccepted tells the inviter that the invitee joined
func (s *Service) NotifyInvitationAccepted(ctx context.Context, inviterID, inviteeID int64, inviteeName string, familyID, invitationID int64) (*Notification, error) {
	message := inviteeName + " joined your family"
	return s.repo.Create(ctx, &Notification{
		RecipientID:  inviterID,
		ActorID:      &inviteeID,
		Type:         TypeInvitationAccepted,
		Title:        "Invitation accepted",
		Message:      &message,
		FamilyID:     &familyID,
		InvitationID: &invitationID,
	})
}

// NotifyInvitationDeclined tells the inviter that the invitee declined
func (s *Service) NotifyInvitationDeclined(ctx context.Context, inviterID, inviteeID int64, inviteeName string, familyID, invitationID int64) (*Notification, error) {
	message := inviteeName + " declined your family invitation"
	return s.repo.Create(ctx, &Notification{
		RecipientID:  inviterID,
		ActorID:      &inviteeID,
		Type:         TypeInvitationDeclined,
		Title:        "Invitation declined",
		Message:      &message,
		FamilyID:     &familyID,
		InvitationID: &invitationID,
	})
}
