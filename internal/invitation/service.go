package invitation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ltcare/familyhub/internal/database"
	"github.com/ltcare/familyhub/internal/family"
	"github.com/ltcare/familyhub/internal/notification"
	"github.com/ltcare/familyhub/internal/user"
	"github.com/ltcare/familyhub/pkg/apperror"
)

// Common errors
var (
	ErrInviteeRequired    = apperror.New(apperror.InvalidInput, "invitee username is required")
	ErrInviteeNotFound    = apperror.New(apperror.NotFound, "user not found")
	ErrSelfInvite         = apperror.New(apperror.InvalidInput, "you cannot invite yourself")
	ErrAlreadyMember      = apperror.New(apperror.Conflict, "user is already a member of your family")
	ErrInvitationNotFound = apperror.New(apperror.NotFound, "invitation not found")
	ErrNotInvitee         = apperror.New(apperror.Forbidden, "this invitation is not addressed to you")
	ErrAlreadyProcessed   = apperror.New(apperror.Conflict, "invitation has already been processed")
	ErrInOtherFamily      = apperror.New(apperror.Conflict, "you already belong to another family")
)

// UserFinder looks up users; lookups return nil when the user does not exist
type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
}

// Service runs the invitation workflow
type Service struct {
	db            *database.DB
	repo          *Repository
	users         UserFinder
	families      *family.Service
	notifications *notification.Service
	logger        *zap.Logger
}

// NewService creates a new invitation service
func NewService(
	db *database.DB,
	repo *Repository,
	users UserFinder,
	families *family.Service,
	notifications *notification.Service,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:            db,
		repo:          repo,
		users:         users,
		families:      families,
		notifications: notifications,
		logger:        logger,
	}
}

// Invite sends an invitation from inviterID to the user named inviteeUsername,
// creating the inviter's family first if they have none. A nil invitation with
// a nil error means an identical invitation was already pending.
func (s *Service) Invite(ctx context.Context, inviterID int64, inviteeUsername string) (*Invitation, error) {
	username := strings.TrimSpace(inviteeUsername)
	if username == "" {
		return nil, ErrInviteeRequired
	}

	invitee, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if invitee == nil {
		return nil, ErrInviteeNotFound
	}
	if invitee.ID == inviterID {
		return nil, ErrSelfInvite
	}

	inviter, err := s.mustGetUser(ctx, inviterID)
	if err != nil {
		return nil, err
	}

	var invitation *Invitation
	err = s.db.InTx(ctx, func(tx *database.Tx) error {
		families := s.families.WithTx(tx)

		familyID, created, err := families.EnsureFamilyForInviter(ctx, inviterID)
		if err != nil {
			return err
		}

		// A family created just now has only the inviter in it.
		if !created {
			isMember, err := families.IsMember(ctx, familyID, invitee.ID)
			if err != nil {
				return err
			}
			if isMember {
				return ErrAlreadyMember
			}
		}

		inv, err := s.repo.WithTx(tx).Create(ctx, familyID, inviterID, invitee.ID)
		if err != nil {
			return err
		}
		if inv == nil {
			return nil
		}

		if _, err := s.notifications.WithTx(tx).NotifyFamilyInvite(ctx, invitee.ID, inviterID, inviter.Username, familyID, inv.ID); err != nil {
			return err
		}
		invitation = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	if invitation != nil {
		s.logger.Info("invitation sent",
			zap.Int64("invitation_id", invitation.ID),
			zap.Int64("family_id", invitation.FamilyID),
			zap.Int64("inviter_id", inviterID),
			zap.Int64("invitee_id", invitee.ID),
		)
	}
	return invitation, nil
}

// Accept joins inviteeID to the invitation's family. The family and
// invitation rows stay locked for the whole transaction so concurrent accepts,
// declines and the family dissolving serialize; a losing accept sees
// ErrAlreadyProcessed, or ErrInvitationNotFound once the family is gone.
func (s *Service) Accept(ctx context.Context, inviteeID, invitationID int64) (int64, error) {
	invitee, err := s.mustGetUser(ctx, inviteeID)
	if err != nil {
		return 0, err
	}

	var familyID int64
	err = s.db.InTx(ctx, func(tx *database.Tx) error {
		repo := s.repo.WithTx(tx)
		families := s.families.WithTx(tx)

		// Lock order is family, then invitation: the same order in which
		// dissolving a family cascades.
		peek, err := repo.GetByID(ctx, invitationID)
		if err != nil {
			return err
		}
		if peek == nil {
			return ErrInvitationNotFound
		}
		alive, err := families.LockFamily(ctx, peek.FamilyID)
		if err != nil {
			return err
		}
		if !alive {
			return ErrInvitationNotFound
		}

		inv, err := repo.GetForUpdate(ctx, invitationID)
		if err != nil {
			return err
		}
		if inv == nil {
			return ErrInvitationNotFound
		}
		if inv.InviteeID != inviteeID {
			return ErrNotInvitee
		}
		if inv.Status != StatusPending {
			return ErrAlreadyProcessed
		}

		current, hasFamily, err := families.ResolveFamilyID(ctx, inviteeID)
		if err != nil {
			return err
		}
		if hasFamily && current != inv.FamilyID {
			return ErrInOtherFamily
		}

		added, err := families.AddMember(ctx, inv.FamilyID, inviteeID)
		if err != nil {
			return err
		}
		if !added && !hasFamily {
			// The insert was ignored although no membership existed a moment
			// ago: another family claimed the user in between.
			current, ok, err := families.ResolveFamilyID(ctx, inviteeID)
			if err != nil {
				return err
			}
			if !ok || current != inv.FamilyID {
				return ErrInOtherFamily
			}
		}

		updated, err := repo.MarkAccepted(ctx, inv.ID)
		if err != nil {
			return err
		}
		if !updated {
			return ErrAlreadyProcessed
		}

		if _, err := s.notifications.WithTx(tx).NotifyInvitationAccepted(ctx, inv.InviterID, inviteeID, invitee.Username, inv.FamilyID, inv.ID); err != nil {
			return err
		}
		familyID = inv.FamilyID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("invitation accepted",
		zap.Int64("invitation_id", invitationID),
		zap.Int64("family_id", familyID),
		zap.Int64("invitee_id", inviteeID),
	)
	return familyID, nil
}

// Decline rejects a pending invitation addressed to inviteeID. Missing,
// foreign and already processed invitations all yield ErrInvitationNotFound.
func (s *Service) Decline(ctx context.Context, inviteeID, invitationID int64) error {
	invitee, err := s.mustGetUser(ctx, inviteeID)
	if err != nil {
		return err
	}

	err = s.db.InTx(ctx, func(tx *database.Tx) error {
		inv, err := s.repo.WithTx(tx).Decline(ctx, invitationID, inviteeID)
		if err != nil {
			return err
		}
		if inv == nil {
			return ErrInvitationNotFound
		}

		_, err = s.notifications.WithTx(tx).NotifyInvitationDeclined(ctx, inv.InviterID, inviteeID, invitee.Username, inv.FamilyID, inv.ID)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("invitation declined",
		zap.Int64("invitation_id", invitationID),
		zap.Int64("invitee_id", inviteeID),
	)
	return nil
}

// ListPending returns pending invitations addressed to inviteeID, newest first
func (s *Service) ListPending(ctx context.Context, inviteeID int64) ([]*Pending, error) {
	return s.repo.ListPendingForInvitee(ctx, inviteeID)
}

func (s *Service) mustGetUser(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("authenticated user %d does not exist", id)
	}
	return u, nil
}
