package family

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ltcare/familyhub/internal/database"
	"github.com/ltcare/familyhub/pkg/apperror"
	"github.com/ltcare/familyhub/pkg/sanitize"
)

// Common errors
var (
	ErrNoFamily         = apperror.New(apperror.Forbidden, "you are not a member of any family")
	ErrNotInFamily      = apperror.New(apperror.NotFound, "you are not a member of any family")
	ErrNotOwner         = apperror.New(apperror.Forbidden, "only the family owner can do this")
	ErrMemberNotFound   = apperror.New(apperror.NotFound, "member not found")
	ErrInvalidName      = apperror.New(apperror.InvalidInput, "family name must be 1-100 characters")
	ErrOwnerMustStay    = apperror.New(apperror.Conflict, "the owner cannot leave while other members remain")
	ErrCannotRemoveSelf = apperror.New(apperror.InvalidInput, "use leave to remove yourself")
)

const maxNameLength = 100

// Service handles family membership business logic
type Service struct {
	db     *database.DB
	repo   *Repository
	logger *zap.Logger
}

// NewService creates a new family service
func NewService(db *database.DB, repo *Repository, logger *zap.Logger) *Service {
	return &Service{db: db, repo: repo, logger: logger}
}

// WithTx returns a service whose reads and writes run on tx. The returned
// service must not start transactions of its own.
func (s *Service) WithTx(tx database.Querier) *Service {
	return &Service{repo: s.repo.WithTx(tx), logger: s.logger}
}

// ResolveFamilyID returns the family the user belongs to. It is looked up on
// every call since membership changes at any time.
func (s *Service) ResolveFamilyID(ctx context.Context, userID int64) (int64, bool, error) {
	return s.repo.ResolveFamilyID(ctx, userID)
}

// EnsureFamilyForInviter returns the inviter's family, creating one owned by
// the inviter when they have none. created is true when a new family was made.
func (s *Service) EnsureFamilyForInviter(ctx context.Context, userID int64) (int64, bool, error) {
	familyID, ok, err := s.repo.ResolveFamilyID(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	if ok {
		return familyID, false, nil
	}

	family, err := s.repo.Create(ctx, DefaultName, userID)
	if err != nil {
		return 0, false, err
	}

	added, err := s.repo.AddMember(ctx, family.ID, userID)
	if err != nil {
		return 0, false, err
	}
	if !added {
		// A concurrent request gave the user a family first; drop ours and use theirs.
		if err := s.repo.Delete(ctx, family.ID); err != nil {
			return 0, false, err
		}
		familyID, ok, err := s.repo.ResolveFamilyID(ctx, userID)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return 0, false, apperror.New(apperror.Conflict, "family membership changed, please retry")
		}
		return familyID, false, nil
	}

	s.logger.Info("family created", zap.Int64("family_id", family.ID), zap.Int64("owner_id", userID))
	return family.ID, true, nil
}

// LockFamily locks the family row for the rest of the transaction and
// reports whether the family still exists. Joins and the last member leaving
// serialize on this lock.
func (s *Service) LockFamily(ctx context.Context, familyID int64) (bool, error) {
	family, err := s.repo.GetForUpdate(ctx, familyID)
	if err != nil {
		return false, err
	}
	return family != nil, nil
}

// IsMember reports whether the user belongs to the family
func (s *Service) IsMember(ctx context.Context, familyID, userID int64) (bool, error) {
	return s.repo.IsMember(ctx, familyID, userID)
}

// AddMember inserts a membership, ignoring duplicates
func (s *Service) AddMember(ctx context.Context, familyID, userID int64) (bool, error) {
	return s.repo.AddMember(ctx, familyID, userID)
}

// ListMembers returns the members of a family ordered by user id
func (s *Service) ListMembers(ctx context.Context, familyID int64) ([]*Member, error) {
	return s.repo.ListMembers(ctx, familyID)
}

// MembersOf returns the caller's family id and its members. The id is nil and
// the list empty when the caller belongs to no family.
func (s *Service) MembersOf(ctx context.Context, userID int64) (*int64, []*Member, error) {
	familyID, ok, err := s.repo.ResolveFamilyID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, []*Member{}, nil
	}

	members, err := s.repo.ListMembers(ctx, familyID)
	if err != nil {
		return nil, nil, err
	}
	return &familyID, members, nil
}

// Current returns the caller's family and members, or a nil family
func (s *Service) Current(ctx context.Context, userID int64) (*Family, []*Member, error) {
	familyID, ok, err := s.repo.ResolveFamilyID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, []*Member{}, nil
	}

	family, err := s.repo.GetByID(ctx, familyID)
	if err != nil {
		return nil, nil, err
	}
	if family == nil {
		return nil, []*Member{}, nil
	}

	members, err := s.repo.ListMembers(ctx, familyID)
	if err != nil {
		return nil, nil, err
	}
	return family, members, nil
}

// Rename changes the name of the caller's family. Only the owner may rename.
func (s *Service) Rename(ctx context.Context, userID int64, name string) (*Family, error) {
	name = sanitize.Text(name)
	if n := len([]rune(strings.TrimSpace(name))); n == 0 || n > maxNameLength {
		return nil, ErrInvalidName
	}

	family, err := s.ownedFamily(ctx, userID)
	if err != nil {
		return nil, err
	}

	renamed, err := s.repo.Rename(ctx, family.ID, name)
	if err != nil {
		return nil, err
	}
	if renamed == nil {
		return nil, ErrNoFamily
	}
	return renamed, nil
}

// Leave removes the caller from their family. The owner can only leave once
// every other member is gone; the last member leaving dissolves the family
// along with its pending invitations and events.
func (s *Service) Leave(ctx context.Context, userID int64) error {
	var left int64
	var dissolved bool
	err := s.db.InTx(ctx, func(tx *database.Tx) error {
		repo := s.repo.WithTx(tx)

		familyID, ok, err := repo.ResolveFamilyID(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotInFamily
		}

		family, err := repo.GetForUpdate(ctx, familyID)
		if err != nil {
			return err
		}
		if family != nil && family.IsOwner(userID) {
			count, err := repo.CountMembers(ctx, familyID)
			if err != nil {
				return err
			}
			if count > 1 {
				return ErrOwnerMustStay
			}
		}

		if _, err := repo.RemoveMember(ctx, familyID, userID); err != nil {
			return err
		}

		remaining, err := repo.CountMembers(ctx, familyID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			// Invitations and events cascade with the family.
			if err := repo.Delete(ctx, familyID); err != nil {
				return err
			}
			dissolved = true
		}

		left = familyID
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("family member left",
		zap.Int64("family_id", left),
		zap.Int64("user_id", userID),
		zap.Bool("family_dissolved", dissolved),
	)
	return nil
}

// RemoveMember removes another user from the caller's family. Only the owner
// may remove members.
func (s *Service) RemoveMember(ctx context.Context, ownerID, memberID int64) error {
	if ownerID == memberID {
		return ErrCannotRemoveSelf
	}

	family, err := s.ownedFamily(ctx, ownerID)
	if err != nil {
		return err
	}

	removed, err := s.repo.RemoveMember(ctx, family.ID, memberID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrMemberNotFound
	}

	s.logger.Info("family member removed",
		zap.Int64("family_id", family.ID),
		zap.Int64("user_id", memberID),
		zap.Int64("removed_by", ownerID),
	)
	return nil
}

func (s *Service) ownedFamily(ctx context.Context, userID int64) (*Family, error) {
	familyID, ok, err := s.repo.ResolveFamilyID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoFamily
	}

	family, err := s.repo.GetByID(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrNoFamily
	}
	if !family.IsOwner(userID) {
		return nil, ErrNotOwner
	}
	return family, nil
}
