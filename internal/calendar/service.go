package calendar

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ltcare/familyhub/internal/database"
	"github.com/ltcare/familyhub/internal/family"
	"github.com/ltcare/familyhub/pkg/apperror"
	"github.com/ltcare/familyhub/pkg/sanitize"
)

// Common errors
var (
	ErrEventNotFound = apperror.New(apperror.NotFound, "event not found")
	ErrNoFamily      = apperror.New(apperror.Forbidden, "you are not a member of any family")
	ErrMissingFields = apperror.New(apperror.InvalidInput, "title, start_time and end_time are required")
	ErrEmptyTitle    = apperror.New(apperror.InvalidInput, "title cannot be empty")
	ErrTitleTooLong  = apperror.New(apperror.InvalidInput, "title must be at most 200 characters")
	ErrInvalidTimes  = apperror.New(apperror.InvalidInput, "end_time must be after start_time")
	ErrInvalidRange  = apperror.New(apperror.InvalidInput, "start and end must be given together, with start before end")
)

const maxTitleLength = 200

// FamilyResolver finds the family a user belongs to
type FamilyResolver interface {
	ResolveFamilyID(ctx context.Context, userID int64) (int64, bool, error)
}

var _ FamilyResolver = (*family.Service)(nil)

// Service handles the shared family calendar
type Service struct {
	db       *database.DB
	repo     *Repository
	families FamilyResolver
	logger   *zap.Logger
}

// NewService creates a new calendar service
func NewService(db *database.DB, repo *Repository, families FamilyResolver, logger *zap.Logger) *Service {
	return &Service{db: db, repo: repo, families: families, logger: logger}
}

// ListEvents returns the caller's family events ordered by start time. A
// caller without a family gets a nil family id and no events.
func (s *Service) ListEvents(ctx context.Context, callerID int64, rng *Range) (*int64, []*Event, error) {
	if rng != nil && !rng.Start.Before(rng.End) {
		return nil, nil, ErrInvalidRange
	}

	familyID, ok, err := s.families.ResolveFamilyID(ctx, callerID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, []*Event{}, nil
	}

	events, err := s.repo.ListByFamily(ctx, familyID, rng)
	if err != nil {
		return nil, nil, err
	}
	return &familyID, events, nil
}

// CreateEvent adds an event to the caller's family calendar
func (s *Service) CreateEvent(ctx context.Context, callerID int64, req *CreateEventRequest) (*Event, error) {
	title := sanitize.Text(req.Title)
	if title == "" || req.StartTime == nil || req.EndTime == nil {
		return nil, ErrMissingFields
	}
	if len([]rune(title)) > maxTitleLength {
		return nil, ErrTitleTooLong
	}
	if err := validateTimes(*req.StartTime, *req.EndTime); err != nil {
		return nil, err
	}

	familyID, ok, err := s.families.ResolveFamilyID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoFamily
	}

	event, err := s.repo.Create(ctx, &Event{
		FamilyID:     familyID,
		AuthorUserID: &callerID,
		Title:        title,
		Content:      sanitize.OptionalText(req.Content),
		StartTime:    *req.StartTime,
		EndTime:      *req.EndTime,
		Color:        sanitize.OptionalText(req.Color),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("calendar event created",
		zap.Int64("event_id", event.ID),
		zap.Int64("family_id", familyID),
		zap.Int64("author_id", callerID),
	)
	return event, nil
}

// UpdateEvent applies a merge patch to an event in the caller's family.
// Events of other families are reported as not found.
func (s *Service) UpdateEvent(ctx context.Context, callerID, eventID int64, req *UpdateEventRequest) (*Event, error) {
	familyID, ok, err := s.families.ResolveFamilyID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoFamily
	}

	var updated *Event
	err = s.db.InTx(ctx, func(tx *database.Tx) error {
		repo := s.repo.WithTx(tx)

		event, err := repo.GetForUpdate(ctx, familyID, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return ErrEventNotFound
		}

		if err := applyPatch(event, req); err != nil {
			return err
		}

		updated, err = repo.Update(ctx, event)
		if err != nil {
			return err
		}
		if updated == nil {
			return ErrEventNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("calendar event updated", zap.Int64("event_id", eventID), zap.Int64("family_id", familyID))
	return updated, nil
}

// DeleteEvent removes an event from the caller's family calendar
func (s *Service) DeleteEvent(ctx context.Context, callerID, eventID int64) error {
	familyID, ok, err := s.families.ResolveFamilyID(ctx, callerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoFamily
	}

	deleted, err := s.repo.Delete(ctx, familyID, eventID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrEventNotFound
	}

	s.logger.Info("calendar event deleted", zap.Int64("event_id", eventID), zap.Int64("family_id", familyID))
	return nil
}

func applyPatch(event *Event, req *UpdateEventRequest) error {
	if req.Title != nil {
		title := sanitize.Text(*req.Title)
		if title == "" {
			return ErrEmptyTitle
		}
		if len([]rune(title)) > maxTitleLength {
			return ErrTitleTooLong
		}
		event.Title = title
	}
	if req.Content != nil {
		event.Content = sanitize.OptionalText(req.Content)
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if req.Color != nil {
		event.Color = sanitize.OptionalText(req.Color)
	}
	return validateTimes(event.StartTime, event.EndTime)
}

func validateTimes(start, end time.Time) error {
	if !normalizeTime(end).After(normalizeTime(start)) {
		return ErrInvalidTimes
	}
	return nil
}
