package registration

import (
	"context"

	"github.com/pkg/errors"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/pkg/errs"
	"lunch/backend/internal/service/ticket"
)

const defaultTodayLimit = 10

// Today lists the latest registrations of the current display day, newest
// first.
func (s *Service) Today(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = defaultTodayLimit
	}

	entries, err := s.store.RecordsSince(ctx, s.zone.StartOfDay(s.now()), limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing today's records")
	}

	list := make([]Result, 0, len(entries))
	for _, e := range entries {
		list = append(list, s.result(e))
	}

	return list, nil
}

// Delete removes one ledger entry.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.store.DeleteRecord(ctx, id); err != nil {
		if errs.Is(err, errs.NotFound) {
			return errs.Wrap(errs.NotFound, err, "record not found")
		}
		return errors.Wrap(err, "deleting record")
	}

	return nil
}

// Ticket renders the printable lunch ticket of a ledger entry as a PDF.
func (s *Service) Ticket(ctx context.Context, id int) ([]byte, error) {
	entry, err := s.store.RecordByID(ctx, id)
	if err != nil {
		if errs.Is(err, errs.NotFound) {
			return nil, errs.Wrap(errs.NotFound, err, "record not found")
		}
		return nil, errors.Wrap(err, "selecting record")
	}

	school, ok, err := s.store.Setting(ctx, entity.SettingSchoolName)
	if err != nil || !ok || school == "" {
		school = entity.DefaultSchoolName
	}

	return ticket.Render(ticket.Data{
		School:      school,
		RecordID:    entry.ID,
		PersonCode:  entry.PersonCode,
		PersonName:  entry.PersonName,
		Department:  entry.Department,
		ControlType: entry.ControlType,
		Timestamp:   s.zone.Format(entry.CreatedAt),
	})
}

func (s *Service) result(e Entry) Result {
	return Result{
		RecordID:    e.ID,
		PersonCode:  e.PersonCode,
		PersonName:  e.PersonName,
		Department:  e.Department,
		ControlType: e.ControlType,
		Timestamp:   s.zone.Format(e.CreatedAt),
	}
}
