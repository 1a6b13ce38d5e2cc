// Package registration records lunch attendance. A person gets at most one
// ledger entry per display-zone calendar day.
package registration

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/pkg/errors"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/pkg/errs"
	"lunch/backend/internal/pkg/localtime"
)

var (
	ErrCodeRequired           = errs.New(errs.Validation, "a person code is required")
	ErrPersonNotFound         = errs.New(errs.NotFound, "person code not found")
	ErrAlreadyRegisteredToday = errs.New(errs.Conflict, "lunch already taken today")
	ErrInProgress             = errs.New(errs.Conflict, "a registration for this person is already in progress")
)

// Person is what the ledger needs to know about the person being served.
type Person struct {
	Code          string
	Name          string
	Department    string
	ControlTypeID int
	ControlType   string
}

// Tx is the unit of work a registration runs in.
type Tx interface {
	PersonByCode(ctx context.Context, code string) (Person, error)
	HasRecordSince(ctx context.Context, code string, since time.Time) (bool, error)
	CreateRecord(ctx context.Context, record *entity.Attendance) error
}

// Store opens units of work and reads the settings the result depends on.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Setting(ctx context.Context, key string) (string, bool, error)

	RecordsSince(ctx context.Context, since time.Time, limit int) ([]Entry, error)
	RecordByID(ctx context.Context, id int) (Entry, error)
	DeleteRecord(ctx context.Context, id int) error
}

// Entry is a ledger row joined with the person it belongs to.
type Entry struct {
	ID          int
	PersonCode  string
	PersonName  string
	Department  string
	ControlType string
	CreatedAt   time.Time
}

// Locker serializes registrations of the same person across requests.
// unlock must be safe to call once the lock expired.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
}

// Result is the view model handed to the display and ticket printer.
type Result struct {
	RecordID    int    `json:"id_registro"`
	PersonCode  string `json:"id_persona"`
	PersonName  string `json:"nombre_persona"`
	Department  string `json:"dpto"`
	ControlType string `json:"tipo_control"`
	Timestamp   string `json:"fecha_hora"`
	PrintTicket bool   `json:"imprime_ticket"`
}

type Service struct {
	store  Store
	zone   localtime.Zone
	locker Locker
	log    *log.Logger
	now    func() time.Time
}

type Option func(*Service)

// WithLocker installs a cross-request lock.
func WithLocker(l Locker) Option {
	return func(s *Service) { s.locker = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, zone localtime.Zone, log *log.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		zone:  zone,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const lockTTL = 5 * time.Second

// Register records that the person identified by code took lunch now.
func (s *Service) Register(ctx context.Context, code string) (Result, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Result{}, ErrCodeRequired
	}

	if s.locker != nil {
		// Without the lock the unique (person, lunch day) index still
		// rejects the second of two concurrent scans.
		unlock, ok, err := s.locker.Lock(ctx, "lunch:register:"+code, lockTTL)
		switch {
		case err != nil:
			if s.log != nil {
				s.log.Printf("registration: locking %s: %v", code, err)
			}
		case !ok:
			return Result{}, ErrInProgress
		default:
			defer unlock()
		}
	}

	now := s.now().UTC()

	var (
		person Person
		record entity.Attendance
	)

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		person, err = tx.PersonByCode(ctx, code)
		if err != nil {
			if errs.Is(err, errs.NotFound) {
				return ErrPersonNotFound
			}
			return errors.Wrap(err, "selecting person")
		}

		if entity.IsNotApplicable(person.ControlType) {
			return errs.Newf(errs.Ineligible, "%q is not enabled to take lunch", person.Name)
		}

		taken, err := tx.HasRecordSince(ctx, code, s.zone.StartOfDay(now))
		if err != nil {
			return errors.Wrap(err, "checking today's record")
		}
		if taken {
			return ErrAlreadyRegisteredToday
		}

		record = entity.Attendance{
			PersonID:      person.Code,
			ControlTypeID: person.ControlTypeID,
			CreatedAt:     now,
			LunchDay:      s.zone.Day(now),
		}
		if err := tx.CreateRecord(ctx, &record); err != nil {
			if errs.Is(err, errs.Integrity) {
				return ErrAlreadyRegisteredToday
			}
			return errors.Wrap(err, "creating record")
		}

		return nil
	})
	if err != nil {
		return Result{}, err
	}

	res := s.result(Entry{
		ID:          record.ID,
		PersonCode:  person.Code,
		PersonName:  person.Name,
		Department:  person.Department,
		ControlType: person.ControlType,
		CreatedAt:   record.CreatedAt,
	})
	res.PrintTicket = s.printTickets(ctx)

	return res, nil
}

// printTickets never fails the registration; a broken settings read only
// disables printing.
func (s *Service) printTickets(ctx context.Context) bool {
	value, ok, err := s.store.Setting(ctx, entity.SettingPrintTickets)
	if err != nil {
		if s.log != nil {
			s.log.Printf("registration: reading %s: %v", entity.SettingPrintTickets, err)
		}
		return false
	}

	return ok && entity.SettingEnabled(value)
}
