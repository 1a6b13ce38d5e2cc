package registration

import (
	"bytes"
	"context"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/pkg/errs"
	"lunch/backend/internal/pkg/localtime"
)

type memStore struct {
	mu       sync.Mutex
	persons  map[string]Person
	records  []entity.Attendance
	settings map[string]string

	// skipCheck makes HasRecordSince report false, as a concurrent request
	// that read before the other committed would see.
	skipCheck  bool
	settingErr error
}

func newMemStore() *memStore {
	return &memStore{
		persons: map[string]Person{
			"1001": {Code: "1001", Name: "Ana Gomez", Department: "Primaria", ControlTypeID: 1, ControlType: entity.ControlRegular},
			"1002": {Code: "1002", Name: "Luis Perez", Department: "Bachillerato", ControlTypeID: 3, ControlType: "no aplica"},
		},
		settings: map[string]string{},
	}
}

type memTx struct {
	store   *memStore
	pending []entity.Attendance
}

func (s *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.records = append(s.records, tx.pending...)
	return nil
}

func (s *memStore) Setting(_ context.Context, key string) (string, bool, error) {
	if s.settingErr != nil {
		return "", false, s.settingErr
	}
	v, ok := s.settings[key]
	return v, ok, nil
}

func (s *memStore) entry(r entity.Attendance) Entry {
	p := s.persons[r.PersonID]
	return Entry{
		ID:          r.ID,
		PersonCode:  p.Code,
		PersonName:  p.Name,
		Department:  p.Department,
		ControlType: p.ControlType,
		CreatedAt:   r.CreatedAt,
	}
}

func (s *memStore) RecordsSince(_ context.Context, since time.Time, limit int) ([]Entry, error) {
	var list []Entry
	for i := len(s.records) - 1; i >= 0 && len(list) < limit; i-- {
		if !s.records[i].CreatedAt.Before(since) {
			list = append(list, s.entry(s.records[i]))
		}
	}
	return list, nil
}

func (s *memStore) RecordByID(_ context.Context, id int) (Entry, error) {
	for _, r := range s.records {
		if r.ID == id {
			return s.entry(r), nil
		}
	}
	return Entry{}, errs.New(errs.NotFound, "record not found")
}

func (s *memStore) DeleteRecord(_ context.Context, id int) error {
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return errs.New(errs.NotFound, "record not found")
}

func (t *memTx) PersonByCode(_ context.Context, code string) (Person, error) {
	p, ok := t.store.persons[code]
	if !ok {
		return Person{}, errs.New(errs.NotFound, "person not found")
	}
	return p, nil
}

func (t *memTx) HasRecordSince(_ context.Context, code string, since time.Time) (bool, error) {
	if t.store.skipCheck {
		return false, nil
	}
	for _, r := range t.store.records {
		if r.PersonID == code && !r.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CreateRecord(_ context.Context, record *entity.Attendance) error {
	for _, r := range append(t.store.records, t.pending...) {
		if r.PersonID == record.PersonID && r.LunchDay.Equal(record.LunchDay) {
			return errs.Wrap(errs.Integrity, errors.New("duplicate key value violates unique constraint"), "creating record")
		}
	}
	record.ID = len(t.store.records) + len(t.pending) + 1
	t.pending = append(t.pending, *record)
	return nil
}

var bogota = localtime.Fixed(time.FixedZone("COT", -5*60*60))

func clockAt(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("records once per local day", func(t *testing.T) {
		store := newMemStore()
		store.settings[entity.SettingPrintTickets] = "True"
		now := time.Date(2024, 3, 4, 17, 30, 0, 0, time.UTC)
		svc := NewService(store, bogota, nil, WithClock(clockAt(&now)))

		res, err := svc.Register(ctx, " 1001 ")
		require.NoError(t, err)
		assert.Equal(t, 1, res.RecordID)
		assert.Equal(t, "1001", res.PersonCode)
		assert.Equal(t, "Ana Gomez", res.PersonName)
		assert.Equal(t, "Primaria", res.Department)
		assert.Equal(t, entity.ControlRegular, res.ControlType)
		assert.Equal(t, "04/03/2024 12:30:00 PM", res.Timestamp)
		assert.True(t, res.PrintTicket)

		now = now.Add(3 * time.Hour)
		_, err = svc.Register(ctx, "1001")
		require.ErrorIs(t, err, ErrAlreadyRegisteredToday)
		assert.True(t, errs.Is(err, errs.Conflict))
		assert.Len(t, store.records, 1)
	})

	t.Run("day boundary follows the display zone", func(t *testing.T) {
		store := newMemStore()
		// 23:50 local on March 4th.
		now := time.Date(2024, 3, 5, 4, 50, 0, 0, time.UTC)
		svc := NewService(store, bogota, nil, WithClock(clockAt(&now)))

		_, err := svc.Register(ctx, "1001")
		require.NoError(t, err)

		// 00:10 local on March 5th, same UTC date.
		now = time.Date(2024, 3, 5, 5, 10, 0, 0, time.UTC)
		res, err := svc.Register(ctx, "1001")
		require.NoError(t, err)
		assert.Equal(t, "05/03/2024 12:10:00 AM", res.Timestamp)

		require.Len(t, store.records, 2)
		assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), store.records[0].LunchDay)
		assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), store.records[1].LunchDay)
	})

	t.Run("copies the control type", func(t *testing.T) {
		store := newMemStore()
		svc := NewService(store, bogota, nil)

		_, err := svc.Register(ctx, "1001")
		require.NoError(t, err)
		require.Len(t, store.records, 1)
		assert.Equal(t, 1, store.records[0].ControlTypeID)
	})

	t.Run("sentinel control type is ineligible", func(t *testing.T) {
		store := newMemStore()
		svc := NewService(store, bogota, nil)

		for i := 0; i < 2; i++ {
			_, err := svc.Register(ctx, "1002")
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.Ineligible))
			assert.Contains(t, err.Error(), "Luis Perez")
		}
		assert.Empty(t, store.records)
	})

	t.Run("unknown code", func(t *testing.T) {
		store := newMemStore()
		svc := NewService(store, bogota, nil)

		_, err := svc.Register(ctx, "9999")
		require.ErrorIs(t, err, ErrPersonNotFound)
		assert.True(t, errs.Is(err, errs.NotFound))
		assert.Empty(t, store.records)
	})

	t.Run("empty code", func(t *testing.T) {
		svc := NewService(newMemStore(), bogota, nil)

		_, err := svc.Register(ctx, "   ")
		assert.True(t, errs.Is(err, errs.Validation))
	})

	t.Run("unique violation becomes already registered", func(t *testing.T) {
		store := newMemStore()
		svc := NewService(store, bogota, nil)

		_, err := svc.Register(ctx, "1001")
		require.NoError(t, err)

		store.skipCheck = true
		_, err = svc.Register(ctx, "1001")
		require.ErrorIs(t, err, ErrAlreadyRegisteredToday)
		assert.Len(t, store.records, 1)
	})

	t.Run("missing or broken setting disables printing", func(t *testing.T) {
		store := newMemStore()
		svc := NewService(store, bogota, nil)

		res, err := svc.Register(ctx, "1001")
		require.NoError(t, err)
		assert.False(t, res.PrintTicket)

		store.records = nil
		store.settingErr = errors.New("connection reset")
		res, err = svc.Register(ctx, "1001")
		require.NoError(t, err)
		assert.False(t, res.PrintTicket)
	})
}

func TestRegisterConcurrentScans(t *testing.T) {
	store := newMemStore()
	store.skipCheck = true
	svc := NewService(store, bogota, nil)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Register(context.Background(), "1001"); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrAlreadyRegisteredToday)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Len(t, store.records, 1)
}

type heldLocker struct {
	held map[string]bool
}

func (l *heldLocker) Lock(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func() { delete(l.held, key) }, true, nil
}

func TestRegisterLocker(t *testing.T) {
	ctx := context.Background()
	locker := &heldLocker{held: map[string]bool{}}
	store := newMemStore()
	svc := NewService(store, bogota, nil, WithLocker(locker))

	locker.held["lunch:register:1001"] = true
	_, err := svc.Register(ctx, "1001")
	require.ErrorIs(t, err, ErrInProgress)
	assert.Empty(t, store.records)

	delete(locker.held, "lunch:register:1001")
	_, err = svc.Register(ctx, "1001")
	require.NoError(t, err)
	assert.Empty(t, locker.held)
}

type downLocker struct{}

func (downLocker) Lock(context.Context, string, time.Duration) (func(), bool, error) {
	return nil, false, errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
}

func TestRegisterLockerDown(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	var buf bytes.Buffer
	now := time.Date(2024, 3, 4, 17, 30, 0, 0, time.UTC)
	svc := NewService(store, bogota, log.New(&buf, "", 0), WithLocker(downLocker{}), WithClock(clockAt(&now)))

	res, err := svc.Register(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, "1001", res.PersonCode)
	assert.Len(t, store.records, 1)
	assert.Contains(t, buf.String(), "connection refused")

	_, err = svc.Register(ctx, "1001")
	require.ErrorIs(t, err, ErrAlreadyRegisteredToday)
	assert.Len(t, store.records, 1)
}

func TestLedger(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.persons["1003"] = Person{Code: "1003", Name: "Sofia Ruiz", Department: "Primaria", ControlTypeID: 2, ControlType: entity.ControlSpecialDiet}

	now := time.Date(2024, 3, 4, 16, 0, 0, 0, time.UTC)
	svc := NewService(store, bogota, nil, WithClock(clockAt(&now)))

	_, err := svc.Register(ctx, "1001")
	require.NoError(t, err)

	now = now.Add(24 * time.Hour)
	_, err = svc.Register(ctx, "1001")
	require.NoError(t, err)
	now = now.Add(time.Minute)
	last, err := svc.Register(ctx, "1003")
	require.NoError(t, err)

	t.Run("today lists the current day newest first", func(t *testing.T) {
		list, err := svc.Today(ctx, 0)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "1003", list[0].PersonCode)
		assert.Equal(t, "1001", list[1].PersonCode)

		list, err = svc.Today(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("ticket", func(t *testing.T) {
		store.settings[entity.SettingSchoolName] = "Colegio San Jose"

		pdf, err := svc.Ticket(ctx, last.RecordID)
		require.NoError(t, err)
		assert.Equal(t, "%PDF", string(pdf[:4]))

		_, err = svc.Ticket(ctx, 999)
		assert.True(t, errs.Is(err, errs.NotFound))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, last.RecordID))
		assert.Len(t, store.records, 2)

		err := svc.Delete(ctx, last.RecordID)
		assert.True(t, errs.Is(err, errs.NotFound))

		// The person may register again once the entry is gone.
		_, err = svc.Register(ctx, "1003")
		require.NoError(t, err)
	})
}
