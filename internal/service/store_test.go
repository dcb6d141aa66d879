package service

// In-memory fakes standing in for the MySQL repositories. The store
// serializes whole transactions behind one mutex, which is enough to
// assert the service-level contract (a later WithinTx observes an
// earlier insert). The storage-level exclusivity guarantee itself rests
// on the real repository's transaction isolation and locking reads and
// is not exercised here.

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/studyroomhq/study-room-reservation/internal/domain"
	"github.com/studyroomhq/study-room-reservation/internal/model"
	"github.com/studyroomhq/study-room-reservation/internal/repository"
)

type memStore struct {
	mu    sync.Mutex
	seq   int64
	items map[int64]*model.Reservation
}

func newMemStore() *memStore {
	return &memStore{items: map[int64]*model.Reservation{}}
}

func (s *memStore) add(r model.Reservation) *model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	r.ID = s.seq
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	s.items[r.ID] = &r
	return &r
}

func (s *memStore) get(id int64) model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.items[id]
}

type memTx struct{ s *memStore }

func (s *memStore) WithinTx(ctx context.Context, fn func(tx domain.ReservationTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	backup := make(map[int64]*model.Reservation, len(s.items))
	for id, r := range s.items {
		cp := *r
		backup[id] = &cp
	}
	seq := s.seq
	if err := fn(&memTx{s: s}); err != nil {
		s.items = backup
		s.seq = seq
		return err
	}
	return nil
}

func (t *memTx) SlotHolder(ctx context.Context, roomID int64, date model.Date, slot int) (int64, bool, error) {
	for _, r := range t.s.items {
		if r.RoomID == roomID && r.Date.Equal(date) && r.Active() && r.Covers(slot) {
			return r.ID, true, nil
		}
	}
	return 0, false, nil
}

func (t *memTx) ActiveSlotCount(ctx context.Context, userID int64, date model.Date) (int, error) {
	total := 0
	for _, r := range t.s.items {
		if r.UserID == userID && r.Date.Equal(date) && r.Active() {
			total += r.SlotCount()
		}
	}
	return total, nil
}

func (t *memTx) Insert(ctx context.Context, r *model.Reservation) error {
	t.s.seq++
	r.ID = t.s.seq
	r.CreatedAt = time.Now()
	cp := *r
	t.s.items[r.ID] = &cp
	return nil
}

func (t *memTx) FindByID(ctx context.Context, id int64) (*model.Reservation, error) {
	r, ok := t.s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (t *memTx) UpdateStatus(ctx context.Context, id int64, from, to string) (bool, error) {
	r, ok := t.s.items[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	return true, nil
}

func (s *memStore) FindByID(ctx context.Context, id int64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) list(keep func(*model.Reservation) bool) []model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Reservation
	for _, r := range s.items {
		if keep(r) {
			out = append(out, *r)
		}
	}
	return out
}

func (s *memStore) ListByDate(ctx context.Context, date model.Date) ([]model.Reservation, error) {
	return s.list(func(r *model.Reservation) bool { return r.Date.Equal(date) }), nil
}

func (s *memStore) ListByUser(ctx context.Context, userID int64) ([]model.Reservation, error) {
	return s.list(func(r *model.Reservation) bool { return r.UserID == userID }), nil
}

func (s *memStore) ListAll(ctx context.Context) ([]model.Reservation, error) {
	return s.list(func(*model.Reservation) bool { return true }), nil
}

func (s *memStore) ListCurrent(ctx context.Context, date model.Date, slot int) ([]model.Reservation, error) {
	return s.list(func(r *model.Reservation) bool {
		return r.Date.Equal(date) && r.Active() && r.Covers(slot)
	}), nil
}

func (s *memStore) CheckInIfReserved(ctx context.Context, id int64, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok || r.Status != model.StatusReserved || r.CheckinTime != nil {
		return false, nil
	}
	r.Status = model.StatusCheckedIn
	ts := at
	r.CheckinTime = &ts
	return true, nil
}

func (s *memStore) CancelIfReserved(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok || r.Status != model.StatusReserved {
		return false, nil
	}
	r.Status = model.StatusCancelled
	return true, nil
}

// memSettings serves fixed policy values without a database.
type memSettings map[string]string

func (m memSettings) Value(key, def string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

func (m memSettings) IntValue(key string, def int) int {
	if v, ok := m[key]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// memPublisher records published events for assertions.
type memPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *memPublisher) PublishJSON(eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *memPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}
