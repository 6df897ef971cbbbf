package service

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrScheduleInPast = errors.New("scheduled time must be in the future")

// PendingLocker действие, которое выполняет отложенная блокировка
type PendingLocker interface {
	LockAllPending(ctx context.Context) (int, error)
}

// AutoLockScheduler одна отложенная задача "принять все PENDING".
// Новое расписание заменяет предыдущее. Набор заказов определяется в момент срабатывания.
type AutoLockScheduler struct {
	mu      sync.Mutex
	locker  PendingLocker
	now     func() time.Time
	timeout time.Duration
	timer   *time.Timer
	at      time.Time
	gen     uint64
	fired   func(locked int, err error)
}

func NewAutoLockScheduler(locker PendingLocker) *AutoLockScheduler {
	return &AutoLockScheduler{
		locker:  locker,
		now:     time.Now,
		timeout: 30 * time.Second,
	}
}

// Schedule ставит блокировку на момент at. Время в прошлом отклоняется, немедленного срабатывания нет.
func (s *AutoLockScheduler) Schedule(at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if !at.After(now) {
		logger.Warn().Time("at", at).Msg("auto-lock in the past rejected")
		return ErrScheduleInPast
	}
	s.stopLocked()
	s.gen++
	gen := s.gen
	s.at = at
	s.timer = time.AfterFunc(at.Sub(now), func() { s.fire(gen) })
	logger.Info().Time("at", at).Msg("auto-lock scheduled")
	return nil
}

// Cancel снимает расписание; false, если ничего не было запланировано
func (s *AutoLockScheduler) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		return false
	}
	s.stopLocked()
	s.gen++
	logger.Info().Msg("auto-lock cancelled")
	return true
}

func (s *AutoLockScheduler) Scheduled() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		return time.Time{}, false
	}
	return s.at, true
}

func (s *AutoLockScheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
		s.at = time.Time{}
	}
}

func (s *AutoLockScheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		// заменено или отменено
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.at = time.Time{}
	hook := s.fired
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	n, err := s.locker.LockAllPending(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("auto-lock failed")
	} else {
		logger.Info().Int("locked", n).Msg("auto-lock fired")
	}
	if hook != nil {
		hook(n, err)
	}
}
