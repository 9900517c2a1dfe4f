package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"inkforge-server/internal/domain"
)

// userUsageState serializes all access to a single user's usage record and
// carries the in-flight reservation count for generations that have passed
// the gate but not yet completed. Reservations live in memory only; the
// persisted counter moves when a generation finishes.
type userUsageState struct {
	sync.Mutex
	inFlight int
}

// UsageService guards each user's record with a lazily created per-user
// lock. The quota gate and the post-stream increment are two independent
// atomic operations; the record is re-fetched and re-reconciled inside each
// one, and no lock is ever held across engine I/O. The gate reserves a unit
// against concurrent admissions, so at daily_generations = limit-1 at most
// one in-flight generation exists at a time.
type UsageService struct {
	repo       domain.UsageRepository
	accounts   domain.AccountRepository
	logger     domain.Logger
	dailyLimit int
	location   *time.Location

	mu    sync.Mutex
	users map[string]*userUsageState
}

// NewUsageService creates a new usage service
func NewUsageService(
	repo domain.UsageRepository,
	accounts domain.AccountRepository,
	logger domain.Logger,
	dailyLimit int,
	location *time.Location,
) *UsageService {
	if location == nil {
		location = time.UTC
	}
	return &UsageService{
		repo:       repo,
		accounts:   accounts,
		logger:     logger,
		dailyLimit: dailyLimit,
		location:   location,
		users:      make(map[string]*userUsageState),
	}
}

// stateFor returns the state guarding one user's record, creating it on
// first use. Entries are never removed; the map grows with the active user
// set.
func (s *UsageService) stateFor(userID string) *userUsageState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.users[userID]
	if !ok {
		st = &userUsageState{}
		s.users[userID] = st
	}
	return st
}

func (s *UsageService) now() time.Time {
	return time.Now().In(s.location)
}

// reconciled fetches the record and applies the daily rollover, persisting
// the reset when the stored date is stale. Callers must hold the user's lock.
func (s *UsageService) reconciled(userID string) (*domain.Usage, error) {
	usage, err := s.repo.Get(userID)
	if err != nil {
		return nil, err
	}
	if usage.ResetIfStale(s.now()) {
		if err := s.repo.Update(usage); err != nil {
			return nil, fmt.Errorf("failed to persist daily reset: %w", err)
		}
		s.logger.Debug("Daily usage counter reset", "user_id", userID)
	}
	return usage, nil
}

// TryConsume reconciles the record and reserves one generation. Free-tier
// users are denied with ErrQuotaExceeded when the persisted counter plus the
// in-flight reservations reach the daily limit, so concurrent requests can
// never admit more than the remaining headroom. The persisted counter is not
// touched here: RecordGeneration converts the reservation into the charge
// after the stream completes, and Release drops it uncharged on abort.
func (s *UsageService) TryConsume(userID string) (*domain.Usage, error) {
	st := s.stateFor(userID)
	st.Lock()
	defer st.Unlock()

	usage, err := s.reconciled(userID)
	if err != nil {
		return nil, err
	}

	if usage.SubscriptionTier.QuotaLimited() && usage.DailyGenerations+st.inFlight >= s.dailyLimit {
		return nil, domain.ErrQuotaExceeded
	}

	st.inFlight++
	return usage, nil
}

// RecordGeneration charges one quota unit and settles the caller's
// reservation. The record is re-fetched and re-reconciled because an
// arbitrary amount of wall-clock time can pass between the quota check and
// the end of the generation stream.
func (s *UsageService) RecordGeneration(userID string) error {
	st := s.stateFor(userID)
	st.Lock()
	defer st.Unlock()

	if st.inFlight > 0 {
		st.inFlight--
	}

	usage, err := s.reconciled(userID)
	if err != nil {
		return err
	}

	usage.DailyGenerations++
	if err := s.repo.Update(usage); err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

// Release drops a reservation taken by TryConsume without charging the
// quota. Called when a generation aborts after passing the gate.
func (s *UsageService) Release(userID string) {
	st := s.stateFor(userID)
	st.Lock()
	defer st.Unlock()

	if st.inFlight > 0 {
		st.inFlight--
	}
}

// SetTier overwrites the subscription tier. The counter and reset date are
// deliberately untouched: a mid-day upgrade keeps today's usage history.
func (s *UsageService) SetTier(userID string, tier domain.Tier) error {
	st := s.stateFor(userID)
	st.Lock()
	defer st.Unlock()

	return s.repo.SetTier(userID, tier)
}

// SetTierByEmail resolves the billing email to an account and applies the
// tier change. An unresolvable email is logged and dropped so the webhook is
// still acknowledged; the provider would otherwise retry forever.
func (s *UsageService) SetTierByEmail(email string, tier domain.Tier) error {
	userID, err := s.accounts.GetUserIDByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Warn("Tier change for unknown billing email dropped", "email", email, "tier", tier)
			return nil
		}
		return fmt.Errorf("failed to resolve billing email: %w", err)
	}
	return s.SetTier(userID, tier)
}

// Snapshot returns a reconciled copy of the record for read-only use
func (s *UsageService) Snapshot(userID string) (*domain.Usage, error) {
	st := s.stateFor(userID)
	st.Lock()
	defer st.Unlock()

	usage, err := s.reconciled(userID)
	if err != nil {
		return nil, err
	}

	snapshot := *usage
	return &snapshot, nil
}

// DailyLimit exposes the configured free-tier cap for presentation
func (s *UsageService) DailyLimit() int {
	return s.dailyLimit
}
