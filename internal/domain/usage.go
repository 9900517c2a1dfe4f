package domain

import "time"

// Tier is a subscription level. Only the free tier is quota-limited;
// paid tiers generate without a daily cap.
type Tier string

const (
	TierFree    Tier = "free"
	TierPro     Tier = "pro"
	TierCreator Tier = "creator"
)

// QuotaLimited reports whether the tier is subject to the daily generation cap.
func (t Tier) QuotaLimited() bool {
	return t == TierFree || t == ""
}

// Valid reports whether the tier is one of the known subscription levels.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPro, TierCreator:
		return true
	}
	return false
}

// Usage is the per-user quota record. One row per user, created when the
// account is provisioned. DailyGenerations only has meaning relative to
// LastReset: callers must reconcile the record to today before reading the
// counter for quota decisions.
type Usage struct {
	UserID           string    `json:"user_id"`
	DailyGenerations int       `json:"daily_generations"`
	LastReset        time.Time `json:"last_reset"`
	SubscriptionTier Tier      `json:"subscription_tier"`
}

// ResetIfStale zeroes the counter and moves LastReset forward when the stored
// reset date is not the calendar date of now. Returns true if the record
// changed and needs to be persisted. Applying it twice with the same now is a
// no-op on the second call.
func (u *Usage) ResetIfStale(now time.Time) bool {
	if sameDay(u.LastReset, now) {
		return false
	}
	u.DailyGenerations = 0
	u.LastReset = now
	return true
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// UsageRepository persists usage records.
type UsageRepository interface {
	Get(userID string) (*Usage, error)
	Update(usage *Usage) error
	SetTier(userID string, tier Tier) error
}

// UsageService serializes all reads and writes of a single user's usage
// record. The quota check and the post-stream increment are two separate
// atomic operations; no lock is ever held across engine I/O. In-flight
// generations hold a reservation so concurrent admissions never exceed the
// remaining headroom, while the persisted counter still only moves after
// full delivery.
type UsageService interface {
	// TryConsume reconciles the record to today, denies with
	// ErrQuotaExceeded when a free-tier user's counter plus in-flight
	// reservations reach the daily limit, and reserves one generation.
	// Every successful call must be settled by exactly one RecordGeneration
	// or Release.
	TryConsume(userID string) (*Usage, error)
	// RecordGeneration re-fetches, re-reconciles and increments the counter,
	// settling the caller's reservation.
	RecordGeneration(userID string) error
	// Release drops a reservation without charging the quota. Called when a
	// generation aborts after passing the gate.
	Release(userID string)
	SetTier(userID string, tier Tier) error
	// SetTierByEmail resolves the account by email. An unresolvable email is
	// logged and dropped, not returned as an error, so webhook delivery is
	// still acknowledged.
	SetTierByEmail(email string, tier Tier) error
	// Snapshot returns a reconciled copy of the record.
	Snapshot(userID string) (*Usage, error)
	// DailyLimit reports the configured free-tier cap.
	DailyLimit() int
}

// AccountRepository resolves account identities outside the auth flow.
type AccountRepository interface {
	GetUserIDByEmail(email string) (string, error)
}
