package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"inkforge-server/internal/domain"
)

const dateLayout = "2006-01-02"

// SupabaseUsageRepository implements the domain.UsageRepository interface.
// The usage table is server-managed: RLS hides it from user tokens, so every
// access goes through the service-role client.
type SupabaseUsageRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseUsageRepository creates a new Supabase usage repository
func NewSupabaseUsageRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.UsageRepository {
	return &SupabaseUsageRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Get retrieves the usage record for a user. The row is created by account
// provisioning; a missing row surfaces as domain.ErrUsageNotFound.
func (r *SupabaseUsageRepository) Get(userID string) (*domain.Usage, error) {
	client := r.supabaseClient.ServiceDB()
	if client == nil {
		return nil, fmt.Errorf("supabase service client not initialized")
	}

	data, _, err := client.From("usage").
		Select("*", "", false).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get usage record: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrUsageNotFound
	}

	return r.mapToUsage(rows[0])
}

// Update persists the counter and reset date of a usage record
func (r *SupabaseUsageRepository) Update(usage *domain.Usage) error {
	client := r.supabaseClient.ServiceDB()
	if client == nil {
		return fmt.Errorf("supabase service client not initialized")
	}

	data := map[string]interface{}{
		"daily_generations": usage.DailyGenerations,
		"last_reset":        usage.LastReset.Format(dateLayout),
	}

	_, _, err := client.From("usage").
		Update(data, "", "").
		Eq("user_id", usage.UserID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update usage record: %w", err)
	}
	return nil
}

// SetTier overwrites the subscription tier without touching the counter
func (r *SupabaseUsageRepository) SetTier(userID string, tier domain.Tier) error {
	client := r.supabaseClient.ServiceDB()
	if client == nil {
		return fmt.Errorf("supabase service client not initialized")
	}

	data := map[string]interface{}{
		"subscription_tier": string(tier),
	}

	_, _, err := client.From("usage").
		Update(data, "", "").
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to set subscription tier: %w", err)
	}

	r.logger.Info("Subscription tier updated", "user_id", userID, "tier", tier)
	return nil
}

// mapToUsage converts a map to a Usage struct
func (r *SupabaseUsageRepository) mapToUsage(data map[string]interface{}) (*domain.Usage, error) {
	usage := &domain.Usage{
		UserID:           getString(data, "user_id"),
		DailyGenerations: getInt(data, "daily_generations"),
		SubscriptionTier: domain.Tier(getString(data, "subscription_tier")),
	}
	if usage.SubscriptionTier == "" {
		usage.SubscriptionTier = domain.TierFree
	}

	if lastReset := getString(data, "last_reset"); lastReset != "" {
		parsed, err := time.Parse(dateLayout, lastReset)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last_reset %q: %w", lastReset, err)
		}
		usage.LastReset = parsed
	}

	return usage, nil
}

// Helper functions for type conversion
func getString(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok && val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getInt(data map[string]interface{}, key string) int {
	if val, ok := data[key]; ok && val != nil {
		switch v := val.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}

func getTime(data map[string]interface{}, key string) time.Time {
	if str := getString(data, key); str != "" {
		if parsed, err := time.Parse(time.RFC3339, str); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
