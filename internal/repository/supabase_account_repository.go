package repository

import (
	"encoding/json"
	"fmt"

	"inkforge-server/internal/domain"
)

// SupabaseAccountRepository implements the domain.AccountRepository interface.
// Webhook events identify users by billing email, which only the service-role
// client can resolve against the profiles table.
type SupabaseAccountRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseAccountRepository creates a new Supabase account repository
func NewSupabaseAccountRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.AccountRepository {
	return &SupabaseAccountRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// GetUserIDByEmail resolves an account id from a billing email
func (r *SupabaseAccountRepository) GetUserIDByEmail(email string) (string, error) {
	client := r.supabaseClient.ServiceDB()
	if client == nil {
		return "", fmt.Errorf("supabase service client not initialized")
	}

	data, _, err := client.From("profiles").
		Select("id", "", false).
		Eq("email", email).
		Execute()
	if err != nil {
		return "", fmt.Errorf("failed to look up account by email: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return "", domain.ErrUserNotFound
	}

	id := getString(rows[0], "id")
	if id == "" {
		return "", domain.ErrUserNotFound
	}
	return id, nil
}
