package domain

import "github.com/supabase-community/supabase-go"

type SupabaseClient interface {
	Initialize() error
	ValidateToken(token string) (*SupabaseUser, error)

	// DB returns the anon-key client.
	DB() *supabase.Client
	// ServiceDB returns the service-role client used for server-managed
	// tables (usage, account lookups) that RLS hides from user tokens.
	ServiceDB() *supabase.Client
	// GetClientWithToken returns a client acting as the given user so RLS
	// policies apply to story and chapter access.
	GetClientWithToken(token string) (*supabase.Client, error)
}
