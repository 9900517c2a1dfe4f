package domain

// SupabaseUser represents an authenticated user from Supabase Auth.
type SupabaseUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	CreatedAt    string                 `json:"created_at"`
	UpdatedAt    string                 `json:"updated_at"`
}

// AuthService validates bearer tokens for the HTTP layer.
type AuthService interface {
	ValidateToken(token string) (*SupabaseUser, error)
}
