package handler

import (
	"context"
	"net/http"
	"time"

	"inkforge-server/internal/domain"
)

// Service stubs shared by the handler tests.

type stubAuthService struct {
	user *domain.SupabaseUser
	err  error
}

func (s *stubAuthService) ValidateToken(token string) (*domain.SupabaseUser, error) {
	return s.user, s.err
}

type stubGenerationService struct {
	fragments []string
	err       error
	errAfter  int // fragments to deliver before failing; 0 fails before the stream
}

func (s *stubGenerationService) Generate(ctx context.Context, user *domain.SupabaseUser, req *domain.GenerationRequest, token string, sink domain.TokenSink) error {
	for i, frag := range s.fragments {
		if s.err != nil && i == s.errAfter {
			return s.err
		}
		if err := sink(frag); err != nil {
			return err
		}
	}
	return s.err
}

type stubUsageService struct {
	usage *domain.Usage
	err   error
	limit int
}

func (s *stubUsageService) TryConsume(userID string) (*domain.Usage, error)     { return s.usage, s.err }
func (s *stubUsageService) RecordGeneration(userID string) error                { return s.err }
func (s *stubUsageService) Release(userID string)                               {}
func (s *stubUsageService) SetTier(userID string, tier domain.Tier) error       { return nil }
func (s *stubUsageService) SetTierByEmail(email string, tier domain.Tier) error { return nil }
func (s *stubUsageService) Snapshot(userID string) (*domain.Usage, error)       { return s.usage, s.err }
func (s *stubUsageService) DailyLimit() int                                     { return s.limit }

type stubBillingService struct {
	handleErr  error
	session    *domain.CheckoutSession
	sessionErr error
	received   [][]byte
}

func (s *stubBillingService) HandleEvent(payload []byte, signatureHeader string) error {
	if s.handleErr != nil {
		return s.handleErr
	}
	s.received = append(s.received, payload)
	return nil
}

func (s *stubBillingService) CreateCheckoutSession(ctx context.Context, email string) (*domain.CheckoutSession, error) {
	return s.session, s.sessionErr
}

type stubStoryService struct {
	stories []*domain.Story
	story   *domain.Story
	chapter *domain.Chapter
	err     error
}

func (s *stubStoryService) CreateStory(userID string, story *domain.Story, token string) (*domain.Story, error) {
	return s.story, s.err
}
func (s *stubStoryService) GetStories(userID, token string) ([]*domain.Story, error) {
	return s.stories, s.err
}
func (s *stubStoryService) GetStory(storyID, userID, token string) (*domain.Story, error) {
	return s.story, s.err
}
func (s *stubStoryService) DeleteStory(storyID, userID, token string) error { return s.err }
func (s *stubStoryService) AddChapter(storyID, userID string, chapter *domain.Chapter, token string) (*domain.Chapter, error) {
	return s.chapter, s.err
}
func (s *stubStoryService) DeleteChapter(chapterID, storyID, userID, token string) error {
	return s.err
}
func (s *stubStoryService) BuildContext(storyID, userID, token string) (string, error) {
	return "", s.err
}

type stubConfig struct{}

func (c *stubConfig) GetServerPort() string           { return "8080" }
func (c *stubConfig) GetLogLevel() string             { return "error" }
func (c *stubConfig) GetAllowedOrigins() []string     { return []string{"http://localhost:3000"} }
func (c *stubConfig) GetSupabaseURL() string          { return "" }
func (c *stubConfig) GetSupabaseKey() string          { return "" }
func (c *stubConfig) GetSupabaseServiceKey() string   { return "" }
func (c *stubConfig) GetEngineURL() string            { return "" }
func (c *stubConfig) GetEngineModel() string          { return "" }
func (c *stubConfig) GetEngineTimeout() time.Duration { return time.Second }
func (c *stubConfig) GetFreeDailyLimit() int          { return 10 }
func (c *stubConfig) GetQuotaTimezone() string        { return "UTC" }
func (c *stubConfig) GetStripeSecretKey() string      { return "" }
func (c *stubConfig) GetStripeWebhookSecret() string  { return "whsec_test" }
func (c *stubConfig) GetStripePriceID() string        { return "" }
func (c *stubConfig) GetCheckoutSuccessURL() string   { return "" }
func (c *stubConfig) GetCheckoutCancelURL() string    { return "" }

// withAuthContext attaches a user and token the way the middleware would.
func withAuthContext(r *http.Request, user *domain.SupabaseUser, token string) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	ctx = context.WithValue(ctx, tokenContextKey, token)
	return r.WithContext(ctx)
}
