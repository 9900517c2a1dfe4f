package repository

import (
	"encoding/json"
	"fmt"

	"inkforge-server/internal/domain"

	"github.com/supabase-community/postgrest-go"
)

// SupabaseStoryRepository implements the domain.StoryRepository interface.
// Story and chapter access uses the caller's token so RLS policies scope
// every query to the owning user.
type SupabaseStoryRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseStoryRepository creates a new Supabase story repository
func NewSupabaseStoryRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.StoryRepository {
	return &SupabaseStoryRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// GetByID retrieves a story scoped to the owning user. A story owned by a
// different user is indistinguishable from a missing one.
func (r *SupabaseStoryRepository) GetByID(storyID, userID, token string) (*domain.Story, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("stories").
		Select("*", "", false).
		Eq("id", storyID).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get story: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrStoryNotFound
	}

	return r.mapToStory(rows[0]), nil
}

// GetByUserID lists the user's stories, newest first
func (r *SupabaseStoryRepository) GetByUserID(userID, token string) ([]*domain.Story, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("stories").
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	stories := make([]*domain.Story, 0, len(rows))
	for _, row := range rows {
		stories = append(stories, r.mapToStory(row))
	}
	return stories, nil
}

// Create inserts a new story
func (r *SupabaseStoryRepository) Create(story *domain.Story, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	data := map[string]interface{}{
		"id":          story.ID,
		"user_id":     story.UserID,
		"title":       story.Title,
		"genre":       story.Genre,
		"description": story.Description,
		"created_at":  story.CreatedAt,
		"updated_at":  story.UpdatedAt,
	}

	_, _, err = client.From("stories").Insert(data, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create story: %w", err)
	}

	r.logger.Info("Story created", "story_id", story.ID, "user_id", story.UserID)
	return nil
}

// Delete removes a story; chapter rows cascade at the database level
func (r *SupabaseStoryRepository) Delete(storyID, userID, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	_, _, err = client.From("stories").
		Delete("", "").
		Eq("id", storyID).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	return nil
}

// ListChapters returns a story's chapters ordered by narrative sequence
func (r *SupabaseStoryRepository) ListChapters(storyID, token string) ([]*domain.Chapter, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("chapters").
		Select("*", "", false).
		Eq("story_id", storyID).
		Order("order", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	chapters := make([]*domain.Chapter, 0, len(rows))
	for _, row := range rows {
		chapters = append(chapters, r.mapToChapter(row))
	}
	return chapters, nil
}

// CreateChapter inserts a new chapter. The unique (story_id, order) index
// rejects duplicate positions.
func (r *SupabaseStoryRepository) CreateChapter(chapter *domain.Chapter, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	data := map[string]interface{}{
		"id":         chapter.ID,
		"story_id":   chapter.StoryID,
		"title":      chapter.Title,
		"content":    chapter.Content,
		"order":      chapter.Order,
		"created_at": chapter.CreatedAt,
		"updated_at": chapter.UpdatedAt,
	}

	_, _, err = client.From("chapters").Insert(data, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create chapter: %w", err)
	}

	r.logger.Info("Chapter created", "chapter_id", chapter.ID, "story_id", chapter.StoryID, "order", chapter.Order)
	return nil
}

// DeleteChapter removes a single chapter from a story
func (r *SupabaseStoryRepository) DeleteChapter(chapterID, storyID, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	_, _, err = client.From("chapters").
		Delete("", "").
		Eq("id", chapterID).
		Eq("story_id", storyID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete chapter: %w", err)
	}
	return nil
}

// mapToStory converts a map to a Story struct
func (r *SupabaseStoryRepository) mapToStory(data map[string]interface{}) *domain.Story {
	return &domain.Story{
		ID:          getString(data, "id"),
		UserID:      getString(data, "user_id"),
		Title:       getString(data, "title"),
		Genre:       getString(data, "genre"),
		Description: getString(data, "description"),
		CreatedAt:   getTime(data, "created_at"),
		UpdatedAt:   getTime(data, "updated_at"),
	}
}

// mapToChapter converts a map to a Chapter struct
func (r *SupabaseStoryRepository) mapToChapter(data map[string]interface{}) *domain.Chapter {
	return &domain.Chapter{
		ID:        getString(data, "id"),
		StoryID:   getString(data, "story_id"),
		Title:     getString(data, "title"),
		Content:   getString(data, "content"),
		Order:     getInt(data, "order"),
		CreatedAt: getTime(data, "created_at"),
		UpdatedAt: getTime(data, "updated_at"),
	}
}
