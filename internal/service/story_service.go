package service

import (
	"strings"
	"time"

	"inkforge-server/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type StoryService struct {
	repo   domain.StoryRepository
	logger domain.Logger
}

func NewStoryService(repo domain.StoryRepository, logger domain.Logger) *StoryService {
	return &StoryService{
		repo:   repo,
		logger: logger,
	}
}

// CreateStory validates input and inserts a new story owned by userID
func (s *StoryService) CreateStory(userID string, story *domain.Story, token string) (*domain.Story, error) {
	story.Title = strings.TrimSpace(story.Title)
	if story.Title == "" {
		return nil, &domain.ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if strings.TrimSpace(story.Genre) == "" {
		return nil, &domain.ValidationError{Field: "genre", Message: "cannot be empty"}
	}

	now := time.Now().UTC()
	story.ID = uuid.NewString()
	story.UserID = userID
	story.CreatedAt = now
	story.UpdatedAt = now
	story.Chapters = nil

	if err := s.repo.Create(story, token); err != nil {
		return nil, err
	}
	return story, nil
}

// GetStories lists the user's stories
func (s *StoryService) GetStories(userID, token string) ([]*domain.Story, error) {
	return s.repo.GetByUserID(userID, token)
}

// GetStory returns a story with its chapters. The story row and the chapter
// list are independent queries, so they run concurrently.
func (s *StoryService) GetStory(storyID, userID, token string) (*domain.Story, error) {
	var story *domain.Story
	var chapters []*domain.Chapter

	var g errgroup.Group
	g.Go(func() error {
		var err error
		story, err = s.repo.GetByID(storyID, userID, token)
		return err
	})
	g.Go(func() error {
		var err error
		chapters, err = s.repo.ListChapters(storyID, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	story.Chapters = chapters
	return story, nil
}

// DeleteStory removes a story owned by userID. The ownership check runs
// first so a foreign story id reports not-found instead of silently deleting
// nothing.
func (s *StoryService) DeleteStory(storyID, userID, token string) error {
	if _, err := s.repo.GetByID(storyID, userID, token); err != nil {
		return err
	}
	return s.repo.Delete(storyID, userID, token)
}

// AddChapter appends a chapter to a story owned by userID. A zero Order
// places the chapter after the current last one.
func (s *StoryService) AddChapter(storyID, userID string, chapter *domain.Chapter, token string) (*domain.Chapter, error) {
	chapter.Title = strings.TrimSpace(chapter.Title)
	if chapter.Title == "" {
		return nil, &domain.ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if strings.TrimSpace(chapter.Content) == "" {
		return nil, &domain.ValidationError{Field: "content", Message: "cannot be empty"}
	}

	if _, err := s.repo.GetByID(storyID, userID, token); err != nil {
		return nil, err
	}

	if chapter.Order <= 0 {
		chapters, err := s.repo.ListChapters(storyID, token)
		if err != nil {
			return nil, err
		}
		next := 1
		for _, existing := range chapters {
			if existing.Order >= next {
				next = existing.Order + 1
			}
		}
		chapter.Order = next
	}

	now := time.Now().UTC()
	chapter.ID = uuid.NewString()
	chapter.StoryID = storyID
	chapter.CreatedAt = now
	chapter.UpdatedAt = now

	if err := s.repo.CreateChapter(chapter, token); err != nil {
		return nil, err
	}
	return chapter, nil
}

// DeleteChapter removes a chapter from a story owned by userID
func (s *StoryService) DeleteChapter(chapterID, storyID, userID, token string) error {
	if _, err := s.repo.GetByID(storyID, userID, token); err != nil {
		return err
	}
	return s.repo.DeleteChapter(chapterID, storyID, token)
}

// BuildContext assembles the prior-chapter context for generation. Ownership
// is enforced by GetByID: a story belonging to another user yields
// ErrStoryNotFound, never a permission error.
func (s *StoryService) BuildContext(storyID, userID, token string) (string, error) {
	if _, err := s.repo.GetByID(storyID, userID, token); err != nil {
		return "", err
	}

	chapters, err := s.repo.ListChapters(storyID, token)
	if err != nil {
		return "", err
	}
	return BuildStoryContext(chapters), nil
}
