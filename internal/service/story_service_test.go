package service

import (
	"errors"
	"sort"
	"testing"

	"inkforge-server/internal/domain"
)

// MockStoryRepository scopes lookups to the owning user the way the real
// repository's RLS-backed queries do.
type MockStoryRepository struct {
	stories         map[string]*domain.Story
	chapters        map[string][]*domain.Chapter
	deletedStories  []string
	deletedChapters []string
}

func NewMockStoryRepository() *MockStoryRepository {
	return &MockStoryRepository{
		stories:  make(map[string]*domain.Story),
		chapters: make(map[string][]*domain.Chapter),
	}
}

func (m *MockStoryRepository) GetByID(storyID, userID, token string) (*domain.Story, error) {
	story, ok := m.stories[storyID]
	if !ok || story.UserID != userID {
		return nil, domain.ErrStoryNotFound
	}
	return story, nil
}

func (m *MockStoryRepository) GetByUserID(userID, token string) ([]*domain.Story, error) {
	var stories []*domain.Story
	for _, story := range m.stories {
		if story.UserID == userID {
			stories = append(stories, story)
		}
	}
	return stories, nil
}

func (m *MockStoryRepository) Create(story *domain.Story, token string) error {
	m.stories[story.ID] = story
	return nil
}

func (m *MockStoryRepository) Delete(storyID, userID, token string) error {
	delete(m.stories, storyID)
	m.deletedStories = append(m.deletedStories, storyID)
	return nil
}

func (m *MockStoryRepository) ListChapters(storyID, token string) ([]*domain.Chapter, error) {
	chapters := append([]*domain.Chapter(nil), m.chapters[storyID]...)
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Order < chapters[j].Order
	})
	return chapters, nil
}

func (m *MockStoryRepository) CreateChapter(chapter *domain.Chapter, token string) error {
	m.chapters[chapter.StoryID] = append(m.chapters[chapter.StoryID], chapter)
	return nil
}

func (m *MockStoryRepository) DeleteChapter(chapterID, storyID, token string) error {
	m.deletedChapters = append(m.deletedChapters, chapterID)
	return nil
}

func (m *MockStoryRepository) seedStory(id, userID string, chapters ...*domain.Chapter) {
	m.stories[id] = &domain.Story{ID: id, UserID: userID, Title: "Seeded", Genre: "fantasy"}
	for _, ch := range chapters {
		ch.StoryID = id
	}
	m.chapters[id] = chapters
}

func TestStoryService_CreateStory_Validation(t *testing.T) {
	svc := NewStoryService(NewMockStoryRepository(), &MockLogger{})

	var validationErr *domain.ValidationError
	if _, err := svc.CreateStory("user-1", &domain.Story{Genre: "fantasy"}, "token"); !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for missing title, got %v", err)
	}
	if _, err := svc.CreateStory("user-1", &domain.Story{Title: "The Long Road"}, "token"); !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for missing genre, got %v", err)
	}
}

func TestStoryService_CreateStory_AssignsIdentity(t *testing.T) {
	repo := NewMockStoryRepository()
	svc := NewStoryService(repo, &MockLogger{})

	created, err := svc.CreateStory("user-1", &domain.Story{Title: "  The Long Road ", Genre: "fantasy"}, "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected a generated story id")
	}
	if created.UserID != "user-1" {
		t.Fatalf("expected owner user-1, got %q", created.UserID)
	}
	if created.Title != "The Long Road" {
		t.Fatalf("expected trimmed title, got %q", created.Title)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps assigned")
	}
	if _, ok := repo.stories[created.ID]; !ok {
		t.Fatalf("expected story persisted")
	}
}

func TestStoryService_AddChapter_FirstChapterGetsOrderOne(t *testing.T) {
	repo := NewMockStoryRepository()
	repo.seedStory("story-1", "user-1")
	svc := NewStoryService(repo, &MockLogger{})

	chapter, err := svc.AddChapter("story-1", "user-1", &domain.Chapter{Title: "I", Content: "Begin."}, "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chapter.Order != 1 {
		t.Fatalf("expected first chapter at order 1, got %d", chapter.Order)
	}
	if chapter.ID == "" || chapter.StoryID != "story-1" {
		t.Fatalf("expected chapter identity assigned, got %+v", chapter)
	}
}

func TestStoryService_AddChapter_AppendsAfterHighestOrder(t *testing.T) {
	repo := NewMockStoryRepository()
	repo.seedStory("story-1", "user-1",
		&domain.Chapter{ID: "ch-1", Order: 1, Content: "One."},
		&domain.Chapter{ID: "ch-2", Order: 2, Content: "Two."},
		&domain.Chapter{ID: "ch-5", Order: 5, Content: "Five."},
	)
	svc := NewStoryService(repo, &MockLogger{})

	chapter, err := svc.AddChapter("story-1", "user-1", &domain.Chapter{Title: "Next", Content: "..."}, "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Gaps in the sequence are not reused; the chapter lands after the
	// highest existing order.
	if chapter.Order != 6 {
		t.Fatalf("expected order 6 after highest order 5, got %d", chapter.Order)
	}
}

func TestStoryService_AddChapter_KeepsExplicitOrder(t *testing.T) {
	repo := NewMockStoryRepository()
	repo.seedStory("story-1", "user-1", &domain.Chapter{ID: "ch-1", Order: 1, Content: "One."})
	svc := NewStoryService(repo, &MockLogger{})

	chapter, err := svc.AddChapter("story-1", "user-1", &domain.Chapter{Title: "III", Content: "...", Order: 3}, "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chapter.Order != 3 {
		t.Fatalf("expected explicit order kept, got %d", chapter.Order)
	}
}

func TestStoryService_AddChapter_ForeignStory(t *testing.T) {
	repo := NewMockStoryRepository()
	repo.seedStory("story-1", "someone-else")
	svc := NewStoryService(repo, &MockLogger{})

	_, err := svc.AddChapter("story-1", "user-1", &domain.Chapter{Title: "I", Content: "..."}, "token")
	if !errors.Is(err, domain.ErrStoryNotFound) {
		t.Fatalf("expected foreign story to read as not found, got %v", err)
	}
	if len(repo.chapters["story-1"]) != 0 {
		t.Fatalf("expected no chapter written to a foreign story")
	}
}

func TestStoryService_DeleteStory_ForeignStoryNotDeleted(t *testing.T) {
	repo := NewMockStoryRepository()
	repo.seedStory("story-1", "someone-else")
	svc := NewStoryService(repo, &MockLogger{})

	if err := svc.DeleteStory("story-1", "user-1", "token"); !errors.Is(err, domain.ErrStoryNotFound) {
		t.Fatalf("expected not found for a foreign story, got %v", err)
	}
	if len(repo.deletedStories) != 0 {
		t.Fatalf("expected no delete issued, got %v", repo.deletedStories)
	}
}

func TestStoryService_DeleteChapter_ChecksStoryOwnership(t *testing.T) {
	repo := NewMockStoryRepository()
	repo.seedStory("story-1", "someone-else", &domain.Chapter{ID: "ch-1", Order: 1})
	svc := NewStoryService(repo, &MockLogger{})

	if err := svc.DeleteChapter("ch-1", "story-1", "user-1", "token"); !errors.Is(err, domain.ErrStoryNotFound) {
		t.Fatalf("expected not found for a foreign story, got %v", err)
	}
	if len(repo.deletedChapters) != 0 {
		t.Fatalf("expected no chapter delete issued, got %v", repo.deletedChapters)
	}
}

func TestStoryService_BuildContext_ForeignStory(t *testing.T) {
	repo := NewMockStoryRepository()
	repo.seedStory("story-1", "someone-else", &domain.Chapter{ID: "ch-1", Order: 1, Content: "Secret."})
	svc := NewStoryService(repo, &MockLogger{})

	if _, err := svc.BuildContext("story-1", "user-1", "token"); !errors.Is(err, domain.ErrStoryNotFound) {
		t.Fatalf("expected foreign story to read as not found, got %v", err)
	}
}

func TestStoryService_BuildContext_JoinsChaptersInOrder(t *testing.T) {
	repo := NewMockStoryRepository()
	repo.seedStory("story-1", "user-1",
		&domain.Chapter{ID: "ch-2", Order: 2, Content: "Second."},
		&domain.Chapter{ID: "ch-1", Order: 1, Content: "First."},
	)
	svc := NewStoryService(repo, &MockLogger{})

	context, err := svc.BuildContext("story-1", "user-1", "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if context != "First.\n\nSecond." {
		t.Fatalf("expected chapters joined ascending, got %q", context)
	}
}

func TestStoryService_GetStory_IncludesChapters(t *testing.T) {
	repo := NewMockStoryRepository()
	repo.seedStory("story-1", "user-1",
		&domain.Chapter{ID: "ch-1", Order: 1, Content: "One."},
		&domain.Chapter{ID: "ch-2", Order: 2, Content: "Two."},
	)
	svc := NewStoryService(repo, &MockLogger{})

	story, err := svc.GetStory("story-1", "user-1", "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(story.Chapters) != 2 {
		t.Fatalf("expected 2 chapters attached, got %d", len(story.Chapters))
	}
	if story.Chapters[0].Order != 1 || story.Chapters[1].Order != 2 {
		t.Fatalf("expected chapters in narrative order")
	}
}
