package domain

import "time"

// Story belongs to exactly one user. Deleting a story cascades to its
// chapters at the database level.
type Story struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Genre       string     `json:"genre"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Chapters    []*Chapter `json:"chapters,omitempty"`
}

// Chapter belongs to exactly one story. Order defines the narrative sequence
// and is unique within a story; it is the sort key for context assembly.
type Chapter struct {
	ID        string    `json:"id"`
	StoryID   string    `json:"story_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoryRepository provides point lookups scoped to the owning user. Lookups
// for stories the user does not own behave as if the story does not exist.
type StoryRepository interface {
	GetByID(storyID, userID, token string) (*Story, error)
	GetByUserID(userID, token string) ([]*Story, error)
	Create(story *Story, token string) error
	Delete(storyID, userID, token string) error

	// ListChapters returns the story's chapters ordered by Order ascending.
	ListChapters(storyID, token string) ([]*Chapter, error)
	CreateChapter(chapter *Chapter, token string) error
	DeleteChapter(chapterID, storyID, token string) error
}

// StoryService wraps story/chapter persistence with ownership checks and
// context assembly for the generation pipeline.
type StoryService interface {
	CreateStory(userID string, story *Story, token string) (*Story, error)
	GetStories(userID, token string) ([]*Story, error)
	GetStory(storyID, userID, token string) (*Story, error)
	DeleteStory(storyID, userID, token string) error
	AddChapter(storyID, userID string, chapter *Chapter, token string) (*Chapter, error)
	DeleteChapter(chapterID, storyID, userID, token string) error

	// BuildContext concatenates the story's chapters in narrative order for
	// use as generation context. A story not owned by userID fails with
	// ErrStoryNotFound.
	BuildContext(storyID, userID, token string) (string, error)
}
