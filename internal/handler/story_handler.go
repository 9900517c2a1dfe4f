package handler

import (
	"encoding/json"
	"net/http"

	"inkforge-server/internal/domain"

	"github.com/gorilla/mux"
)

// StoryHandler handles story and chapter CRUD requests.
type StoryHandler struct {
	storyService domain.StoryService
	logger       domain.Logger
}

func NewStoryHandler(storyService domain.StoryService, logger domain.Logger) *StoryHandler {
	return &StoryHandler{
		storyService: storyService,
		logger:       logger,
	}
}

func (h *StoryHandler) CreateStory(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var story domain.Story
	if err := json.NewDecoder(r.Body).Decode(&story); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.storyService.CreateStory(user.ID, &story, token)
	if err != nil {
		h.logger.Error("Failed to create story", err, "user_id", user.ID)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *StoryHandler) GetStories(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	stories, err := h.storyService.GetStories(user.ID, token)
	if err != nil {
		h.logger.Error("Failed to list stories", err, "user_id", user.ID)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stories": stories,
		"count":   len(stories),
	})
}

func (h *StoryHandler) GetStory(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	storyID := mux.Vars(r)["id"]
	story, err := h.storyService.GetStory(storyID, user.ID, token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, story)
}

func (h *StoryHandler) DeleteStory(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	storyID := mux.Vars(r)["id"]
	if err := h.storyService.DeleteStory(storyID, user.ID, token); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Story deleted"})
}

func (h *StoryHandler) AddChapter(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	storyID := mux.Vars(r)["id"]

	var chapter domain.Chapter
	if err := json.NewDecoder(r.Body).Decode(&chapter); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.storyService.AddChapter(storyID, user.ID, &chapter, token)
	if err != nil {
		h.logger.Error("Failed to add chapter", err, "story_id", storyID, "user_id", user.ID)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *StoryHandler) DeleteChapter(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	if err := h.storyService.DeleteChapter(vars["chapterId"], vars["id"], user.ID, token); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Chapter deleted"})
}
