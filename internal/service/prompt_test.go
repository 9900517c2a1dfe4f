package service

import (
	"strings"
	"testing"

	"inkforge-server/internal/domain"
)

func TestBuildStoryContext_OrdersByNarrativeSequence(t *testing.T) {
	chapters := []*domain.Chapter{
		{Order: 3, Content: "Third."},
		{Order: 1, Content: "First."},
		{Order: 2, Content: "Second."},
	}

	got := BuildStoryContext(chapters)
	want := "First.\n\nSecond.\n\nThird."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	// The input slice must not be reordered.
	if chapters[0].Order != 3 {
		t.Fatalf("expected input slice untouched, got order %d first", chapters[0].Order)
	}
}

func TestBuildStoryContext_Empty(t *testing.T) {
	if got := BuildStoryContext(nil); got != "" {
		t.Fatalf("expected empty context, got %q", got)
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	req := &domain.GenerationRequest{
		Type:   "chapter",
		Genre:  "fantasy",
		Tone:   "dark",
		Length: "long",
		Prompt: "The dragon returns.",
	}

	first := BuildPrompt(req, "Chapter one text.")
	second := BuildPrompt(req, "Chapter one text.")
	if first != second {
		t.Fatalf("expected identical output for identical input")
	}
}

func TestBuildPrompt_ContainsAllSections(t *testing.T) {
	req := &domain.GenerationRequest{
		Type:   "scene",
		Genre:  "mystery",
		Tone:   "tense",
		Length: "short",
		Prompt: "A knock at the door.",
	}

	prompt := BuildPrompt(req, "It was a quiet evening.")
	for _, want := range []string{
		"Story Context:\nIt was a quiet evening.",
		"Task Type: scene",
		"Genre: mystery",
		"Tone: tense",
		"Length: short",
		"User Idea:\nA knock at the door.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q, got:\n%s", want, prompt)
		}
	}
}

func TestBuildPrompt_EmptyContextStillWellFormed(t *testing.T) {
	req := &domain.GenerationRequest{Prompt: "Begin the tale."}
	prompt := BuildPrompt(req, "")
	if !strings.Contains(prompt, "User Idea:\nBegin the tale.") {
		t.Fatalf("expected user idea section, got:\n%s", prompt)
	}
}
