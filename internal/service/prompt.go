package service

import (
	"sort"
	"strings"

	"inkforge-server/internal/domain"
)

const chapterSeparator = "\n\n"

// BuildStoryContext concatenates chapter bodies in ascending narrative order.
// The repository already sorts, but the order is re-established here so the
// output depends only on the input.
func BuildStoryContext(chapters []*domain.Chapter) string {
	if len(chapters) == 0 {
		return ""
	}

	ordered := make([]*domain.Chapter, len(chapters))
	copy(ordered, chapters)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	parts := make([]string, 0, len(ordered))
	for _, ch := range ordered {
		parts = append(parts, ch.Content)
	}
	return strings.Join(parts, chapterSeparator)
}

// BuildPrompt assembles the engine prompt from the request parameters and
// prior chapter context. Pure: no I/O, identical inputs produce the identical
// string.
func BuildPrompt(req *domain.GenerationRequest, context string) string {
	var b strings.Builder

	b.WriteString("You are InkForge, a professional storytelling AI.\n\n")
	b.WriteString("Story Context:\n")
	b.WriteString(context)
	b.WriteString("\n\n")
	b.WriteString("Task Type: " + req.Type + "\n")
	b.WriteString("Genre: " + req.Genre + "\n")
	b.WriteString("Tone: " + req.Tone + "\n")
	b.WriteString("Length: " + req.Length + "\n\n")
	b.WriteString("User Idea:\n")
	b.WriteString(req.Prompt)
	b.WriteString("\n\nWrite polished, immersive, high-quality content.\n")

	return b.String()
}
