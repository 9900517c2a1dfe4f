package domain

import "context"

// GenerationRequest is the inbound payload for a generation call.
type GenerationRequest struct {
	Type    string `json:"type"`
	Genre   string `json:"genre"`
	Tone    string `json:"tone"`
	Length  string `json:"length"`
	Prompt  string `json:"prompt"`
	StoryID string `json:"story_id,omitempty"`
}

// TokenSink receives generated text fragments in the order and cadence the
// engine produces them. Returning an error aborts the stream; the quota unit
// is then not charged.
type TokenSink func(token string) error

// GenerationService runs the full generation pipeline: quota gate, context
// assembly, prompt build, streaming proxy to the engine, and the post-stream
// usage increment.
type GenerationService interface {
	Generate(ctx context.Context, user *SupabaseUser, req *GenerationRequest, token string, sink TokenSink) error
}
