package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"inkforge-server/internal/domain"
)

// Engine fragments arrive as newline-delimited JSON; a single fragment above
// this size is treated as a stream error rather than buffered indefinitely.
const maxFragmentSize = 1024 * 1024

type engineRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type engineFragment struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// GenerationService proxies generation requests to the text engine. It gates
// on the usage quota, assembles story context into the prompt, relays engine
// fragments to the caller with the cadence the engine produces them, and
// charges one quota unit only after the stream terminates normally.
type GenerationService struct {
	usage   domain.UsageService
	stories domain.StoryService
	logger  domain.Logger

	engineURL string
	model     string
	client    *http.Client
}

// NewGenerationService creates a new generation service. timeout bounds
// connection establishment and the wait for response headers; once fragments
// are flowing, the engine's own termination governs completion.
func NewGenerationService(
	usage domain.UsageService,
	stories domain.StoryService,
	logger domain.Logger,
	engineURL string,
	model string,
	timeout time.Duration,
) *GenerationService {
	return &GenerationService{
		usage:   usage,
		stories: stories,
		logger:  logger,

		engineURL: engineURL,
		model:     model,
		client: &http.Client{
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
				ResponseHeaderTimeout: timeout,
			},
		},
	}
}

// Generate runs the full pipeline: quota gate, context assembly, prompt
// build, engine stream. Quota denial and a missing or foreign story fail
// before the engine is contacted. The gate's reservation is converted into
// the persisted charge on normal termination and released on every abort
// path.
func (s *GenerationService) Generate(
	ctx context.Context,
	user *domain.SupabaseUser,
	req *domain.GenerationRequest,
	token string,
	sink domain.TokenSink,
) error {
	if _, err := s.usage.TryConsume(user.ID); err != nil {
		return err
	}

	storyContext := ""
	if req.StoryID != "" {
		var err error
		storyContext, err = s.stories.BuildContext(req.StoryID, user.ID, token)
		if err != nil {
			s.usage.Release(user.ID)
			return err
		}
	}

	prompt := BuildPrompt(req, storyContext)
	if err := s.stream(ctx, user.ID, prompt, sink); err != nil {
		s.usage.Release(user.ID)
		return err
	}

	if err := s.usage.RecordGeneration(user.ID); err != nil {
		// Content was fully delivered; an accounting failure must not turn
		// the response into an error.
		s.logger.Error("Failed to record completed generation", err, "user_id", user.ID)
	}
	return nil
}

// stream opens the engine call and relays fragments to the sink. Any abort
// path (engine failure, client disconnect, cancellation) returns an error so
// the caller skips the usage charge.
func (s *GenerationService) stream(ctx context.Context, userID, prompt string, sink domain.TokenSink) error {
	body, err := json.Marshal(engineRequest{Model: s.model, Prompt: prompt, Stream: true})
	if err != nil {
		return fmt.Errorf("failed to encode engine request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.engineURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build engine request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return classifyEngineError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("engine returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFragmentSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var frag engineFragment
		if err := json.Unmarshal(line, &frag); err != nil {
			// A malformed fragment contributes nothing but does not kill the stream.
			s.logger.Warn("Skipping malformed engine fragment", "user_id", userID)
			continue
		}

		if frag.Response != "" {
			if err := sink(frag.Response); err != nil {
				s.logger.Warn("Stream consumer went away, skipping usage increment", "user_id", userID)
				return fmt.Errorf("stream consumer failed: %w", err)
			}
		}
		if frag.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		s.logger.Warn("Engine stream interrupted, skipping usage increment", "user_id", userID, "error", err)
		return fmt.Errorf("engine stream interrupted: %w", err)
	}
	return ctx.Err()
}

// classifyEngineError maps connection-phase failures onto the domain
// taxonomy. Anything after the first byte is a stream interruption and never
// reaches this path.
func classifyEngineError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrEngineTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrEngineTimeout, err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}

	return fmt.Errorf("engine request failed: %w", err)
}
