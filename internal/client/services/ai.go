package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/syncdraft/internal/client/client"
	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/client/stream"
	"github.com/dmitrijs2005/syncdraft/internal/common"
	"github.com/dmitrijs2005/syncdraft/internal/logging"
	"github.com/dmitrijs2005/syncdraft/internal/metrics"
)

var errNoResult = errors.New("no result from AI API")

// AIPanel is the part of the store the AI service drives.
type AIPanel interface {
	ActivePost() (models.Post, bool)
	OpenAIPanel(mode models.AIMode) models.AISession
	AppendAIResult(session models.AISession, chunk string) bool
	SetAIStreaming(session models.AISession, streaming bool) bool
	CloseAIPanel()
}

// AIService runs AI assist requests against the active post and reveals the
// answer progressively in the panel. A new run supersedes the previous one.
type AIService struct {
	api      client.AIAPI
	panel    AIPanel
	revealer *stream.Revealer
	limiter  *rate.Limiter
	log      logging.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	cancel context.CancelFunc
	run    uint64
}

type AIOption func(*AIService)

func WithRevealer(r *stream.Revealer) AIOption {
	return func(s *AIService) { s.revealer = r }
}

// WithRateLimit caps AI requests at perSecond with the given burst. A
// non-positive rate disables the limit.
func WithRateLimit(perSecond float64, burst int) AIOption {
	return func(s *AIService) {
		if perSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithAILogger(l logging.Logger) AIOption {
	return func(s *AIService) { s.log = l }
}

func WithAIMetrics(m *metrics.Metrics) AIOption {
	return func(s *AIService) { s.metrics = m }
}

func NewAIService(api client.AIAPI, panel AIPanel, opts ...AIOption) *AIService {
	s := &AIService{
		api:      api,
		panel:    panel,
		revealer: stream.New(stream.DefaultMinDelay, stream.DefaultJitter),
		limiter:  rate.NewLimiter(rate.Inf, 0),
		log:      logging.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run asks for mode on the active post's plain text and streams the answer
// into a fresh panel session. It blocks until the reveal ends, the run is
// superseded or ctx is done. Validation failures are returned before any
// request is made and leave the panel untouched.
func (s *AIService) Run(ctx context.Context, mode models.AIMode) error {
	if mode != models.AIModeSummary && mode != models.AIModeGrammar {
		return fmt.Errorf("%w: %q", common.ErrInvalidAIMode, mode)
	}
	p, ok := s.panel.ActivePost()
	if !ok {
		return common.ErrNoActivePost
	}
	text := strings.TrimSpace(p.ContentText)
	if text == "" {
		return common.ErrEmptyContent
	}

	runCtx, done := s.begin(ctx)
	defer done()

	session := s.panel.OpenAIPanel(mode)
	s.panel.SetAIStreaming(session, true)

	result, err := s.generate(runCtx, text, mode)
	s.metrics.AIRequest(string(mode), err)
	if err != nil {
		if runCtx.Err() != nil {
			s.panel.SetAIStreaming(session, false)
			return runCtx.Err()
		}
		s.log.Warn(ctx, "ai request failed", "mode", mode, "post_id", p.ID, "error", err)
		s.panel.AppendAIResult(session, "Error: "+err.Error())
		s.panel.SetAIStreaming(session, false)
		return err
	}

	err = s.revealer.Reveal(runCtx, result, func(chunk string) {
		s.panel.AppendAIResult(session, chunk)
	})
	s.panel.SetAIStreaming(session, false)
	return err
}

func (s *AIService) generate(ctx context.Context, text string, mode models.AIMode) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("ai rate limit: %w", err)
	}
	result, err := s.api.Generate(ctx, text, mode)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(result) == "" {
		return "", errNoResult
	}
	return result, nil
}

// begin cancels the previous run and returns the context of the new one.
func (s *AIService) begin(ctx context.Context) (context.Context, func()) {
	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.run++
	run := s.run
	s.cancel = cancel
	s.mu.Unlock()

	return runCtx, func() {
		s.mu.Lock()
		if s.run == run {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}
}

// Stop cancels the running reveal, if any, and closes the panel.
func (s *AIService) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.panel.CloseAIPanel()
}
