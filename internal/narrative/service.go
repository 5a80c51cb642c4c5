package narrative

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/strengthscope/internal/catalog"
	"github.com/alexanderramin/strengthscope/internal/llm"
	"github.com/alexanderramin/strengthscope/internal/scoring"
)

// Placeholder replaces the narrative whenever generation fails.
const Placeholder = "(narrative generation failed)"

const defaultTimeout = 90 * time.Second

// ErrDisabled is the failure reason when no generator is configured.
var ErrDisabled = errors.New("narrative generation disabled")

// Generator is the external text-generation boundary.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Cache stores successful narratives by prompt key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, model, text string) error
}

// LLMGenerator adapts an llm.LLMClient to Generator.
type LLMGenerator struct {
	client llm.LLMClient
}

// NewLLMGenerator wraps client.
func NewLLMGenerator(client llm.LLMClient) *LLMGenerator {
	return &LLMGenerator{client: client}
}

func (g *LLMGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Generate(ctx, llm.GenerateRequest{
		Task:       llm.TaskNarrative,
		UserPrompt: prompt,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Narrative is the outcome of one generation attempt.
type Narrative struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
	Cached   bool   `json:"cached,omitempty"`
	Model    string `json:"model,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Request is the input to Narrate.
type Request struct {
	Subject string
	Result  *scoring.Result
	Catalog *catalog.Catalog
}

// Service produces narratives and absorbs every generation failure.
type Service struct {
	gen     Generator
	model   string
	timeout time.Duration
	cache   Cache
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds each generation call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithCache enables narrative reuse for identical prompts.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithModel records the model name in cache keys and results.
func WithModel(model string) Option {
	return func(s *Service) { s.model = model }
}

// WithLogger sets the logger for absorbed failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service. A nil generator yields the placeholder for
// every request.
func NewService(gen Generator, opts ...Option) *Service {
	s := &Service{
		gen:     gen,
		timeout: defaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Narrate makes at most one generation call and never fails: any error,
// timeout or empty answer yields the placeholder.
func (s *Service) Narrate(ctx context.Context, req Request) Narrative {
	if s.gen == nil {
		return s.fallback(ctx, ErrDisabled)
	}

	prompt := BuildPrompt(req.Subject, req.Result, req.Catalog)
	key := CacheKey(s.model, prompt)

	if s.cache != nil {
		text, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "narrative cache read failed", "error", err)
		} else if ok {
			return Narrative{Text: text, Cached: true, Model: s.model}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.Generate(callCtx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = llm.ErrEmptyOutput
	}
	if err != nil {
		if callCtx.Err() != nil && !errors.Is(err, llm.ErrTimeout) {
			err = errors.Join(llm.ErrTimeout, err)
		}
		return s.fallback(ctx, err)
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, s.model, text); err != nil {
			s.logger.WarnContext(ctx, "narrative cache write failed", "error", err)
		}
	}
	return Narrative{Text: text, Model: s.model}
}

func (s *Service) fallback(ctx context.Context, err error) Narrative {
	if !errors.Is(err, ErrDisabled) {
		s.logger.WarnContext(ctx, "narrative generation failed", "error", err)
	}
	return Narrative{Text: Placeholder, Fallback: true, Model: s.model, Reason: err.Error()}
}

// CacheKey identifies a narrative by model and prompt.
func CacheKey(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}
