package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/huimingz/commit-composer/internal/llm"
	"github.com/huimingz/commit-composer/internal/log"
)

// ErrBackendUnavailable wraps every failure to obtain a reply from the model
var ErrBackendUnavailable = errors.New("message backend unavailable")

// DefaultTimeout bounds a single generation call, retries included
const DefaultTimeout = 60 * time.Second

// Option configures a Composer
type Option func(*Composer)

// WithRetry sets the retry policy for backend calls. An invalid policy is
// ignored with a warning and the defaults stay in place.
func WithRetry(cfg llm.RetryConfig) Option {
	return func(c *Composer) {
		if err := cfg.Validate(); err != nil {
			log.Warn("ignoring retry config: %v", err)
			return
		}
		c.retry = cfg
	}
}

// WithTimeout sets the per-call timeout; zero or negative disables it
func WithTimeout(d time.Duration) Option {
	return func(c *Composer) {
		c.timeout = d
	}
}

// WithLanguage sets the output language code
func WithLanguage(language string) Option {
	return func(c *Composer) {
		c.language = language
	}
}

// Composer turns a staged diff into a conventional commit message
type Composer struct {
	model    model.BaseChatModel
	retry    llm.RetryConfig
	timeout  time.Duration
	language string
}

// New creates a Composer backed by chatModel
func New(chatModel model.BaseChatModel, opts ...Option) *Composer {
	c := &Composer{
		model:   chatModel,
		retry:   llm.DefaultRetryConfig(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose generates a message for the diff. It never fails: any backend or
// reply problem produces Fallback(files).
func (c *Composer) Compose(ctx context.Context, diff string, files []string) GeneratedMessage {
	msg, err := c.generate(ctx, PromptData{Diff: diff, Files: files, Language: c.language})
	if err != nil {
		log.Warn("Falling back to a generic message: %v", err)
		return Fallback(files)
	}
	return msg
}

// ComposeWithStyle generates a message with a style directive. Failures are
// returned wrapping ErrBackendUnavailable or ErrMalformedReply.
func (c *Composer) ComposeWithStyle(ctx context.Context, diff string, files []string, style Style) (GeneratedMessage, error) {
	return c.generate(ctx, PromptData{Diff: diff, Files: files, Language: c.language, Style: ParseStyle(string(style))})
}

func (c *Composer) generate(ctx context.Context, data PromptData) (GeneratedMessage, error) {
	reply, err := c.ask(ctx, BuildPrompt(data))
	if err != nil {
		return GeneratedMessage{}, err
	}

	msg, err := ParseReply(reply)
	if err != nil {
		return GeneratedMessage{}, fmt.Errorf("failed to parse reply: %w", err)
	}
	return msg, nil
}

// ask sends the prompt and returns the reply text
func (c *Composer) ask(ctx context.Context, prompt string) (string, error) {
	if c.model == nil {
		return "", fmt.Errorf("%w: no chat model configured", ErrBackendUnavailable)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	log.DebugPrompt(prompt)
	start := time.Now()

	resp, err := llm.WithRetryResult(ctx, c.retry, func() (*schema.Message, error) {
		return c.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	})
	log.DebugDuration("Generation", time.Since(start))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: no reply", ErrBackendUnavailable)
	}

	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		usage := resp.ResponseMeta.Usage
		log.DebugTokenUsage(usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
	}
	log.DebugReply(resp.Content)

	return resp.Content, nil
}

// Fallback is the message used when the model cannot be reached.
// Each distinct file is listed once, in input order.
func Fallback(files []string) GeneratedMessage {
	files = uniqueFiles(files)

	var body string
	if len(files) > 0 {
		body = "Files: " + strings.Join(files, ", ")
	}
	msg := NewMessage(TypeChore, fmt.Sprintf("update %d file(s)", len(files)), body)
	msg.Fallback = true
	return msg
}

func uniqueFiles(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
