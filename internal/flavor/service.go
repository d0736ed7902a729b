// Package flavor produces the one-line sensei message shown when a round
// ends. Generation runs off the game loop and can never fail the caller:
// errors, panics and timeouts all degrade to a fixed fallback line.
package flavor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/airslash/airslash/internal/config"
)

// Generator produces a message for a final score.
type Generator interface {
	Generate(ctx context.Context, score int) (string, error)
}

type Service struct {
	gen      Generator
	timeout  time.Duration
	fallback string
	empty    string
	log      *zap.Logger
}

func NewService(gen Generator, cfg config.FlavorConfig, log *zap.Logger) *Service {
	return &Service{
		gen:      gen,
		timeout:  cfg.Timeout,
		fallback: cfg.Fallback,
		empty:    cfg.EmptyReply,
		log:      log,
	}
}

// Request generates a message on a new goroutine and hands it to deliver
// exactly once, on that goroutine. There is no retry and no cancellation.
func (s *Service) Request(score int, deliver func(string)) {
	go func() {
		deliver(s.Generate(score))
	}()
}

// Generate runs one bounded generation synchronously.
func (s *Service) Generate(score int) string {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("generator panic: %v", r)}
			}
		}()
		text, err := s.gen.Generate(ctx, score)
		done <- result{text: text, err: err}
	}()

	var res result
	select {
	case res = <-done:
		// A reply that raced the deadline is still late.
		if res.err == nil && ctx.Err() != nil {
			res.err = ctx.Err()
		}
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	if res.err != nil {
		s.log.Warn("評語產生失敗，改用預設評語", zap.Int("score", score), zap.Error(res.err))
		return s.fallback
	}
	text := strings.TrimSpace(res.text)
	if text == "" {
		return s.empty
	}
	return text
}

// Close releases the generator when it holds resources.
func (s *Service) Close() error {
	if c, ok := s.gen.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
