package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// loggingProvider records every model call with latency and token usage.
type loggingProvider struct {
	inner Provider
	log   *zap.Logger
}

// WithLogging wraps p so each Complete call is logged.
func WithLogging(p Provider, log *zap.Logger) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &loggingProvider{inner: p, log: log}
}

func (l *loggingProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	start := time.Now()
	out, err := l.inner.Complete(ctx, req)
	latency := time.Since(start)

	if err != nil {
		l.log.Warn("model call failed",
			zap.String("model", l.inner.ModelID()),
			zap.Duration("latency", latency),
			zap.Error(err))
		return nil, err
	}

	l.log.Debug("model call",
		zap.String("model", out.Model),
		zap.Duration("latency", latency),
		zap.Int("input_tokens", out.Usage.InputTokens),
		zap.Int("output_tokens", out.Usage.OutputTokens))
	return out, nil
}

func (l *loggingProvider) ModelID() string {
	return l.inner.ModelID()
}
