package question

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoQuestions signals the source returned ok:false or an empty list.
// Callers must treat this as a hard failure of match setup.
var ErrNoQuestions = errors.New("question source returned no questions")

// BatchCache defines cache behavior (implemented by the Redis-backed Cache).
type BatchCache interface {
	Get(ctx context.Context, mode string) (*Batch, error)
	Set(ctx context.Context, mode string, batch Batch) error
}

// Provider fetches question lists from the upstream source.
type Provider interface {
	Fetch(ctx context.Context, mode string, count int) ([]Question, error)
}

// Service orchestrates access to the upstream question source with a
// best-effort cache in front of it.
type Service struct {
	provider Provider
	cache    BatchCache
	count    int
}

func NewService(provider Provider, cache BatchCache, count int) *Service {
	if count <= 0 {
		count = 30
	}
	return &Service{
		provider: provider,
		cache:    cache,
		count:    count,
	}
}

// FetchBatch returns a question batch for a mode. Cache errors are ignored;
// an empty upstream result propagates as ErrNoQuestions.
func (s *Service) FetchBatch(ctx context.Context, mode string) (Batch, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, mode); err == nil && cached != nil && len(cached.Questions) > 0 {
			return *cached, nil
		}
	}

	questions, err := s.provider.Fetch(ctx, mode, s.count)
	if err != nil {
		if errors.Is(err, ErrNoQuestions) {
			return Batch{}, err
		}
		return Batch{}, fmt.Errorf("fetch questions: %w", err)
	}

	batch := Batch{Mode: mode, Questions: questions}
	if s.cache != nil {
		_ = s.cache.Set(ctx, mode, batch)
	}
	return batch, nil
}
