package service

import (
	"github.com/pavelchuchma/vkct/internal/adapters/repository"
	"github.com/pavelchuchma/vkct/internal/domain/dedupe"
	"github.com/pavelchuchma/vkct/internal/domain/identity"
	"github.com/pavelchuchma/vkct/internal/domain/scoring"
	"github.com/pavelchuchma/vkct/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets how many categories are computed in parallel.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNormalizer sets the identity normalizer.
func WithNormalizer(n *identity.Normalizer) Option {
	return func(s *Service) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithCalculator sets the points calculator.
func WithCalculator(c scoring.Scorer) Option {
	return func(s *Service) {
		if c != nil {
			s.calculator = c
		}
	}
}

// WithChecker sets the similarity checker.
func WithChecker(c *dedupe.Checker) Option {
	return func(s *Service) {
		if c != nil {
			s.checker = c
		}
	}
}

// WithStore makes every successful run publish its standings to store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}
