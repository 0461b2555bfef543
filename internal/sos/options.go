package sos

import (
	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/convert"
	"github.com/vk/sosgridgo/internal/resultstore"
)

// DefaultMaxIterations bounds a convergence group when no budget is configured.
const DefaultMaxIterations = 100

// Option configures a SosModel.
type Option func(*SosModel)

// WithConvertor sets the convertor used for edges between ports on different
// resolutions. Without it only same-basis edges can be simulated.
func WithConvertor(c *convert.Convertor) Option {
	return func(s *SosModel) { s.convertor = c }
}

// WithMaxIterations sets the convergence group iteration budget.
func WithMaxIterations(n int) Option {
	return func(s *SosModel) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// WithTolerance sets the relative and absolute tolerances of the convergence check.
func WithTolerance(rtol, atol float64) Option {
	return func(s *SosModel) {
		s.rtol = rtol
		s.atol = atol
	}
}

// WithStore sets the results store. The default is an in-memory store.
func WithStore(st resultstore.Store) Option {
	return func(s *SosModel) { s.store = st }
}

// WithObserver registers an observer for simulation events.
func WithObserver(o Observer) Option {
	return func(s *SosModel) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithAcceptApproximate makes Run keep the last iterate of a convergence
// group that ran out of iterations instead of failing.
func WithAcceptApproximate() Option {
	return func(s *SosModel) { s.acceptApproximate = true }
}

func defaults(s *SosModel) {
	s.maxIterations = DefaultMaxIterations
	s.rtol = array.DefaultRelativeTolerance
	s.atol = array.DefaultAbsoluteTolerance
	s.observer = NopObserver{}
}
