package dice

import "go.uber.org/zap"

// LoggedSource wraps a Source and logs every draw at debug level.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource creates a LoggedSource drawing from src.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the bound and result.
//
// Precondition: n > 0.
// Postcondition: result logged; returns a value in [0, n).
func (l *LoggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.logger.Debug("random draw", zap.Int("n", n), zap.Int("result", v))
	return v
}

// New returns the Source selected by seed: crypto/rand for 0, PCG otherwise,
// wrapped so every draw is logged.
//
// Precondition: logger must be non-nil.
func New(seed int64, logger *zap.Logger) Source {
	var src Source
	if seed == 0 {
		src = NewCryptoSource()
	} else {
		src = NewSeededSource(seed)
	}
	return NewLoggedSource(src, logger)
}
