package fx

import "errors"

// Creation and lifecycle errors. Creation entry points fail synchronously
// with one of these; per-frame problems never surface as errors, they
// degrade visually instead.
var (
	// ErrNoSource is returned when an effect is created without the texture
	// sources it requires.
	ErrNoSource = errors.New("fx: no texture source provided")

	// ErrNilTarget is returned when an effect is created without a target.
	ErrNilTarget = errors.New("fx: target is nil")

	// ErrInvalidConfig wraps configuration validation failures at creation
	// or at ApplyConfig.
	ErrInvalidConfig = errors.New("fx: invalid config")

	// ErrConfigKind is returned by ApplyConfig when the config type does
	// not match the effect kind.
	ErrConfigKind = errors.New("fx: config kind mismatch")

	// ErrInvalidDimensions is returned for non-positive surface dimensions
	// or device pixel ratios.
	ErrInvalidDimensions = errors.New("fx: invalid dimensions")

	// ErrDisposed is returned when operating on a disposed effect.
	ErrDisposed = errors.New("fx: effect disposed")
)
