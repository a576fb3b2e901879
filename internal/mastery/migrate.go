package mastery

import (
	"errors"
	"fmt"
)

// ErrInvalidProgression is returned for legacy values outside 0..MaxLevel.
var ErrInvalidProgression = errors.New("invalid legacy progression")

// FromProgression converts the legacy single-direction progression field
// into the packed form. The legacy value tracked recall only, so it maps
// directly onto the recall level with recognize starting at zero.
func FromProgression(p int) (int, error) {
	if p < 0 || p > MaxLevel {
		return 0, fmt.Errorf("%w: %d", ErrInvalidProgression, p)
	}
	return Pack(0, p), nil
}
