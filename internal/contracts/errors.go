package contracts

import (
	"errors"
	"fmt"
)

// ErrDataUnavailable marks a failed price/quote fetch or an unknown ticker
// ⭐ 코어 경계를 넘는 유일한 hard failure
var ErrDataUnavailable = errors.New("data unavailable")

// DataUnavailable wraps cause so that errors.Is(err, ErrDataUnavailable) holds
func DataUnavailable(symbol string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", symbol, ErrDataUnavailable)
	}
	return fmt.Errorf("%s: %w: %w", symbol, ErrDataUnavailable, cause)
}

// IsDataUnavailable reports whether err is a DataUnavailable failure
func IsDataUnavailable(err error) bool {
	return errors.Is(err, ErrDataUnavailable)
}
