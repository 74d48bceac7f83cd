package dist

import "github.com/cockroachdb/errors"

// Error classes shared by every engine package. Concrete errors carry a
// human-readable reason and are marked with one of these so callers can
// classify them with errors.Is.
var (
	// ErrDomain marks parameters that violate a distribution's constraints.
	ErrDomain = errors.New("domain error")
	// ErrRange marks counts, bin numbers or significance levels out of bounds.
	ErrRange = errors.New("range error")
	// ErrConsistency marks inputs whose parts disagree with each other.
	ErrConsistency = errors.New("consistency error")
)

func DomainErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrDomain)
}

func RangeErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrRange)
}

func ConsistencyErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrConsistency)
}

// IsCallerError reports whether err is one of the input error classes above.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrDomain) || errors.Is(err, ErrRange) || errors.Is(err, ErrConsistency)
}
