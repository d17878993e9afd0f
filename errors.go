package timedcache

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks caller mistakes. They are returned before any
	// cache or upstream work happens.
	ErrInvalidArgument = errors.New("timedcache: invalid argument")

	ErrInvalidTTL = fmt.Errorf("%w: ttl must be positive", ErrInvalidArgument)
	ErrInvalidKey = fmt.Errorf("%w: empty key or prefix", ErrInvalidArgument)
	ErrNilCompute = fmt.Errorf("%w: nil compute func", ErrInvalidArgument)
)

// InvalidateError is returned when an invalidation could not be made durable.
// Any generation bump failure is reported. A failed entry delete alone is not,
// since the bumped generation already rejects the entry.
type InvalidateError struct {
	Key     string
	BumpErr error
	DelErr  error
}

func (e *InvalidateError) Error() string {
	switch {
	case e.BumpErr != nil && e.DelErr != nil:
		return fmt.Sprintf("timedcache: invalidate %q: gen bump and delete failed: bump=%v; delete=%v",
			e.Key, e.BumpErr, e.DelErr)
	case e.BumpErr != nil:
		return fmt.Sprintf("timedcache: invalidate %q: gen bump failed: %v", e.Key, e.BumpErr)
	case e.DelErr != nil:
		return fmt.Sprintf("timedcache: invalidate %q: delete failed: %v", e.Key, e.DelErr)
	default:
		return fmt.Sprintf("timedcache: invalidate %q: unknown error", e.Key)
	}
}

func (e *InvalidateError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.BumpErr != nil {
		errs = append(errs, e.BumpErr)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}
