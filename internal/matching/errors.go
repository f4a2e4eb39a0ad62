package matching

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrRecordConflict = errors.New("compatibility record conflict")
	ErrSameUser       = errors.New("cannot compute compatibility with yourself")
)

// RecordConflictError reports a pair uniqueness violation from the store.
// Callers should re-fetch and update instead of inserting again.
type RecordConflictError struct {
	Pair PairKey
	Err  error
}

func (e *RecordConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compatibility record conflict for pair %s: %v", e.Pair, e.Err)
	}
	return fmt.Sprintf("compatibility record conflict for pair %s", e.Pair)
}

func (e *RecordConflictError) Unwrap() error {
	return e.Err
}

func (e *RecordConflictError) Is(target error) bool {
	return target == ErrRecordConflict
}

// NotFoundError names the missing user.
type NotFoundError struct {
	UserID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user %d not found", e.UserID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
