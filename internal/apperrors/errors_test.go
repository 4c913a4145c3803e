// internal/apperrors/errors_test.go
package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, NotFound, KindOf(E(NotFound, "book not found")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindOfWalksWrapChain(t *testing.T) {
	inner := E(InvariantViolation, "cannot return a pending request")
	wrapped := fmt.Errorf("approve request: %w", inner)

	assert.Equal(t, InvariantViolation, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, InvariantViolation))
	assert.False(t, IsKind(wrapped, NotFound))
}

func TestUpstreamKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("load borrow request", cause)

	assert.Equal(t, UpstreamFailure, KindOf(err))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "load borrow request")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestErrorMessageShapes(t *testing.T) {
	assert.Equal(t, "no such book", E(NotFound, "no such book").Error())
	assert.Equal(t, "loan duration must be 3 or more",
		Ef(InvalidInput, "loan duration must be %d or more", 3).Error())

	withOp := &Error{Kind: UpstreamFailure, Op: "delete book", Msg: "operation failed"}
	assert.Equal(t, "delete book: operation failed", withOp.Error())
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindUnknown:        "unknown",
		Unauthenticated:    "unauthenticated",
		Unauthorized:       "unauthorized",
		InvalidInput:       "invalid_input",
		NotFound:           "not_found",
		UpstreamFailure:    "upstream_failure",
		InvariantViolation: "invariant_violation",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}
