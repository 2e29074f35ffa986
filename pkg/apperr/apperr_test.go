package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	errMissing := NotFound("split not found")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", Validation("bad input"), KindValidation},
		{"wrapped", fmt.Errorf("loading split 7: %w", errMissing), KindNotFound},
		{"plain error", errors.New("boom"), KindInternal},
		{"retryable conflict", RetryableConflict("concurrent update"), KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestWrappedSentinelKeepsIdentity(t *testing.T) {
	errAlreadyPaid := Conflict("participant has already paid")
	wrapped := fmt.Errorf("participant 3: %w", errAlreadyPaid)

	assert.True(t, errors.Is(wrapped, errAlreadyPaid))
	assert.True(t, Is(wrapped, KindConflict))
	assert.False(t, IsRetryable(wrapped))
	assert.Equal(t, "participant 3: participant has already paid", wrapped.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("update: %w", RetryableConflict("collision"))))
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "VALIDATION_ERROR", KindValidation.String())
	assert.Equal(t, "FORBIDDEN", KindUnauthorized.String())
	assert.Equal(t, "INTERNAL_ERROR", KindInternal.String())
}
