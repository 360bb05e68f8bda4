package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation with field", Invalid("mode", "unknown value %q", "weekly"), `invalid mode: unknown value "weekly"`},
		{"validation without field", &ValidationError{Reason: "empty submission"}, "invalid input: empty submission"},
		{"not found", NotFound("section", 7), "section 7 not found"},
		{"storage", &StorageError{Op: "finish pass", Err: errors.New("disk full")}, "storage: finish pass: disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestStorageWrapping(t *testing.T) {
	assert.NoError(t, Storage("noop", nil))

	base := errors.New("database is locked")
	err := Storage("record answer", base)
	require.Error(t, err)
	assert.True(t, IsStorage(err))
	assert.ErrorIs(t, err, base)

	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, IsStorage(wrapped))
	assert.False(t, IsValidation(wrapped))
}

func TestStoragePassesThroughKnownKinds(t *testing.T) {
	nf := NotFound("question", 3)
	assert.Same(t, nf, Storage("lookup", nf))

	inv := Invalid("level", "must be 1, 2 or 3")
	assert.Same(t, inv, Storage("toggle", inv))
	assert.False(t, IsStorage(Storage("toggle", inv)))
}
