package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PiyushChall/CogniSynapseRank/internal/store"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "generic not found", err: store.ErrNotFound, expected: true},
		{name: "analysis not found", err: store.ErrAnalysisNotFound, expected: true},
		{name: "task not found", err: store.ErrTaskNotFound, expected: true},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", store.ErrAnalysisNotFound), expected: true},
		{name: "unrelated error", err: errors.New("boom"), expected: false},
		{name: "nil error", err: nil, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, store.IsNotFoundError(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Run("formats with wrapped error", func(t *testing.T) {
		inner := errors.New("connection refused")
		err := store.NewStoreError("analysis", "create", "insert failed", inner)

		assert.Contains(t, err.Error(), "create operation on analysis failed")
		assert.Contains(t, err.Error(), "connection refused")
		assert.ErrorIs(t, err, inner)
	})

	t.Run("formats without wrapped error", func(t *testing.T) {
		err := store.NewStoreError("task", "update", "no rows affected", nil)

		assert.Equal(t, "update operation on task failed: no rows affected", err.Error())
		assert.Nil(t, errors.Unwrap(err))
	})
}
