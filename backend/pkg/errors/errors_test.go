package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsErrorType(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{"base error", NewBaseError(ErrorTypeGraph, "boom", nil), ErrorTypeGraph, true},
		{"typed error", NewGraphQueryFailed("record constraint", cause), ErrorTypeGraph, true},
		{"wrapped typed error", fmt.Errorf("stage failed: %w", NewGraphConnectionFailed("neo4j://x", cause)), ErrorTypeGraph, true},
		{"config missing", NewConfigMissingRequired("NEO4J_PASSWORD"), ErrorTypeConfig, true},
		{"other type", NewConfigMissingRequired("NEO4J_PASSWORD"), ErrorTypeGraph, false},
		{"typed error wrapping typed error", NewGraphQueryFailed("q", NewExtractionFailed("llm", "bad", nil)), ErrorTypeExtraction, true},
		{"plain error", cause, ErrorTypeGraph, false},
		{"nil", nil, ErrorTypeGraph, false},
		{"cancelled", fmt.Errorf("prompt: %w", ErrUserCancelled), ErrorTypeCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsErrorType(tt.err, tt.errType))
		})
	}
}

func TestBaseError_Unwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := NewGraphConnectionFailed("neo4j://localhost:7687", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "[graph]")
	assert.Contains(t, err.Error(), "neo4j://localhost:7687")
	assert.Contains(t, err.Error(), "timeout")
}

func TestConfigMissingRequired_Message(t *testing.T) {
	err := NewConfigMissingRequired("NEO4J_PASSWORD")
	assert.Equal(t, "[config] NEO4J_PASSWORD must be set in environment", err.Error())
}
