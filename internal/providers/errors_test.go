package providers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"missing credential", MissingCredentialf("no key"), KindMissingCredential},
		{"not found", NotFoundf("city '%s' not found", "X"), KindNotFound},
		{"unavailable", Unavailablef("status %d", 500), KindUnavailable},
		{"invalid argument", InvalidArgumentf("bad limit"), KindInvalidArgument},
		{"plain error defaults to unavailable", errors.New("boom"), KindUnavailable},
		{"wrapped error keeps its kind", fmt.Errorf("context: %w", NotFoundf("gone")), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := NotFoundf("series '%s' not found", "UNRATE")
	assert.Equal(t, "series 'UNRATE' not found", err.Error())
}
