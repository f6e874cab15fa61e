package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapToHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"No error", nil, http.StatusOK},
		{"Weak password", fmt.Errorf("%w: too short", ErrInvalidPassword), http.StatusBadRequest},
		{"Bad signup", ErrInvalidSignup, http.StatusBadRequest},
		{"Duplicate user", ErrUserAlreadyExists, http.StatusConflict},
		{"Wrong password", ErrInvalidCredentials, http.StatusUnauthorized},
		{"Queue full", ErrEngineBusy, http.StatusServiceUnavailable},
		{"Unmapped", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, MapToHTTPStatus(tt.err))
		})
	}
}
