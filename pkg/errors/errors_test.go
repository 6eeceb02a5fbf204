package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageAndUnwrap(t *testing.T) {
	inner := errors.New("dial tcp: connection refused")
	err := ErrUpstreamUnavailable.WithInternal(inner)

	require.Contains(t, err.Error(), "Upstream provider unavailable")
	require.Contains(t, err.Error(), "connection refused")
	require.True(t, errors.Is(err, inner))

	// The sentinel itself must stay untouched.
	require.Nil(t, ErrUpstreamUnavailable.Internal)
}

func TestFromError(t *testing.T) {
	require.Nil(t, FromError(nil))

	plain := errors.New("boom")
	converted := FromError(plain)
	require.Equal(t, ErrInternalServer.Code, converted.Code)
	require.Equal(t, http.StatusInternalServerError, converted.StatusCode)
	require.True(t, errors.Is(converted, plain))

	wrapped := ErrStore.WithInternal(plain)
	require.Same(t, wrapped, FromError(wrapped))
}

func TestTaxonomyStatusCodes(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, ErrInvalidInput.StatusCode)
	require.Equal(t, http.StatusNotFound, ErrNoResult.StatusCode)
	require.Equal(t, http.StatusBadGateway, ErrUpstreamUnavailable.StatusCode)
	require.Equal(t, http.StatusInternalServerError, ErrStore.StatusCode)
}

func TestNewInvalidInput(t *testing.T) {
	err := NewInvalidInput("radius must be between 100 and 50000")
	require.Equal(t, ErrInvalidInput.Code, err.Code)
	require.Equal(t, "radius must be between 100 and 50000", err.Message)
}
