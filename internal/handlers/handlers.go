// Package handlers wires the HTTP surface to the caching services.
// Handlers validate input, delegate, and render; no cache policy
// lives here.
package handlers

import (
	apperrors "github.com/avillareal/homescout/pkg/errors"
)

func apperrInvalid(message string, cause error) error {
	return apperrors.NewInvalidInput(message).WithInternal(cause)
}
