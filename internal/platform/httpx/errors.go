// Package httpx writes JSON and RFC7807 problem responses for the console's
// machine-readable endpoints.
package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
)

// RespondError maps API client errors to problem responses. Upstream failures
// become 502 so they are not mistaken for console bugs.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case apiclient.IsLoggedOut(err):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in again to continue")
	case errors.Is(err, apiclient.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", apiclient.UserSafeMessage(err))
	case errors.Is(err, apiclient.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", apiclient.UserSafeMessage(err))
	case errors.Is(err, apiclient.ErrValidation):
		ValidationProblem(w, apiclient.UserSafeMessage(err), apiclient.FieldErrors(err))
	case errors.Is(err, context.DeadlineExceeded):
		Problem(w, http.StatusGatewayTimeout, "Upstream Timeout", "the API did not answer in time")
	default:
		Problem(w, http.StatusBadGateway, "Upstream Error", apiclient.UserSafeMessage(err))
	}
}
