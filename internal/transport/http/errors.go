package http

import (
	"errors"

	apierrors "github.com/Blaise762/FemTechBI-MVP/internal/errors"
	"github.com/Blaise762/FemTechBI-MVP/internal/services"
)

// toAPIError maps service sentinel errors onto API errors. Unknown errors
// pass through and render as 500.
func toAPIError(err error) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return apierrors.ErrSessionNotFound
	case errors.Is(err, services.ErrFormRequired):
		return apierrors.ErrFormRequired
	case errors.Is(err, services.ErrSessionLimit):
		return apierrors.ErrSessionLimit
	case errors.Is(err, services.ErrUploadTooLarge):
		return apierrors.ErrPayloadTooLarge
	case errors.Is(err, services.ErrInvalidSource):
		return apierrors.ErrValidation("source", err.Error())
	case errors.Is(err, services.ErrInvalidFormat):
		return apierrors.ErrValidation("format", err.Error())
	case errors.Is(err, services.ErrInvalidPage):
		return apierrors.ErrValidation("page", err.Error())
	case errors.Is(err, services.ErrInvalidSelection):
		return apierrors.ErrValidation("selection", err.Error())
	}
	return err
}
