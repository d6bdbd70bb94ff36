package skin

import (
	"SkinLens/pkg/response"
	"net/http"
)

var (
	ErrInvalidImage          = response.NewError(http.StatusBadRequest, "invalid image")
	ErrInvalidResultDocument = response.NewError(http.StatusBadRequest, "analysis result must be a JSON document")
	ErrAnalysisNotFound      = response.NewError(http.StatusNotFound, "skin analysis not found")
	ErrAnalysisNotOwned      = response.NewError(http.StatusForbidden, "skin analysis does not belong to user")
	ErrDetectionFailed       = response.NewError(http.StatusBadGateway, "skin detection service failed")
	ErrCreateAnalysis        = response.NewError(http.StatusInternalServerError, "failed to save skin analysis")
	ErrDeleteAnalysis        = response.NewError(http.StatusInternalServerError, "failed to delete skin analysis")
	ErrAdviceUnavailable     = response.NewError(http.StatusServiceUnavailable, "personalized advice is unavailable")
	ErrInternalServerError   = response.NewError(http.StatusInternalServerError, "internal server error")
)
