// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parkdesk/internal/modules/parking"
	"parkdesk/internal/modules/plate"
	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/modules/report"
	"parkdesk/internal/modules/spaces"
	"parkdesk/internal/modules/subscription"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeDeskError is the single mapping from engine errors to HTTP status.
func writeDeskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, plate.ErrInvalidFormat),
		errors.Is(err, plate.ErrTypeMismatch),
		errors.Is(err, plate.ErrUndetectableType),
		errors.Is(err, parking.ErrMissingRequiredField),
		errors.Is(err, parking.ErrUnsupportedVehicle),
		errors.Is(err, parking.ErrInvalidRate),
		errors.Is(err, parking.ErrInvalidPayment),
		errors.Is(err, subscription.ErrInvalidCutDay),
		errors.Is(err, subscription.ErrMissingClient),
		errors.Is(err, pricing.ErrInvalidTariff),
		errors.Is(err, pricing.ErrUnknownRate),
		errors.Is(err, report.ErrUnknownPeriod):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, parking.ErrNotFound),
		errors.Is(err, spaces.ErrNotFound),
		errors.Is(err, subscription.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, parking.ErrDuplicateActiveEntry),
		errors.Is(err, parking.ErrSubscribedVehicle),
		errors.Is(err, spaces.ErrNoFreeSpace),
		errors.Is(err, spaces.ErrInvalidTransition),
		errors.Is(err, spaces.ErrVehicleMismatch),
		errors.Is(err, subscription.ErrAlreadyPaidThisMonth),
		errors.Is(err, subscription.ErrDuplicatePlate):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, parking.ErrNotLoaded):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// queryBool accepts the strconv.ParseBool forms; absent or malformed is false.
func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}
