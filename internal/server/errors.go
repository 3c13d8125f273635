package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	adminkeydomain "github.com/appoetlabs/appoet/internal/adminkey/domain"
	orderdomain "github.com/appoetlabs/appoet/internal/order/domain"
	paymentdomain "github.com/appoetlabs/appoet/internal/payment/domain"
	requestdomain "github.com/appoetlabs/appoet/internal/poemrequest/domain"
	tierdomain "github.com/appoetlabs/appoet/internal/tier/domain"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRateLimited  = errors.New("too many requests")
	errBadRequest   = errors.New("invalid request payload")
)

func invalidRequestError() error { return errBadRequest }

// AbortWithError translates domain sentinels into HTTP responses. Anything
// unmapped is a 500 with a generic body; the cause stays server-side.
func AbortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, orderdomain.ErrInvalidTier),
		errors.Is(err, orderdomain.ErrInvalidEmail),
		errors.Is(err, orderdomain.ErrInvalidStatus),
		errors.Is(err, orderdomain.ErrAlreadyProcessed),
		errors.Is(err, orderdomain.ErrPaymentIncomplete),
		errors.Is(err, orderdomain.ErrAmountMismatch),
		errors.Is(err, orderdomain.ErrLookupParamRequired),
		errors.Is(err, requestdomain.ErrInvalidPoemType),
		errors.Is(err, requestdomain.ErrThemeRequired),
		errors.Is(err, requestdomain.ErrContentRequired),
		errors.Is(err, requestdomain.ErrInvalidStatus),
		errors.Is(err, tierdomain.ErrInvalidName),
		errors.Is(err, tierdomain.ErrInvalidPrice),
		errors.Is(err, tierdomain.ErrInvalidPoemCount),
		errors.Is(err, tierdomain.ErrInvalidBonusPoems),
		errors.Is(err, tierdomain.ErrInvalidDeliveryHours),
		errors.Is(err, tierdomain.ErrCodeTaken),
		errors.Is(err, adminkeydomain.ErrInvalidName),
		errors.Is(err, adminkeydomain.ErrInvalidScopes),
		errors.Is(err, adminkeydomain.ErrInvalidTTL):
		return http.StatusBadRequest

	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, adminkeydomain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, ErrForbidden),
		errors.Is(err, orderdomain.ErrNotPaid),
		errors.Is(err, orderdomain.ErrNoCreditsRemaining),
		errors.Is(err, requestdomain.ErrPaymentNotConfirmed),
		errors.Is(err, requestdomain.ErrNoCreditsRemaining):
		return http.StatusForbidden

	case errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrInvalidID),
		errors.Is(err, requestdomain.ErrNotFound),
		errors.Is(err, requestdomain.ErrInvalidID),
		errors.Is(err, requestdomain.ErrOrderNotFound),
		errors.Is(err, tierdomain.ErrNotFound),
		errors.Is(err, tierdomain.ErrInvalidID),
		errors.Is(err, adminkeydomain.ErrNotFound),
		errors.Is(err, adminkeydomain.ErrInvalidID),
		errors.Is(err, paymentdomain.ErrRemoteOrderNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests

	case errors.Is(err, paymentdomain.ErrProviderUnavailable):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
