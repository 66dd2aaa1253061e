package client

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/authgate/internal/common"
)

var ErrUnavailable = errors.New("server unavailable")

// MsgUnavailable is shown when the gateway cannot be reached.
const MsgUnavailable = "Unable to reach the server. Please try again."

// mapStatus turns a non-200 gateway answer into a typed error carrying the
// gateway's message.
func mapStatus(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}

	switch {
	case status == http.StatusBadRequest:
		if message == common.MsgAlreadyExists {
			return common.NewError(common.ErrAlreadyExists, message)
		}
		return common.NewError(common.ErrValidation, message)
	case status == http.StatusUnauthorized:
		return common.NewError(common.ErrUnauthorized, message)
	case status == http.StatusTooManyRequests:
		return common.NewError(common.ErrRateLimited, message)
	default:
		return common.NewError(common.ErrUpstream, message)
	}
}
