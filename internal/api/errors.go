package api

import (
	"crowdfund_ledger/internal/ledger" // Ledger errors
	"crowdfund_ledger/internal/oracle" // Oracle errors
	"crowdfund_ledger/internal/store"  // Persistence errors
	"errors"                           // Error inspection
	"net/http"                         // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusFor maps a ledger failure to an HTTP status and a client-facing message
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ledger.ErrInsufficientContribution):
		return http.StatusBadRequest, "Contribution below minimum"
	case errors.Is(err, ledger.ErrNotOwner):
		return http.StatusForbidden, "Only the owner can withdraw"
	case errors.Is(err, ledger.ErrIndexOutOfRange):
		return http.StatusNotFound, "Funder index out of range"
	case errors.Is(err, ledger.ErrTransferFailed):
		return http.StatusBadGateway, "Transfer to owner failed"
	case errors.Is(err, store.ErrStaleLedger):
		return http.StatusConflict, "Ledger changed outside this server, restart required"
	case errors.Is(err, oracle.ErrOracleUnavailable):
		return http.StatusServiceUnavailable, "Price oracle unavailable"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

// respondError logs err with fields and writes the mapped status
func respondError(c *gin.Context, err error, fields logrus.Fields, msg string) {
	status, public := statusFor(err)
	entry := logrus.WithFields(fields).WithField("error", err.Error())
	if status >= http.StatusInternalServerError {
		entry.Error(msg) // Server side or upstream failure
	} else {
		entry.Warn(msg) // Caller mistake
	}
	c.JSON(status, gin.H{"error": public})
}
