package controllers

import (
	"errors"
	"net/http"
	"sync/atomic"

	"marketplace-hub/logger"
	middlewares "marketplace-hub/middleware"
	"marketplace-hub/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var exposeInternalErrors atomic.Bool

func init() {
	exposeInternalErrors.Store(true)
}

// SetExposeInternalErrors controls whether 500 responses carry the underlying error text.
func SetExposeInternalErrors(v bool) {
	exposeInternalErrors.Store(v)
}

func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation, services.KindConflict, services.KindInsufficientStock:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	var appErr *services.AppError
	if !errors.As(err, &appErr) {
		appErr = &services.AppError{Kind: services.KindInternal, Message: "Server error", Err: err}
	}

	status := statusFor(appErr.Kind)
	body := gin.H{"message": appErr.Message}
	if appErr.ProductID != "" {
		body["productId"] = appErr.ProductID
	}
	if status == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error(appErr.Message, zap.Error(appErr.Err))
		if exposeInternalErrors.Load() && appErr.Err != nil {
			body["error"] = appErr.Err.Error()
		}
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": msg})
}

// principal reads the caller set by the auth middleware, answering 401 when it is missing.
func principal(c *gin.Context) (services.Principal, bool) {
	p, ok := middlewares.PrincipalFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
	}
	return p, ok
}
