package handler

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/linguaflow/tutor-apiserver/internal/domain"
)

// Response is the unified JSON envelope for non-streaming endpoints.
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SuccessResponse writes a 200 response.
func SuccessResponse(c *app.RequestContext, data interface{}) {
	c.JSON(consts.StatusOK, Response{
		Code:    "SUCCESS",
		Message: "operation successful",
		Data:    data,
	})
}

// CreatedResponse writes a 201 response.
func CreatedResponse(c *app.RequestContext, data interface{}) {
	c.JSON(consts.StatusCreated, Response{
		Code:    "CREATED",
		Message: "resource created successfully",
		Data:    data,
	})
}

// ErrorResponse maps a domain error onto an HTTP status. Callers never
// see internal error detail, only the user-facing message.
func ErrorResponse(c *app.RequestContext, err error) {
	switch {
	case domain.IsInvalidInput(err):
		c.JSON(consts.StatusBadRequest, Response{
			Code:    "INVALID_INPUT",
			Message: domain.UserMessageFor(err),
		})
	case domain.IsNotFound(err):
		c.JSON(consts.StatusNotFound, Response{
			Code:    "NOT_FOUND",
			Message: domain.UserMessageFor(err),
		})
	case domain.IsUpstreamAuth(err):
		c.JSON(consts.StatusUnauthorized, Response{
			Code:    "UPSTREAM_AUTH",
			Message: domain.UserMessageFor(err),
		})
	case domain.IsUpstreamRateLimited(err):
		c.JSON(consts.StatusTooManyRequests, Response{
			Code:    "UPSTREAM_RATE_LIMITED",
			Message: domain.UserMessageFor(err),
		})
	default:
		c.JSON(consts.StatusInternalServerError, Response{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		})
	}
}

// BadRequestResponse writes a 400 with an explicit message.
func BadRequestResponse(c *app.RequestContext, message string) {
	c.JSON(consts.StatusBadRequest, Response{
		Code:    "BAD_REQUEST",
		Message: message,
	})
}

// ListResponse wraps list payloads.
type ListResponse struct {
	Items      interface{} `json:"items"`
	TotalCount int         `json:"totalCount"`
}
