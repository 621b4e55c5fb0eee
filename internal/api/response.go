package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"factcheck/internal/services"
)

// Codes for errors raised by the boundary itself.
const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeRateLimited  = "rate_limited"
)

const missingURLMessage = "Missing `url`"

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// respondPipelineError reports a pipeline failure with its diagnostic kind.
// Every pipeline failure is a 500; the kind tells callers which stage failed.
func respondPipelineError(c *gin.Context, err error, transcript *string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorEnvelope{
		Error:      APIError{Message: pipelineMessage(err), Code: services.Kind(err)},
		Transcript: transcript,
	})
}

func pipelineMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "unknown error"
	}
	return msg
}

var errMissingURL = errors.New(missingURLMessage)
