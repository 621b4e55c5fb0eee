package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"factcheck/internal/claims"
	"factcheck/internal/services"
)

var errNotFound = errors.New("not found")

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bindURL decodes the request body and returns the trimmed url. It writes the
// 400 response itself and reports false when the url is missing.
func (h *handler) bindURL(c *gin.Context) (string, bool) {
	var req VideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, errMissingURL)
		return "", false
	}
	url := strings.TrimSpace(req.URL)
	if url == "" {
		respondError(c, http.StatusBadRequest, CodeBadRequest, errMissingURL)
		return "", false
	}
	return url, true
}

func (h *handler) videoInfo(c *gin.Context) {
	url, ok := h.bindURL(c)
	if !ok {
		return
	}
	info, err := h.pipeline.VideoInfo(c.Request.Context(), url)
	if err != nil {
		respondPipelineError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, VideoInfoResponse{Title: info.Title, ThumbnailURL: info.ThumbnailURL})
}

func (h *handler) transcribe(c *gin.Context) {
	url, ok := h.bindURL(c)
	if !ok {
		return
	}
	transcript, err := h.pipeline.Transcribe(c.Request.Context(), url)
	if err != nil {
		respondPipelineError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, TranscriptResponse{Transcript: transcript.String()})
}

func (h *handler) extract(c *gin.Context) {
	url, ok := h.bindURL(c)
	if !ok {
		return
	}
	result, err := h.pipeline.Extract(c.Request.Context(), url)
	if err != nil {
		var transcript *string
		if errors.Is(err, services.ErrGeneration) {
			text := result.Transcript.String()
			transcript = &text
		}
		respondPipelineError(c, err, transcript)
		return
	}
	list := result.Claims
	if list == nil {
		list = claims.ClaimList{}
	}
	c.JSON(http.StatusOK, ClaimsResponse{Transcript: result.Transcript.String(), Claims: list})
}

func (h *handler) serviceStatus(c *gin.Context) {
	if h.status == nil {
		respondError(c, http.StatusNotFound, "not_found", errNotFound)
		return
	}
	c.JSON(http.StatusOK, h.status(c.Request.Context()))
}
