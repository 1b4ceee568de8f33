package server

import (
	"bufio"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// UploadTransactions accepts a multipart CSV upload, checks only the request
// boundary here, and hands the payload to the async runner. Row-level
// validation happens inside the task so bad rows never block good ones.
func (s *Server) UploadTransactions(c *gin.Context) {
	if s.uploadLimiter.Enabled() {
		allowed, err := s.uploadLimiter.AllowUpload(c.Request.Context(), c.ClientIP())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !allowed {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
	}

	header, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "file_required", "no file provided"))
		return
	}

	if !strings.EqualFold(strings.TrimSpace(filepath.Ext(header.Filename)), ".csv") {
		AbortWithError(c, newValidationError("file", "invalid_extension", "file must have a .csv extension"))
		return
	}

	if header.Size > s.cfg.MaxUploadBytes {
		AbortWithError(c, ErrPayloadTooLarge)
		return
	}

	file, err := header.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer file.Close()

	// LimitReader guards against lying Content-Length headers.
	payload, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if int64(len(payload)) > s.cfg.MaxUploadBytes {
		AbortWithError(c, ErrPayloadTooLarge)
		return
	}
	if len(payload) == 0 {
		AbortWithError(c, newValidationError("file", "empty_file", "file cannot be empty"))
		return
	}

	if !looksLikeCSV(payload) {
		AbortWithError(c, newValidationError("file", "invalid_format", "file does not appear to be valid CSV"))
		return
	}

	taskID, err := s.taskRunner.Submit(c.Request.Context(), payload)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"task_id": taskID})
}

// looksLikeCSV is a cheap sniff on the first line. Full parsing is deferred
// to the ingestion task.
func looksLikeCSV(payload []byte) bool {
	scanner := bufio.NewScanner(strings.NewReader(string(payload)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		return false
	}
	first := strings.TrimSpace(scanner.Text())
	if first == "" {
		return false
	}
	return strings.Contains(first, ",")
}
