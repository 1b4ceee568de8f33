package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	taskdomain "github.com/smallbiznis/ledgerline/internal/task/domain"
)

func (s *Server) GetTaskByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	t, err := s.taskRunner.Poll(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, taskdomain.ErrNotFound) {
			AbortWithError(c, newNotFoundError("Task not found."))
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": t})
}
