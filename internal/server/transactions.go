package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	txdomain "github.com/smallbiznis/ledgerline/internal/transaction/domain"
)

func (s *Server) ListTransactions(c *gin.Context) {
	var req txdomain.ListTransactionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.transactionSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTransactionByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.transactionSvc.GetByID(c.Request.Context(), txdomain.GetTransactionRequest{
		ID: id,
	})
	if err != nil {
		if errors.Is(err, txdomain.ErrNotFound) {
			AbortWithError(c, newNotFoundError("Transaction not found."))
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
