package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	reportdomain "github.com/smallbiznis/ledgerline/internal/report/domain"
)

func (s *Server) GetCustomerSummary(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	dr, ok := s.bindDateRange(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.CustomerSummary(c.Request.Context(), id, dr)
	if err != nil {
		if errors.Is(err, reportdomain.ErrNoTransactions) {
			AbortWithError(c, newNotFoundError("No transactions found for this customer."))
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductSummary(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	dr, ok := s.bindDateRange(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.ProductSummary(c.Request.Context(), id, dr)
	if err != nil {
		if errors.Is(err, reportdomain.ErrNoTransactions) {
			AbortWithError(c, newNotFoundError("No transactions found for this product."))
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) bindDateRange(c *gin.Context) (reportdomain.DateRange, bool) {
	start, err := parseOptionalTime(c.Query("start_date"), false)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
		return reportdomain.DateRange{}, false
	}

	end, err := parseOptionalTime(c.Query("end_date"), true)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
		return reportdomain.DateRange{}, false
	}

	return reportdomain.DateRange{Start: start, End: end}, true
}
