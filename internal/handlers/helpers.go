// Package handlers holds the gin handlers. Each resource has its own
// handler struct; business rules live in the services they wrap.
package handlers

import (
	"strconv"

	"go-print-erp/internal/apperr"
	"go-print-erp/internal/auth"
	"go-print-erp/internal/middleware"

	"github.com/gin-gonic/gin"
)

func abortWithError(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, apperr.FromBinding(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		abortWithError(c, apperr.FromBinding(err))
		return false
	}
	return true
}

// paramID reads a positive numeric path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		abortWithError(c, apperr.Field(name, name+" must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

func principal(c *gin.Context) (auth.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		abortWithError(c, apperr.Unauthorized("authentication required"))
	}
	return p, ok
}

type messageResponse struct {
	Message string `json:"message"`
}
