package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    data,
	})
}

func Fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}

// FailErr maps a sentinel error to its HTTP status. Unknown errors become 500.
func FailErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Fail(c, http.StatusNotFound, 40400, err.Error())
	case errors.Is(err, ErrConflict):
		Fail(c, http.StatusConflict, 40900, err.Error())
	case errors.Is(err, ErrForbidden):
		Fail(c, http.StatusForbidden, 40300, err.Error())
	case errors.Is(err, ErrNotConfigured):
		Fail(c, http.StatusNotFound, 40410, err.Error())
	default:
		Fail(c, http.StatusInternalServerError, 50000, err.Error())
	}
}
