package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// yearFromQuery returns the fiscal year from the mandatory year query
// parameter.
func yearFromQuery(c *gin.Context) (int, error) {
	value := c.Query("year")
	if value == "" {
		return 0, errYearNotSetInQuery
	}

	year, err := strconv.Atoi(value)
	if err != nil {
		return 0, errYearInvalid
	}

	return year, nil
}
