package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ParsePaginationParams reads the zero-based page_no and page_size query
// parameters. Missing or invalid values fall back to 0 and DefaultPageSize.
func ParsePaginationParams(c *gin.Context) (int, int) {
	pageNo, err := strconv.Atoi(c.DefaultQuery("page_no", "0"))
	if err != nil || pageNo < 0 {
		pageNo = 0
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(DefaultPageSize)))
	if err != nil || pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return pageNo, pageSize
}

func ParseIDParam(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s '%s'", name, raw)
	}
	return id, nil
}
