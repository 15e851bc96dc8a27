package httputil

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

var errInvalidLimit = errors.New("invalid limit parameter: must be an integer")

// ParsePagination reads the opaque "cursor" and the "limit" query parameters.
// A missing limit yields defaultLimit and any other value is clamped to
// [1, maxLimit]. The cursor is returned as-is for the caller to decode.
func ParsePagination(c *gin.Context, defaultLimit, maxLimit int) (cursor string, limit int, err error) {
	cursor = c.Query("cursor")

	limitStr, ok := c.GetQuery("limit")
	if !ok {
		return cursor, defaultLimit, nil
	}

	limit, err = strconv.Atoi(limitStr)
	if err != nil {
		return "", 0, errInvalidLimit
	}

	return cursor, max(1, min(limit, maxLimit)), nil
}
