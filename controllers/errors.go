package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/phillip/evently-go/actions"
)

// respondError is the single place action errors become HTTP responses.
func respondError(c *gin.Context, logger zerolog.Logger, err error) {
	switch {
	case errors.Is(err, actions.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, actions.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, actions.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// queryInt reads an optional positive integer query parameter.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, actions.ValidationError{Field: name, Message: "must be a non-negative number"}
	}
	return n, nil
}

func pageParams(c *gin.Context) (page, limit int, err error) {
	if page, err = queryInt(c, "page"); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(c, "limit"); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// notModified sets the ETag header and reports whether the client copy is
// current.
func notModified(c *gin.Context, etag string) bool {
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	c.Header("ETag", etag)
	return false
}
