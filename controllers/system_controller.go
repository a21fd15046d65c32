package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func Health(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if app.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := app.Ping(ctx); err != nil {
				app.Logger.Warn().Err(err).Msg("health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Revalidation reports the current version of a view path.
func Revalidation(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Query("path")
		if path == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
			return
		}
		c.JSON(http.StatusOK, app.Revalidator.Lookup(path))
	}
}
