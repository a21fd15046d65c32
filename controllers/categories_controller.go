package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phillip/evently-go/actions"
)

func ListCategories(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := app.Categories.GetAllCategories(c.Request.Context())
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

func CreateCategory(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, app.Logger, actions.ValidationError{Field: "body", Message: err.Error()})
			return
		}

		category, err := app.Categories.CreateCategory(c.Request.Context(), input.Name)
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}
