package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/evently-go/actions"
	"github.com/phillip/evently-go/models"
)

// ---------------- WEBHOOKS ----------------

// UserCreatedWebhook mirrors a newly registered identity-provider account.
func UserCreatedWebhook(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.User
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, app.Logger, actions.ValidationError{Field: "body", Message: err.Error()})
			return
		}
		input.ID = primitive.NilObjectID

		user, err := app.Users.CreateUser(c.Request.Context(), input)
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func UserUpdatedWebhook(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var profile models.UserProfile
		if err := c.ShouldBindJSON(&profile); err != nil {
			respondError(c, app.Logger, actions.ValidationError{Field: "body", Message: err.Error()})
			return
		}

		user, err := app.Users.UpdateUser(c.Request.Context(), c.Param("clerkId"), profile)
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// ---------------- GET ----------------
func GetUser(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := app.Users.GetUserByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}
		c.JSON(http.StatusOK, models.OrganizerSummary{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		})
	}
}
