package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phillip/evently-go/actions"
)

// ---------------- CREATE ----------------
func CreateOrder(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			EventID     string `json:"eventId"`
			TotalAmount string `json:"totalAmount"`
			StripeID    string `json:"stripeId"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, app.Logger, actions.ValidationError{Field: "body", Message: err.Error()})
			return
		}

		order, err := app.Orders.CreateOrder(c.Request.Context(), actions.CreateOrderParams{
			EventID:     input.EventID,
			BuyerID:     c.GetString("user_id"),
			TotalAmount: input.TotalAmount,
			StripeID:    input.StripeID,
		})
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// ---------------- MY TICKETS ----------------
func MyOrders(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := pageParams(c)
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}

		env, err := app.Orders.GetOrdersByUser(c.Request.Context(), actions.GetOrdersByUserParams{
			UserID: c.GetString("user_id"),
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			respondError(c, app.Logger, err)
			return
		}
		c.JSON(http.StatusOK, env)
	}
}
