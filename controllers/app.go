package controllers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/phillip/evently-go/actions"
	"github.com/phillip/evently-go/revalidate"
	"github.com/phillip/evently-go/utils"
)

// App bundles what the handlers need. Images may be nil when uploads are
// not configured.
type App struct {
	Events      *actions.EventService
	Orders      *actions.OrderService
	Users       *actions.UserService
	Categories  *actions.CategoryService
	Images      *utils.ImageStore
	Revalidator *revalidate.Registry
	Ping        func(ctx context.Context) error
	Logger      zerolog.Logger
}
