package actions

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/evently-go/models"
	"github.com/phillip/evently-go/store"
)

type OrderStore interface {
	InsertOrder(ctx context.Context, order models.Order) (models.Order, error)
	ListOrderViews(ctx context.Context, buyer primitive.ObjectID, page store.Page) ([]models.OrderView, error)
	CountOrders(ctx context.Context, buyer primitive.ObjectID) (int64, error)
}

type CreateOrderParams struct {
	EventID     string
	BuyerID     string
	TotalAmount string
	StripeID    string
}

type GetOrdersByUserParams struct {
	UserID string
	Page   int
	Limit  int
}

// OrderService records ticket purchases and lists them back to buyers.
type OrderService struct {
	orders OrderStore
	events EventStore
	users  UserStore
	settings
}

func NewOrderService(orders OrderStore, events EventStore, users UserStore, opts ...Option) *OrderService {
	return &OrderService{
		orders:   orders,
		events:   events,
		users:    users,
		settings: newSettings(opts),
	}
}

// CreateOrder records a purchase. A receipt is mailed when a mailer is
// configured; delivery failures are logged and do not fail the order.
func (s *OrderService) CreateOrder(ctx context.Context, params CreateOrderParams) (order models.Order, err error) {
	defer observe("create_order", time.Now(), &err)

	eventID, err := parseID("eventId", params.EventID)
	if err != nil {
		return models.Order{}, err
	}
	buyerID, err := parseID("buyerId", params.BuyerID)
	if err != nil {
		return models.Order{}, err
	}

	event, err := s.events.FindEventViewByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Order{}, NotFoundError{Resource: "event", ID: params.EventID}
		}
		return models.Order{}, persistence("find event", err)
	}
	buyer, err := s.users.FindUserByID(ctx, buyerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Order{}, NotFoundError{Resource: "buyer", ID: params.BuyerID}
		}
		return models.Order{}, persistence("find buyer", err)
	}

	totalAmount := params.TotalAmount
	if event.IsFree {
		totalAmount = "0"
	}
	order, err = s.orders.InsertOrder(ctx, models.Order{
		StripeID:    params.StripeID,
		TotalAmount: totalAmount,
		Event:       eventID,
		Buyer:       buyerID,
		CreatedAt:   s.now(),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.Order{}, ValidationError{Field: "stripeId", Message: "already recorded"}
		}
		return models.Order{}, persistence("create order", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.Hex()).
		Str("event_id", params.EventID).
		Str("buyer_id", params.BuyerID).
		Msg("order created")

	s.sendReceipt(ctx, buyer, event, order)
	return order, nil
}

// GetOrdersByUser lists the buyer's orders with their events populated.
func (s *OrderService) GetOrdersByUser(ctx context.Context, params GetOrdersByUserParams) (env Envelope[models.OrderView], err error) {
	defer observe("list_user_orders", time.Now(), &err)

	buyerID, err := parseID("userId", params.UserID)
	if err != nil {
		return Envelope[models.OrderView]{}, err
	}
	limit := normalizeLimit(params.Limit, defaultPageLimit)

	views, err := s.orders.ListOrderViews(ctx, buyerID, pageWindow(params.Page, limit))
	if err != nil {
		return Envelope[models.OrderView]{}, persistence("list orders", err)
	}
	count, err := s.orders.CountOrders(ctx, buyerID)
	if err != nil {
		return Envelope[models.OrderView]{}, persistence("count orders", err)
	}
	return Envelope[models.OrderView]{Data: views, TotalPages: TotalPages(count, limit)}, nil
}

func (s *OrderService) sendReceipt(ctx context.Context, buyer models.User, event models.EventView, order models.Order) {
	if s.mailer == nil {
		return
	}
	name := buyer.FirstName
	if name == "" {
		name = buyer.Username
	}
	subject := fmt.Sprintf("Your ticket for %s", event.Title)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your order for <strong>%s</strong> on %s is confirmed.</p><p>Order: %s<br>Total: %s</p>",
		html.EscapeString(name),
		html.EscapeString(event.Title),
		event.StartDateTime.Format("Mon, 02 Jan 2006 15:04 MST"),
		order.ID.Hex(),
		html.EscapeString(order.TotalAmount),
	)
	if err := s.mailer.SendEmail(ctx, buyer.Email, name, subject, body); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.Hex()).Msg("receipt email failed")
	}
}
