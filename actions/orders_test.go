package actions

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/evently-go/models"
)

type sentEmail struct {
	to, name, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (m *fakeMailer) SendEmail(_ context.Context, to, name, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentEmail{to, name, subject, body})
	return m.err
}

func TestCreateOrderAndListPopulated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvents(t, 1, f.organizer, f.music)[0]
	mailer := &fakeMailer{}
	orders := NewOrderService(f.store, f.store, f.store, WithMailer(mailer), WithClock(tickingClock()))

	order, err := orders.CreateOrder(ctx, CreateOrderParams{
		EventID:     event.ID.Hex(),
		BuyerID:     f.other.ID.Hex(),
		TotalAmount: "25",
		StripeID:    "cs_test_1",
	})
	require.NoError(t, err)
	require.Equal(t, "25", order.TotalAmount)

	require.Len(t, mailer.sent, 1)
	require.Equal(t, "grace@example.com", mailer.sent[0].to)
	require.Equal(t, "Grace", mailer.sent[0].name)
	require.Contains(t, mailer.sent[0].subject, "Music event 00")
	require.Contains(t, mailer.sent[0].body, order.ID.Hex())

	env, err := orders.GetOrdersByUser(ctx, GetOrdersByUserParams{UserID: f.other.ID.Hex()})
	require.NoError(t, err)
	require.Equal(t, 1, env.TotalPages)
	require.Len(t, env.Data, 1)
	require.NotNil(t, env.Data[0].Event)
	require.Equal(t, event.ID, env.Data[0].Event.ID)
	require.Equal(t, "Ada", env.Data[0].Event.Organizer.FirstName)
	require.Equal(t, "Music", env.Data[0].Event.Category.Name)
}

func TestCreateOrderFreeEvent(t *testing.T) {
	f := newFixture(t)
	payload := validPayload(f.music.ID, "Open Rehearsal")
	payload.IsFree = true
	payload.Price = ""
	event, err := f.svc.CreateEvent(context.Background(), CreateEventParams{UserID: f.organizer.ID.Hex(), Event: payload})
	require.NoError(t, err)

	orders := NewOrderService(f.store, f.store, f.store)
	order, err := orders.CreateOrder(context.Background(), CreateOrderParams{
		EventID:     event.ID.Hex(),
		BuyerID:     f.other.ID.Hex(),
		TotalAmount: "10",
	})

	require.NoError(t, err)
	require.Equal(t, "0", order.TotalAmount)
}

func TestCreateOrderMissingReferences(t *testing.T) {
	f := newFixture(t)
	event := f.createEvents(t, 1, f.organizer, f.music)[0]
	orders := NewOrderService(f.store, f.store, f.store)

	_, err := orders.CreateOrder(context.Background(), CreateOrderParams{
		EventID: primitive.NewObjectID().Hex(),
		BuyerID: f.other.ID.Hex(),
	})
	var nf NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "event", nf.Resource)

	_, err = orders.CreateOrder(context.Background(), CreateOrderParams{
		EventID: event.ID.Hex(),
		BuyerID: primitive.NewObjectID().Hex(),
	})
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "buyer", nf.Resource)
}

func TestCreateOrderDuplicateCheckout(t *testing.T) {
	f := newFixture(t)
	event := f.createEvents(t, 1, f.organizer, f.music)[0]
	orders := NewOrderService(f.store, f.store, f.store)
	params := CreateOrderParams{
		EventID:     event.ID.Hex(),
		BuyerID:     f.other.ID.Hex(),
		TotalAmount: "25",
		StripeID:    "cs_test_dup",
	}

	_, err := orders.CreateOrder(context.Background(), params)
	require.NoError(t, err)
	_, err = orders.CreateOrder(context.Background(), params)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateOrderSurvivesMailerFailure(t *testing.T) {
	f := newFixture(t)
	event := f.createEvents(t, 1, f.organizer, f.music)[0]
	mailer := &fakeMailer{err: errors.New("smtp down")}
	orders := NewOrderService(f.store, f.store, f.store, WithMailer(mailer))

	order, err := orders.CreateOrder(context.Background(), CreateOrderParams{
		EventID:     event.ID.Hex(),
		BuyerID:     f.other.ID.Hex(),
		TotalAmount: "25",
	})

	require.NoError(t, err)
	require.False(t, order.ID.IsZero())
	require.Len(t, mailer.sent, 1)
}

func TestGetOrdersByUserPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	events := f.createEvents(t, 4, f.organizer, f.music)
	orders := NewOrderService(f.store, f.store, f.store, WithClock(tickingClock()))

	var created []models.Order
	for _, e := range events {
		o, err := orders.CreateOrder(ctx, CreateOrderParams{EventID: e.ID.Hex(), BuyerID: f.other.ID.Hex(), TotalAmount: "25"})
		require.NoError(t, err)
		created = append(created, o)
	}

	env, err := orders.GetOrdersByUser(ctx, GetOrdersByUserParams{UserID: f.other.ID.Hex(), Page: 2})
	require.NoError(t, err)
	require.Equal(t, 2, env.TotalPages)
	require.Len(t, env.Data, 1)
	require.Equal(t, created[0].ID, env.Data[0].ID)

	none, err := orders.GetOrdersByUser(ctx, GetOrdersByUserParams{UserID: f.organizer.ID.Hex()})
	require.NoError(t, err)
	require.Empty(t, none.Data)
	require.Equal(t, 0, none.TotalPages)
}
