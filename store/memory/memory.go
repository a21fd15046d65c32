// Package memory is an in-process implementation of the store contracts.
// It keeps the same ordering, filtering and population rules as the Mongo
// repositories.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/evently-go/models"
	"github.com/phillip/evently-go/store"
)

type Store struct {
	mu         sync.RWMutex
	users      map[primitive.ObjectID]models.User
	categories map[primitive.ObjectID]models.Category
	events     map[primitive.ObjectID]models.Event
	orders     map[primitive.ObjectID]models.Order
}

func New() *Store {
	return &Store{
		users:      map[primitive.ObjectID]models.User{},
		categories: map[primitive.ObjectID]models.Category{},
		events:     map[primitive.ObjectID]models.Event{},
		orders:     map[primitive.ObjectID]models.Order{},
	}
}

// Users

func (s *Store) InsertUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ClerkID == user.ClerkID || u.Email == user.Email || u.Username == user.Username {
			return models.User{}, store.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) FindUserByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) FindUserByClerkID(_ context.Context, clerkID string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ClerkID == clerkID {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (s *Store) UpdateUserProfile(_ context.Context, clerkID string, profile models.UserProfile) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *models.User
	for _, u := range s.users {
		if u.ClerkID == clerkID {
			u := u
			target = &u
		} else if u.Username == profile.Username {
			return models.User{}, store.ErrDuplicate
		}
	}
	if target == nil {
		return models.User{}, store.ErrNotFound
	}
	target.FirstName = profile.FirstName
	target.LastName = profile.LastName
	target.Username = profile.Username
	target.Photo = profile.Photo
	s.users[target.ID] = *target
	return *target, nil
}

// Categories

func (s *Store) InsertCategory(_ context.Context, category models.Category) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.Name == category.Name {
			return models.Category{}, store.ErrDuplicate
		}
	}
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	s.categories[category.ID] = category
	return category, nil
}

func (s *Store) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) FindCategoryByName(_ context.Context, name string) (models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return models.Category{}, store.ErrNotFound
}

// Events

func (s *Store) InsertEvent(_ context.Context, event models.Event) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *Store) FindEventByID(_ context.Context, id primitive.ObjectID) (models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return models.Event{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) FindEventViewByID(_ context.Context, id primitive.ObjectID) (models.EventView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return models.EventView{}, store.ErrNotFound
	}
	return s.populate(e), nil
}

func (s *Store) ListEventViews(_ context.Context, filter store.EventFilter, page store.Page) ([]models.EventView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.matchEvents(filter)
	matched = window(matched, page)
	views := make([]models.EventView, 0, len(matched))
	for _, e := range matched {
		views = append(views, s.populate(e))
	}
	return views, nil
}

func (s *Store) CountEvents(_ context.Context, filter store.EventFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.matchEvents(filter))), nil
}

func (s *Store) UpdateEvent(_ context.Context, id, organizer primitive.ObjectID, update store.EventUpdate) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok || e.Organizer != organizer {
		return models.Event{}, store.ErrNotFound
	}
	e.EventFields = update.EventFields
	e.Category = update.Category
	e.UpdatedAt = update.UpdatedAt
	s.events[id] = e
	return e, nil
}

func (s *Store) DeleteEvent(_ context.Context, id primitive.ObjectID, organizer *primitive.ObjectID) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok || (organizer != nil && e.Organizer != *organizer) {
		return models.Event{}, store.ErrNotFound
	}
	delete(s.events, id)
	return e, nil
}

// Orders

func (s *Store) InsertOrder(_ context.Context, order models.Order) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.StripeID != "" {
		for _, o := range s.orders {
			if o.StripeID == order.StripeID {
				return models.Order{}, store.ErrDuplicate
			}
		}
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *Store) ListOrderViews(_ context.Context, buyer primitive.ObjectID, page store.Page) ([]models.OrderView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := s.ordersOf(buyer)
	sort.Slice(orders, func(i, j int) bool {
		return newerFirst(orders[i].CreatedAt.UnixNano(), orders[j].CreatedAt.UnixNano(), orders[i].ID, orders[j].ID)
	})
	orders = window(orders, page)

	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		view := models.OrderView{
			ID:          o.ID,
			StripeID:    o.StripeID,
			TotalAmount: o.TotalAmount,
			Buyer:       o.Buyer,
			CreatedAt:   o.CreatedAt,
		}
		if e, ok := s.events[o.Event]; ok {
			ev := s.populate(e)
			view.Event = &ev
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Store) CountOrders(_ context.Context, buyer primitive.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.ordersOf(buyer))), nil
}

func (s *Store) ordersOf(buyer primitive.ObjectID) []models.Order {
	var out []models.Order
	for _, o := range s.orders {
		if o.Buyer == buyer {
			out = append(out, o)
		}
	}
	return out
}

func (s *Store) matchEvents(f store.EventFilter) []models.Event {
	var out []models.Event
	search := strings.ToLower(f.TitleSearch)
	for _, e := range s.events {
		if f.OrganizerID != nil && e.Organizer != *f.OrganizerID {
			continue
		}
		if f.CategoryID != nil && e.Category != *f.CategoryID {
			continue
		}
		if f.ExcludeID != nil && e.ID == *f.ExcludeID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Title), search) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano(), out[i].ID, out[j].ID)
	})
	return out
}

func (s *Store) populate(e models.Event) models.EventView {
	view := models.EventView{
		ID:          e.ID,
		EventFields: e.EventFields,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if u, ok := s.users[e.Organizer]; ok {
		view.Organizer = &models.OrganizerSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
	}
	if c, ok := s.categories[e.Category]; ok {
		view.Category = &models.CategorySummary{ID: c.ID, Name: c.Name}
	}
	return view
}

func newerFirst(a, b int64, idA, idB primitive.ObjectID) bool {
	if a != b {
		return a > b
	}
	return idA.Hex() > idB.Hex()
}

// window mirrors the Mongo pipeline: a non-positive skip is no skip.
func window[T any](items []T, page store.Page) []T {
	if page.Skip < 0 {
		page.Skip = 0
	}
	if page.Skip >= int64(len(items)) {
		return []T{}
	}
	items = items[page.Skip:]
	if page.Limit > 0 && page.Limit < int64(len(items)) {
		items = items[:page.Limit]
	}
	return items
}
