package actions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/evently-go/metrics"
	"github.com/phillip/evently-go/models"
	"github.com/phillip/evently-go/store"
)

type EventStore interface {
	InsertEvent(ctx context.Context, event models.Event) (models.Event, error)
	FindEventByID(ctx context.Context, id primitive.ObjectID) (models.Event, error)
	FindEventViewByID(ctx context.Context, id primitive.ObjectID) (models.EventView, error)
	ListEventViews(ctx context.Context, filter store.EventFilter, page store.Page) ([]models.EventView, error)
	CountEvents(ctx context.Context, filter store.EventFilter) (int64, error)
	UpdateEvent(ctx context.Context, id, organizer primitive.ObjectID, update store.EventUpdate) (models.Event, error)
	DeleteEvent(ctx context.Context, id primitive.ObjectID, organizer *primitive.ObjectID) (models.Event, error)
}

type UserStore interface {
	InsertUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindUserByClerkID(ctx context.Context, clerkID string) (models.User, error)
	UpdateUserProfile(ctx context.Context, clerkID string, profile models.UserProfile) (models.User, error)
}

type CategoryStore interface {
	InsertCategory(ctx context.Context, category models.Category) (models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	FindCategoryByName(ctx context.Context, name string) (models.Category, error)
}

// EventPayload is what an organizer submits. ID is only read by updates.
type EventPayload struct {
	ID string `json:"_id,omitempty"`
	models.EventFields
	CategoryID string `json:"categoryId" validate:"required"`
}

type CreateEventParams struct {
	UserID string
	Event  EventPayload
	Path   string
}

type UpdateEventParams struct {
	UserID string
	Event  EventPayload
	Path   string
}

type DeleteEventParams struct {
	EventID string
	UserID  string
	Path    string
}

type GetAllEventsParams struct {
	Query    string
	Category string
	Page     int
	Limit    int
}

type GetEventsByUserParams struct {
	UserID string
	Page   int
	Limit  int
}

type GetRelatedEventsByCategoryParams struct {
	CategoryID string
	EventID    string
	Page       int
	Limit      int
}

// EventService is the access layer for events. Each method is one
// independent unit of work against the store.
type EventService struct {
	events     EventStore
	users      UserStore
	categories CategoryStore
	validate   *validator.Validate
	settings
}

func NewEventService(events EventStore, users UserStore, categories CategoryStore, opts ...Option) *EventService {
	return &EventService{
		events:     events,
		users:      users,
		categories: categories,
		validate:   newValidator(),
		settings:   newSettings(opts),
	}
}

// CreateEvent stores a new event organized by params.UserID. The path hint
// is accepted for symmetry with updates and deletes; nothing is revalidated.
func (s *EventService) CreateEvent(ctx context.Context, params CreateEventParams) (created models.Event, err error) {
	defer observe("create_event", time.Now(), &err)

	organizerID, err := parseID("userId", params.UserID)
	if err != nil {
		return models.Event{}, err
	}
	categoryID, err := s.checkPayload(params.Event)
	if err != nil {
		return models.Event{}, err
	}

	if _, err := s.users.FindUserByID(ctx, organizerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Event{}, NotFoundError{Resource: "organizer", ID: params.UserID}
		}
		return models.Event{}, persistence("find organizer", err)
	}

	now := s.now()
	created, err = s.events.InsertEvent(ctx, models.Event{
		EventFields: params.Event.EventFields,
		Organizer:   organizerID,
		Category:    categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return models.Event{}, persistence("create event", err)
	}

	s.logger.Info().
		Str("event_id", created.ID.Hex()).
		Str("organizer_id", params.UserID).
		Msg("event created")
	return created, nil
}

func (s *EventService) GetEventByID(ctx context.Context, eventID string) (view models.EventView, err error) {
	defer observe("get_event", time.Now(), &err)

	id, err := parseID("eventId", eventID)
	if err != nil {
		return models.EventView{}, err
	}
	view, err = s.events.FindEventViewByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.EventView{}, NotFoundError{Resource: "event", ID: eventID}
		}
		return models.EventView{}, persistence("get event", err)
	}
	return view, nil
}

// GetAllEvents lists every event, newest first. Unless list filtering is
// enabled the query, category and page arguments are ignored and the first
// page is always returned.
func (s *EventService) GetAllEvents(ctx context.Context, params GetAllEventsParams) (env Envelope[models.EventView], err error) {
	defer observe("list_events", time.Now(), &err)

	limit := normalizeLimit(params.Limit, defaultAllEventsLimit)
	filter := store.EventFilter{}
	page := store.Page{Limit: int64(limit)}

	if s.listFiltering {
		filter.TitleSearch = strings.TrimSpace(params.Query)
		if name := strings.TrimSpace(params.Category); name != "" {
			categoryID, err := s.categoryIDByName(ctx, name)
			if err != nil {
				return Envelope[models.EventView]{}, err
			}
			filter.CategoryID = &categoryID
		}
		page = pageWindow(params.Page, limit)
	}

	return s.list(ctx, "list events", filter, page, limit)
}

func (s *EventService) GetEventsByUser(ctx context.Context, params GetEventsByUserParams) (env Envelope[models.EventView], err error) {
	defer observe("list_user_events", time.Now(), &err)

	userID, err := parseID("userId", params.UserID)
	if err != nil {
		return Envelope[models.EventView]{}, err
	}
	limit := normalizeLimit(params.Limit, defaultPageLimit)
	filter := store.EventFilter{OrganizerID: &userID}

	return s.list(ctx, "list user events", filter, pageWindow(params.Page, limit), limit)
}

// GetRelatedEventsByCategory lists events sharing a category, never
// including the event they are related to.
func (s *EventService) GetRelatedEventsByCategory(ctx context.Context, params GetRelatedEventsByCategoryParams) (env Envelope[models.EventView], err error) {
	defer observe("list_related_events", time.Now(), &err)

	categoryID, err := parseID("categoryId", params.CategoryID)
	if err != nil {
		return Envelope[models.EventView]{}, err
	}
	eventID, err := parseID("eventId", params.EventID)
	if err != nil {
		return Envelope[models.EventView]{}, err
	}
	limit := normalizeLimit(params.Limit, defaultPageLimit)
	filter := store.EventFilter{CategoryID: &categoryID, ExcludeID: &eventID}

	return s.list(ctx, "list related events", filter, pageWindow(params.Page, limit), limit)
}

// UpdateEvent replaces the event's fields on behalf of its organizer. The
// organizer itself is never reassigned. An empty image URL keeps the stored one.
func (s *EventService) UpdateEvent(ctx context.Context, params UpdateEventParams) (updated models.Event, err error) {
	defer observe("update_event", time.Now(), &err)

	userID, err := parseID("userId", params.UserID)
	if err != nil {
		return models.Event{}, err
	}
	eventID, err := parseID("_id", params.Event.ID)
	if err != nil {
		return models.Event{}, err
	}
	categoryID, err := s.checkPayload(params.Event)
	if err != nil {
		return models.Event{}, err
	}

	existing, err := s.ownedEvent(ctx, eventID, userID)
	if err != nil {
		return models.Event{}, err
	}

	fields := params.Event.EventFields
	if fields.ImageURL == "" {
		fields.ImageURL = existing.ImageURL
	}
	updated, err = s.events.UpdateEvent(ctx, eventID, userID, store.EventUpdate{
		EventFields: fields,
		Category:    categoryID,
		UpdatedAt:   s.now(),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Deleted between the ownership check and the write.
			return models.Event{}, NotFoundError{Resource: "event", ID: params.Event.ID}
		}
		return models.Event{}, persistence("update event", err)
	}

	s.revalidator.Revalidate(ctx, params.Path)
	s.logger.Info().
		Str("event_id", params.Event.ID).
		Str("organizer_id", params.UserID).
		Msg("event updated")
	return updated, nil
}

// DeleteEvent removes an event and returns the removed document so callers
// can release what it referenced. When delete ownership is not required
// any caller may delete any event.
func (s *EventService) DeleteEvent(ctx context.Context, params DeleteEventParams) (deleted models.Event, err error) {
	defer observe("delete_event", time.Now(), &err)

	eventID, err := parseID("eventId", params.EventID)
	if err != nil {
		return models.Event{}, err
	}

	var owner *primitive.ObjectID
	if s.deleteRequiresOwner {
		userID, err := parseID("userId", params.UserID)
		if err != nil {
			return models.Event{}, err
		}
		if _, err := s.ownedEvent(ctx, eventID, userID); err != nil {
			return models.Event{}, err
		}
		owner = &userID
	}

	deleted, err = s.events.DeleteEvent(ctx, eventID, owner)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Event{}, NotFoundError{Resource: "event", ID: params.EventID}
		}
		return models.Event{}, persistence("delete event", err)
	}

	s.revalidator.Revalidate(ctx, params.Path)
	s.logger.Info().
		Str("event_id", params.EventID).
		Str("user_id", params.UserID).
		Msg("event deleted")
	return deleted, nil
}

// ownedEvent loads the event and checks that userID organizes it.
func (s *EventService) ownedEvent(ctx context.Context, eventID, userID primitive.ObjectID) (models.Event, error) {
	event, err := s.events.FindEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Event{}, NotFoundError{Resource: "event", ID: eventID.Hex()}
		}
		return models.Event{}, persistence("find event", err)
	}
	if event.Organizer != userID {
		return models.Event{}, AuthorizationError{UserID: userID.Hex(), EventID: eventID.Hex()}
	}
	return event, nil
}

func (s *EventService) checkPayload(payload EventPayload) (primitive.ObjectID, error) {
	if err := validateStruct(s.validate, payload); err != nil {
		return primitive.NilObjectID, err
	}
	return parseID("categoryId", payload.CategoryID)
}

// categoryIDByName resolves a category name. An unknown name yields the nil
// id, which matches no event.
func (s *EventService) categoryIDByName(ctx context.Context, name string) (primitive.ObjectID, error) {
	category, err := s.categories.FindCategoryByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return primitive.NilObjectID, nil
		}
		return primitive.NilObjectID, persistence("find category", err)
	}
	return category.ID, nil
}

func (s *EventService) list(ctx context.Context, op string, filter store.EventFilter, page store.Page, limit int) (Envelope[models.EventView], error) {
	views, err := s.events.ListEventViews(ctx, filter, page)
	if err != nil {
		return Envelope[models.EventView]{}, persistence(op, err)
	}
	count, err := s.events.CountEvents(ctx, filter)
	if err != nil {
		return Envelope[models.EventView]{}, persistence(op, err)
	}
	return Envelope[models.EventView]{Data: views, TotalPages: TotalPages(count, limit)}, nil
}

func observe(action string, start time.Time, err *error) {
	metrics.ObserveAction(action, outcome(*err), start)
}
