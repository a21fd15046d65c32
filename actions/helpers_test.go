package actions

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/evently-go/models"
	"github.com/phillip/evently-go/store/memory"
)

// tickingClock advances one minute per call so creation order is strict.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Minute)
		return now
	}
}

type recordingRevalidator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingRevalidator) Revalidate(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

type fixture struct {
	store     *memory.Store
	svc       *EventService
	rev       *recordingRevalidator
	organizer models.User
	other     models.User
	music     models.Category
	sports    models.Category
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()

	organizer, err := st.InsertUser(ctx, models.User{
		ClerkID:   "user_ada",
		Email:     "ada@example.com",
		Username:  "ada",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Photo:     "https://img.example.com/ada.png",
	})
	require.NoError(t, err)
	other, err := st.InsertUser(ctx, models.User{
		ClerkID:   "user_grace",
		Email:     "grace@example.com",
		Username:  "grace",
		FirstName: "Grace",
		LastName:  "Hopper",
		Photo:     "https://img.example.com/grace.png",
	})
	require.NoError(t, err)
	music, err := st.InsertCategory(ctx, models.Category{Name: "Music"})
	require.NoError(t, err)
	sports, err := st.InsertCategory(ctx, models.Category{Name: "Sports"})
	require.NoError(t, err)

	rev := &recordingRevalidator{}
	opts = append([]Option{WithRevalidator(rev), WithClock(tickingClock())}, opts...)

	return &fixture{
		store:     st,
		svc:       NewEventService(st, st, st, opts...),
		rev:       rev,
		organizer: organizer,
		other:     other,
		music:     music,
		sports:    sports,
	}
}

func validPayload(category primitive.ObjectID, title string) EventPayload {
	start := time.Date(2026, 11, 1, 19, 0, 0, 0, time.UTC)
	return EventPayload{
		EventFields: models.EventFields{
			Title:         title,
			Description:   "An evening of live music",
			Location:      "Main Hall",
			ImageURL:      "https://img.example.com/event.png",
			StartDateTime: start,
			EndDateTime:   start.Add(3 * time.Hour),
			Price:         "25",
			URL:           "https://example.com/events/night",
		},
		CategoryID: category.Hex(),
	}
}

// createEvents creates n events in order and returns them oldest first.
func (f *fixture) createEvents(t *testing.T, n int, organizer models.User, category models.Category) []models.Event {
	t.Helper()
	out := make([]models.Event, 0, n)
	for i := 0; i < n; i++ {
		event, err := f.svc.CreateEvent(context.Background(), CreateEventParams{
			UserID: organizer.ID.Hex(),
			Event:  validPayload(category.ID, fmt.Sprintf("%s event %02d", category.Name, i)),
			Path:   "/profile",
		})
		require.NoError(t, err)
		out = append(out, event)
	}
	return out
}

func viewIDs(views []models.EventView) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}

func eventIDs(events ...models.Event) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}
