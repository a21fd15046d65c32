package actions

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Revalidator refreshes whatever view a path hint names after a mutation.
type Revalidator interface {
	Revalidate(ctx context.Context, path string)
}

// Mailer delivers transactional email.
type Mailer interface {
	SendEmail(ctx context.Context, to, name, subject, htmlBody string) error
}

type nopRevalidator struct{}

func (nopRevalidator) Revalidate(context.Context, string) {}

type settings struct {
	logger              zerolog.Logger
	revalidator         Revalidator
	mailer              Mailer
	listFiltering       bool
	deleteRequiresOwner bool
	now                 func() time.Time
}

type Option func(*settings)

func newSettings(opts []Option) settings {
	s := settings{
		logger:              zerolog.Nop(),
		revalidator:         nopRevalidator{},
		deleteRequiresOwner: true,
		now:                 func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

func WithRevalidator(r Revalidator) Option {
	return func(s *settings) {
		if r != nil {
			s.revalidator = r
		}
	}
}

func WithMailer(m Mailer) Option {
	return func(s *settings) { s.mailer = m }
}

// WithListFiltering makes GetAllEvents apply its query, category and page
// arguments. Without it the listing is always the newest page of all events.
func WithListFiltering(enabled bool) Option {
	return func(s *settings) { s.listFiltering = enabled }
}

// WithDeleteOwnership controls whether DeleteEvent requires the acting user
// to be the organizer.
func WithDeleteOwnership(required bool) Option {
	return func(s *settings) { s.deleteRequiresOwner = required }
}

// WithClock replaces the time source. Readings are truncated to the
// millisecond precision of BSON dates.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = func() time.Time { return now().Truncate(time.Millisecond) }
		}
	}
}
