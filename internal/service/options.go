package service

import (
	"time"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/events"
)

// Option configures a service.
type Option func(*Options)

// Options holds the collaborators shared by all services.
type Options struct {
	// Now returns the current time. Injectable for testing.
	Now func() time.Time
	// Location is the timezone whose calendar day counts as "today".
	Location *time.Location
	// Emitter receives an event after every committed mutation. May be nil.
	Emitter events.EventEmitter
}

// NewOptions applies opts over the defaults: time.Now, time.Local and no emitter.
func NewOptions(opts ...Option) Options {
	o := Options{
		Now:      time.Now,
		Location: time.Local,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Now = now
		}
	}
}

// WithLocation sets the timezone used to determine today's date.
func WithLocation(loc *time.Location) Option {
	return func(o *Options) {
		if loc != nil {
			o.Location = loc
		}
	}
}

// WithEmitter publishes an event after every committed mutation.
func WithEmitter(emitter events.EventEmitter) Option {
	return func(o *Options) {
		o.Emitter = emitter
	}
}

// Today returns the current calendar day in o.Location as YYYY-MM-DD.
func (o Options) Today() string {
	return domain.Today(o.Now(), o.Location)
}
