package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/cache"
	"github.com/Freeeeeet/boat_booking/internal/events"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/notify"
	"github.com/google/uuid"
)

// DefaultMaxCodeAttempts bounds booking code generation.
const DefaultMaxCodeAttempts = 20

// ScheduleCache caches the public listing of available schedules.
type ScheduleCache interface {
	GetOrLoad(ctx context.Context, filter model.ScheduleFilter, load cache.LoadFunc) ([]*model.Schedule, error)
	Invalidate(ctx context.Context)
}

type noCache struct{}

func (noCache) GetOrLoad(ctx context.Context, _ model.ScheduleFilter, load cache.LoadFunc) ([]*model.Schedule, error) {
	return load(ctx)
}

func (noCache) Invalidate(context.Context) {}

type options struct {
	now             func() time.Time
	codeSource      func() uuid.UUID
	maxCodeAttempts int
	location        *time.Location
	publisher       events.Publisher
	notifier        notify.Notifier
	cache           ScheduleCache
}

type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		now:             time.Now,
		codeSource:      uuid.New,
		maxCodeAttempts: DefaultMaxCodeAttempts,
		location:        time.UTC,
		publisher:       events.Nop{},
		notifier:        notify.Nop{},
		cache:           noCache{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithCodeSource replaces the random token booking codes are derived from.
func WithCodeSource(source func() uuid.UUID) Option {
	return func(o *options) { o.codeSource = source }
}

func WithMaxCodeAttempts(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxCodeAttempts = n
		}
	}
}

// WithLocation sets the zone calendar dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(o *options) {
		if p != nil {
			o.publisher = p
		}
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

func WithScheduleCache(c ScheduleCache) Option {
	return func(o *options) {
		if c != nil {
			o.cache = c
		}
	}
}
