package knowledge

import (
	"time"

	"github.com/starford/obweb/internal/models"
	"github.com/starford/obweb/internal/oid"
)

// Option configures a Store.
type Option func(*options)

type options struct {
	tiers           int
	defaultPriority int8
	ttls            []time.Duration
	maxObjects      int
	idFloor         oid.OID
	now             func() time.Time
	onChange        func(models.Change)
}

func defaultOptions() options {
	return options{
		tiers:   4,
		idFloor: oid.FromUint64(1),
		now:     time.Now,
	}
}

// WithTiers sets the number of expiry tiers. Values below 1 are ignored.
func WithTiers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.tiers = n
		}
	}
}

// WithDefaultPriority sets the priority used by Consider.
func WithDefaultPriority(p int8) Option {
	return func(o *options) {
		o.defaultPriority = p
	}
}

// WithTTLs sets how long an entry of each tier may go unseen before Sweep
// evicts it. A zero or missing TTL disables time-based expiry for that tier.
func WithTTLs(ttls ...time.Duration) Option {
	return func(o *options) {
		o.ttls = ttls
	}
}

// WithMaxObjects bounds the cache size. Zero means unbounded.
func WithMaxObjects(n int) Option {
	return func(o *options) {
		o.maxObjects = n
	}
}

// WithIDFloor sets the initial value of the id counter.
func WithIDFloor(id oid.OID) Option {
	return func(o *options) {
		o.idFloor = id
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithOnChange registers a callback invoked after every mutation, outside
// the store lock.
func WithOnChange(fn func(models.Change)) Option {
	return func(o *options) {
		o.onChange = fn
	}
}
