package event

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/dshills/gamelib/internal/id"
)

// Key identifies a single registered callback.
type Key int64

// Owner identifies the entity on whose behalf callbacks were registered.
type Owner int64

// entry is one registered callback.
// call and predicate are type-erased wrappers around the typed functions.
type entry struct {
	key       Key
	tag       reflect.Type
	call      func(event any)
	predicate func(event any) bool
	once      bool

	owner Owner
	owned bool

	// removed is set when the entry leaves the table, so an in-flight
	// dispatch holding a snapshot skips it.
	removed bool
}

// Dispatcher routes events to callbacks registered for the event's type.
// The zero value is not usable; create one with NewDispatcher.
type Dispatcher struct {
	callbacks map[reflect.Type]map[Key]*entry
	byKey     map[Key]*entry
	owners    map[Owner]map[Key]struct{}
	keys      *id.Allocator[Key]
	ownerIDs  *id.Allocator[Owner]
}

// NewDispatcher creates an empty dispatcher. Keys start at 0.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		callbacks: make(map[reflect.Type]map[Key]*entry),
		byKey:     make(map[Key]*entry),
		owners:    make(map[Owner]map[Key]struct{}),
		keys:      id.New[Key](0, 1),
		ownerIDs:  id.New[Owner](0, 1),
	}
}

// NewOwner allocates an owner that no other caller of NewOwner on d holds.
// Subsystems sharing a dispatcher draw their owners here so that
// UnregisterAllOwned stays selective between them. Owners start at 0 and
// released ones are reused smallest-first.
//
// Returns ErrOverflow if the owner space is exhausted.
func (d *Dispatcher) NewOwner() (Owner, error) {
	owner, err := d.ownerIDs.Acquire()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOverflow, err)
	}
	return owner, nil
}

// ReleaseOwner removes every callback owned by owner and returns owner for
// reuse by NewOwner. Owners that were not allocated by NewOwner only lose
// their callbacks.
func (d *Dispatcher) ReleaseOwner(owner Owner) {
	d.UnregisterAllOwned(owner)
	d.ownerIDs.Release(owner)
}

// Register adds fn to the callbacks run when an event of type E is dispatched.
//
// Returns ErrOverflow if the key space is exhausted, and ErrCreation if the
// callback could not be stored.
func Register[E any](d *Dispatcher, fn func(E), opts ...Option[E]) (Key, error) {
	return register(d, fn, 0, false, opts)
}

// RegisterOwned is like Register and additionally records the returned key
// under owner, so UnregisterAllOwned(owner) removes it.
func RegisterOwned[E any](d *Dispatcher, owner Owner, fn func(E), opts ...Option[E]) (Key, error) {
	return register(d, fn, owner, true, opts)
}

// NoArg adapts a callback that ignores the event value.
func NoArg[E any](fn func()) func(E) {
	if fn == nil {
		return nil
	}
	return func(E) { fn() }
}

func register[E any](d *Dispatcher, fn func(E), owner Owner, owned bool, opts []Option[E]) (Key, error) {
	if fn == nil {
		return 0, ErrNilCallback
	}

	var cfg callbackConfig[E]
	for _, opt := range opts {
		opt(&cfg)
	}

	key, err := d.keys.Acquire()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOverflow, err)
	}

	tag := reflect.TypeFor[E]()
	if _, exists := d.byKey[key]; exists {
		// The key is held by a live entry, so it must not go back to the free set.
		return 0, &CreationError{Key: key, Type: tag.String()}
	}

	e := &entry{
		key:   key,
		tag:   tag,
		once:  cfg.once,
		owner: owner,
		owned: owned,
		call: func(event any) {
			typed, _ := event.(E)
			fn(typed)
		},
	}
	if pred := cfg.predicate; pred != nil {
		e.predicate = func(event any) bool {
			typed, _ := event.(E)
			return pred(typed)
		}
	}

	bucket := d.callbacks[tag]
	if bucket == nil {
		bucket = make(map[Key]*entry)
		d.callbacks[tag] = bucket
	}
	bucket[key] = e
	d.byKey[key] = e

	if owned {
		keys := d.owners[owner]
		if keys == nil {
			keys = make(map[Key]struct{})
			d.owners[owner] = keys
		}
		keys[key] = struct{}{}
	}

	return key, nil
}

// Dispatch invokes every callback registered for type E whose predicate
// accepts event. It returns the number of callbacks invoked.
// Dispatching a type with no callbacks is a no-op.
func Dispatch[E any](d *Dispatcher, event E) int {
	bucket := d.callbacks[reflect.TypeFor[E]()]
	if len(bucket) == 0 {
		return 0
	}

	snapshot := make([]*entry, 0, len(bucket))
	for _, e := range bucket {
		snapshot = append(snapshot, e)
	}
	slices.SortFunc(snapshot, func(a, b *entry) int {
		return cmp.Compare(a.key, b.key)
	})

	invoked := 0
	for _, e := range snapshot {
		if e.removed {
			continue
		}
		if e.predicate != nil && !e.predicate(event) {
			continue
		}
		if e.once {
			d.remove(e)
		}
		e.call(event)
		invoked++
	}
	return invoked
}

// Unregister removes the callback referred to by key.
// It is a no-op if key is not registered. If the callback was registered
// with an owner, the owner's record of the key is removed as well.
func (d *Dispatcher) Unregister(key Key) {
	if e, ok := d.byKey[key]; ok {
		d.remove(e)
	}
}

// UnregisterOwned removes the callback referred to by key if it is owned by
// owner. It is a no-op if owner does not own key.
func (d *Dispatcher) UnregisterOwned(owner Owner, key Key) {
	e, ok := d.byKey[key]
	if !ok || !e.owned || e.owner != owner {
		return
	}
	d.remove(e)
}

// UnregisterAllOwned removes every callback owned by owner.
func (d *Dispatcher) UnregisterAllOwned(owner Owner) {
	keys, ok := d.owners[owner]
	if !ok {
		return
	}
	for key := range keys {
		if e, ok := d.byKey[key]; ok {
			d.remove(e)
		}
	}
	delete(d.owners, owner)
}

// remove drops e from the callback table and the ownership index, then
// returns its key to the allocator.
func (d *Dispatcher) remove(e *entry) {
	if e.removed {
		return
	}
	e.removed = true

	if bucket, ok := d.callbacks[e.tag]; ok {
		delete(bucket, e.key)
		if len(bucket) == 0 {
			delete(d.callbacks, e.tag)
		}
	}
	delete(d.byKey, e.key)

	if e.owned {
		if keys, ok := d.owners[e.owner]; ok {
			delete(keys, e.key)
			if len(keys) == 0 {
				delete(d.owners, e.owner)
			}
		}
	}

	d.keys.Release(e.key)
}

// Registered reports whether key refers to a registered callback.
func (d *Dispatcher) Registered(key Key) bool {
	_, ok := d.byKey[key]
	return ok
}

// Count returns the total number of registered callbacks.
func (d *Dispatcher) Count() int {
	return len(d.byKey)
}

// CountFor returns the number of callbacks registered for event type E.
func CountFor[E any](d *Dispatcher) int {
	return len(d.callbacks[reflect.TypeFor[E]()])
}

// Owned returns the keys owned by owner in ascending order.
func (d *Dispatcher) Owned(owner Owner) []Key {
	keys := d.owners[owner]
	if len(keys) == 0 {
		return nil
	}
	result := make([]Key, 0, len(keys))
	for key := range keys {
		result = append(result, key)
	}
	slices.Sort(result)
	return result
}

// Clear removes every callback and resets key allocation.
// Owners allocated with NewOwner stay allocated.
func (d *Dispatcher) Clear() {
	for _, e := range d.byKey {
		e.removed = true
	}
	d.callbacks = make(map[reflect.Type]map[Key]*entry)
	d.byKey = make(map[Key]*entry)
	d.owners = make(map[Owner]map[Key]struct{})
	d.keys.Reset()
}
