package console

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/dshills/gamelib/internal/event"
)

// ObjectID identifies a console object. It doubles as the owner of the
// object's listeners and is allocated by the console's dispatcher, so
// consoles sharing a dispatcher never hand out the same id.
type ObjectID = event.Owner

// Object is an entity managed by a Console.
type Object interface {
	ID() ObjectID
}

// Creator is implemented by objects that need to run code once they are
// registered, such as adding their own listeners.
type Creator interface {
	OnCreation()
}

// Destroyer is implemented by objects that need to run code after they
// were removed from the console and their listeners were dropped.
type Destroyer interface {
	OnDestroy()
}

// Base carries an object's id and console. Embed it in object types.
type Base struct {
	console *Console
	id      ObjectID
}

// ID returns the object's id.
func (b Base) ID() ObjectID {
	return b.id
}

// Console returns the console the object belongs to.
func (b Base) Console() *Console {
	return b.console
}

// AddCvarListener registers a cvar listener owned by this object.
func (b Base) AddCvarListener(name string, fn func(CvarChanged)) (event.Key, error) {
	return b.console.AddOwnedCvarListener(b.id, name, fn)
}

// AddCommandListener registers a command listener owned by this object.
func (b Base) AddCommandListener(name string, fn func(CommandSent)) (event.Key, error) {
	return b.console.AddOwnedCommandListener(b.id, name, fn)
}

// RemoveListener removes one of this object's listeners.
func (b Base) RemoveListener(key event.Key) {
	b.console.RemoveOwnedListener(b.id, key)
}

// AddObject allocates an id, builds the object with ctor and registers it.
// OnCreation runs after the object is reachable through the console, so it
// may add owned listeners.
//
// The object must report the id it was given in Base. A constructor that
// returns nil is rejected and the id is freed.
func AddObject[T Object](c *Console, ctor func(Base) T) (ObjectID, error) {
	if ctor == nil {
		return 0, fmt.Errorf("%w: nil constructor", ErrInvalidObject)
	}
	id, err := c.dispatcher.NewOwner()
	if err != nil {
		return 0, fmt.Errorf("allocate object id: %w", err)
	}

	obj := ctor(Base{console: c, id: id})
	if isNil(obj) {
		c.dispatcher.ReleaseOwner(id)
		return 0, fmt.Errorf("%w: constructor returned nil", ErrInvalidObject)
	}
	if obj.ID() != id {
		c.dispatcher.ReleaseOwner(id)
		return 0, fmt.Errorf("%w: object does not carry id %d", ErrInvalidObject, id)
	}
	c.objects[id] = obj
	c.logger.Debug().Int64("object", int64(id)).Msg("object added")

	if hook, ok := any(obj).(Creator); ok {
		hook.OnCreation()
	}
	return id, nil
}

// RemoveObject drops every listener owned by the object, removes it, runs
// OnDestroy and frees its id. Unknown ids are ignored.
func (c *Console) RemoveObject(id ObjectID) {
	obj, ok := c.objects[id]
	if !ok {
		return
	}
	c.dispatcher.UnregisterAllOwned(id)
	delete(c.objects, id)
	if hook, ok := obj.(Destroyer); ok {
		hook.OnDestroy()
	}
	c.dispatcher.ReleaseOwner(id)
	c.logger.Debug().Int64("object", int64(id)).Msg("object removed")
}

// Object returns the object registered under id.
func (c *Console) Object(id ObjectID) (Object, bool) {
	obj, ok := c.objects[id]
	return obj, ok
}

// ObjectExists reports whether id refers to a live object.
func (c *Console) ObjectExists(id ObjectID) bool {
	_, ok := c.objects[id]
	return ok
}

// ObjectCount returns the number of live objects.
func (c *Console) ObjectCount() int {
	return len(c.objects)
}

// ObjectIDs returns the ids of live objects in ascending order.
func (c *Console) ObjectIDs() []ObjectID {
	ids := make([]ObjectID, 0, len(c.objects))
	for id := range c.objects {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// isNil reports whether v is nil or a typed nil of a nillable kind.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
