package console

import (
	"strconv"

	"github.com/dshills/gamelib/internal/event"
)

// AddCvarListener registers fn to run whenever the named cvar of this
// console changes. The cvar does not need to exist yet.
func (c *Console) AddCvarListener(name string, fn func(CvarChanged)) (event.Key, error) {
	return event.Register(c.dispatcher, fn, c.cvarNamed(name))
}

// AddCommandListener registers fn to run whenever the named command is
// dispatched.
func (c *Console) AddCommandListener(name string, fn func(CommandSent)) (event.Key, error) {
	return event.Register(c.dispatcher, fn, c.commandNamed(name))
}

// RemoveListener removes the listener registered under key.
// Unknown keys are ignored.
func (c *Console) RemoveListener(key event.Key) {
	c.dispatcher.Unregister(key)
}

// AddOwnedCvarListener is AddCvarListener on behalf of object id.
// The listener is removed when the object is removed.
func (c *Console) AddOwnedCvarListener(id ObjectID, name string, fn func(CvarChanged)) (event.Key, error) {
	if _, ok := c.objects[id]; !ok {
		return 0, objectNotFound(id)
	}
	return event.RegisterOwned(c.dispatcher, id, fn, c.cvarNamed(name))
}

// AddOwnedCommandListener is AddCommandListener on behalf of object id.
func (c *Console) AddOwnedCommandListener(id ObjectID, name string, fn func(CommandSent)) (event.Key, error) {
	if _, ok := c.objects[id]; !ok {
		return 0, objectNotFound(id)
	}
	return event.RegisterOwned(c.dispatcher, id, fn, c.commandNamed(name))
}

// RemoveOwnedListener removes key if it was registered on behalf of id.
func (c *Console) RemoveOwnedListener(id ObjectID, key event.Key) {
	c.dispatcher.UnregisterOwned(id, key)
}

// OwnedListeners returns the keys of the listeners registered on behalf of
// object id, in ascending order.
func (c *Console) OwnedListeners(id ObjectID) []event.Key {
	return c.dispatcher.Owned(id)
}

// ListenerCount returns the number of registered listeners, including any
// registered directly on a shared dispatcher.
func (c *Console) ListenerCount() int {
	return c.dispatcher.Count()
}

// Events from other consoles on a shared dispatcher are filtered out.
func (c *Console) cvarNamed(name string) event.Option[CvarChanged] {
	return event.WithPredicate(func(e CvarChanged) bool {
		return e.Source == c && e.Cvar.Name() == name
	})
}

func (c *Console) commandNamed(name string) event.Option[CommandSent] {
	return event.WithPredicate(func(e CommandSent) bool {
		return e.Source == c && e.Command.Name() == name
	})
}

func objectNotFound(id ObjectID) error {
	return &NotFoundError{What: "object", Name: strconv.FormatInt(int64(id), 10)}
}
