// Package event provides a synchronous, type-keyed event dispatcher.
//
// Callbacks are registered for a concrete event type and invoked whenever a
// value of that type is dispatched. Each event type gets its own bucket,
// keyed by the type's reflect.Type, so one Dispatcher can carry any number of
// unrelated event types without the caller naming the type anywhere but in
// the event value itself.
//
// # Registration
//
// Registering returns a Key that refers to exactly one callback:
//
//	d := event.NewDispatcher()
//
//	key, err := event.Register(d, func(e VolumeChanged) {
//	    mixer.SetVolume(e.Value)
//	})
//
// Callbacks that do not care about the event value are adapted with NoArg:
//
//	event.Register(d, event.NoArg[VolumeChanged](redraw))
//
// A predicate gates delivery; the callback only runs when it returns true:
//
//	event.Register(d, onMaster, event.WithPredicate(func(e VolumeChanged) bool {
//	    return e.Channel == "master"
//	}))
//
// # Ownership
//
// Callbacks can be registered on behalf of an Owner. All callbacks of an owner
// are removed together with UnregisterAllOwned, which is how objects with a
// bounded lifetime drop their listeners on teardown:
//
//	event.RegisterOwned(d, owner, onVolume)
//	...
//	d.UnregisterAllOwned(owner)
//
// Subsystems sharing a dispatcher allocate owners with NewOwner and give them
// back with ReleaseOwner, so one subsystem's teardown never removes another's
// callbacks.
//
// # Dispatch Semantics
//
// Dispatch is synchronous and runs on the caller's goroutine. The set of
// callbacks to run is fixed when Dispatch starts: callbacks registered by a
// running callback are first invoked on the next dispatch. Callbacks removed
// by a running callback are skipped if they have not run yet. Every matching
// callback runs exactly once per dispatch; callers must not depend on the
// relative order of callbacks.
//
// # Thread Safety
//
// A Dispatcher performs no locking. Callers sharing one across goroutines
// must serialize access themselves.
package event
