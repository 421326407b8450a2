package event

import (
	"errors"
	"testing"

	"github.com/dshills/gamelib/internal/id"
)

type dummyEvent struct{}

type testEvent struct {
	incrementValue int
}

type boolEvent struct {
	value bool
}

func mustRegister[E any](t *testing.T, d *Dispatcher, fn func(E), opts ...Option[E]) Key {
	t.Helper()
	key, err := Register(d, fn, opts...)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return key
}

func mustRegisterOwned[E any](t *testing.T, d *Dispatcher, owner Owner, fn func(E), opts ...Option[E]) Key {
	t.Helper()
	key, err := RegisterOwned(d, owner, fn, opts...)
	if err != nil {
		t.Fatalf("RegisterOwned() error = %v", err)
	}
	return key
}

func TestDispatcher_DispatchesToAllCallbacksOfType(t *testing.T) {
	d := NewDispatcher()
	const callbacksCount = 5

	callCount := 0
	ownedCallCount := 0
	eventCallCount := 0

	for i := 0; i < callbacksCount; i++ {
		mustRegister(t, d, NoArg[dummyEvent](func() { callCount++ }))
	}
	for i := 0; i < callbacksCount; i++ {
		mustRegister(t, d, func(e testEvent) { eventCallCount += e.incrementValue })
	}
	for i := 0; i < callbacksCount; i++ {
		mustRegisterOwned(t, d, 1, NoArg[dummyEvent](func() { ownedCallCount++ }))
	}

	Dispatch(d, dummyEvent{})
	Dispatch(d, testEvent{incrementValue: 1})

	if callCount != callbacksCount {
		t.Errorf("callCount = %d, want %d", callCount, callbacksCount)
	}
	if eventCallCount != callbacksCount {
		t.Errorf("eventCallCount = %d, want %d", eventCallCount, callbacksCount)
	}
	if ownedCallCount != callbacksCount {
		t.Errorf("ownedCallCount = %d, want %d", ownedCallCount, callbacksCount)
	}
}

func TestDispatcher_KeysStartAtZero(t *testing.T) {
	d := NewDispatcher()

	for want := Key(0); want < 3; want++ {
		if got := mustRegister(t, d, NoArg[dummyEvent](func() {})); got != want {
			t.Errorf("Register() = %d, want %d", got, want)
		}
	}
}

func TestDispatcher_RemovesFreeStandingAndOwned(t *testing.T) {
	d := NewDispatcher()
	callCount := 0
	inc := NoArg[dummyEvent](func() { callCount++ })

	const twoCallbacksOwner Owner = 1
	const fourCallbacksOwner Owner = 2

	var keys []Key
	for i := 0; i < 10; i++ {
		keys = append(keys, mustRegister(t, d, inc))
	}
	for i := 0; i < 2; i++ {
		mustRegisterOwned(t, d, twoCallbacksOwner, inc)
	}
	var fourKeys []Key
	for i := 0; i < 4; i++ {
		fourKeys = append(fourKeys, mustRegisterOwned(t, d, fourCallbacksOwner, inc))
	}

	for i := 0; i < 5; i++ {
		d.Unregister(keys[i])
	}
	d.UnregisterAllOwned(twoCallbacksOwner)

	// Removing an owner that has nothing left is a no-op.
	d.UnregisterAllOwned(twoCallbacksOwner)
	d.UnregisterAllOwned(twoCallbacksOwner)

	d.UnregisterOwned(fourCallbacksOwner, fourKeys[0])

	if n := Dispatch(d, dummyEvent{}); n != 8 {
		t.Errorf("Dispatch() invoked %d, want 8", n)
	}
	if callCount != 8 {
		t.Errorf("callCount = %d, want 8", callCount)
	}
	if d.Count() != 8 {
		t.Errorf("Count() = %d, want 8", d.Count())
	}
}

func TestDispatcher_Predicate(t *testing.T) {
	d := NewDispatcher()
	called := false
	ownedCalled := false
	isTrue := func(e boolEvent) bool { return e.value }

	mustRegister(t, d, NoArg[boolEvent](func() { called = true }), WithPredicate(isTrue))
	mustRegisterOwned(t, d, 10, NoArg[boolEvent](func() { ownedCalled = true }), WithPredicate(isTrue))

	if n := Dispatch(d, boolEvent{value: false}); n != 0 {
		t.Errorf("Dispatch(false) invoked %d, want 0", n)
	}
	if called || ownedCalled {
		t.Fatal("callbacks ran although predicate rejected the event")
	}

	Dispatch(d, boolEvent{value: true})
	if !called {
		t.Error("free-standing callback did not run")
	}
	if !ownedCalled {
		t.Error("owned callback did not run")
	}
}

func TestDispatcher_NoCallbacksIsNoop(t *testing.T) {
	d := NewDispatcher()

	if n := Dispatch(d, dummyEvent{}); n != 0 {
		t.Errorf("Dispatch() = %d, want 0", n)
	}
}

func TestDispatcher_TypesAreSeparate(t *testing.T) {
	d := NewDispatcher()
	dummy := 0
	test := 0

	mustRegister(t, d, NoArg[dummyEvent](func() { dummy++ }))
	mustRegister(t, d, NoArg[testEvent](func() { test++ }))
	mustRegister(t, d, NoArg[*testEvent](func() { test += 100 }))

	Dispatch(d, testEvent{})

	if dummy != 0 {
		t.Errorf("dummy = %d, want 0", dummy)
	}
	if test != 1 {
		t.Errorf("test = %d, want 1 (pointer type is a distinct event type)", test)
	}
	if CountFor[testEvent](d) != 1 {
		t.Errorf("CountFor[testEvent] = %d, want 1", CountFor[testEvent](d))
	}
}

func TestDispatcher_UnregisterIsIdempotent(t *testing.T) {
	d := NewDispatcher()
	key := mustRegister(t, d, NoArg[dummyEvent](func() {}))

	d.Unregister(key)
	d.Unregister(key)
	d.Unregister(Key(999))
	d.UnregisterOwned(5, Key(999))

	if d.Count() != 0 {
		t.Errorf("Count() = %d, want 0", d.Count())
	}
	if d.Registered(key) {
		t.Error("Registered() = true after Unregister")
	}
}

func TestDispatcher_UnregisterCleansOwnership(t *testing.T) {
	d := NewDispatcher()
	const owner Owner = 3

	key := mustRegisterOwned(t, d, owner, NoArg[dummyEvent](func() {}))
	d.Unregister(key)

	if keys := d.Owned(owner); len(keys) != 0 {
		t.Fatalf("Owned() = %v, want empty", keys)
	}

	// The freed key goes to an unrelated callback, which the owner must not remove.
	other := 0
	reused := mustRegister(t, d, NoArg[dummyEvent](func() { other++ }))
	if reused != key {
		t.Fatalf("reused key = %d, want %d", reused, key)
	}

	d.UnregisterAllOwned(owner)
	Dispatch(d, dummyEvent{})

	if other != 1 {
		t.Errorf("unrelated callback ran %d times, want 1", other)
	}
}

func TestDispatcher_UnregisterOwnedRequiresOwner(t *testing.T) {
	d := NewDispatcher()

	free := mustRegister(t, d, NoArg[dummyEvent](func() {}))
	owned := mustRegisterOwned(t, d, 1, NoArg[dummyEvent](func() {}))

	d.UnregisterOwned(1, free)
	d.UnregisterOwned(2, owned)

	if !d.Registered(free) || !d.Registered(owned) {
		t.Fatal("UnregisterOwned removed a callback it does not own")
	}

	d.UnregisterOwned(1, owned)
	if d.Registered(owned) {
		t.Error("UnregisterOwned did not remove the owner's callback")
	}
	if keys := d.Owned(1); keys != nil {
		t.Errorf("Owned(1) = %v, want nil", keys)
	}
}

func TestDispatcher_Owned(t *testing.T) {
	d := NewDispatcher()

	mustRegister(t, d, NoArg[dummyEvent](func() {}))
	a := mustRegisterOwned(t, d, 7, NoArg[dummyEvent](func() {}))
	b := mustRegisterOwned(t, d, 7, NoArg[testEvent](func() {}))

	got := d.Owned(7)
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("Owned(7) = %v, want [%d %d]", got, a, b)
	}
}

func TestDispatcher_NewOwner(t *testing.T) {
	d := NewDispatcher()

	var owners []Owner
	for range 3 {
		owner, err := d.NewOwner()
		if err != nil {
			t.Fatalf("NewOwner() error = %v", err)
		}
		owners = append(owners, owner)
	}
	if owners[0] != 0 || owners[1] != 1 || owners[2] != 2 {
		t.Fatalf("owners = %v, want [0 1 2]", owners)
	}

	calls := 0
	mustRegisterOwned(t, d, owners[1], NoArg[dummyEvent](func() { calls++ }))
	mustRegisterOwned(t, d, owners[2], NoArg[dummyEvent](func() { calls++ }))

	d.ReleaseOwner(owners[1])
	if got := Dispatch(d, dummyEvent{}); got != 1 || calls != 1 {
		t.Errorf("Dispatch() invoked %d (calls %d), want 1", got, calls)
	}

	reused, err := d.NewOwner()
	if err != nil {
		t.Fatalf("NewOwner() error = %v", err)
	}
	if reused != owners[1] {
		t.Errorf("reused owner = %d, want %d", reused, owners[1])
	}
}

func TestDispatcher_OwnersSurviveClear(t *testing.T) {
	d := NewDispatcher()
	first, _ := d.NewOwner()
	d.Clear()

	second, err := d.NewOwner()
	if err != nil {
		t.Fatalf("NewOwner() error = %v", err)
	}
	if second == first {
		t.Errorf("owner %d handed out twice across Clear", first)
	}
}

func TestDispatcher_NewOwnerOverflow(t *testing.T) {
	d := NewDispatcher()
	d.ownerIDs = id.New[Owner](1<<63-1, 1)

	if _, err := d.NewOwner(); err != nil {
		t.Fatalf("NewOwner() last owner error = %v", err)
	}
	_, err := d.NewOwner()
	if !errors.Is(err, ErrOverflow) || !errors.Is(err, id.ErrOverflow) {
		t.Errorf("NewOwner() error = %v, want ErrOverflow", err)
	}
}

func TestDispatcher_RegistrationDuringDispatchRunsNextTime(t *testing.T) {
	d := NewDispatcher()
	late := 0
	registered := false

	mustRegister(t, d, NoArg[dummyEvent](func() {
		if registered {
			return
		}
		registered = true
		mustRegister(t, d, NoArg[dummyEvent](func() { late++ }))
	}))

	Dispatch(d, dummyEvent{})
	if late != 0 {
		t.Fatalf("late = %d after first dispatch, want 0", late)
	}

	Dispatch(d, dummyEvent{})
	if late != 1 {
		t.Errorf("late = %d after second dispatch, want 1", late)
	}
}

func TestDispatcher_RemovalDuringDispatchSkipsPending(t *testing.T) {
	d := NewDispatcher()
	second := 0

	var secondKey Key
	mustRegister(t, d, NoArg[dummyEvent](func() { d.Unregister(secondKey) }))
	secondKey = mustRegister(t, d, NoArg[dummyEvent](func() { second++ }))

	if n := Dispatch(d, dummyEvent{}); n != 1 {
		t.Errorf("Dispatch() invoked %d, want 1", n)
	}
	if second != 0 {
		t.Errorf("removed callback ran %d times, want 0", second)
	}
}

func TestDispatcher_OwnerRemovedDuringDispatch(t *testing.T) {
	d := NewDispatcher()
	ownedCalls := 0

	mustRegister(t, d, NoArg[dummyEvent](func() { d.UnregisterAllOwned(1) }))
	for i := 0; i < 3; i++ {
		mustRegisterOwned(t, d, 1, NoArg[dummyEvent](func() { ownedCalls++ }))
	}

	Dispatch(d, dummyEvent{})

	if ownedCalls != 0 {
		t.Errorf("ownedCalls = %d, want 0", ownedCalls)
	}
	if d.Count() != 1 {
		t.Errorf("Count() = %d, want 1", d.Count())
	}
}

func TestDispatcher_WithOnce(t *testing.T) {
	d := NewDispatcher()
	calls := 0

	key := mustRegister(t, d, NoArg[boolEvent](func() { calls++ }),
		WithOnce[boolEvent](),
		WithPredicate(func(e boolEvent) bool { return e.value }),
	)

	Dispatch(d, boolEvent{value: false})
	if !d.Registered(key) {
		t.Fatal("once callback removed although its predicate rejected the event")
	}

	Dispatch(d, boolEvent{value: true})
	Dispatch(d, boolEvent{value: true})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if d.Registered(key) {
		t.Error("once callback still registered")
	}
}

func TestDispatcher_NilCallback(t *testing.T) {
	d := NewDispatcher()

	_, err := Register[dummyEvent](d, nil)
	if !errors.Is(err, ErrNilCallback) {
		t.Errorf("Register(nil) error = %v, want ErrNilCallback", err)
	}
	_, err = RegisterOwned(d, 1, NoArg[dummyEvent](nil))
	if !errors.Is(err, ErrNilCallback) {
		t.Errorf("RegisterOwned(NoArg(nil)) error = %v, want ErrNilCallback", err)
	}
	if d.Count() != 0 {
		t.Errorf("Count() = %d, want 0", d.Count())
	}
}

func TestDispatcher_Clear(t *testing.T) {
	d := NewDispatcher()
	calls := 0

	mustRegister(t, d, NoArg[dummyEvent](func() { calls++ }))
	mustRegisterOwned(t, d, 1, NoArg[dummyEvent](func() { calls++ }))

	d.Clear()
	Dispatch(d, dummyEvent{})

	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
	if d.Owned(1) != nil {
		t.Error("Owned(1) not empty after Clear")
	}
	if got := mustRegister(t, d, NoArg[dummyEvent](func() {})); got != 0 {
		t.Errorf("first key after Clear = %d, want 0", got)
	}
}

func TestDispatcher_InterfaceEventType(t *testing.T) {
	type named interface{ Name() string }
	d := NewDispatcher()
	var got string

	mustRegister(t, d, func(e named) {
		if e != nil {
			got = e.Name()
		}
	})

	Dispatch[named](d, namedEvent("volume"))
	if got != "volume" {
		t.Errorf("got = %q, want %q", got, "volume")
	}

	// A nil interface value reaches the callback as the zero value.
	Dispatch[named](d, nil)
}

type namedEvent string

func (n namedEvent) Name() string { return string(n) }
