package console

import (
	"errors"
	"testing"

	"github.com/dshills/gamelib/internal/event"
)

type statusObject struct {
	Base
	destruction int
	destroyed   *int
}

func (o *statusObject) OnDestroy() {
	*o.destroyed = o.destruction
}

func TestConsoleAddRemoveObjects(t *testing.T) {
	c := New()
	constructed := 0
	destroyed := 0

	add := func(construction, destruction int) ObjectID {
		t.Helper()
		oid, err := AddObject(c, func(b Base) *statusObject {
			constructed = construction
			return &statusObject{Base: b, destruction: destruction, destroyed: &destroyed}
		})
		if err != nil {
			t.Fatalf("AddObject: %v", err)
		}
		if constructed != construction {
			t.Fatalf("constructed = %d, want %d", constructed, construction)
		}
		return oid
	}

	first := add(1, 10)
	second := add(2, 20)
	third := add(3, 30)

	if c.ObjectCount() != 3 {
		t.Fatalf("ObjectCount = %d, want 3", c.ObjectCount())
	}

	c.RemoveObject(first)
	if destroyed != 10 {
		t.Errorf("destroyed = %d, want 10", destroyed)
	}
	c.RemoveObject(third)
	if destroyed != 30 {
		t.Errorf("destroyed = %d, want 30", destroyed)
	}
	c.RemoveObject(second)
	if destroyed != 20 {
		t.Errorf("destroyed = %d, want 20", destroyed)
	}

	if c.ObjectCount() != 0 {
		t.Errorf("ObjectCount = %d, want 0", c.ObjectCount())
	}
}

func TestConsoleObjectIDs(t *testing.T) {
	c := New()
	newObject := func(b Base) *statusObject {
		return &statusObject{Base: b, destroyed: new(int)}
	}

	a, _ := AddObject(c, newObject)
	b, _ := AddObject(c, newObject)
	d, _ := AddObject(c, newObject)
	if a != 0 || b != 1 || d != 2 {
		t.Fatalf("ids = %d %d %d, want 0 1 2", a, b, d)
	}

	c.RemoveObject(b)
	if c.ObjectExists(b) {
		t.Error("removed object still exists")
	}
	if _, ok := c.Object(b); ok {
		t.Error("Object returned a removed object")
	}

	reused, _ := AddObject(c, newObject)
	if reused != b {
		t.Errorf("reused id = %d, want %d", reused, b)
	}

	ids := c.ObjectIDs()
	if len(ids) != 3 || ids[0] != 0 || ids[1] != 1 || ids[2] != 2 {
		t.Errorf("ObjectIDs = %v, want [0 1 2]", ids)
	}

	obj, ok := c.Object(a)
	if !ok || obj.ID() != a {
		t.Errorf("Object(%d) = %v, %v", a, obj, ok)
	}
}

func TestConsoleRemoveUnknownObject(t *testing.T) {
	c := New()
	c.RemoveObject(42)
	if c.ObjectCount() != 0 {
		t.Errorf("ObjectCount = %d, want 0", c.ObjectCount())
	}
}

type impostor struct{}

func (impostor) ID() ObjectID { return 99 }

func TestAddObjectRejectsWrongID(t *testing.T) {
	c := New()
	_, err := AddObject(c, func(Base) impostor { return impostor{} })
	if !errors.Is(err, ErrInvalidObject) {
		t.Fatalf("error = %v, want ErrInvalidObject", err)
	}
	if c.ObjectCount() != 0 {
		t.Errorf("ObjectCount = %d, want 0", c.ObjectCount())
	}

	// The id handed to the rejected constructor is available again.
	oid, err := AddObject(c, func(b Base) *statusObject {
		return &statusObject{Base: b, destroyed: new(int)}
	})
	if err != nil {
		t.Fatalf("AddObject: %v", err)
	}
	if oid != 0 {
		t.Errorf("id = %d, want 0", oid)
	}
}

func TestAddObjectNilConstructor(t *testing.T) {
	c := New()
	var ctor func(Base) *statusObject
	if _, err := AddObject(c, ctor); !errors.Is(err, ErrInvalidObject) {
		t.Errorf("error = %v, want ErrInvalidObject", err)
	}
}

func TestAddObjectNilObject(t *testing.T) {
	c := New()
	_, err := AddObject(c, func(Base) *statusObject { return nil })
	if !errors.Is(err, ErrInvalidObject) {
		t.Fatalf("error = %v, want ErrInvalidObject", err)
	}
	if c.ObjectCount() != 0 {
		t.Errorf("ObjectCount = %d, want 0", c.ObjectCount())
	}

	// The id handed to the nil-returning constructor is available again.
	oid, err := AddObject(c, func(b Base) *statusObject {
		return &statusObject{Base: b, destroyed: new(int)}
	})
	if err != nil {
		t.Fatalf("AddObject: %v", err)
	}
	if oid != 0 {
		t.Errorf("id = %d, want 0", oid)
	}
}

func TestConsolesSharingDispatcher(t *testing.T) {
	d := event.NewDispatcher()
	a := New(WithDispatcher(d))
	b := New(WithDispatcher(d))
	for _, c := range []*Console{a, b} {
		if err := c.InitCvars(listenerCvars()); err != nil {
			t.Fatalf("InitCvars: %v", err)
		}
	}

	newOwner := func(base Base) *callbackOwner { return &callbackOwner{Base: base} }
	oa, err := AddObject(a, newOwner)
	if err != nil {
		t.Fatalf("AddObject(a): %v", err)
	}
	ob, err := AddObject(b, newOwner)
	if err != nil {
		t.Fatalf("AddObject(b): %v", err)
	}
	if oa == ob {
		t.Fatalf("object ids collide: %d", oa)
	}

	aCalls, bCalls := 0, 0
	if _, err := a.AddOwnedCvarListener(oa, "name", func(CvarChanged) { aCalls++ }); err != nil {
		t.Fatalf("AddOwnedCvarListener(a): %v", err)
	}
	if _, err := b.AddOwnedCvarListener(ob, "name", func(CvarChanged) { bCalls++ }); err != nil {
		t.Fatalf("AddOwnedCvarListener(b): %v", err)
	}

	a.SetCvar("name", "x")
	if aCalls != 1 || bCalls != 0 {
		t.Errorf("after a.SetCvar: aCalls=%d bCalls=%d, want 1 0", aCalls, bCalls)
	}

	a.RemoveObject(oa)
	b.SetCvar("name", "x")
	if bCalls != 1 {
		t.Errorf("console b listener calls = %d, want 1", bCalls)
	}
	if aCalls != 1 {
		t.Errorf("removed object's listener ran: aCalls = %d", aCalls)
	}
	if d.Count() != 1 {
		t.Errorf("dispatcher Count = %d, want 1", d.Count())
	}
}

type callbackOwner struct {
	Base
}

func TestConsoleOwnedCvarListeners(t *testing.T) {
	c := New()
	if err := c.InitCvars(listenerCvars()); err != nil {
		t.Fatalf("InitCvars: %v", err)
	}

	newOwner := func(b Base) *callbackOwner { return &callbackOwner{Base: b} }
	withTwo, err := AddObject(c, newOwner)
	if err != nil {
		t.Fatalf("AddObject: %v", err)
	}
	withFive, err := AddObject(c, newOwner)
	if err != nil {
		t.Fatalf("AddObject: %v", err)
	}

	callCount := 0
	increment := event.NoArg[CvarChanged](func() { callCount++ })

	for range 2 {
		if _, err := c.AddOwnedCvarListener(withTwo, "volume", increment); err != nil {
			t.Fatalf("AddOwnedCvarListener: %v", err)
		}
	}
	var fiveKeys []event.Key
	for range 5 {
		key, err := c.AddOwnedCvarListener(withFive, "volume", increment)
		if err != nil {
			t.Fatalf("AddOwnedCvarListener: %v", err)
		}
		fiveKeys = append(fiveKeys, key)
	}

	c.SetCvar("volume", 1)
	if callCount != 7 {
		t.Fatalf("callCount = %d, want 7", callCount)
	}

	callCount = 0
	c.RemoveObject(withTwo)
	c.RemoveOwnedListener(withFive, fiveKeys[0])
	c.Parse("volume 1.5")
	if callCount != 4 {
		t.Errorf("callCount = %d, want 4", callCount)
	}
	if c.ListenerCount() != 4 {
		t.Errorf("ListenerCount = %d, want 4", c.ListenerCount())
	}
}

func TestConsoleOwnedListenerUnknownObject(t *testing.T) {
	c := New()

	_, err := c.AddOwnedCvarListener(7, "volume", func(CvarChanged) {})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("AddOwnedCvarListener error = %v, want ErrNotFound", err)
	}
	_, err = c.AddOwnedCommandListener(7, "quit", func(CommandSent) {})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("AddOwnedCommandListener error = %v, want ErrNotFound", err)
	}
	if c.ListenerCount() != 0 {
		t.Errorf("ListenerCount = %d, want 0", c.ListenerCount())
	}
}

func TestConsoleRemoveOwnedListenerWrongOwner(t *testing.T) {
	c := New()
	if err := c.InitCvars(listenerCvars()); err != nil {
		t.Fatalf("InitCvars: %v", err)
	}
	newOwner := func(b Base) *callbackOwner { return &callbackOwner{Base: b} }
	a, _ := AddObject(c, newOwner)
	b, _ := AddObject(c, newOwner)

	key, err := c.AddOwnedCvarListener(a, "volume", func(CvarChanged) {})
	if err != nil {
		t.Fatalf("AddOwnedCvarListener: %v", err)
	}

	c.RemoveOwnedListener(b, key)
	if c.ListenerCount() != 1 {
		t.Errorf("listener removed by a non-owner")
	}
	c.RemoveOwnedListener(a, key)
	if c.ListenerCount() != 0 {
		t.Errorf("listener not removed by its owner")
	}
}

var (
	globalValue     int
	volumeLastValue float64
)

type volumeListener struct {
	Base
	value int
}

func (v *volumeListener) OnCreation() {
	_, _ = v.AddCvarListener("name", event.NoArg[CvarChanged](v.setGlobalValue))
	_, _ = v.AddCvarListener("volume", v.setVolumeValue)
}

func (v *volumeListener) setGlobalValue() {
	globalValue = v.value
}

func (v *volumeListener) setVolumeValue(e CvarChanged) {
	volumeLastValue = e.Cvar.Float()
}

func TestConsoleObjectMethodListeners(t *testing.T) {
	c := New()
	if err := c.InitCvars(listenerCvars()); err != nil {
		t.Fatalf("InitCvars: %v", err)
	}
	globalValue = 0
	volumeLastValue = 0

	oid, err := AddObject(c, func(b Base) *volumeListener {
		return &volumeListener{Base: b, value: 10}
	})
	if err != nil {
		t.Fatalf("AddObject: %v", err)
	}

	c.SetCvar("name", "Player.")
	if globalValue != 10 {
		t.Errorf("globalValue = %d, want 10", globalValue)
	}
	c.Parse("volume 100")
	if !approx(volumeLastValue, 100) {
		t.Errorf("volumeLastValue = %v, want 100", volumeLastValue)
	}

	globalValue = 0
	volumeLastValue = 0
	c.RemoveObject(oid)

	c.SetCvar("name", "Player.")
	c.SetCvar("volume", 100)
	if globalValue != 0 || volumeLastValue != 0 {
		t.Errorf("listeners ran after removal: globalValue=%d volume=%v", globalValue, volumeLastValue)
	}
}

type selfRemover struct {
	Base
	removed *bool
}

func (s *selfRemover) OnCreation() {
	_, _ = s.AddCommandListener("leave", func(CommandSent) {
		s.Console().RemoveObject(s.ID())
	})
}

func (s *selfRemover) OnDestroy() {
	*s.removed = true
}

func TestConsoleObjectRemovesItselfFromListener(t *testing.T) {
	c := New()
	if _, err := c.RegisterCommand(commandInfo("leave", 0)); err != nil {
		t.Fatalf("RegisterCommand: %v", err)
	}

	removed := false
	oid, err := AddObject(c, func(b Base) *selfRemover {
		return &selfRemover{Base: b, removed: &removed}
	})
	if err != nil {
		t.Fatalf("AddObject: %v", err)
	}

	c.Parse("leave")
	if !removed {
		t.Error("OnDestroy did not run")
	}
	if c.ObjectExists(oid) || c.ListenerCount() != 0 {
		t.Errorf("object or listeners survived: exists=%v listeners=%d", c.ObjectExists(oid), c.ListenerCount())
	}
}

type lateListener struct {
	Base
	err *error
}

func (l *lateListener) OnDestroy() {
	_, *l.err = l.AddCvarListener("volume", func(CvarChanged) {})
}

func TestConsoleOnDestroyCannotAddListeners(t *testing.T) {
	c := New()
	var lateErr error
	oid, err := AddObject(c, func(b Base) *lateListener {
		return &lateListener{Base: b, err: &lateErr}
	})
	if err != nil {
		t.Fatalf("AddObject: %v", err)
	}

	c.RemoveObject(oid)
	if !errors.Is(lateErr, ErrNotFound) {
		t.Errorf("AddCvarListener in OnDestroy error = %v, want ErrNotFound", lateErr)
	}
	if c.ListenerCount() != 0 {
		t.Errorf("ListenerCount = %d, want 0", c.ListenerCount())
	}
}
