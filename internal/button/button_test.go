package button

import (
	"testing"
	"time"
)

// testStep is the simulated tick interval used by the tests.
const testStep = 5

// testConfig keeps the gesture timings short so test loops stay small:
// active-high wiring, 20ms debounce, 100ms click window, 300ms press
// threshold.
func testConfig() Config {
	return Config{
		ActiveLow:      false,
		DebounceTime:   20 * time.Millisecond,
		ClickWindow:    100 * time.Millisecond,
		PressThreshold: 300 * time.Millisecond,
	}
}

// testButton drives a Button with a scripted clock and records callback
// invocations.
type testButton struct {
	*Button
	now    uint32
	counts EventCounts
}

func newTestButton(cfg Config) *testButton {
	tb := &testButton{}
	tb.Button = New(nil, func() uint32 { return tb.now }, cfg)
	tb.OnClick(func() { tb.counts.Clicks++ })
	tb.OnDoubleClick(func() { tb.counts.DoubleClicks++ })
	tb.OnLongPressStart(func() { tb.counts.LongPresses++ })
	return tb
}

// hold feeds the raw level for ms milliseconds, ticking every testStep ms.
func (tb *testButton) hold(raw bool, ms uint32) {
	for elapsed := uint32(0); elapsed < ms; elapsed += testStep {
		tb.TickLevel(raw)
		tb.now += testStep
	}
}

func (tb *testButton) expect(t *testing.T, clicks, doubles, longs int) {
	t.Helper()
	if tb.counts.Clicks != clicks {
		t.Errorf("clicks: got %d, want %d", tb.counts.Clicks, clicks)
	}
	if tb.counts.DoubleClicks != doubles {
		t.Errorf("double clicks: got %d, want %d", tb.counts.DoubleClicks, doubles)
	}
	if tb.counts.LongPresses != longs {
		t.Errorf("long presses: got %d, want %d", tb.counts.LongPresses, longs)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	b := New(nil, func() uint32 { return 0 }, Config{ActiveLow: true})
	def := DefaultConfig()
	if b.debounceMs != uint32(def.DebounceTime.Milliseconds()) {
		t.Errorf("debounceMs: got %d, want %d", b.debounceMs, def.DebounceTime.Milliseconds())
	}
	if b.clickMs != uint32(def.ClickWindow.Milliseconds()) {
		t.Errorf("clickMs: got %d, want %d", b.clickMs, def.ClickWindow.Milliseconds())
	}
	if b.pressMs != uint32(def.PressThreshold.Milliseconds()) {
		t.Errorf("pressMs: got %d, want %d", b.pressMs, def.PressThreshold.Milliseconds())
	}
	if !b.IsIdle() {
		t.Error("new button should be idle")
	}
}

func TestDebounceFiltersBounces(t *testing.T) {
	tb := newTestButton(testConfig())

	// Flip the raw level every tick, faster than the 20ms settle time.
	// The stable level must never change.
	raw := true
	for i := 0; i < 40; i++ {
		tb.TickLevel(raw)
		if tb.stable {
			t.Fatalf("tick %d: stable level changed during bouncing", i)
		}
		raw = !raw
		tb.now += testStep
	}

	// Once the flips stop for a full settle time, the stable level must
	// equal the last raw level.
	tb.hold(true, 30)
	if !tb.stable {
		t.Error("stable level should follow the raw level after it settles")
	}
	tb.expect(t, 0, 0, 0)
}

func TestSingleClick(t *testing.T) {
	tb := newTestButton(testConfig())

	tb.hold(true, 60)   // press
	tb.hold(false, 200) // release past the click window

	tb.expect(t, 1, 0, 0)
	if !tb.IsIdle() {
		t.Error("button should be idle after the gesture completes")
	}
}

func TestDoubleClick(t *testing.T) {
	tb := newTestButton(testConfig())

	tb.hold(true, 60)  // first press
	tb.hold(false, 40) // gap within the click window
	tb.hold(true, 60)  // second press
	tb.hold(false, 60) // release; double fires as soon as both clicks count

	tb.expect(t, 0, 1, 0)
	if !tb.IsIdle() {
		t.Error("button should be idle after the gesture completes")
	}
}

func TestTwoSlowClicksAreTwoSingles(t *testing.T) {
	tb := newTestButton(testConfig())

	tb.hold(true, 60)
	tb.hold(false, 200) // past the click window: group closes
	tb.hold(true, 60)
	tb.hold(false, 200)

	tb.expect(t, 2, 0, 0)
}

func TestTripleClickCollapsesToDouble(t *testing.T) {
	tb := newTestButton(testConfig())

	// Three press-release cycles in quick succession. The click counter
	// caps at two, so the first two cycles close as a double click; the
	// third press starts a fresh group and closes as a single. There is
	// no distinct triple event.
	for i := 0; i < 3; i++ {
		tb.hold(true, 60)
		tb.hold(false, 40)
	}
	tb.hold(false, 200)

	tb.expect(t, 1, 1, 0)
	if tb.counts.DoubleClicks != 1 {
		t.Errorf("triple click must collapse: got %d double clicks", tb.counts.DoubleClicks)
	}
}

func TestLongPress(t *testing.T) {
	tb := newTestButton(testConfig())

	tb.hold(true, 400) // held past the 300ms press threshold
	tb.expect(t, 0, 0, 1)
	if tb.IsIdle() {
		t.Error("button should not be idle while held")
	}

	// Holding longer must not fire the callback again.
	tb.hold(true, 400)
	tb.expect(t, 0, 0, 1)

	// Releasing fires no click or double-click callback.
	tb.hold(false, 100)
	tb.expect(t, 0, 0, 1)
	if !tb.IsIdle() {
		t.Error("button should be idle after the long press is released")
	}
}

func TestLongPressFiresAtThreshold(t *testing.T) {
	tb := newTestButton(testConfig())

	// The callback fires while the button is still held, at the moment
	// the threshold is crossed, not on release.
	tb.hold(true, 60)
	if tb.counts.LongPresses != 0 {
		t.Fatal("long press fired before the threshold")
	}
	tb.hold(true, 300)
	if tb.counts.LongPresses != 1 {
		t.Fatal("long press should fire while the button is still held")
	}
}

func TestResetIdempotent(t *testing.T) {
	tb := newTestButton(testConfig())

	// Reset from every phase of a gesture.
	tb.hold(true, 60) // mid-press
	tb.Reset()
	if !tb.IsIdle() {
		t.Error("not idle after Reset from pressed")
	}
	tb.hold(false, 40)

	tb.hold(true, 400) // long press active
	tb.Reset()
	tb.Reset() // second Reset is a no-op
	if !tb.IsIdle() {
		t.Error("not idle after Reset from long press")
	}
	tb.hold(false, 40)
	longsBefore := tb.counts.LongPresses

	// A press after Reset behaves identically to a fresh instance.
	tb.counts = EventCounts{}
	tb.hold(true, 60)
	tb.hold(false, 200)
	tb.expect(t, 1, 0, 0)
	if tb.counts.LongPresses != 0 {
		t.Errorf("stale long press state survived Reset: %d", longsBefore)
	}
}

func TestClockWraparound(t *testing.T) {
	tb := newTestButton(testConfig())

	// Start the clock just below the uint32 limit so the press spans the
	// wrap. Elapsed-time math is modular, so the gesture must still be
	// classified correctly.
	tb.now = ^uint32(0) - 30
	tb.hold(false, 30) // settle the released level pre-wrap
	tb.hold(true, 60)  // press: the clock wraps while held
	tb.hold(false, 200)

	tb.expect(t, 1, 0, 0)
	if !tb.IsIdle() {
		t.Error("button should be idle after the wrap-spanning gesture")
	}
}

func TestLongPressAcrossWraparound(t *testing.T) {
	tb := newTestButton(testConfig())

	tb.now = ^uint32(0) - 100
	tb.hold(false, 30)
	tb.hold(true, 500) // threshold crossing lands after the wrap
	tb.expect(t, 0, 0, 1)
}

func TestUnknownStateRecovers(t *testing.T) {
	tb := newTestButton(testConfig())

	tb.state = state(7) // outside the defined set
	tb.TickLevel(false)
	if !tb.IsIdle() {
		t.Error("unknown state must reset to idle")
	}

	// The button keeps working afterwards.
	tb.hold(true, 60)
	tb.hold(false, 200)
	tb.expect(t, 1, 0, 0)
}

func TestActiveLowPolarity(t *testing.T) {
	cfg := testConfig()
	cfg.ActiveLow = true
	tb := newTestButton(cfg)

	tb.hold(true, 30)  // line pulled up: released
	tb.hold(false, 60) // line low: pressed
	tb.hold(true, 200) // released again

	tb.expect(t, 1, 0, 0)
}

func TestSettersAffectFutureTransitions(t *testing.T) {
	tb := newTestButton(testConfig())

	tb.SetPressThreshold(100 * time.Millisecond)
	tb.hold(true, 150)
	tb.expect(t, 0, 0, 1)
	tb.hold(false, 40)

	tb.SetClickWindow(50 * time.Millisecond)
	tb.hold(true, 60)
	tb.hold(false, 100) // 50ms window: the group closes sooner
	tb.expect(t, 1, 0, 1)
}

func TestCallbackReplacement(t *testing.T) {
	tb := newTestButton(testConfig())

	var first, second int
	tb.OnClick(func() { first++ })
	tb.OnClick(func() { second++ }) // replaces, does not chain

	tb.hold(true, 60)
	tb.hold(false, 200)

	if first != 0 {
		t.Errorf("replaced callback fired %d times", first)
	}
	if second != 1 {
		t.Errorf("registered callback: got %d invocations, want 1", second)
	}
}

func TestNilCallbacksDoNotPanic(t *testing.T) {
	b := New(nil, func() uint32 { return 0 }, testConfig())
	now := uint32(0)
	b.clock = func() uint32 { return now }

	// Single, double, and long-press gestures with nothing registered.
	drive := func(raw bool, ms uint32) {
		for elapsed := uint32(0); elapsed < ms; elapsed += testStep {
			b.TickLevel(raw)
			now += testStep
		}
	}
	drive(true, 60)
	drive(false, 40)
	drive(true, 60)
	drive(false, 200)
	drive(true, 400)
	drive(false, 100)

	if !b.IsIdle() {
		t.Error("button should be idle")
	}
}

func TestTickSamplesLevelFunc(t *testing.T) {
	var now uint32
	level := false
	b := New(func() bool { return level }, func() uint32 { return now }, testConfig())

	clicks := 0
	b.OnClick(func() { clicks++ })

	run := func(raw bool, ms uint32) {
		level = raw
		for elapsed := uint32(0); elapsed < ms; elapsed += testStep {
			b.Tick()
			now += testStep
		}
	}
	run(true, 60)
	run(false, 200)

	if clicks != 1 {
		t.Errorf("clicks: got %d, want 1", clicks)
	}
}

func TestSystemClockAdvances(t *testing.T) {
	clock := SystemClock()
	a := clock()
	time.Sleep(5 * time.Millisecond)
	if clock()-a == 0 {
		t.Error("system clock did not advance")
	}
}
