package button

import "time"

// Finite state machine states. A Button is always in exactly one of these.
type state uint8

const (
	stateIdle      state = iota // waiting for a press
	statePressed                // held, not yet long
	stateReleased               // release edge, click not yet counted
	stateCounting               // between clicks, window running
	stateLongPress              // held past the press threshold
	stateLongPressDone
)

// maxClicks caps the click counter. One and two are the only counts that
// select a gesture; anything beyond two is indistinguishable from two.
const maxClicks = 2

// Button debounces a single push-button input and classifies presses into
// click, double click, and long-press-start gestures. It holds a few dozen
// bytes of state and is driven entirely by Tick/TickLevel; nothing else
// mutates it. Not safe for concurrent use: ticks must not be re-entrant,
// and callbacks must not call back into the Button.
type Button struct {
	read  LevelFunc
	clock ClockFunc

	activeLow  bool
	debounceMs uint32
	clickMs    uint32
	pressMs    uint32

	// Debounce filter state. stable only changes after the raw level has
	// held steady for debounceMs; bounces never reach the FSM.
	lastRaw      bool
	rawChangedAt uint32
	stable       bool

	// FSM state.
	state     state
	enteredAt uint32
	clicks    uint8

	clickFunc          Callback
	doubleClickFunc    Callback
	longPressStartFunc Callback
}

// New creates a Button that samples levels via read and reads time via
// clock. Zero durations in cfg fall back to the defaults.
func New(read LevelFunc, clock ClockFunc, cfg Config) *Button {
	def := DefaultConfig()
	if cfg.DebounceTime <= 0 {
		cfg.DebounceTime = def.DebounceTime
	}
	if cfg.ClickWindow <= 0 {
		cfg.ClickWindow = def.ClickWindow
	}
	if cfg.PressThreshold <= 0 {
		cfg.PressThreshold = def.PressThreshold
	}

	return &Button{
		read:       read,
		clock:      clock,
		activeLow:  cfg.ActiveLow,
		debounceMs: uint32(cfg.DebounceTime.Milliseconds()),
		clickMs:    uint32(cfg.ClickWindow.Milliseconds()),
		pressMs:    uint32(cfg.PressThreshold.Milliseconds()),
	}
}

// Tick samples the input line and advances the debounce filter and FSM.
// Call it once per scheduling interval (a few milliseconds).
func (b *Button) Tick() {
	b.TickLevel(b.read())
}

// TickLevel advances the debounce filter and FSM using a caller-supplied
// raw level, bypassing the sampler. Used when the level is already known,
// e.g. delivered by an edge interrupt.
func (b *Button) TickLevel(raw bool) {
	now := b.clock()
	active := raw != b.activeLow // apply polarity: pressed = logical true
	b.fsm(b.debounce(active, now), now)
}

// debounce accepts a level change only after it has held for debounceMs.
// Total over all inputs; the subtraction is wraparound-safe by uint32
// modular arithmetic.
func (b *Button) debounce(level bool, now uint32) bool {
	if level != b.lastRaw {
		b.lastRaw = level
		b.rawChangedAt = now
	} else if now-b.rawChangedAt >= b.debounceMs {
		b.stable = level
	}
	return b.stable
}

func (b *Button) fsm(active bool, now uint32) {
	elapsed := now - b.enteredAt

	switch b.state {
	case stateIdle:
		if active {
			b.state = statePressed
			b.enteredAt = now
			b.clicks = 0
		}

	case statePressed:
		if !active {
			b.state = stateReleased
			b.enteredAt = now
		} else if elapsed > b.pressMs {
			if b.longPressStartFunc != nil {
				b.longPressStartFunc()
			}
			b.state = stateLongPress
		}

	case stateReleased:
		// Release edge: count the click exactly once, then fall into the
		// timed counting state. This state is consumed immediately and is
		// not itself time-gated.
		if b.clicks < maxClicks {
			b.clicks++
		}
		b.state = stateCounting

	case stateCounting:
		if active {
			// Second press within the window.
			b.state = statePressed
			b.enteredAt = now
		} else if elapsed >= b.clickMs || b.clicks >= maxClicks {
			if b.clicks == 1 {
				if b.clickFunc != nil {
					b.clickFunc()
				}
			} else if b.doubleClickFunc != nil {
				b.doubleClickFunc()
			}
			b.Reset()
		}

	case stateLongPress:
		if !active {
			b.state = stateLongPressDone
			b.enteredAt = now
		}

	case stateLongPressDone:
		// Long press ended. No callback: long-press release is not
		// surfaced as a distinct event.
		b.Reset()

	default:
		// Unknown state. Recover rather than fault.
		b.Reset()
	}
}

// Reset forces the debounce filter and FSM back to their initial values:
// idle state, zero click count, released stable level. A press after Reset
// behaves identically to a press on a fresh Button.
func (b *Button) Reset() {
	b.lastRaw = false
	b.rawChangedAt = 0
	b.stable = false
	b.state = stateIdle
	b.enteredAt = 0
	b.clicks = 0
}

// IsIdle reports whether the FSM is between gestures. Power-sensitive
// callers use this to gate low-power transitions: while idle, a slower
// poll rate (with edge wake) loses no gestures.
func (b *Button) IsIdle() bool {
	return b.state == stateIdle
}

// SetDebounceTime changes the debounce settle time. Affects future
// transitions only.
func (b *Button) SetDebounceTime(d time.Duration) {
	b.debounceMs = uint32(d.Milliseconds())
}

// SetClickWindow changes the maximum gap between clicks of one group.
func (b *Button) SetClickWindow(d time.Duration) {
	b.clickMs = uint32(d.Milliseconds())
}

// SetPressThreshold changes the held duration that classifies a long press.
func (b *Button) SetPressThreshold(d time.Duration) {
	b.pressMs = uint32(d.Milliseconds())
}

// OnClick registers the single-click callback. At most one callback per
// kind is stored; re-registering replaces the previous one.
func (b *Button) OnClick(fn Callback) {
	b.clickFunc = fn
}

// OnDoubleClick registers the double-click callback.
func (b *Button) OnDoubleClick(fn Callback) {
	b.doubleClickFunc = fn
}

// OnLongPressStart registers the callback fired once, at the moment a held
// press crosses the press threshold. There is no long-press-end callback.
func (b *Button) OnLongPressStart(fn Callback) {
	b.longPressStartFunc = fn
}
