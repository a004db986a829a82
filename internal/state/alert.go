package state

import (
	"sync"
	"time"
)

// DefaultAlertDuration is how long a notice stays visible when no duration is configured.
const DefaultAlertDuration = 5 * time.Second

// Severity classifies a [Notice].
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Valid reports whether s is one of the four known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeveritySuccess, SeverityError, SeverityInfo, SeverityWarning:
		return true
	}
	return false
}

// Notice is a user-facing message.
type Notice struct {
	Message  string
	Severity Severity
}

// Alert holds at most one [Notice]. A new notice replaces the old one.
type Alert struct {
	duration time.Duration
	after    AfterFunc

	mu       sync.RWMutex
	notice   Notice
	visible  bool
	gen      uint64
	stop     func() bool
	onChange func()
}

// NewAlert creates an alert that dismisses each notice after duration. A non-positive
// duration disables auto-dismiss. after may be nil to use real timers.
func NewAlert(duration time.Duration, after AfterFunc) *Alert {
	return &Alert{duration: duration, after: orRealTimers(after)}
}

// OnChange registers fn to run after the notice is shown or cleared, including by the timer.
func (a *Alert) OnChange(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = fn
}

// Show replaces the current notice. An unknown severity is treated as an error;
// an empty message clears the alert.
func (a *Alert) Show(message string, severity Severity) {
	if message == "" {
		a.Clear()
		return
	}
	if !severity.Valid() {
		severity = SeverityError
	}

	a.mu.Lock()
	a.cancelLocked()
	a.gen++
	gen := a.gen
	a.notice = Notice{Message: message, Severity: severity}
	a.visible = true
	fn := a.onChange
	a.mu.Unlock()

	if fn != nil {
		fn()
	}
	if a.duration > 0 {
		a.schedule(gen)
	}
}

// schedule starts the dismiss timer for the notice shown as gen. The timer is created
// without holding the lock, so an [AfterFunc] may run its callback before returning.
func (a *Alert) schedule(gen uint64) {
	stop := a.after(a.duration, func() { a.expire(gen) })

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		stop()
		return
	}
	a.stop = stop
}

// Success shows a success notice.
func (a *Alert) Success(message string) { a.Show(message, SeveritySuccess) }

// Error shows an error notice.
func (a *Alert) Error(message string) { a.Show(message, SeverityError) }

// Info shows an informational notice.
func (a *Alert) Info(message string) { a.Show(message, SeverityInfo) }

// Warning shows a warning notice.
func (a *Alert) Warning(message string) { a.Show(message, SeverityWarning) }

// Clear dismisses the current notice and cancels its timer.
func (a *Alert) Clear() {
	a.mu.Lock()
	a.cancelLocked()
	a.gen++
	changed := a.visible
	a.notice, a.visible = Notice{}, false
	fn := a.onChange
	a.mu.Unlock()

	if changed && fn != nil {
		fn()
	}
}

// Current returns the visible notice, if any.
func (a *Alert) Current() (Notice, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.notice, a.visible
}

func (a *Alert) expire(gen uint64) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	a.gen++
	a.stop = nil
	a.notice, a.visible = Notice{}, false
	fn := a.onChange
	a.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (a *Alert) cancelLocked() {
	if a.stop != nil {
		a.stop()
		a.stop = nil
	}
}
