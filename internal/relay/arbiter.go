package relay

import (
	"sync"

	"github.com/tkymnr/ptt-relay/pkg/protocol"
)

// Arbiter owns the exclusive talk token: at most one client is designated
// as talking at any instant. State is either idle (holder == "") or held by
// one nickname. Transitions and their announcements happen as a unit under
// the arbiter's own lock, which is never the registry lock; when a code
// path needs both, it takes the registry first and releases it before
// touching the arbiter.
//
// The notify callback announces transitions to the room. It must not block:
// the room's broadcast only queues onto per-client channels.
type Arbiter struct {
	mu     sync.Mutex
	holder string
	notify func(line string)
}

// NewArbiter creates an idle Arbiter announcing transitions via notify.
func NewArbiter(notify func(line string)) *Arbiter {
	return &Arbiter{notify: notify}
}

// RequestStart tries to claim the talk token for nick. On success the
// start is announced to the room and true is returned. A repeated start
// from the current holder is a no-op grant. If someone else holds the
// token, nothing changes and false is returned; the caller is responsible
// for telling the requester it lost.
func (a *Arbiter) RequestStart(nick string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.holder {
	case "":
		a.holder = nick
		a.notify(protocol.FormatStart(nick))
		return true
	case nick:
		return true
	default:
		return false
	}
}

// RequestStop releases the talk token if nick holds it, announcing the
// stop to the room. A stop from anyone else is ignored outright: no
// broadcast, no state change. Returns whether the token was released.
func (a *Arbiter) RequestStop(nick string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.holder != nick || nick == "" {
		return false
	}
	a.holder = ""
	a.notify(protocol.FormatStop(nick))
	return true
}

// ForceRelease runs on disconnect teardown so a talker that drops without
// sending a stop always gives the token back, with the room notified.
// Equivalent to RequestStop but named for its single call site.
func (a *Arbiter) ForceRelease(nick string) bool {
	return a.RequestStop(nick)
}

// Holder returns the nickname currently holding the talk token, or ""
// when the channel is idle.
func (a *Arbiter) Holder() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.holder
}
