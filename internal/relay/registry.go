package relay

import "sync"

// Registry tracks joined clients and their nicknames. It is the source of
// truth for the roster: a client is listed here exactly while it is joined
// and its connection is still open. Roster order is join order.
//
// No uniqueness check is performed on nicknames; two clients may join under
// the same name.
type Registry struct {
	mu      sync.Mutex
	clients []*Client
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Join records the client under nickname. Callers must have validated that
// nickname is non-empty; a connection that never produces one is closed
// without ever joining.
func (r *Registry) Join(c *Client, nickname string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.Nickname = nickname
	r.clients = append(r.clients, c)
}

// Leave removes the client and returns its nickname. Idempotent: a second
// call (or a call for a client that never joined) reports false.
func (r *Registry) Leave(c *Client) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cl := range r.clients {
		if cl == c {
			r.clients = append(r.clients[:i], r.clients[i+1:]...)
			return cl.Nickname, true
		}
	}
	return "", false
}

// Snapshot returns a point-in-time copy of the joined clients, in join
// order. The copy stays valid under concurrent joins and leaves, so callers
// can iterate it without holding the registry lock.
func (r *Registry) Snapshot() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Client, len(r.clients))
	copy(out, r.clients)
	return out
}

// Nicknames returns the current roster in join order.
func (r *Registry) Nicknames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	nicks := make([]string, len(r.clients))
	for i, c := range r.clients {
		nicks[i] = c.Nickname
	}
	return nicks
}

// Len returns the number of joined clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
