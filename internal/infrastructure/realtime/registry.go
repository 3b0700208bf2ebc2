package realtime

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Broadcaster fans out a serialized event to every open connection in a
// thread, returning the number of deliveries.
type Broadcaster interface {
	Broadcast(threadID string, payload []byte) int
}

// Registry owns the set of live connections per thread. It is constructed in
// main and injected; there is no ambient global state. Thread rooms are
// created on first join and torn down when the last connection leaves.
type Registry struct {
	log      *zap.Logger
	interval time.Duration

	mu      sync.RWMutex
	threads map[string]*threadRoom

	onEmpty func(threadID string)

	done     chan struct{}
	stopOnce sync.Once
}

// threadRoom guards one thread's connection set. Broadcast holds the room
// lock for the whole fan-out so events keep the order in which they were
// accepted; the liveness sweep takes the same lock.
type threadRoom struct {
	mu    sync.Mutex
	conns map[string]*Connection // keyed by connection ID
}

// NewRegistry constructs a Registry whose liveness sweep runs every interval.
func NewRegistry(log *zap.Logger, interval time.Duration) *Registry {
	return &Registry{
		log:      log,
		interval: interval,
		threads:  make(map[string]*threadRoom),
		done:     make(chan struct{}),
	}
}

// OnThreadEmpty registers a hook invoked after the last connection of a
// thread is removed. Set before Start.
func (r *Registry) OnThreadEmpty(fn func(threadID string)) { r.onEmpty = fn }

// Start launches the background liveness sweep.
func (r *Registry) Start() {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.done:
				return
			case <-ticker.C:
				r.sweepOnce()
			}
		}
	}()
}

// Close stops the sweep and terminates every tracked connection.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.done) })

	r.mu.Lock()
	rooms := r.threads
	r.threads = make(map[string]*threadRoom)
	r.mu.Unlock()

	for _, room := range rooms {
		room.mu.Lock()
		for _, c := range room.conns {
			c.Close(1001, "server shutdown")
		}
		room.conns = make(map[string]*Connection)
		room.mu.Unlock()
	}
}

// Join adds a connection to its thread's set, starts its write loop, and
// watches for close so removal is prompt even if the caller forgets Leave.
func (r *Registry) Join(threadID string, c *Connection) {
	// The insert happens under the registry lock: a concurrent last-leave
	// teardown takes the same lock, so it can never drop the room between
	// the lookup and the insert and strand the connection in a room the
	// registry no longer tracks.
	r.mu.Lock()
	room := r.threads[threadID]
	if room == nil {
		room = &threadRoom{conns: make(map[string]*Connection)}
		r.threads[threadID] = room
	}
	room.mu.Lock()
	room.conns[c.ID] = c
	room.mu.Unlock()
	r.mu.Unlock()

	c.Start()

	go func() {
		<-c.Closed()
		r.Leave(threadID, c)
	}()
}

// Leave removes a connection from its thread. It is idempotent: leaving an
// already-removed connection is a no-op.
func (r *Registry) Leave(threadID string, c *Connection) {
	r.mu.Lock()
	room := r.threads[threadID]
	r.mu.Unlock()
	if room == nil {
		return
	}

	room.mu.Lock()
	_, present := room.conns[c.ID]
	delete(room.conns, c.ID)
	empty := len(room.conns) == 0
	room.mu.Unlock()

	if !present {
		return
	}

	if empty {
		r.mu.Lock()
		// Re-check under the registry lock: a concurrent Join may have
		// repopulated the room.
		room.mu.Lock()
		if len(room.conns) == 0 {
			delete(r.threads, threadID)
		} else {
			empty = false
		}
		room.mu.Unlock()
		r.mu.Unlock()
	}

	if empty && r.onEmpty != nil {
		r.onEmpty(threadID)
	}
}

// Broadcast sends payload to every open connection in the thread. Connections
// that are closed or backlogged are skipped; one failed send never aborts
// delivery to the others.
func (r *Registry) Broadcast(threadID string, payload []byte) int {
	r.mu.RLock()
	room := r.threads[threadID]
	r.mu.RUnlock()
	if room == nil {
		return 0
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	delivered := 0
	for _, c := range room.conns {
		if err := c.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// NotifyUser delivers payload to every open connection of one user in the
// thread. Used for targeted events such as mention notifications.
func (r *Registry) NotifyUser(threadID, userID string, payload []byte) int {
	r.mu.RLock()
	room := r.threads[threadID]
	r.mu.RUnlock()
	if room == nil {
		return 0
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	delivered := 0
	for _, c := range room.conns {
		if c.UserID != userID {
			continue
		}
		if err := c.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Connections returns the number of live connections on the thread.
func (r *Registry) Connections(threadID string) int {
	r.mu.RLock()
	room := r.threads[threadID]
	r.mu.RUnlock()
	if room == nil {
		return 0
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return len(room.conns)
}

// UserConnections returns how many open connections userID holds on the
// thread. Presence cleanup on close consults this so an indicator survives as
// long as any of the user's sockets do.
func (r *Registry) UserConnections(threadID, userID string) int {
	r.mu.RLock()
	room := r.threads[threadID]
	r.mu.RUnlock()
	if room == nil {
		return 0
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	n := 0
	for _, c := range room.conns {
		if c.UserID == userID {
			n++
		}
	}
	return n
}

// sweepOnce pings every connection and terminates any that failed to answer
// the previous ping.
func (r *Registry) sweepOnce() {
	r.mu.RLock()
	rooms := make(map[string]*threadRoom, len(r.threads))
	for id, room := range r.threads {
		rooms[id] = room
	}
	r.mu.RUnlock()

	for threadID, room := range rooms {
		var dead []*Connection

		room.mu.Lock()
		for _, c := range room.conns {
			if !c.swapAlive() {
				dead = append(dead, c)
				continue
			}
			if err := c.ping(); err != nil {
				dead = append(dead, c)
			}
		}
		room.mu.Unlock()

		for _, c := range dead {
			r.log.Info("terminating unresponsive connection",
				zap.String("thread_id", threadID),
				zap.String("connection_id", c.ID))
			c.Close(1006, "liveness probe failed")
			r.Leave(threadID, c)
		}
	}
}
