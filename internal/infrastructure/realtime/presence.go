package realtime

import (
	"sync"
	"time"

	"go.uber.org/zap"

	thread "go-agora/internal/pkg/thread/domain"
)

type typingEntry struct {
	userName string
	at       time.Time
}

// PresenceTracker keeps the ephemeral per-thread map of who is typing. Entries
// expire after a fixed TTL of inactivity, independent of client disconnect;
// the tracker owns its sweep ticker and is cancellable so tests and shutdown
// never leak background work.
type PresenceTracker struct {
	log         *zap.Logger
	broadcaster Broadcaster
	ttl         time.Duration
	tick        time.Duration

	mu      sync.Mutex
	threads map[string]map[string]typingEntry // threadID -> userID -> entry

	done     chan struct{}
	stopOnce sync.Once
}

// NewPresenceTracker constructs a tracker expiring indicators after ttl,
// scanning on every tick.
func NewPresenceTracker(log *zap.Logger, b Broadcaster, ttl, tick time.Duration) *PresenceTracker {
	return &PresenceTracker{
		log:         log,
		broadcaster: b,
		ttl:         ttl,
		tick:        tick,
		threads:     make(map[string]map[string]typingEntry),
		done:        make(chan struct{}),
	}
}

// Start launches the expiry sweep.
func (p *PresenceTracker) Start() {
	go func() {
		ticker := time.NewTicker(p.tick)
		defer ticker.Stop()
		for {
			select {
			case <-p.done:
				return
			case <-ticker.C:
				p.sweep(time.Now())
			}
		}
	}()
}

// Close stops the expiry sweep.
func (p *PresenceTracker) Close() {
	p.stopOnce.Do(func() { close(p.done) })
}

// RecordTyping upserts the user's indicator and immediately broadcasts
// USER_TYPING to the thread. Callers must have verified identity first.
func (p *PresenceTracker) RecordTyping(threadID, userID, userName string) {
	p.mu.Lock()
	users := p.threads[threadID]
	if users == nil {
		users = make(map[string]typingEntry)
		p.threads[threadID] = users
	}
	users[userID] = typingEntry{userName: userName, at: time.Now()}
	p.mu.Unlock()

	p.broadcaster.Broadcast(threadID, thread.Encode(thread.EventUserTyping, thread.TypingPayload{
		SectionID: threadID,
		UserID:    userID,
		UserName:  userName,
	}))
}

// ClearTyping removes the user's indicator and broadcasts USER_STOPPED_TYPING.
// Clearing an absent indicator is a no-op with no broadcast.
func (p *PresenceTracker) ClearTyping(threadID, userID string) {
	p.mu.Lock()
	users := p.threads[threadID]
	entry, ok := users[userID]
	if ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(p.threads, threadID)
		}
	}
	p.mu.Unlock()

	if !ok {
		return
	}
	p.broadcaster.Broadcast(threadID, thread.Encode(thread.EventUserStoppedTyping, thread.TypingPayload{
		SectionID: threadID,
		UserID:    userID,
		UserName:  entry.userName,
	}))
}

// DropThreadIfIdle removes the thread's map when it holds no indicators.
// Wired to the registry's empty-thread hook.
func (p *PresenceTracker) DropThreadIfIdle(threadID string) {
	p.mu.Lock()
	if users, ok := p.threads[threadID]; ok && len(users) == 0 {
		delete(p.threads, threadID)
	}
	p.mu.Unlock()
}

// Typing returns a snapshot of the thread's active indicators.
func (p *PresenceTracker) Typing(threadID string) []thread.TypingIndicator {
	p.mu.Lock()
	defer p.mu.Unlock()

	users := p.threads[threadID]
	out := make([]thread.TypingIndicator, 0, len(users))
	for userID, entry := range users {
		out = append(out, thread.TypingIndicator{
			UserID:      userID,
			UserName:    entry.userName,
			ThreadID:    threadID,
			TimestampMs: entry.at.UnixMilli(),
		})
	}
	return out
}

// sweep expires indicators older than the TTL, broadcasting
// USER_STOPPED_TYPING for each as if the user had explicitly stopped.
func (p *PresenceTracker) sweep(now time.Time) {
	type expired struct {
		threadID, userID, userName string
	}
	var gone []expired

	p.mu.Lock()
	for threadID, users := range p.threads {
		for userID, entry := range users {
			if now.Sub(entry.at) > p.ttl {
				gone = append(gone, expired{threadID, userID, entry.userName})
				delete(users, userID)
			}
		}
		if len(users) == 0 {
			delete(p.threads, threadID)
		}
	}
	p.mu.Unlock()

	for _, e := range gone {
		p.broadcaster.Broadcast(e.threadID, thread.Encode(thread.EventUserStoppedTyping, thread.TypingPayload{
			SectionID: e.threadID,
			UserID:    e.userID,
			UserName:  e.userName,
		}))
	}
}
