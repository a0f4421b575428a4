package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	sessionExpiryDurationMs = 24 * 60 * 60 * 1000 // 1 day in milliseconds
	sessionsSweepInterval   = 1 * time.Hour
)

// SessionsService keeps dashboard login sessions in memory. They do not survive a restart.
type SessionsService struct {
	activeSessions map[string]int64
	mu             sync.RWMutex
	clock          clockwork.Clock
	ticker         clockwork.Ticker
	done           chan struct{}
}

func NewSessionsService(clock clockwork.Clock) *SessionsService {
	ss := &SessionsService{
		activeSessions: make(map[string]int64),
		clock:          clock,
		ticker:         clock.NewTicker(sessionsSweepInterval),
		done:           make(chan struct{}),
	}

	go func() {
		for {
			select {
			case <-ss.ticker.Chan():
				// the tick time lags behind the clock when ticks were dropped
				ss.sweep(ss.clock.Now().UnixMilli())
			case <-ss.done:
				return
			}
		}
	}()

	return ss
}

func (ss *SessionsService) CreateSession() (string, int64) {
	sessionId := uuid.New().String()
	expiresAt := ss.clock.Now().UnixMilli() + sessionExpiryDurationMs

	ss.mu.Lock()
	ss.activeSessions[sessionId] = expiresAt
	ss.mu.Unlock()

	return sessionId, expiresAt
}

func (ss *SessionsService) IsSessionValid(sessionId string) bool {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	if expiry, exists := ss.activeSessions[sessionId]; exists {
		if ss.clock.Now().UnixMilli() < expiry {
			return true
		}
	}
	return false
}

func (ss *SessionsService) InvalidateSession(sessionId string) {
	ss.mu.Lock()
	delete(ss.activeSessions, sessionId)
	ss.mu.Unlock()
}

func (ss *SessionsService) sweep(nowMs int64) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	for sessionId, expiry := range ss.activeSessions {
		if expiry < nowMs {
			delete(ss.activeSessions, sessionId)
		}
	}
}

func (ss *SessionsService) Close() error {
	ss.ticker.Stop()
	close(ss.done)
	return nil
}
