// Package room tracks live matches by join code.
package room

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unoarena/server/internal/game"
	"github.com/unoarena/server/internal/models"
)

// Manager is the directory of live rooms, keyed by join code. Safe for
// concurrent use.
type Manager struct {
	// TurnDuration overrides the default turn clock on new games when set.
	TurnDuration time.Duration

	mu    sync.RWMutex
	rooms map[string]*game.Game
	users game.UserStore
	rng   *rand.Rand
	log   *logrus.Entry
}

func NewManager(users game.UserStore) *Manager {
	return &Manager{
		rooms: make(map[string]*game.Game),
		users: users,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		log:   logrus.WithField("component", "rooms"),
	}
}

// CreateRoom registers a new room with the host seated as its first player.
// An empty forcedCode generates a fresh 4-digit one; a forced code that is
// already taken returns nils.
func (m *Manager) CreateRoom(hostName, hostID, forcedCode string, avatarID int, mode models.GameMode) (*game.Game, *models.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()

	code := forcedCode
	if code == "" {
		code = m.generateCode()
	} else if _, taken := m.rooms[code]; taken {
		return nil, nil
	}

	g := m.newGame(code, mode)
	host := g.AddPlayer(hostName, false, hostID, avatarID)
	if host == nil {
		return nil, nil
	}
	m.rooms[code] = g
	m.log.WithFields(logrus.Fields{"code": code, "mode": mode, "host": hostName}).Info("room created")
	return g, host
}

// JoinRoom seats a player in an existing room. Returns nils when the room
// is missing or the engine rejects the seat (full, started, name taken).
func (m *Manager) JoinRoom(code, name, externalID string, avatarID int) (*game.Game, *models.Player) {
	g := m.GetRoom(code)
	if g == nil {
		return nil, nil
	}
	p := g.AddPlayer(name, false, externalID, avatarID)
	if p == nil {
		return nil, nil
	}
	return g, p
}

// newGame constructs a game with the manager's overrides applied.
func (m *Manager) newGame(code string, mode models.GameMode) *game.Game {
	g := game.New(code, mode, m.users)
	if m.TurnDuration > 0 {
		g.TurnDuration = m.TurnDuration
	}
	return g
}

// GetRoom returns the room for code, or nil.
func (m *Manager) GetRoom(code string) *game.Game {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[code]
}

// RemoveRoom drops the room for code, if present.
func (m *Manager) RemoveRoom(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, code)
}

// Count returns the number of live rooms.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Reap removes rooms whose match finished more than retention ago and
// returns how many were dropped.
func (m *Manager) Reap(retention time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for code, g := range m.rooms {
		done, endedAt := g.Finished()
		if done && time.Since(endedAt) > retention {
			delete(m.rooms, code)
			removed++
		}
	}
	if removed > 0 {
		m.log.WithField("removed", removed).Info("reaped finished rooms")
	}
	return removed
}

// generateCode picks an unused 4-digit join code. Assumes lock held.
func (m *Manager) generateCode() string {
	for {
		code := fmt.Sprintf("%d", 1000+m.rng.Intn(9000))
		if _, taken := m.rooms[code]; !taken {
			return code
		}
	}
}
