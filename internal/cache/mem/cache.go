package mem

import (
	"sort"
	"sync"

	"github.com/goserg/doublesrating/internal/domain"
	"github.com/goserg/doublesrating/internal/normalize"
)

// Cache holds the latest player snapshot keyed by ID and by normalized name.
type Cache struct {
	mu     sync.RWMutex
	valid  bool
	byID   map[string]domain.Player
	byName map[string]string
}

func New() *Cache {
	return &Cache{
		byID:   make(map[string]domain.Player),
		byName: make(map[string]string),
	}
}

func (c *Cache) Update(players []domain.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byID = make(map[string]domain.Player, len(players))
	c.byName = make(map[string]string, len(players))
	for i := range players {
		c.byID[players[i].ID] = players[i]
		c.byName[normalize.Name(players[i].Name)] = players[i].ID
	}
	c.valid = true
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}

func (c *Cache) Valid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.valid
}

func (c *Cache) GetPlayerByName(name string) (domain.Player, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.byName[normalize.Name(name)]
	if !ok {
		return domain.Player{}, false
	}
	return c.byID[id], true
}

func (c *Cache) GetPlayer(id string) (domain.Player, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	player, ok := c.byID[id]
	return player, ok
}

// GetRatings returns visible players best first with RatingRank set.
func (c *Cache) GetRatings() []domain.Player {
	c.mu.RLock()
	players := make([]domain.Player, 0, len(c.byID))
	for _, player := range c.byID {
		if player.Hidden {
			continue
		}
		players = append(players, player)
	}
	c.mu.RUnlock()

	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Rating() != players[j].Rating() {
			return players[i].Rating() > players[j].Rating()
		}
		return players[i].Name < players[j].Name
	})
	for i := range players {
		players[i].RatingRank = i + 1
	}
	return players
}
