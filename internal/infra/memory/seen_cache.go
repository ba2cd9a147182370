package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// SeenCache caches each user's historical-seen set with a TTL to avoid a
// database round trip on every pick. Appends go through to the wrapped
// repository and then extend a cached set in place.
type SeenCache struct {
	app.InteractionRepository
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand
	rndMu sync.Mutex

	mu    sync.RWMutex
	cache map[int64]cachedSeen
	// ids appended while a fill for the user is loading
	filling map[int64]map[int]struct{}
}

type cachedSeen struct {
	ids       map[int]struct{}
	expiresAt time.Time
}

func NewSeenCache(next app.InteractionRepository, ttl time.Duration) *SeenCache {
	return &SeenCache{
		InteractionRepository: next,
		ttl:                   ttl,
		clock:                 time.Now,
		rnd:                   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:                 make(map[int64]cachedSeen),
		filling:               make(map[int64]map[int]struct{}),
	}
}

func (c *SeenCache) SeenQuestionIDs(ctx context.Context, userID int64) ([]int, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[userID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return idsOf(entry.ids), nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(strconv.FormatInt(userID, 10), func() (interface{}, error) {
		now := c.clock()
		c.mu.Lock()
		if entry, ok := c.cache[userID]; ok && entry.expiresAt.After(now) {
			c.mu.Unlock()
			return idsOf(entry.ids), nil
		}
		c.filling[userID] = make(map[int]struct{})
		c.mu.Unlock()

		ids, err := c.InteractionRepository.SeenQuestionIDs(ctx, userID)

		c.mu.Lock()
		defer c.mu.Unlock()
		appended := c.filling[userID]
		delete(c.filling, userID)
		if err != nil {
			return nil, err
		}

		set := make(map[int]struct{}, len(ids)+len(appended))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		for id := range appended {
			set[id] = struct{}{}
		}
		c.cache[userID] = cachedSeen{
			ids:       set,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		return idsOf(set), nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]int), nil
}

func (c *SeenCache) Append(ctx context.Context, interaction domain.Interaction) (domain.Interaction, error) {
	saved, err := c.InteractionRepository.Append(ctx, interaction)
	if err != nil {
		return saved, err
	}
	c.mu.Lock()
	if entry, ok := c.cache[saved.UserID]; ok {
		entry.ids[saved.QuestionID] = struct{}{}
	}
	if pending, ok := c.filling[saved.UserID]; ok {
		pending[saved.QuestionID] = struct{}{}
	}
	c.mu.Unlock()
	return saved, nil
}

func (c *SeenCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func idsOf(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
