package redis

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// SeenCache caches each user's answered question ids in Redis and falls back
// to the wrapped repository on a miss.
// Ids are stored as:        SADD quiz:seen:{userID} {questionID}
// A loaded set is marked by: SET  quiz:seen:{userID}:loaded 1
// The marker distinguishes "never answered anything" from a cold cache.
type SeenCache struct {
	app.InteractionRepository

	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSeenCache(client *redis.Client, next app.InteractionRepository, ttl time.Duration) *SeenCache {
	return &SeenCache{
		InteractionRepository: next,
		client:                client,
		ttl:                   ttl,
		rnd:                   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *SeenCache) SeenQuestionIDs(ctx context.Context, userID int64) ([]int, error) {
	if ids, ok := c.cached(ctx, userID); ok {
		return ids, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(userID, 10), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if ids, ok := c.cached(ctx, userID); ok {
			return ids, nil
		}

		ids, err := c.InteractionRepository.SeenQuestionIDs(ctx, userID)
		if err != nil {
			return nil, err
		}

		ttl := c.ttlWithJitter()
		pipe := c.client.TxPipeline()
		pipe.Del(ctx, c.setKey(userID))
		if len(ids) > 0 {
			members := make([]interface{}, len(ids))
			for i, id := range ids {
				members[i] = id
			}
			pipe.SAdd(ctx, c.setKey(userID), members...)
		}
		pipe.Set(ctx, c.markerKey(userID), "1", 0)
		if ttl > 0 {
			pipe.Expire(ctx, c.setKey(userID), ttl)
			pipe.Expire(ctx, c.markerKey(userID), ttl)
		}
		_, _ = pipe.Exec(ctx)

		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]int), nil
}

// Append records the interaction and, when the user's set is already cached,
// adds the question id to it.
func (c *SeenCache) Append(ctx context.Context, interaction domain.Interaction) (domain.Interaction, error) {
	recorded, err := c.InteractionRepository.Append(ctx, interaction)
	if err != nil {
		return recorded, err
	}
	if n, err := c.client.Exists(ctx, c.markerKey(recorded.UserID)).Result(); err == nil && n > 0 {
		_ = c.client.SAdd(ctx, c.setKey(recorded.UserID), recorded.QuestionID).Err()
	}
	return recorded, nil
}

func (c *SeenCache) cached(ctx context.Context, userID int64) ([]int, bool) {
	n, err := c.client.Exists(ctx, c.markerKey(userID)).Result()
	if err != nil || n == 0 {
		return nil, false
	}
	members, err := c.client.SMembers(ctx, c.setKey(userID)).Result()
	if err != nil {
		return nil, false
	}
	ids := make([]int, 0, len(members))
	for _, m := range members {
		if id, err := strconv.Atoi(m); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, true
}

func (c *SeenCache) setKey(userID int64) string {
	return "quiz:seen:" + strconv.FormatInt(userID, 10)
}

func (c *SeenCache) markerKey(userID int64) string {
	return c.setKey(userID) + ":loaded"
}

func (c *SeenCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
