package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"campus-quiz-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// SubjectListCache keeps one serialized subject listing with a TTL.
type SubjectListCache struct {
	ttl   time.Duration
	clock func() time.Time

	mu        sync.RWMutex
	payload   []byte
	expiresAt time.Time
}

func NewSubjectListCache(ttl time.Duration) *SubjectListCache {
	return &SubjectListCache{ttl: ttl, clock: time.Now}
}

func (c *SubjectListCache) Get(ctx context.Context) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.payload == nil || !c.expiresAt.After(c.clock()) {
		return nil, false
	}
	return c.payload, true
}

func (c *SubjectListCache) Set(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payload = payload
	c.expiresAt = c.clock().Add(c.ttl)
	return nil
}

func (c *SubjectListCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payload = nil
	return nil
}

// AnswerKeyLoader fetches a quiz's answer key from the backing store.
type AnswerKeyLoader interface {
	LoadAnswerKey(ctx context.Context, quizID int64) (domain.AnswerKey, error)
}

// AnswerKeyCache caches answer keys with TTL to keep the submission path
// off the question table.
type AnswerKeyCache struct {
	loader AnswerKeyLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[int64]cachedKey
}

type cachedKey struct {
	key       domain.AnswerKey
	expiresAt time.Time
}

func NewAnswerKeyCache(loader AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int64]cachedKey),
	}
}

func (c *AnswerKeyCache) GetAnswerKey(ctx context.Context, quizID int64) (domain.AnswerKey, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.key, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(sfKey(quizID), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.key, nil
		}
		c.mu.RUnlock()

		key, err := c.loader.LoadAnswerKey(ctx, quizID)
		if err != nil {
			return domain.AnswerKey{}, err
		}

		c.mu.Lock()
		c.cache[quizID] = cachedKey{key: key, expiresAt: now.Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return result.(domain.AnswerKey), nil
}

func (c *AnswerKeyCache) Invalidate(ctx context.Context, quizID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, quizID)
	return nil
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func sfKey(quizID int64) string {
	return "quiz-" + strconv.FormatInt(quizID, 10)
}
