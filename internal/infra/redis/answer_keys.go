package redis

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"campus-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// AnswerKeyLoader fetches a quiz's answer key from the backing store.
type AnswerKeyLoader interface {
	LoadAnswerKey(ctx context.Context, quizID int64) (domain.AnswerKey, error)
}

// AnswerKeyCache caches per-quiz answer keys in redis (hash per quiz) and
// falls back to a loader on cache miss.
// Correct options are stored as: HSET quiz:{quizID}:answers {questionID} {option}
// Marks are stored as:           HSET quiz:{quizID}:marks   {questionID} {marks}
type AnswerKeyCache struct {
	client *redis.Client
	loader AnswerKeyLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewAnswerKeyCache(client *redis.Client, loader AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerKeyCache) GetAnswerKey(ctx context.Context, quizID int64) (domain.AnswerKey, error) {
	answersKey := c.answersKey(quizID)
	marksKey := c.marksKey(quizID)

	answers, err := c.client.HGetAll(ctx, answersKey).Result()
	if err == nil && len(answers) > 0 {
		marks, _ := c.client.HGetAll(ctx, marksKey).Result()
		return buildKeyFromCache(quizID, answers, marks), nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(quizID, 10), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		answers, err := c.client.HGetAll(ctx, answersKey).Result()
		if err == nil && len(answers) > 0 {
			marks, _ := c.client.HGetAll(ctx, marksKey).Result()
			return buildKeyFromCache(quizID, answers, marks), nil
		}

		key, err := c.loader.LoadAnswerKey(ctx, quizID)
		if err != nil {
			return domain.AnswerKey{}, err
		}
		if len(key.Correct) == 0 {
			// Nothing to hash; an empty quiz is served straight from the loader.
			return key, nil
		}

		ttl := c.ttlWithJitter()
		pipe := c.client.Pipeline()
		for questionID, correct := range key.Correct {
			field := strconv.FormatInt(questionID, 10)
			pipe.HSet(ctx, answersKey, field, correct)
			pipe.HSet(ctx, marksKey, field, key.Marks[questionID])
		}
		if ttl > 0 {
			pipe.Expire(ctx, answersKey, ttl)
			pipe.Expire(ctx, marksKey, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return key, nil
	})
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return result.(domain.AnswerKey), nil
}

func (c *AnswerKeyCache) Invalidate(ctx context.Context, quizID int64) error {
	return c.client.Del(ctx, c.answersKey(quizID), c.marksKey(quizID)).Err()
}

func (c *AnswerKeyCache) answersKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":answers"
}

func (c *AnswerKeyCache) marksKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":marks"
}

func buildKeyFromCache(quizID int64, answers, marks map[string]string) domain.AnswerKey {
	key := domain.AnswerKey{
		QuizID:  quizID,
		Correct: make(map[int64]int, len(answers)),
		Marks:   make(map[int64]int, len(answers)),
	}
	for field, raw := range answers {
		questionID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		correct, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		key.Correct[questionID] = correct
		key.Marks[questionID] = 1
		if rawMarks, ok := marks[field]; ok {
			if m, err := strconv.Atoi(rawMarks); err == nil && m > 0 {
				key.Marks[questionID] = m
			}
		}
	}
	return key
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
