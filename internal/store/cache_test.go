package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/assessment-advisor/internal/model"
)

// fakeRedis is an in-memory RedisClient.
type fakeRedis struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
	gets   int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

// countingLookup is an in-memory AdviceLookup that counts calls.
type countingLookup struct {
	docs  map[string]string
	err   error
	calls int
}

func (c *countingLookup) Lookup(_ context.Context, qid string, cat model.AdviceCategory) (string, bool, error) {
	c.calls++
	if c.err != nil {
		return "", false, c.err
	}
	text, ok := c.docs[qid+"/"+string(cat)]
	return text, ok, nil
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "advice:question_03:Keep_Doing", CacheKey("question_03", model.KeepDoing))
}

func TestCachedLookup_MissThenHit(t *testing.T) {
	rdb := newFakeRedis()
	next := &countingLookup{docs: map[string]string{"question_00/Do_More": "cached text"}}
	c := NewCachedLookup(next, rdb, 10*time.Minute)
	ctx := context.Background()

	text, found, err := c.Lookup(ctx, "question_00", model.DoMore)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "cached text", text)
	assert.Equal(t, 10*time.Minute, rdb.ttls["advice:question_00:Do_More"])

	text, found, err = c.Lookup(ctx, "question_00", model.DoMore)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "cached text", text)
	assert.Equal(t, 1, next.calls)
}

func TestCachedLookup_NotFoundIsNotCached(t *testing.T) {
	rdb := newFakeRedis()
	next := &countingLookup{docs: map[string]string{}}
	c := NewCachedLookup(next, rdb, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, found, err := c.Lookup(ctx, "question_09", model.StartDoing)
		require.NoError(t, err)
		assert.False(t, found)
	}
	assert.Equal(t, 2, next.calls)
	assert.Empty(t, rdb.data)
}

func TestCachedLookup_RedisDownFallsThrough(t *testing.T) {
	rdb := newFakeRedis()
	rdb.getErr = errors.New("dial tcp: connection refused")
	rdb.setErr = errors.New("dial tcp: connection refused")
	next := &countingLookup{docs: map[string]string{"question_00/Do_More": "from store"}}
	c := NewCachedLookup(next, rdb, time.Minute)

	text, found, err := c.Lookup(context.Background(), "question_00", model.DoMore)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "from store", text)
}

func TestCachedLookup_StoreErrorPropagates(t *testing.T) {
	next := &countingLookup{err: errors.New("store down")}
	c := NewCachedLookup(next, newFakeRedis(), time.Minute)

	_, found, err := c.Lookup(context.Background(), "question_00", model.DoMore)
	require.Error(t, err)
	assert.False(t, found)
}

func TestCachedLookup_InvalidKey(t *testing.T) {
	rdb := newFakeRedis()
	next := &countingLookup{}
	c := NewCachedLookup(next, rdb, time.Minute)

	_, found, err := c.Lookup(context.Background(), "", model.DoMore)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, rdb.gets)
	assert.Zero(t, next.calls)
}
