package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// fakeRedis implements the commands the cache issues. Any other call panics
// through the nil embedded interface.
type fakeRedis struct {
	redis.Cmdable

	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	sets   int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	default:
		return redis.NewStatusResult("", errors.New("unsupported value"))
	}
	f.ttls[key] = expiration
	f.sets++
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, _ := strconv.ParseInt(f.data[key], 10, 64)
	n++
	f.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) entryKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.data {
		if !strings.HasSuffix(k, ":gen") {
			keys = append(keys, k)
		}
	}
	return keys
}

type countingLoader struct {
	calls    int
	listings [][]*model.Schedule
	before   func()
}

func (l *countingLoader) load(context.Context) ([]*model.Schedule, error) {
	if l.before != nil {
		l.before()
	}
	listing := l.listings[min(l.calls, len(l.listings)-1)]
	l.calls++
	return listing, nil
}

func listing(seats int) []*model.Schedule {
	return []*model.Schedule{{
		ID:             1,
		Price:          model.MoneyFromUnits(350000),
		AvailableSeats: seats,
		Status:         model.ScheduleStatusActive,
		DepartureTime:  time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC),
		Route:          &model.Route{DeparturePort: "Bali", DestinationPort: "Lombok"},
	}}
}

func TestGetOrLoadRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rdb := newFakeRedis()
	c := NewScheduleCache(rdb, 30*time.Second, zaptest.NewLogger(t))
	filter := model.ScheduleFilter{DeparturePort: "Bali"}
	loader := &countingLoader{listings: [][]*model.Schedule{listing(5)}}

	got, err := c.GetOrLoad(ctx, filter, loader.load)
	require.NoError(t, err)
	require.Equal(t, 1, loader.calls)
	require.Len(t, got, 1)

	got, err = c.GetOrLoad(ctx, filter, loader.load)
	require.NoError(t, err)
	require.Equal(t, 1, loader.calls)
	require.Len(t, got, 1)
	require.Equal(t, 5, got[0].AvailableSeats)
	require.Equal(t, model.MoneyFromUnits(350000), got[0].Price)
	require.Equal(t, "Bali → Lombok", got[0].Route.Name())

	keys := rdb.entryKeys()
	require.Len(t, keys, 1)
	require.Equal(t, 30*time.Second, rdb.ttls[keys[0]])

	// Another filter is a separate entry.
	_, err = c.GetOrLoad(ctx, model.ScheduleFilter{DeparturePort: "Lombok"}, loader.load)
	require.NoError(t, err)
	require.Equal(t, 2, loader.calls)
}

func TestInvalidateForcesReload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewScheduleCache(newFakeRedis(), time.Minute, zaptest.NewLogger(t))
	filter := model.ScheduleFilter{}
	loader := &countingLoader{listings: [][]*model.Schedule{listing(5), listing(2)}}

	_, err := c.GetOrLoad(ctx, filter, loader.load)
	require.NoError(t, err)

	c.Invalidate(ctx)

	got, err := c.GetOrLoad(ctx, filter, loader.load)
	require.NoError(t, err)
	require.Equal(t, 2, loader.calls)
	require.Equal(t, 2, got[0].AvailableSeats)
}

func TestInvalidateDuringLoadDiscardsStaleListing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewScheduleCache(newFakeRedis(), time.Minute, zaptest.NewLogger(t))
	filter := model.ScheduleFilter{}

	// A booking commits and invalidates while the first listing is being read.
	loader := &countingLoader{listings: [][]*model.Schedule{listing(5), listing(2)}}
	loader.before = func() {
		if loader.calls == 0 {
			c.Invalidate(ctx)
		}
	}

	got, err := c.GetOrLoad(ctx, filter, loader.load)
	require.NoError(t, err)
	require.Equal(t, 5, got[0].AvailableSeats)

	got, err = c.GetOrLoad(ctx, filter, loader.load)
	require.NoError(t, err)
	require.Equal(t, 2, loader.calls)
	require.Equal(t, 2, got[0].AvailableSeats)

	got, err = c.GetOrLoad(ctx, filter, loader.load)
	require.NoError(t, err)
	require.Equal(t, 2, loader.calls)
	require.Equal(t, 2, got[0].AvailableSeats)
}

func TestCorruptEntryIsReloaded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rdb := newFakeRedis()
	c := NewScheduleCache(rdb, time.Minute, zaptest.NewLogger(t))
	filter := model.ScheduleFilter{DestinationPort: "Gili Air"}
	rdb.data[entryKey(defaultPrefix, 0, filter)] = "{not json"
	loader := &countingLoader{listings: [][]*model.Schedule{listing(3)}}

	got, err := c.GetOrLoad(ctx, filter, loader.load)
	require.NoError(t, err)
	require.Equal(t, 1, loader.calls)
	require.Equal(t, 3, got[0].AvailableSeats)

	_, err = c.GetOrLoad(ctx, filter, loader.load)
	require.NoError(t, err)
	require.Equal(t, 1, loader.calls)
}

func TestReadErrorFallsBackToLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rdb := newFakeRedis()
	rdb.getErr = errors.New("connection refused")
	c := NewScheduleCache(rdb, time.Minute, zaptest.NewLogger(t))
	loader := &countingLoader{listings: [][]*model.Schedule{listing(4)}}

	for i := 1; i <= 2; i++ {
		got, err := c.GetOrLoad(ctx, model.ScheduleFilter{}, loader.load)
		require.NoError(t, err)
		require.Equal(t, 4, got[0].AvailableSeats)
		require.Equal(t, i, loader.calls)
	}
	require.Zero(t, rdb.sets)
}

func TestLoadErrorIsReturnedAndNotCached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rdb := newFakeRedis()
	c := NewScheduleCache(rdb, time.Minute, zaptest.NewLogger(t))
	boom := errors.New("database down")

	_, err := c.GetOrLoad(ctx, model.ScheduleFilter{}, func(context.Context) ([]*model.Schedule, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	require.Zero(t, rdb.sets)
}

func TestDisabledCacheAlwaysLoads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	filter := model.ScheduleFilter{DeparturePort: "Harbor"}

	for _, c := range []*ScheduleCache{nil, NewScheduleCache(nil, time.Minute, zap.NewNop())} {
		loader := &countingLoader{listings: [][]*model.Schedule{listing(1)}}
		c.Invalidate(ctx)
		for i := 1; i <= 2; i++ {
			got, err := c.GetOrLoad(ctx, filter, loader.load)
			require.NoError(t, err)
			require.Len(t, got, 1)
			require.Equal(t, i, loader.calls)
		}
	}
}

func TestEntryKeyDependsOnFilterAndGeneration(t *testing.T) {
	t.Parallel()

	a := model.ScheduleFilter{DeparturePort: "Harbor", DepartureDate: "2026-11-02"}
	b := model.ScheduleFilter{DeparturePort: "Harbor", DepartureDate: "2026-11-03"}

	require.Equal(t, entryKey("p", 0, a), entryKey("p", 0, a))
	require.NotEqual(t, entryKey("p", 0, a), entryKey("p", 0, b))
	require.NotEqual(t, entryKey("p", 0, a), entryKey("p", 1, a))
	require.Regexp(t, `^p:1:[0-9a-f]{40}$`, entryKey("p", 1, a))
}
