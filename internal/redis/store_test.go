package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bits/internal/domain"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() }) //nolint:errcheck
	return mr, client
}

func TestLockStore_AcquireRelease(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewLockStore(client)
	ctx := context.Background()

	token, ok, err := store.AcquireLedgerLock(ctx, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = store.AcquireLedgerLock(ctx, time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "lock is already held")

	require.NoError(t, store.ReleaseLedgerLock(ctx, token))
	_, ok, err = store.AcquireLedgerLock(ctx, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Second)
	_, ok, err = store.AcquireLedgerLock(ctx, time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "lock expires after its ttl")
}

func TestLockStore_StaleReleaseKeepsNewHolder(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewLockStore(client)
	ctx := context.Background()

	first, ok, err := store.AcquireLedgerLock(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)
	second, ok, err := store.AcquireLedgerLock(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEqual(t, first, second)

	require.NoError(t, store.ReleaseLedgerLock(ctx, first))
	held, err := mr.Get(ledgerLockKey)
	require.NoError(t, err)
	assert.Equal(t, second, held, "expired holder must not release the new lock")

	_, ok, err = store.AcquireLedgerLock(ctx, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.ReleaseLedgerLock(ctx, second))
	assert.False(t, mr.Exists(ledgerLockKey))
}

func TestLocationStore_IndexedIncidents(t *testing.T) {
	_, client := newTestClient(t)
	store := NewLocationStore(client)
	ctx := context.Background()

	ids, err := store.IndexedIncidents(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.AddIncident(ctx, 7, 33.3209, 44.3661))
	require.NoError(t, store.AddIncident(ctx, 9, 33.3089, 44.3432))
	ids, err = store.IndexedIncidents(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{7, 9}, ids)
}

func TestLocationStore_FindNearbyIncidents(t *testing.T) {
	_, client := newTestClient(t)
	store := NewLocationStore(client)
	ctx := context.Background()

	require.NoError(t, store.AddIncident(ctx, 1, 33.3209, 44.3661)) // Mansour
	require.NoError(t, store.AddIncident(ctx, 2, 33.3089, 44.3432)) // Jadriya
	require.NoError(t, store.AddIncident(ctx, 3, 33.4500, 44.2000)) // far away

	found, err := store.FindNearbyIncidents(ctx, 33.3209, 44.3661, 5)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, int64(1), found[0].IncidentID)
	assert.Equal(t, int64(2), found[1].IncidentID)
	assert.InDelta(t, 0, found[0].DistanceKm, 0.01)
	assert.InDelta(t, 2.51, found[1].DistanceKm, 0.05)

	require.NoError(t, store.RemoveIncident(ctx, 2))
	found, err = store.FindNearbyIncidents(ctx, 33.3209, 44.3661, 5)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(1), found[0].IncidentID)
}

func TestCacheStore_CurrentWeather_SamplesOncePerTTL(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewCacheStore(client)
	ctx := context.Background()

	samples := 0
	sample := func() domain.Weather {
		samples++
		if samples == 1 {
			return domain.WeatherHeavyRain
		}
		return domain.WeatherClear
	}

	w, err := store.CurrentWeather(ctx, sample, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, domain.WeatherHeavyRain, w)

	w, err = store.CurrentWeather(ctx, sample, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, domain.WeatherHeavyRain, w)
	assert.Equal(t, 1, samples)

	mr.FastForward(2 * time.Minute)
	w, err = store.CurrentWeather(ctx, sample, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, domain.WeatherClear, w)
	assert.Equal(t, 2, samples)
}

func TestCacheStore_SetWeather(t *testing.T) {
	_, client := newTestClient(t)
	store := NewCacheStore(client)
	ctx := context.Background()

	require.NoError(t, store.SetWeather(ctx, domain.WeatherSandstorm, time.Minute))
	w, err := store.CurrentWeather(ctx, func() domain.Weather { return domain.WeatherClear }, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, domain.WeatherSandstorm, w)
}

func TestCacheStore_Sessions(t *testing.T) {
	_, client := newTestClient(t)
	store := NewCacheStore(client)
	ctx := context.Background()

	missing, err := store.GetSession(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	state := &domain.SessionState{
		ID:         "s-1",
		CurrentTab: "pricing",
		ChatHistory: []domain.ChatMessage{
			{Role: "user", Text: "hello"},
		},
		LastQuote: &domain.RouteQuote{Origin: "Mansour", Destination: "Jadriya"},
	}
	require.NoError(t, store.SaveSession(ctx, state))

	got, err := store.GetSession(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "pricing", got.CurrentTab)
	require.Len(t, got.ChatHistory, 1)
	assert.Equal(t, "hello", got.ChatHistory[0].Text)
	require.NotNil(t, got.LastQuote)
	assert.Equal(t, "Jadriya", got.LastQuote.Destination)
}

func TestEventBus_PublishSubscribe(t *testing.T) {
	_, client := newTestClient(t)
	bus := NewEventBus(client)
	ctx := context.Background()

	sub := bus.Subscribe(ctx)
	defer sub.Close() //nolint:errcheck
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, bus.PublishIncidentEvent(ctx, domain.IncidentEvent{
		Type:       domain.IncidentAdded,
		IncidentID: 7,
		Zone:       "Karrada",
	}))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, LiveChannel, msg.Channel)
		assert.Contains(t, msg.Payload, `"incident_added"`)
		assert.Contains(t, msg.Payload, `"incident_id":7`)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}
