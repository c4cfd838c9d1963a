package contextstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	commonerrors "finchat/internal/common/errors"
	"finchat/internal/models"
)

func sampleContextJSON(c *models.ConversationContext) ([]byte, error) {
	return json.Marshal(c)
}

func sampleContext() *models.ConversationContext {
	c := models.NewConversationContext()
	c.LastIntent = models.IntentStockPrice
	c.Turn = 2
	entity := models.Entity{
		Type: models.EntityTicker, Text: "AAPL", Value: "AAPL",
		Start: 0, End: 4, Confidence: 1.0,
	}
	c.Slots["ticker"] = models.Slot{
		Name: "ticker", State: models.SlotFilled, Entity: &entity,
	}
	c.History = []models.Entity{entity}
	return c
}

// ==========================
// Memory Store Tests
// ==========================

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	saved := sampleContext()
	assert.NoError(t, store.Save(ctx, "conv-1", saved))

	loaded, err := store.Load(ctx, "conv-1")
	assert.NoError(t, err)
	assert.Equal(t, saved, loaded)

	// the store holds copies, not the caller's pointer
	saved.Turn = 99
	again, err := store.Load(ctx, "conv-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, again.Turn)
}

func TestMemoryStore_UnknownConversation(t *testing.T) {
	store := NewMemoryStore()

	loaded, err := store.Load(context.Background(), "nope")

	assert.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Equal(t, models.ContextVersion, loaded.Version)
	assert.Equal(t, 0, loaded.Turn)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, store.Save(ctx, "conv-1", sampleContext()))
	assert.NoError(t, store.Delete(ctx, "conv-1"))

	loaded, err := store.Load(ctx, "conv-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, loaded.Turn)
}

// ==========================
// Redis Store Tests
// ==========================

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, 30*time.Minute), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	saved := sampleContext()
	assert.NoError(t, store.Save(ctx, "conv-1", saved))

	loaded, err := store.Load(ctx, "conv-1")
	assert.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestRedisStore_UnknownConversation(t *testing.T) {
	store, _ := setupRedisStore(t)

	loaded, err := store.Load(context.Background(), "nope")

	assert.NoError(t, err)
	assert.Equal(t, models.ContextVersion, loaded.Version)
	assert.Equal(t, 0, len(loaded.History))
}

func TestRedisStore_TTLSet(t *testing.T) {
	store, mr := setupRedisStore(t)

	assert.NoError(t, store.Save(context.Background(), "conv-1", sampleContext()))

	ttl := mr.TTL(keyPrefix + "conv-1")
	assert.True(t, ttl > 0 && ttl <= 30*time.Minute)
}

func TestRedisStore_ExpiredContextResets(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	assert.NoError(t, store.Save(ctx, "conv-1", sampleContext()))
	mr.FastForward(31 * time.Minute)

	loaded, err := store.Load(ctx, "conv-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, loaded.Turn)
}

func TestRedisStore_CorruptEntryResets(t *testing.T) {
	store, mr := setupRedisStore(t)

	mr.Set(keyPrefix+"conv-1", "not json {{{")

	loaded, err := store.Load(context.Background(), "conv-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, loaded.Turn)
	assert.NotNil(t, loaded.Slots)
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	assert.NoError(t, store.Save(ctx, "conv-1", sampleContext()))
	assert.NoError(t, store.Delete(ctx, "conv-1"))
	assert.False(t, mr.Exists(keyPrefix+"conv-1"))
}

func TestRedisStore_LoadFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, time.Minute)

	mock.ExpectGet(keyPrefix + "conv-1").SetErr(assert.AnError)

	loaded, err := store.Load(context.Background(), "conv-1")

	assert.Error(t, err)
	assert.Nil(t, loaded)
	stdErr, ok := err.(*commonerrors.StandardError)
	assert.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeContextLoadFailed, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_SaveFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, time.Minute)

	saved := sampleContext()
	raw, _ := sampleContextJSON(saved)
	mock.ExpectSet(keyPrefix+"conv-1", raw, time.Minute).SetErr(assert.AnError)

	err := store.Save(context.Background(), "conv-1", saved)

	assert.Error(t, err)
	stdErr, ok := err.(*commonerrors.StandardError)
	assert.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeContextSaveFailed, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
