package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_GetHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, "preview")

	mock.ExpectGet("preview:1:1:2025-03-01").SetVal(`{"totalSessions":5}`)

	val, err := c.Get(context.Background(), "1:1:2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, `{"totalSessions":5}`, string(val))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_GetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, "preview")

	mock.ExpectGet("preview:k").RedisNil()

	_, err := c.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_GetBackendError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, "")

	mock.ExpectGet("k").SetErr(errors.New("connection reset"))

	_, err := c.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrBackend)
}

func TestRedisCache_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, "preview")

	mock.ExpectSet("preview:k", []byte("v"), time.Minute).SetVal("OK")

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNopCache(t *testing.T) {
	var c NopCache
	_, err := c.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, c.Set(context.Background(), "k", nil, time.Second))
	n, err := c.Incr(context.Background(), "k")
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisCache_Incr(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, "svc")

	mock.ExpectIncr("svc:pricing:generation").SetVal(3)
	val, err := c.Incr(context.Background(), "pricing:generation")
	require.NoError(t, err)
	assert.Equal(t, int64(3), val)

	mock.ExpectIncr("svc:pricing:generation").SetErr(errors.New("connection reset"))
	_, err = c.Incr(context.Background(), "pricing:generation")
	assert.ErrorIs(t, err, ErrBackend)

	assert.NoError(t, mock.ExpectationsWereMet())
}
