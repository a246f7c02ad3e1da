package users

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

type listerMock struct {
	users []User
	err   error
	calls int
}

func (l *listerMock) List(context.Context) ([]User, error) {
	l.calls++
	return l.users, l.err
}

func TestCachedRoster_List_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	lister := &listerMock{
		users: []User{{ID: "u1", Name: "Ana"}, {ID: "u2", Name: "Bo"}},
	}
	roster := NewCachedRoster(lister, db, 5*time.Minute)

	usersJson, err := json.Marshal(lister.users)
	require.NoError(t, err)

	mock.ExpectGet(rosterCacheKey).RedisNil()
	mock.ExpectSet(rosterCacheKey, usersJson, 5*time.Minute).SetVal("OK")

	users, err := roster.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lister.users, users)
	assert.Equal(t, 1, lister.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedRoster_List_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	lister := &listerMock{}
	roster := NewCachedRoster(lister, db, time.Minute)

	mock.ExpectGet(rosterCacheKey).SetVal(`[{"id":"u1","name":"Ana"}]`)

	users, err := roster.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []User{{ID: "u1", Name: "Ana"}}, users)
	assert.Equal(t, 0, lister.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedRoster_List_RedisDown(t *testing.T) {
	db, mock := redismock.NewClientMock()
	lister := &listerMock{
		users: []User{{ID: "u1", Name: "Ana"}},
	}
	roster := NewCachedRoster(lister, db, time.Minute)

	usersJson, err := json.Marshal(lister.users)
	require.NoError(t, err)

	mock.ExpectGet(rosterCacheKey).SetErr(errors.New("connection refused"))
	mock.ExpectSet(rosterCacheKey, usersJson, time.Minute).SetErr(errors.New("connection refused"))

	users, err := roster.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lister.users, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedRoster_List_ListerError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	roster := NewCachedRoster(&listerMock{err: errors.New("db down")}, db, time.Minute)

	mock.ExpectGet(rosterCacheKey).RedisNil()

	users, err := roster.List(context.Background())
	assert.Error(t, err)
	assert.Nil(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedRoster_Invalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	roster := NewCachedRoster(&listerMock{}, db, time.Minute)

	mock.ExpectDel(rosterCacheKey).SetVal(1)
	require.NoError(t, roster.Invalidate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUser_Validate(t *testing.T) {
	assert.NoError(t, User{ID: "u1", Name: "Ana"}.Validate())
	assert.ErrorIs(t, User{Name: "Ana"}.Validate(), ErrInvalidUser)
	assert.ErrorIs(t, User{ID: "u1"}.Validate(), ErrInvalidUser)
}
