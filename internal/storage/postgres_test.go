package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDB struct {
	mock.Mock
}

func (m *MockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	called := m.Called(append([]any{sql}, args...)...)
	return called.Get(0).(pgconn.CommandTag), called.Error(1)
}

func (m *MockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	called := m.Called(append([]any{sql}, args...)...)
	return called.Get(0).(pgx.Row)
}

type fakeRow struct {
	value []byte
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.value
	return nil
}

func TestPGStore_Get(t *testing.T) {
	db := &MockDB{}
	store := NewPGStore(db)
	ctx := context.Background()

	db.On("QueryRow", mock.AnythingOfType("string"), SessionKey("w1")).Return(fakeRow{value: []byte("session")}).Once()
	db.On("QueryRow", mock.AnythingOfType("string"), SessionKey("w2")).Return(fakeRow{err: pgx.ErrNoRows}).Once()
	db.On("QueryRow", mock.AnythingOfType("string"), SessionKey("w3")).Return(fakeRow{err: errors.New("conn closed")}).Once()

	got, err := store.Get(ctx, SessionKey("w1"))
	require.NoError(t, err)
	assert.Equal(t, "session", string(got))

	_, err = store.Get(ctx, SessionKey("w2"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(ctx, SessionKey("w3"))
	assert.EqualError(t, err, "conn closed")

	db.AssertExpectations(t)
}

func TestPGStore_Set(t *testing.T) {
	db := &MockDB{}
	store := NewPGStore(db)
	ctx := context.Background()

	db.On("Exec", mock.AnythingOfType("string"), SessionKey("w1"), []byte("session"), (*time.Time)(nil)).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil).Once()
	db.On("Exec", mock.AnythingOfType("string"), PendingSearchKey("w1"), []byte("search"), mock.MatchedBy(func(at *time.Time) bool {
		return at != nil && time.Until(*at) > 29*time.Minute
	})).Return(pgconn.NewCommandTag("INSERT 0 1"), nil).Once()

	require.NoError(t, store.Set(ctx, SessionKey("w1"), []byte("session"), 0))
	require.NoError(t, store.Set(ctx, PendingSearchKey("w1"), []byte("search"), 30*time.Minute))

	db.AssertExpectations(t)
}

func TestPGStore_PurgeExpired(t *testing.T) {
	db := &MockDB{}
	store := NewPGStore(db)
	deadline := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

	db.On("Exec", mock.AnythingOfType("string"), deadline).Return(pgconn.NewCommandTag("DELETE 3"), nil).Once()

	n, err := store.PurgeExpired(context.Background(), deadline)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestPGStore_PurgeExpired_Error(t *testing.T) {
	db := &MockDB{}
	store := NewPGStore(db)

	db.On("Exec", mock.Anything, mock.Anything).Return(pgconn.CommandTag{}, errors.New("timeout")).Once()

	_, err := store.PurgeExpired(context.Background(), time.Now())
	assert.Error(t, err)
}
