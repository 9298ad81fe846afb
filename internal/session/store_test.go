package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kinoteka/subscription-client/internal/models"
	"github.com/kinoteka/subscription-client/internal/storage/vault"
)

type ProfileFetcherMock struct {
	mock.Mock
}

func (m *ProfileFetcherMock) Profile(ctx context.Context, token string) (*models.Profile, error) {
	args := m.Called(ctx, token)
	profile, _ := args.Get(0).(*models.Profile)
	return profile, args.Error(1)
}

// blockingFetcher отдаёт профиль только после закрытия release,
// чтобы смоделировать отставший сетевой ответ.
type blockingFetcher struct {
	release chan struct{}
	profile *models.Profile
}

func (f *blockingFetcher) Profile(_ context.Context, _ string) (*models.Profile, error) {
	<-f.release
	return f.profile, nil
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func testProfile(subscribed bool) *models.Profile {
	return &models.Profile{
		ID:           "u1",
		Email:        "user@example.com",
		FullName:     "User One",
		IsSubscribed: subscribed,
	}
}

func TestStore_EstablishThenClear(t *testing.T) {
	v := vault.New(t.TempDir())
	store := New(new(ProfileFetcherMock), v, newNoopLogger())

	require.NoError(t, store.Establish("tok-1", testProfile(false)))

	snap := store.Snapshot()
	assert.True(t, snap.Authenticated)
	assert.False(t, snap.Hydrating)
	assert.Equal(t, "u1", snap.UserID)

	stored, found, err := v.Credential()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "tok-1", stored)

	store.Clear()
	store.Clear() // идемпотентна

	snap = store.Snapshot()
	assert.False(t, snap.Authenticated)
	assert.Empty(t, store.Token())
	_, found, err = v.Credential()
	require.NoError(t, err)
	assert.False(t, found, "credential must be erased")
}

func TestStore_RestoreWithoutCredential(t *testing.T) {
	fetcher := new(ProfileFetcherMock)
	store := New(fetcher, vault.New(t.TempDir()), newNoopLogger())

	assert.True(t, store.Snapshot().Hydrating)

	snap := store.Restore(context.Background())
	assert.Nil(t, snap)
	assert.False(t, store.Snapshot().Hydrating)
	assert.False(t, store.Snapshot().Authenticated)
	// сетевой вызов не выполнялся
	fetcher.AssertNotCalled(t, "Profile", mock.Anything, mock.Anything)
}

func TestStore_RestoreIdempotent(t *testing.T) {
	v := vault.New(t.TempDir())
	require.NoError(t, v.SetCredential("tok-1"))

	fetcher := new(ProfileFetcherMock)
	fetcher.On("Profile", mock.Anything, "tok-1").Return(testProfile(true), nil).Twice()

	store := New(fetcher, v, newNoopLogger())

	first := store.Restore(context.Background())
	second := store.Restore(context.Background())

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.Authenticated, second.Authenticated)
	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, first.Subscribed, second.Subscribed)
}

func TestStore_RestoreFetchFailureSettlesLoggedOut(t *testing.T) {
	v := vault.New(t.TempDir())
	require.NoError(t, v.SetCredential("expired-token"))

	fetcher := new(ProfileFetcherMock)
	fetcher.On("Profile", mock.Anything, "expired-token").
		Return(nil, errors.New("401 unauthorized")).Once()

	store := New(fetcher, v, newNoopLogger())

	snap := store.Restore(context.Background())
	assert.Nil(t, snap)
	assert.False(t, store.Snapshot().Authenticated)

	// недействительные учётные данные стираются из хранилища
	_, found, err := v.Credential()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_RefreshFlipsSubscriptionFlag(t *testing.T) {
	v := vault.New(t.TempDir())
	fetcher := new(ProfileFetcherMock)
	store := New(fetcher, v, newNoopLogger())

	require.NoError(t, store.Establish("tok-1", testProfile(false)))
	assert.False(t, store.Snapshot().Subscribed)

	fetcher.On("Profile", mock.Anything, "tok-1").Return(testProfile(true), nil).Once()

	require.NoError(t, store.Refresh(context.Background()))
	assert.True(t, store.Snapshot().Subscribed, "subscription flag must flip without re-login")
	assert.Equal(t, "tok-1", store.Token())
}

func TestStore_RefreshFailureBehavesLikeClear(t *testing.T) {
	v := vault.New(t.TempDir())
	fetcher := new(ProfileFetcherMock)
	store := New(fetcher, v, newNoopLogger())

	require.NoError(t, store.Establish("tok-1", testProfile(true)))

	fetcher.On("Profile", mock.Anything, "tok-1").
		Return(nil, errors.New("network down")).Once()

	err := store.Refresh(context.Background())
	assert.Error(t, err)
	assert.False(t, store.Snapshot().Authenticated)

	_, found, ferr := v.Credential()
	require.NoError(t, ferr)
	assert.False(t, found)
}

func TestStore_StaleRefreshDoesNotOverwriteClear(t *testing.T) {
	v := vault.New(t.TempDir())
	fetcher := &blockingFetcher{
		release: make(chan struct{}),
		profile: testProfile(true),
	}
	store := New(fetcher, v, newNoopLogger())
	require.NoError(t, store.Establish("tok-1", testProfile(false)))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = store.Refresh(context.Background())
	}()

	// Clear происходит, пока Refresh ждёт сети
	store.Clear()
	close(fetcher.release)
	wg.Wait()

	assert.False(t, store.Snapshot().Authenticated,
		"late refresh success must not resurrect a cleared session")
	assert.Empty(t, store.Token())
}
