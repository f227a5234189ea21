package remote_test

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmadfox/fencer"
	"github.com/mmadfox/fencer/internal/remote"
)

type fakeServer struct {
	mu       sync.Mutex
	token    string
	document []byte
	puts     int
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+s.token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(s.document)
	case http.MethodPut:
		if r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		body, err := ioutil.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.document = body
		s.puts++
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newStore(t *testing.T, url, token string) *remote.Store {
	store, err := remote.New(remote.Options{URL: url, Token: token})
	require.NoError(t, err)
	return store
}

func TestStore_FetchAndPut(t *testing.T) {
	ctx := context.Background()
	fake := &fakeServer{token: "secret", document: []byte(`{"data":{"polygon":[]}}`)}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	store := newStore(t, srv.URL, "secret")

	data, err := store.Fetch(ctx)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"data":{"polygon":[]}}`, string(data))

	assert.NoError(t, store.Put(ctx, []byte(`{"data":{"polygon":[{"latlngs":[]}]}}`)))
	assert.Equal(t, 1, fake.puts)

	data, err = store.Fetch(ctx)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"data":{"polygon":[{"latlngs":[]}]}}`, string(data))
}

func TestStore_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{token: "secret"})
	defer srv.Close()

	store := newStore(t, srv.URL, "wrong")
	_, err := store.Fetch(context.Background())
	assert.ErrorIs(t, err, fencer.ErrRemoteUnavailable)
	assert.ErrorIs(t, store.Put(context.Background(), []byte(`{}`)), fencer.ErrRemoteUnavailable)
}

func TestStore_ServerDown(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{token: "secret"})
	url := srv.URL
	srv.Close()

	store := newStore(t, url, "secret")
	_, err := store.Fetch(context.Background())
	assert.ErrorIs(t, err, fencer.ErrRemoteUnavailable)
}

func TestStore_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{token: "secret"})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := newStore(t, srv.URL, "secret")
	_, err := store.Fetch(ctx)
	assert.ErrorIs(t, err, fencer.ErrRemoteUnavailable)
}

func TestStore_EmptyURL(t *testing.T) {
	_, err := remote.New(remote.Options{})
	assert.ErrorIs(t, err, remote.ErrEmptyURL)
}

func TestStore_RegistryRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := &fakeServer{token: "secret"}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	first := fencer.NewRegistry(newStore(t, srv.URL, "secret"))
	_, err := first.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Len())

	_, err = first.Create([]fencer.Point{
		fencer.NewPoint(19.94, 50.05),
		fencer.NewPoint(19.97, 50.05),
		fencer.NewPoint(19.97, 50.07),
	})
	require.NoError(t, err)
	require.NoError(t, first.Commit(ctx))

	second := fencer.NewRegistry(newStore(t, srv.URL, "secret"))
	loaded, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Snapshot(), loaded)
	assert.Equal(t, fencer.Synced, second.State())
}
