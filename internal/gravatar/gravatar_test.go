package gravatar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/arthub/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailHash(t *testing.T) {
	// Known MD5 from the gravatar docs.
	assert.Equal(t, "0bc83cb571cd1c50ba6f3e8a78ef1346", EmailHash("MyEmailAddress@example.com "))
}

// testService serves a profile record pointing at its own /photo path.
type testService struct {
	srv           *httptest.Server
	profileCalls  int32
	photoCalls    int32
	profileStatus int
	photoStatus   int
}

func newTestService(t *testing.T) *testService {
	t.Helper()
	s := &testService{profileStatus: http.StatusOK, photoStatus: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/photo", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.photoCalls, 1)
		if s.photoStatus != http.StatusOK {
			w.WriteHeader(s.photoStatus)
			return
		}
		_, _ = w.Write([]byte("jpeg-bytes"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.profileCalls, 1)
		if s.profileStatus != http.StatusOK {
			w.WriteHeader(s.profileStatus)
			return
		}
		resp := map[string]any{
			"entry": []map[string]any{{"thumbnailUrl": s.srv.URL + "/photo"}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func newTestMachine(s *testService) (*Machine, *Cache) {
	cache := NewCache()
	m := NewMachine(NewClient(s.srv.URL), cache, logging.NewNopLogger())
	return m, cache
}

func TestMachine_FetchFound(t *testing.T) {
	s := newTestService(t)
	m, _ := newTestMachine(s)

	state := m.Fetch(context.Background(), "x@y.com")
	require.Equal(t, StateFound, state)
	assert.Equal(t, s.srv.URL+"/photo", m.URL())
	assert.NoError(t, m.Err())
}

func TestMachine_SecondFetchIsCacheHit(t *testing.T) {
	s := newTestService(t)
	m, _ := newTestMachine(s)
	ctx := context.Background()

	require.Equal(t, StateFound, m.Fetch(ctx, "x@y.com"))
	require.Equal(t, StateFound, m.Fetch(ctx, "x@y.com"))

	assert.Equal(t, int32(1), atomic.LoadInt32(&s.profileCalls), "cache hit must not hit the network")
	assert.Equal(t, int32(1), atomic.LoadInt32(&s.photoCalls))
}

func TestMachine_CacheIsSharedAcrossMachines(t *testing.T) {
	s := newTestService(t)
	cache := NewCache()
	ctx := context.Background()

	m1 := NewMachine(NewClient(s.srv.URL), cache, logging.NewNopLogger())
	require.Equal(t, StateFound, m1.Fetch(ctx, "x@y.com"))

	m2 := NewMachine(NewClient(s.srv.URL), cache, logging.NewNopLogger())
	require.Equal(t, StateFound, m2.Fetch(ctx, "x@y.com"))

	assert.Equal(t, int32(1), atomic.LoadInt32(&s.profileCalls))
}

func TestMachine_MissingProfileIsNotFound(t *testing.T) {
	s := newTestService(t)
	s.profileStatus = http.StatusNotFound
	m, _ := newTestMachine(s)

	state := m.Fetch(context.Background(), "x@y.com")
	require.Equal(t, StateNotFound, state)
	assert.NoError(t, m.Err())
	assert.Equal(t, int32(0), atomic.LoadInt32(&s.photoCalls), "no photo fetch after a 404 profile")
}

func TestMachine_ProfileServerErrorIsFailed(t *testing.T) {
	s := newTestService(t)
	s.profileStatus = http.StatusInternalServerError
	m, _ := newTestMachine(s)

	state := m.Fetch(context.Background(), "x@y.com")
	require.Equal(t, StateFailed, state)

	var unreachable *UnreachableProfileError
	require.ErrorAs(t, m.Err(), &unreachable)
	assert.Equal(t, http.StatusInternalServerError, unreachable.Status)
}

func TestMachine_PhotoFailureIsDistinctFromProfileFailure(t *testing.T) {
	s := newTestService(t)
	s.photoStatus = http.StatusBadGateway
	m, _ := newTestMachine(s)

	state := m.Fetch(context.Background(), "x@y.com")
	require.Equal(t, StateFailed, state)

	var photoErr *UnreachablePhotoError
	require.ErrorAs(t, m.Err(), &photoErr)
	assert.Equal(t, "x@y.com", photoErr.Email)

	var profileErr *UnreachableProfileError
	assert.False(t, errors.As(m.Err(), &profileErr))
}

func TestMachine_UnreachableServerIsFailed(t *testing.T) {
	s := newTestService(t)
	url := s.srv.URL
	s.srv.Close()

	m := NewMachine(NewClient(url), NewCache(), logging.NewNopLogger())
	state := m.Fetch(context.Background(), "x@y.com")
	require.Equal(t, StateFailed, state)

	var unreachable *UnreachableProfileError
	require.ErrorAs(t, m.Err(), &unreachable)
}

func TestMachine_Reenterable(t *testing.T) {
	s := newTestService(t)
	s.profileStatus = http.StatusNotFound
	m, _ := newTestMachine(s)
	ctx := context.Background()

	require.Equal(t, StateNotFound, m.Fetch(ctx, "x@y.com"))

	s.profileStatus = http.StatusOK
	require.Equal(t, StateFound, m.Fetch(ctx, "x@y.com"))
	assert.Equal(t, fmt.Sprintf("%s/photo", s.srv.URL), m.URL())
}
