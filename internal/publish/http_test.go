package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/sosgridgo/internal/array"
)

func TestHTTP_PostsMessage(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		received []Message
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var msg Message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		received = append(received, msg)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p, err := NewHTTP(HTTPConfig{URL: srv.URL})
	require.NoError(t, err)
	defer p.Close()

	err = p.Publish(context.Background(), "water", 2010, map[string]array.Data{
		"water_supply": {"water": array.Scalar(3)},
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	require.Equal(t, "water", received[0].Run)
	require.Equal(t, 2010, received[0].Timestep)
	require.Equal(t, [][]float64{{3}}, received[0].Results["water_supply"]["water"])
}

func TestHTTP_ErrorStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := NewHTTP(HTTPConfig{URL: srv.URL})
	require.NoError(t, err)

	err = p.Publish(context.Background(), "water", 2015, nil)
	require.ErrorContains(t, err, "unexpected status 500")
}

func TestNewHTTP_RejectsBadURL(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "localhost:8080", "ws://host/path", "http://"} {
		_, err := NewHTTP(HTTPConfig{URL: raw})
		require.Error(t, err, raw)
	}
}
