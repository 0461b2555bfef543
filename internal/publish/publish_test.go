package publish

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/sosgridgo/internal/array"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()
	results := map[string]array.Data{
		"water_supply": {"water": array.Scalar(2), "cost": array.Scalar(1)},
		"raininess":    {"raininess": array.Scalar(3)},
	}
	msg := NewMessage("water_baseline", 2015, results)

	require.Equal(t, []string{"raininess", "water_supply"}, msg.Models)

	// The message owns its arrays.
	results["raininess"]["raininess"][0][0] = 99
	require.Equal(t, 3.0, msg.Results["raininess"]["raininess"][0][0])

	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"run": "water_baseline",
		"timestep": 2015,
		"models": ["raininess", "water_supply"],
		"results": {
			"raininess": {"raininess": [[3]]},
			"water_supply": {"water": [[2]], "cost": [[1]]}
		}
	}`, string(raw))
}

func TestNoop(t *testing.T) {
	t.Parallel()
	var p Publisher = Noop{}
	require.NoError(t, p.Publish(context.Background(), "r", 1, nil))
	require.NoError(t, p.Close())
}

func TestDialSocketIO_Failures(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		url     string
		wantErr string
	}{
		{name: "no scheme", url: "localhost:1", wantErr: "needs a scheme and a host"},
		{name: "bad url", url: "http://[::1", wantErr: "failed to parse URL"},
		{name: "nothing listening", url: "http://127.0.0.1:1", wantErr: "socket.io"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_, err := DialSocketIO(ctx, SocketIOConfig{URL: tc.url, ConnectTimeout: time.Second})
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
