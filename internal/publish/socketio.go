package publish

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultEvent is the socket.io event emitted per timestep.
const DefaultEvent = "timestep"

// DefaultConnectTimeout bounds how long Dial waits for the connection.
const DefaultConnectTimeout = 15 * time.Second

// SocketIOConfig configures a socket.io publisher.
type SocketIOConfig struct {
	URL                string
	Namespace          string
	Event              string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// SocketIO emits one event per completed timestep over a socket.io
// connection.
type SocketIO struct {
	client *socket.Socket
	event  string
}

// DialSocketIO connects to cfg.URL and waits for the connection to be
// established.
func DialSocketIO(ctx context.Context, cfg SocketIOConfig) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("publisher", "socketio", "url", cfg.URL)
	logger.Info("Connecting result publisher...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("URL %q needs a scheme and a host", cfg.URL)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	event := cfg.Event
	if event == "" {
		event = DefaultEvent
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "/"
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("connect_error event fired", "error", err)
		select {
		case connectChan <- err:
		default:
		}
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIO{client: io, event: event}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Publish emits the timestep's results as one Message.
func (s *SocketIO) Publish(ctx context.Context, run string, timestep int, results map[string]array.Data) error {
	if !s.client.Connected() {
		return fmt.Errorf("socket.io publisher is not connected")
	}
	msg := NewMessage(run, timestep, results)
	ctxlog.FromContext(ctx).Debug("Publishing timestep.", "event", s.event, "run", run, "timestep", timestep, "sid", s.client.Id())
	s.client.Emit(s.event, msg)
	return nil
}

// Close disconnects the client.
func (s *SocketIO) Close() error {
	s.client.Disconnect()
	return nil
}
