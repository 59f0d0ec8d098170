package preview

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bubblesheet/omr-core/pkg/pixelimage"
)

func TestHub_PublishReachesSubscriber(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, hub.ServeWS(ctx, w, r))
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	time.Sleep(20 * time.Millisecond) // let the registration land
	hub.Publish(Tick{Found: true, Locked: true, StableFrames: 3, TimestampMS: 1})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Tick
	require.NoError(t, conn.ReadJSON(&got))
	assert.True(t, got.Found)
	assert.True(t, got.Locked)
	assert.Equal(t, 3, got.StableFrames)
}

func TestLoop_ReturnsOnContextCancellation(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := Loop(ctx, stubSource{}, hub)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHub_WithLoggerEmitsRegistrationEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	hub := NewHub(WithLogger(logger))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, hub.ServeWS(ctx, w, r))
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	time.Sleep(20 * time.Millisecond) // let the registration land
	assert.Contains(t, buf.String(), "client registered")
}

type stubSource struct{}

func (stubSource) NextFrame(ctx context.Context) (*pixelimage.PixelImage, error) {
	return nil, ctx.Err()
}
