package george_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/jsonrpc2"

	"github.com/johhnry/gotvpaint/george"
	"github.com/johhnry/gotvpaint/george/georgetest"
)

func TestSocketTransport(t *testing.T) {
	host, _ := georgetest.NewHostWithProject("/tmp/a.tvpp")
	bridge := georgetest.StartBridge(t, host)

	tr, err := george.DialSocket(context.Background(), "unix", bridge.Path())
	require.NoError(t, err)
	defer tr.Close()

	assert.True(t, tr.IsConnected())
	assert.Equal(t, bridge.Path(), tr.Address())

	c := george.NewClient(tr)
	width, err := george.GetWidth(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 1920, width)

	name, err := george.GetProjectName(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a.tvpp", name)
}

func TestSocketTransportErrReply(t *testing.T) {
	bridge := georgetest.StartBridge(t, georgetest.NewScript())
	tr, err := george.DialSocket(context.Background(), "unix", bridge.Path())
	require.NoError(t, err)
	defer tr.Close()

	_, err = tr.Execute(context.Background(), "tv_Nope")
	var hostErr *george.HostError
	require.ErrorAs(t, err, &hostErr)
	assert.Contains(t, hostErr.Message, "unscripted")
}

func TestSocketTransportEmptyReply(t *testing.T) {
	bridge := georgetest.StartRawBridge(t, func(line string) string { return "OK:\n" })
	tr, err := george.DialSocket(context.Background(), "unix", bridge.Path())
	require.NoError(t, err)
	defer tr.Close()

	reply, err := tr.Execute(context.Background(), "tv_ProjectInfo P1")
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestSocketTransportMalformedLine(t *testing.T) {
	bridge := georgetest.StartRawBridge(t, func(line string) string { return "HELLO\n" })
	tr, err := george.DialSocket(context.Background(), "unix", bridge.Path())
	require.NoError(t, err)
	defer tr.Close()

	_, err = tr.Execute(context.Background(), "tv_GetWidth")
	var te *george.TransportError
	require.ErrorAs(t, err, &te)
}

func TestSocketTransportSlowReply(t *testing.T) {
	// The reply arrives after several read deadlines have passed.
	bridge := georgetest.StartRawBridge(t, func(line string) string {
		time.Sleep(350 * time.Millisecond)
		return "OK:42\n"
	})
	tr, err := george.DialSocket(context.Background(), "unix", bridge.Path())
	require.NoError(t, err)
	defer tr.Close()

	reply, err := tr.Execute(context.Background(), "tv_GetWidth")
	require.NoError(t, err)
	assert.Equal(t, "42", reply)
}

func TestSocketTransportDropsUnsolicitedLines(t *testing.T) {
	bridge := georgetest.StartRawBridge(t, func(line string) string {
		if strings.Contains(line, "tv_GetWidth") {
			return "OK:1920\nOK:stray\n"
		}
		return "OK:1080\n"
	})
	tr, err := george.DialSocket(context.Background(), "unix", bridge.Path())
	require.NoError(t, err)
	defer tr.Close()

	reply, err := tr.Execute(context.Background(), "tv_GetWidth")
	require.NoError(t, err)
	assert.Equal(t, "1920", reply)

	// Let the reader consume the extra line with no request in flight.
	time.Sleep(50 * time.Millisecond)

	reply, err = tr.Execute(context.Background(), "tv_GetHeight")
	require.NoError(t, err)
	assert.Equal(t, "1080", reply)
}

func TestSocketTransportDisconnect(t *testing.T) {
	bridge := georgetest.StartRawBridge(t, func(line string) string { return "" })
	tr, err := george.DialSocket(context.Background(), "unix", bridge.Path())
	require.NoError(t, err)
	defer tr.Close()

	var (
		mu           sync.Mutex
		disconnected bool
	)
	tr.SetDisconnectHandler(func(err error) {
		mu.Lock()
		disconnected = true
		mu.Unlock()
	})

	done := make(chan error, 1)
	go func() {
		_, err := tr.Execute(context.Background(), "tv_GetWidth")
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	bridge.DropConnections()

	select {
	case err := <-done:
		var te *george.TransportError
		require.ErrorAs(t, err, &te)
	case <-time.After(2 * time.Second):
		t.Fatal("Execute did not return after disconnect")
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return disconnected
	}, time.Second, 10*time.Millisecond)
	assert.False(t, tr.IsConnected())

	_, err = tr.Execute(context.Background(), "tv_GetWidth")
	assert.ErrorIs(t, err, george.ErrNotConnected)
}

func TestSocketTransportAbandonedWait(t *testing.T) {
	bridge := georgetest.StartRawBridge(t, func(line string) string { return "" })
	tr, err := george.DialSocket(context.Background(), "unix", bridge.Path())
	require.NoError(t, err)
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = tr.Execute(ctx, "tv_GetWidth")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, tr.IsConnected(), "a connection with a reply in flight is not reused")
}

func TestSocketTransportConnectTwice(t *testing.T) {
	bridge := georgetest.StartBridge(t, georgetest.NewScript())
	tr, err := george.DialSocket(context.Background(), "unix", bridge.Path())
	require.NoError(t, err)
	defer tr.Close()

	err = tr.Connect(context.Background(), "unix", bridge.Path())
	assert.ErrorIs(t, err, george.ErrAlreadyConnected)

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
}

func TestSocketTransportDialFailure(t *testing.T) {
	_, err := george.DialSocket(context.Background(), "unix", "/tmp/tvp-does-not-exist.sock")
	var te *george.TransportError
	require.ErrorAs(t, err, &te)
}

// rpcServer answers execute_george calls from a georgetest transport.
func rpcServer(t *testing.T, backend george.Transport) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			msg, err := jsonrpc2.DecodeMessage(data)
			if err != nil {
				return
			}
			req, ok := msg.(*jsonrpc2.Request)
			if !ok || !req.IsCall() {
				continue
			}

			var (
				result any
				rerr   error
			)
			var params []string
			if err := json.Unmarshal(req.Params, &params); err != nil || len(params) != 1 || req.Method != george.ExecuteMethod {
				rerr = jsonrpc2.ErrInvalidParams
			} else if reply, err := backend.Execute(r.Context(), params[0]); err != nil {
				rerr = err
			} else {
				result = reply
			}

			resp, err := jsonrpc2.NewResponse(req.ID, result, rerr)
			if err != nil {
				return
			}
			out, err := jsonrpc2.EncodeMessage(resp)
			if err != nil {
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, out); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketTransport(t *testing.T) {
	host, projectID := georgetest.NewHostWithProject("/tmp/ws.tvpp")
	srv := rpcServer(t, host)

	tr, err := george.DialWebSocket(context.Background(), wsURL(srv))
	require.NoError(t, err)
	defer tr.Close()
	assert.Equal(t, wsURL(srv), tr.URL())

	c := george.NewClient(tr)
	id, err := george.ProjectCurrentID(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, projectID, id)

	info, err := george.GetProjectInfo(context.Background(), c, id)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ws.tvpp", info.Path)
	assert.Equal(t, 1920, info.Width)

	_, err = george.ProjectEnumID(context.Background(), c, 9)
	assert.ErrorIs(t, err, george.ErrNoObject)
}

func TestWebSocketTransportRPCError(t *testing.T) {
	srv := rpcServer(t, georgetest.NewScript())

	tr, err := george.DialWebSocket(context.Background(), wsURL(srv))
	require.NoError(t, err)
	defer tr.Close()

	_, err = tr.Execute(context.Background(), "tv_Nope")
	var hostErr *george.HostError
	require.ErrorAs(t, err, &hostErr)
	assert.Contains(t, hostErr.Message, "unscripted")
}

func TestWebSocketTransportClosed(t *testing.T) {
	srv := rpcServer(t, georgetest.NewScript())

	tr, err := george.DialWebSocket(context.Background(), wsURL(srv))
	require.NoError(t, err)
	_ = tr.Close()

	_, err = tr.Execute(context.Background(), "tv_GetWidth")
	assert.ErrorIs(t, err, george.ErrNotConnected)
}

func TestWebSocketDialFailure(t *testing.T) {
	_, err := george.DialWebSocket(context.Background(), "ws://127.0.0.1:1")
	var te *george.TransportError
	require.ErrorAs(t, err, &te)
}

func TestWebSocketTransportOutlivesDialContext(t *testing.T) {
	host, _ := georgetest.NewHostWithProject("/tmp/ws.tvpp")
	srv := rpcServer(t, host)

	ctx, cancel := context.WithCancel(context.Background())
	tr, err := george.DialWebSocket(ctx, wsURL(srv))
	cancel()
	require.NoError(t, err)
	defer tr.Close()

	callCtx, callCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer callCancel()
	for range 3 {
		reply, err := tr.Execute(callCtx, "tv_GetWidth")
		require.NoError(t, err)
		assert.Equal(t, "1920", reply)
	}
}

func TestWebSocketTransportServerGone(t *testing.T) {
	release := make(chan struct{})
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_, _, _ = ws.ReadMessage()
		<-release
		ws.Close()
	}))
	t.Cleanup(srv.Close)

	tr, err := george.DialWebSocket(context.Background(), wsURL(srv))
	require.NoError(t, err)
	defer tr.Close()

	done := make(chan error, 1)
	go func() {
		_, err := tr.Execute(context.Background(), "tv_GetWidth")
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)

	select {
	case err := <-done:
		var te *george.TransportError
		require.ErrorAs(t, err, &te)
		assert.NotErrorAs(t, err, new(*george.HostError))
	case <-time.After(2 * time.Second):
		t.Fatal("Execute did not return after the server went away")
	}
}
