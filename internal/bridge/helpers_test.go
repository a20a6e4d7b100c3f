package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/C4AI/blab-chatbot-bot-client/pkg/conversation"
	"github.com/C4AI/blab-chatbot-bot-client/pkg/message"
	"github.com/coder/websocket"
)

// fakeController accepts bot connections the way BLAB Controller does and
// hands each accepted connection to the test.
type fakeController struct {
	srv   *httptest.Server
	conns chan acceptedConn
	stop  chan struct{}
}

type acceptedConn struct {
	conn   *websocket.Conn
	path   string
	cookie string
}

func newFakeController(t *testing.T) *fakeController {
	t.Helper()

	fc := &fakeController{
		conns: make(chan acceptedConn, 8),
		stop:  make(chan struct{}),
	}
	fc.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		fc.conns <- acceptedConn{conn: conn, path: r.URL.Path, cookie: r.Header.Get("Cookie")}
		<-fc.stop
	}))
	t.Cleanup(fc.srv.Close)
	t.Cleanup(func() { close(fc.stop) })
	return fc
}

func (fc *fakeController) url() string {
	return "ws" + fc.srv.URL[len("http"):]
}

func (fc *fakeController) accept(t *testing.T) acceptedConn {
	t.Helper()
	select {
	case c := <-fc.conns:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("no connection reached the controller")
		return acceptedConn{}
	}
}

// recordingBot records hook invocations in order.
type recordingBot struct {
	conversation.Base

	mu     sync.Mutex
	events []string

	connectDelay time.Duration
	onConnect    func(b *recordingBot)
}

func newRecordingBot(s *conversation.Session) *recordingBot {
	return &recordingBot{Base: conversation.NewBase(s)}
}

func (b *recordingBot) record(ev string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *recordingBot) Events() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.events)
}

func (b *recordingBot) OnConnect() {
	time.Sleep(b.connectDelay)
	b.record("connect")
	if b.onConnect != nil {
		b.onConnect(b)
	}
}

func (b *recordingBot) OnReceiveMessage(msg message.IncomingMessage) {
	b.record("message:" + msg.ID)
	if msg.Text == "boom" {
		panic("bot exploded")
	}
}

func (b *recordingBot) OnReceiveState(update map[string]any) {
	b.record("state")
	b.Base.OnReceiveState(update)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func messageFrame(t *testing.T, id, localID, sender, text string) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"message": map[string]any{
			"id":            id,
			"time":          "2024-05-01T12:00:00Z",
			"type":          "T",
			"sent_by_human": sender != "p1",
			"local_id":      localID,
			"sender_id":     sender,
			"text":          text,
		},
	})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	return data
}

func writeFrame(t *testing.T, c *websocket.Conn, data []byte) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("controller write: %v", err)
	}
}

func readOutgoing(t *testing.T, c *websocket.Conn) map[string]any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := c.Read(ctx)
	if err != nil {
		t.Fatalf("controller read: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("outgoing frame is not JSON: %v", err)
	}
	return out
}

// runBridge starts b.Run in the background and returns a channel with its
// result.
func runBridge(b *Bridge) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- b.Run(context.Background()) }()
	return errCh
}

func waitRun(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("bridge did not stop")
		return nil
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func localIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("l%03d", i)
	}
	return ids
}
