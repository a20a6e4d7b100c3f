package trigger

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/C4AI/blab-chatbot-bot-client/internal/bridge"
	"github.com/C4AI/blab-chatbot-bot-client/internal/core"
	"github.com/C4AI/blab-chatbot-bot-client/internal/security"
	"github.com/C4AI/blab-chatbot-bot-client/pkg/conversation"
	"github.com/C4AI/blab-chatbot-bot-client/pkg/message"
	"github.com/coder/websocket"
	"gopkg.in/yaml.v3"
)

func mustYAMLNode(t *testing.T, text string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		t.Fatalf("YAML parse: %v", err)
	}
	return doc.Content[0]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// greetingBot opens the conversation with a fixed message.
type greetingBot struct {
	conversation.Base
}

func (b *greetingBot) OnConnect() { conversation.Greet(b, b.Session) }

func (b *greetingBot) BotSendsFirstMessage() bool { return true }

func (b *greetingBot) GenerateGreeting() []message.OutgoingMessage {
	return []message.OutgoingMessage{message.NewText(b.GenerateLocalID(), "hello")}
}

func greetingFactory(s *conversation.Session) conversation.Bot {
	return &greetingBot{Base: conversation.NewBase(s)}
}

type testEnv struct {
	server   *Server
	http     *httptest.Server
	redactor *security.Redactor
}

// newTestEnv provisions a trigger Server talking to controllerURL and serves
// its router on an httptest server.
func newTestEnv(t *testing.T, controllerURL string) *testEnv {
	t.Helper()

	redactor := security.NewRedactor()
	appCtx := core.NewAppContext(testLogger(), "")
	appCtx.RegisterService(ServiceSettings, &conversation.Settings{
		Connection: conversation.ConnectionSettings{
			BotHTTPServerHostname: "127.0.0.1",
			BotHTTPServerPort:     0,
			ControllerWSURL:       controllerURL,
		},
	})
	appCtx.RegisterService(ServiceFactory, conversation.Factory(greetingFactory))
	appCtx.RegisterService(ServiceRedactor, redactor)

	s := &Server{}
	if err := s.Configure(mustYAMLNode(t, "dial_timeout: 2s\nshutdown_timeout: 2s")); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := s.Provision(appCtx); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	srv := httptest.NewServer(s.buildRouter())
	t.Cleanup(func() {
		srv.Close()
		_ = s.Stop(context.Background())
	})
	return &testEnv{server: s, http: srv, redactor: redactor}
}

func (e *testEnv) post(t *testing.T, body string) int {
	t.Helper()
	resp, err := http.Post(e.http.URL+"/", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

// serve runs a trigger request through the router without a network hop.
func (e *testEnv) serve(body string) int {
	rr := httptest.NewRecorder()
	e.server.buildRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	return rr.Code
}

// occupy registers an idle bridge for id, removed again at cleanup.
func (e *testEnv) occupy(t *testing.T, id string) {
	t.Helper()
	session := conversation.NewSession(e.server.settings, id, "p1")
	b := bridge.New(session, greetingFactory(session), bridge.Options{
		ControllerURL: "ws://127.0.0.1:1",
		Logger:        testLogger(),
	})
	if err := e.server.Registry().Add(b); err != nil {
		t.Fatalf("Add: %v", err)
	}
	t.Cleanup(func() { e.server.Registry().Remove(b) })
}

// fakeController accepts bot connections, reads their frames in the
// background and forwards them to the test.
type fakeController struct {
	srv    *httptest.Server
	conns  chan acceptedConn
	frames chan []byte
}

type acceptedConn struct {
	path   string
	cookie string
}

func newFakeController(t *testing.T) *fakeController {
	t.Helper()

	fc := &fakeController{
		conns:  make(chan acceptedConn, 8),
		frames: make(chan []byte, 64),
	}
	fc.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		fc.conns <- acceptedConn{path: r.URL.Path, cookie: r.Header.Get("Cookie")}
		for {
			_, data, err := conn.Read(context.Background())
			if err != nil {
				return
			}
			fc.frames <- data
		}
	}))
	t.Cleanup(fc.srv.Close)
	return fc
}

func (fc *fakeController) url() string {
	return "ws" + strings.TrimPrefix(fc.srv.URL, "http")
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

func (fc *fakeController) frame(t *testing.T) []byte {
	t.Helper()
	select {
	case data := <-fc.frames:
		return data
	case <-time.After(5 * time.Second):
		t.Fatal("no frame reached the controller")
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
