package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/C4AI/blab-chatbot-bot-client/pkg/conversation"
	"github.com/C4AI/blab-chatbot-bot-client/pkg/message"
	"github.com/coder/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/C4AI/blab-chatbot-bot-client/internal/bridge"

const (
	defaultDialTimeout  = 30 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultReadLimit    = 1 << 20
)

// Options configures a Bridge. Only ControllerURL is required.
type Options struct {
	// ControllerURL is the controller base address, e.g. "ws://localhost:8000".
	ControllerURL string

	// Credential is the controller session id sent as the sessionid cookie.
	Credential string

	Logger       *slog.Logger
	Metrics      *Metrics
	HTTPClient   *http.Client
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	ReadLimit    int64

	// Registry, when set, has the bridge removed from it once CLOSED.
	Registry *Registry
}

func (o *Options) defaults() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Metrics == nil {
		o.Metrics = NewMetrics(nil)
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = defaultDialTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = defaultWriteTimeout
	}
	if o.ReadLimit == 0 {
		o.ReadLimit = defaultReadLimit
	}
}

// Bridge owns the connection of exactly one conversation. The receive loop
// runs on the goroutine calling Run and dispatches frames to the bot's hooks;
// a second goroutine drains the session's outbound queue onto the wire.
type Bridge struct {
	session *conversation.Session
	bot     conversation.Bot
	opts    Options
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	mu             sync.Mutex
	state          State
	started        bool
	closeRequested bool
	cancel         context.CancelFunc
	done           chan struct{}
}

// New creates a bridge for session, dispatching to bot. It does not connect;
// call Run.
func New(session *conversation.Session, bot conversation.Bot, opts Options) *Bridge {
	opts.defaults()
	return &Bridge{
		session: session,
		bot:     bot,
		opts:    opts,
		logger: opts.Logger.With(
			"component", "bridge",
			"conversation_id", session.ConversationID(),
		),
		metrics: opts.Metrics,
		tracer:  otel.Tracer(tracerName),
		state:   StateConnecting,
		done:    make(chan struct{}),
	}
}

// ConversationID returns the id of the conversation served by the bridge.
func (b *Bridge) ConversationID() string { return b.session.ConversationID() }

// Session returns the conversation session.
func (b *Bridge) Session() *conversation.Session { return b.session }

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Done is closed once the bridge reaches StateClosed.
func (b *Bridge) Done() <-chan struct{} { return b.done }

// Close asks the bridge to shut down. It does not wait; use Done.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeRequested = true
	if b.cancel != nil {
		b.cancel()
	}
}

// Run connects to the controller and serves the conversation until the
// connection ends, ctx is cancelled or Close is called. It returns nil on an
// orderly shutdown. There is no reconnection: once Run returns the bridge is
// CLOSED and its session is finished.
func (b *Bridge) Run(ctx context.Context) error {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return ErrAlreadyRunning
	}
	b.started = true
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	if b.closeRequested {
		cancel()
	}
	b.mu.Unlock()

	defer b.finish()
	defer cancel()

	ctx, span := b.tracer.Start(ctx, "bridge.conversation",
		trace.WithAttributes(attribute.String("conversation.id", b.ConversationID())))
	defer span.End()

	conn, err := b.dial(ctx)
	if err != nil {
		b.setState(StateClosing)
		if ctx.Err() != nil {
			b.logger.Info("bridge closed before connecting")
			return nil
		}
		b.metrics.Connections.WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "handshake failed")
		b.logger.Warn("controller connection failed", "error", err)
		return err
	}
	defer conn.CloseNow()

	b.metrics.Connections.WithLabelValues("opened").Inc()
	b.metrics.Active.Inc()
	defer b.metrics.Active.Dec()

	b.setState(StateOpen)
	b.logger.Info("connected to controller")

	b.invoke(ctx, "on_connect", b.bot.OnConnect)

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		b.drain(ctx, conn, cancel)
	}()

	err = b.receive(ctx, conn)

	b.setState(StateClosing)
	cancel()
	<-drained

	_ = conn.Close(websocket.StatusNormalClosure, "")

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "connection error")
		b.logger.Warn("controller connection lost", "error", err)
		return err
	}
	return nil
}

func (b *Bridge) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := ChatURL(b.opts.ControllerURL, b.session.ConversationID())
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, b.opts.DialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, u, &websocket.DialOptions{
		HTTPClient: b.opts.HTTPClient,
		HTTPHeader: http.Header{"Cookie": []string{SessionCookie(b.opts.Credential)}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	conn.SetReadLimit(b.opts.ReadLimit)
	return conn, nil
}

// receive reads frames until the connection fails or ctx ends.
func (b *Bridge) receive(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return b.readError(ctx, err)
		}
		b.dispatch(ctx, data)
	}
}

func (b *Bridge) readError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		b.logger.Info("controller closed the connection")
		return nil
	}
	return fmt.Errorf("bridge: read: %w", err)
}

// dispatch decodes one frame and runs the matching hooks, message first.
func (b *Bridge) dispatch(ctx context.Context, data []byte) {
	frame, err := message.DecodeFrame(data)
	if err != nil {
		b.metrics.FramesReceived.WithLabelValues("invalid").Inc()
		var de *message.DecodeError
		field := ""
		if errors.As(err, &de) {
			field = de.Field
		}
		b.logger.Warn("invalid frame from controller", "field", field, "error", err)
		return
	}

	if frame.Message != nil {
		msg := *frame.Message
		b.metrics.FramesReceived.WithLabelValues("message").Inc()
		if b.session.ConfirmDelivery(msg.LocalID) {
			b.metrics.DeliveriesConfirmed.Inc()
		}
		b.invoke(ctx, "on_receive_message", func() { b.bot.OnReceiveMessage(msg) })
	}
	if frame.State != nil {
		b.metrics.FramesReceived.WithLabelValues("state").Inc()
		b.invoke(ctx, "on_receive_state", func() { b.bot.OnReceiveState(frame.State) })
	}
}

// invoke runs a reaction hook, recovering and recording a panic so a faulty
// bot cannot take the receive loop down.
func (b *Bridge) invoke(ctx context.Context, hook string, fn func()) {
	_, span := b.tracer.Start(ctx, "bridge."+hook)
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			b.metrics.HookPanics.WithLabelValues(hook).Inc()
			span.SetStatus(codes.Error, "panic")
			b.logger.Error("reaction hook panicked",
				"hook", hook,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}

// drain writes queued messages in order, one frame each. A write failure
// stops the whole bridge via stop.
func (b *Bridge) drain(ctx context.Context, conn *websocket.Conn, stop context.CancelFunc) {
	queue := b.session.Queue()
	for {
		msg, err := queue.Pop(ctx)
		if err != nil {
			return
		}

		data, err := message.Encode(msg)
		if err != nil {
			b.metrics.MessagesDropped.Inc()
			b.logger.Error("dropping invalid outgoing message", "local_id", msg.LocalID, "error", err)
			continue
		}

		writeCtx, cancel := context.WithTimeout(ctx, b.opts.WriteTimeout)
		err = conn.Write(writeCtx, websocket.MessageText, data)
		cancel()
		if err != nil {
			b.metrics.MessagesDropped.Inc()
			if ctx.Err() == nil {
				b.logger.Warn("write to controller failed", "local_id", msg.LocalID, "error", err)
			}
			stop()
			return
		}
		b.metrics.MessagesSent.Inc()
	}
}

// setState moves the bridge forward; backward transitions are ignored.
func (b *Bridge) setState(s State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.rank() > b.state.rank() {
		b.state = s
	}
}

// finish makes the bridge CLOSED: pending messages are dropped and the bridge
// leaves its registry.
func (b *Bridge) finish() {
	if dropped := b.session.Queue().Close(); len(dropped) > 0 {
		b.metrics.MessagesDropped.Add(float64(len(dropped)))
		b.logger.Warn("discarding undelivered messages", "count", len(dropped))
	}

	b.setState(StateClosed)
	if b.opts.Registry != nil {
		b.opts.Registry.Remove(b)
	}
	close(b.done)
	b.logger.Info("conversation closed")
}
