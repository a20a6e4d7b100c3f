package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/C4AI/blab-chatbot-bot-client/internal/bridge"
	"github.com/C4AI/blab-chatbot-bot-client/internal/core"
	"github.com/C4AI/blab-chatbot-bot-client/internal/security"
	"github.com/C4AI/blab-chatbot-bot-client/pkg/conversation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

const tracerName = "github.com/C4AI/blab-chatbot-bot-client/internal/trigger"

func init() {
	core.RegisterModule(&Server{})
}

// Server is the trigger module. It listens for conversation requests from
// the controller and runs one bridge per accepted conversation.
type Server struct {
	config   Config
	logger   *slog.Logger
	settings *conversation.Settings
	factory  conversation.Factory
	redactor *security.Redactor
	registry *bridge.Registry
	metrics  *bridge.Metrics
	gatherer prometheus.Gatherer
	requests *prometheus.CounterVec
	tracer   trace.Tracer

	server *http.Server
	addr   net.Addr

	// baseCtx outlives individual requests; bridges run under it.
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// ModuleInfo implements core.Module.
func (s *Server) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "trigger.http",
		New: func() core.Module { return &Server{} },
	}
}

// Configure implements core.Configurable.
func (s *Server) Configure(node *yaml.Node) error {
	if err := node.Decode(&s.config); err != nil {
		return err
	}
	s.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (s *Server) Provision(ctx *core.AppContext) error {
	s.config.defaults()
	s.logger = ctx.Logger
	s.tracer = otel.Tracer(tracerName)

	s.settings, _ = core.ServiceAs[*conversation.Settings](ctx, ServiceSettings)
	s.factory, _ = core.ServiceAs[conversation.Factory](ctx, ServiceFactory)

	redactor, ok := core.ServiceAs[*security.Redactor](ctx, ServiceRedactor)
	if !ok {
		redactor = security.NewRedactor()
	}
	s.redactor = redactor

	reg, ok := core.ServiceAs[*prometheus.Registry](ctx, ServiceMetrics)
	if !ok {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		ctx.RegisterService(ServiceMetrics, reg)
	}
	s.gatherer = reg
	s.metrics = bridge.NewMetrics(reg)
	s.requests = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Namespace: "blab_bot",
		Name:      "trigger_requests_total",
		Help:      "Conversation requests by HTTP status code.",
	}, []string{"code"})

	s.registry = bridge.NewRegistry()
	ctx.RegisterService(bridge.RegistryService, s.registry)

	s.baseCtx, s.cancel = context.WithCancel(context.Background())
	return nil
}

// Validate implements core.Validator.
func (s *Server) Validate() error {
	if s.factory == nil {
		return ErrNoFactory
	}
	if s.settings == nil {
		return ErrNoSettings
	}
	return nil
}

// Start implements core.Starter.
func (s *Server) Start() error {
	addr := s.settings.Connection.Addr()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.buildRouter(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return fmt.Errorf("trigger: listen failed: %w", err)
	}
	s.addr = ln.Addr()

	go func() {
		s.logger.Info("trigger server listening", "addr", s.addr.String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("trigger serve error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address once started.
func (s *Server) Addr() net.Addr { return s.addr }

// Registry returns the bridges of active conversations.
func (s *Server) Registry() *bridge.Registry { return s.registry }

// Stop implements core.Stopper. It stops accepting requests, then closes
// every bridge and waits for them within the shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	var errs []error
	if s.server != nil {
		s.logger.Info("trigger server shutting down")
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.registry != nil {
		if n := s.registry.Len(); n > 0 {
			s.logger.Info("closing active conversations", "count", n)
		}
		if err := s.registry.CloseAll(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	return errors.Join(errs...)
}
