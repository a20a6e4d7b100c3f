package trigger

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/C4AI/blab-chatbot-bot-client/internal/bridge"
	"github.com/C4AI/blab-chatbot-bot-client/internal/security"
	"github.com/C4AI/blab-chatbot-bot-client/pkg/conversation"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// handleTrigger answers `POST /`. A well-formed request is acknowledged with
// an empty 200 as soon as its bridge is registered; the connection to the
// controller is made in the background.
func (s *Server) handleTrigger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.Start(r.Context(), "trigger.request")
		defer span.End()

		code := s.accept(w, r.WithContext(ctx))
		span.SetAttributes(attribute.Int("http.status_code", code))
		if code != http.StatusOK {
			span.SetStatus(codes.Error, http.StatusText(code))
		}
		s.requests.WithLabelValues(strconv.Itoa(code)).Inc()
		w.WriteHeader(code)
	}
}

func (s *Server) accept(w http.ResponseWriter, r *http.Request) int {
	logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(s.config.MaxBodyBytes)))
	if err != nil {
		logger.Warn("trigger body rejected", "error", err)
		return http.StatusBadRequest
	}
	if err := security.ValidatePayload(body, s.config.MaxBodyBytes, 0); err != nil {
		logger.Warn("trigger body rejected", "error", err)
		return http.StatusBadRequest
	}
	req, err := ParseRequest(body)
	if err != nil {
		logger.Warn("trigger body rejected", "error", err)
		return http.StatusBadRequest
	}

	// Register the credential before anything can log it.
	s.redactor.AddLiteral(req.Session)

	session := conversation.NewSession(s.settings, req.ConversationID, req.BotParticipantID)
	b := bridge.New(session, s.factory(session), bridge.Options{
		ControllerURL: s.settings.Connection.ControllerWSURL,
		Credential:    req.Session,
		Logger:        s.logger,
		Metrics:       s.metrics,
		DialTimeout:   s.config.DialTimeout,
		WriteTimeout:  s.config.FrameWriteTimeout,
		Registry:      s.registry,
	})

	if err := s.registry.Add(b); err != nil {
		s.redactor.RemoveLiteral(req.Session)
		if errors.Is(err, bridge.ErrDuplicate) {
			logger.Warn("conversation already active", "conversation_id", req.ConversationID)
			return http.StatusConflict
		}
		logger.Error("registering conversation", "error", err)
		return http.StatusInternalServerError
	}

	logger.Info("conversation requested",
		"conversation_id", req.ConversationID,
		"bot_participant_id", req.BotParticipantID,
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.redactor.RemoveLiteral(req.Session)
		// Run logs its own failures.
		_ = b.Run(s.baseCtx)
	}()

	return http.StatusOK
}
