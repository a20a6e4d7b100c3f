package conversation

import (
	"encoding/hex"
	"maps"
	"sync"

	"github.com/C4AI/blab-chatbot-bot-client/pkg/message"
	"github.com/google/uuid"
)

// Session is the mutable context of one conversation. It lives exactly as
// long as the connection serving it.
//
// The outbound queue is the only path from reaction hooks to the network:
// hooks call Enqueue and never touch the connection.
type Session struct {
	conversationID   string
	botParticipantID string
	settings         *Settings

	queue      *Queue
	deliveries *deliveryTracker

	mu    sync.RWMutex
	state map[string]any
}

// NewSession creates the session for one conversation. settings may be nil.
func NewSession(settings *Settings, conversationID, botParticipantID string) *Session {
	if settings == nil {
		settings = &Settings{}
	}
	return &Session{
		conversationID:   conversationID,
		botParticipantID: botParticipantID,
		settings:         settings,
		queue:            NewQueue(),
		deliveries:       newDeliveryTracker(defaultDeliveryTTL, defaultDeliveryMaxSize),
		state:            make(map[string]any),
	}
}

// ConversationID returns the controller-assigned conversation id.
func (s *Session) ConversationID() string { return s.conversationID }

// BotParticipantID returns the participant id of the bot in this conversation.
func (s *Session) BotParticipantID() string { return s.botParticipantID }

// Settings returns the process-wide settings. Callers must not modify them.
func (s *Session) Settings() *Settings { return s.settings }

// Queue returns the outbound queue drained by the transport.
func (s *Session) Queue() *Queue { return s.queue }

// Enqueue schedules messages for delivery, in order. It never blocks. Messages
// enqueued after the connection closed are dropped.
func (s *Session) Enqueue(msgs ...message.OutgoingMessage) {
	for _, m := range msgs {
		if s.queue.Push(m) {
			s.deliveries.mark(m.LocalID)
		}
	}
}

// GenerateLocalID returns a fresh local id for an outgoing message.
func (s *Session) GenerateLocalID() string {
	return GenerateLocalID()
}

// IsOwnMessage reports whether msg was sent by this bot.
func (s *Session) IsOwnMessage(msg message.IncomingMessage) bool {
	return msg.SenderID != "" && msg.SenderID == s.botParticipantID
}

// ConfirmDelivery reports whether localID belongs to a message this session
// enqueued and had not been confirmed yet, recording it as delivered.
func (s *Session) ConfirmDelivery(localID string) bool {
	return s.deliveries.confirm(localID)
}

// Delivered reports whether the controller has echoed back the message with
// the given local id.
func (s *Session) Delivered(localID string) bool {
	return s.deliveries.isDelivered(localID)
}

// PendingDeliveries returns how many enqueued messages still await their echo.
func (s *Session) PendingDeliveries() int {
	return s.deliveries.pendingLen()
}

// MergeState merges update into the cached state, key by key.
func (s *Session) MergeState(update map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.state, update)
}

// State returns a copy of the cached controller state.
func (s *Session) State() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.state)
}

// StateValue returns a single cached state value.
func (s *Session) StateValue(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state[key]
	return v, ok
}

// GenerateLocalID returns a random 128-bit identifier rendered as 32
// lowercase hex characters without separators.
func GenerateLocalID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
