// Package conversation is the extension point for bot authors. A bot
// implements Bot, usually by embedding Base and overriding a few hooks, and
// reacts to conversation events by enqueueing messages on its Session.
package conversation

import "github.com/C4AI/blab-chatbot-bot-client/pkg/message"

// Bot is the set of reaction hooks invoked by the transport for one
// conversation. Hooks run on the connection's receive goroutine, one at a
// time, and must not block on network I/O; outgoing messages go through
// Session.Enqueue.
type Bot interface {
	// OnConnect is called once, after the connection is open and before any
	// inbound frame is dispatched.
	OnConnect()

	// OnReceiveMessage is called for every inbound message, including the
	// bot's own messages once the controller echoes them back.
	OnReceiveMessage(msg message.IncomingMessage)

	// OnReceiveState is called for every inbound state update.
	OnReceiveState(update map[string]any)

	// GenerateAnswer returns zero or more answers to msg.
	GenerateAnswer(msg message.IncomingMessage) []message.OutgoingMessage

	// GenerateGreeting returns the messages sent before any human input when
	// BotSendsFirstMessage is true.
	GenerateGreeting() []message.OutgoingMessage

	// BotSendsFirstMessage reports whether the bot opens the conversation.
	BotSendsFirstMessage() bool
}

// Factory builds the Bot serving one conversation.
type Factory func(s *Session) Bot

// Base provides the default behaviour of every hook. Embed it in a bot type
// to inherit the defaults and the Session helpers (Enqueue, GenerateLocalID,
// ConversationID, ...).
type Base struct {
	*Session
}

var _ Bot = (*Base)(nil)

// NewBase returns a Base bound to s.
func NewBase(s *Session) Base {
	return Base{Session: s}
}

// OnConnect does nothing.
func (b *Base) OnConnect() {}

// OnReceiveMessage does nothing.
func (b *Base) OnReceiveMessage(message.IncomingMessage) {}

// OnReceiveState merges update into the session's cached state.
func (b *Base) OnReceiveState(update map[string]any) {
	if b.Session != nil {
		b.MergeState(update)
	}
}

// GenerateAnswer returns no answers.
func (b *Base) GenerateAnswer(message.IncomingMessage) []message.OutgoingMessage { return nil }

// GenerateGreeting returns no greetings.
func (b *Base) GenerateGreeting() []message.OutgoingMessage { return nil }

// BotSendsFirstMessage returns false.
func (b *Base) BotSendsFirstMessage() bool { return false }

// Reply enqueues bot's answers to msg when msg was sent by a human.
// It returns the number of messages enqueued.
func Reply(bot Bot, s *Session, msg message.IncomingMessage) int {
	if !msg.SentByHuman {
		return 0
	}
	answers := bot.GenerateAnswer(msg)
	s.Enqueue(answers...)
	return len(answers)
}

// Greet enqueues bot's greeting when the bot opens the conversation.
// It returns the number of messages enqueued.
func Greet(bot Bot, s *Session) int {
	if !bot.BotSendsFirstMessage() {
		return 0
	}
	greeting := bot.GenerateGreeting()
	s.Enqueue(greeting...)
	return len(greeting)
}
