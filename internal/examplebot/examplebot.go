// Package examplebot is the bot shipped with the command-line client. It
// repeats what the user types and is meant as a starting point for real bots.
//
// Settings under the `bot` key of settings.yaml:
//
//	greet: true                # open the conversation
//	greeting: "Hello!"         # text of the opening message
//	echo_prefix: "You said: "  # prepended to every echoed text
package examplebot

import (
	"slices"
	"strings"

	"github.com/C4AI/blab-chatbot-bot-client/pkg/conversation"
	"github.com/C4AI/blab-chatbot-bot-client/pkg/message"
)

// Defaults for the bot settings.
const (
	DefaultGreeting   = "Hello! Type anything and I will repeat it."
	DefaultEchoPrefix = "You said: "
	UnsupportedText   = "Sorry, I can only repeat text messages."
	FarewellText      = "Goodbye!"
)

// Options offered after every echoed message.
var replyOptions = []string{"Hello", "Bye"}

// Bot echoes human text messages back to the conversation.
type Bot struct {
	conversation.Base
}

var _ conversation.Bot = (*Bot)(nil)

// New is a conversation.Factory.
func New(s *conversation.Session) conversation.Bot {
	return &Bot{Base: conversation.NewBase(s)}
}

// OnConnect sends the greeting when the bot opens the conversation.
func (b *Bot) OnConnect() {
	conversation.Greet(b, b.Session)
}

// OnReceiveMessage answers human messages. Echoes of the bot's own messages
// are ignored.
func (b *Bot) OnReceiveMessage(msg message.IncomingMessage) {
	if b.IsOwnMessage(msg) {
		return
	}
	conversation.Reply(b, b.Session, msg)
}

// BotSendsFirstMessage reports the `greet` setting (default true).
func (b *Bot) BotSendsFirstMessage() bool {
	return b.Settings().BotBool("greet", true)
}

// GenerateGreeting returns the configured greeting.
func (b *Bot) GenerateGreeting() []message.OutgoingMessage {
	text := b.Settings().BotString("greeting", DefaultGreeting)
	return []message.OutgoingMessage{message.NewText(b.GenerateLocalID(), text, slices.Clone(replyOptions)...)}
}

// GenerateAnswer echoes text messages and quotes the message it answers.
func (b *Bot) GenerateAnswer(msg message.IncomingMessage) []message.OutgoingMessage {
	var out message.OutgoingMessage
	switch text := strings.TrimSpace(msg.Text); {
	case msg.Type != message.TypeText || text == "":
		out = message.NewText(b.GenerateLocalID(), UnsupportedText)
	case strings.EqualFold(text, "bye"):
		out = message.NewText(b.GenerateLocalID(), FarewellText)
	default:
		prefix := b.Settings().BotString("echo_prefix", DefaultEchoPrefix)
		out = message.NewText(b.GenerateLocalID(), prefix+text, slices.Clone(replyOptions)...)
	}
	out.QuotedMessageID = msg.ID
	return []message.OutgoingMessage{out}
}
