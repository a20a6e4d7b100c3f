// Package console runs a conversation with a bot on the terminal, without a
// controller. Each typed line is handed to the bot's GenerateAnswer and the
// answers are printed back.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/C4AI/blab-chatbot-bot-client/pkg/conversation"
	"github.com/C4AI/blab-chatbot-bot-client/pkg/message"
	"github.com/fatih/color"
)

// Placeholder identities used in place of controller-assigned ids.
const (
	ConversationID   = "conv0"
	BotParticipantID = "part0"
	UserID           = "part1"
)

// Chat is a terminal conversation between the user and one bot.
type Chat struct {
	Factory  conversation.Factory
	Settings *conversation.Settings

	In  io.Reader
	Out io.Writer

	// Interactive prints the user prompt before reading. When false (piped
	// input) the prompt and the line read are echoed after reading instead.
	Interactive bool

	// Color enables ANSI colours.
	Color bool

	// Now stamps user messages; defaults to time.Now.
	Now func() time.Time

	prompt, text, option *color.Color
}

// Run reads lines until EOF or ctx is cancelled. If the bot opens the
// conversation its greeting is printed first.
func (c *Chat) Run(ctx context.Context) error {
	c.setup()

	session := conversation.NewSession(c.Settings, ConversationID, BotParticipantID)
	bot := c.Factory(session)

	n := 1
	if bot.BotSendsFirstMessage() {
		n = c.show(bot.GenerateGreeting(), n+1)
	}

	scanner := bufio.NewScanner(c.In)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if c.Interactive {
			c.showPrompt("YOU")
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("console: read: %w", err)
			}
			return nil
		}
		line := scanner.Text()
		if !c.Interactive {
			c.showPrompt("YOU")
			c.showText(line, nil)
		}

		msg := message.IncomingMessage{
			ID:          "m" + strconv.Itoa(n),
			Time:        c.Now(),
			Type:        message.TypeText,
			SentByHuman: true,
			LocalID:     "user_m" + strconv.Itoa(n),
			SenderID:    UserID,
			Text:        line,
		}
		n = c.show(bot.GenerateAnswer(msg), n+1)
	}
}

func (c *Chat) setup() {
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	if c.In == nil {
		c.In = os.Stdin
	}
	c.prompt = color.New(color.Bold)
	c.text = color.New(color.FgYellow)
	c.option = color.New(color.FgCyan)
	for _, col := range []*color.Color{c.prompt, c.text, c.option} {
		if c.Color {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
}

// show prints bot messages and returns the next sequence number.
func (c *Chat) show(msgs []message.OutgoingMessage, n int) int {
	for _, m := range msgs {
		c.showPrompt("BOT")
		c.showText(m.Text, m.Options)
		n++
	}
	return n
}

func (c *Chat) showPrompt(who string) {
	_, _ = c.prompt.Fprintf(c.Out, "\n>> %s:", who)
	_, _ = fmt.Fprint(c.Out, " ")
}

func (c *Chat) showText(text string, options []string) {
	_, _ = c.text.Fprintln(c.Out, text)
	for _, opt := range options {
		_, _ = fmt.Fprint(c.Out, "        - ")
		_, _ = c.option.Fprintln(c.Out, opt)
	}
}

// IsInteractive reports whether f is a terminal rather than a pipe or a
// regular file.
func IsInteractive(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	mode := info.Mode()
	return mode&os.ModeNamedPipe == 0 && !mode.IsRegular()
}
