package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	goslack "github.com/slack-go/slack"

	"github.com/oneiro-lab/morpheus/pkg/domain/model"
	"github.com/oneiro-lab/morpheus/pkg/domain/types"
	slacksvc "github.com/oneiro-lab/morpheus/pkg/service/slack"
	"github.com/oneiro-lab/morpheus/pkg/utils/logging"
)

const (
	helloText = "Hi! I keep your dreams and memories.\n" +
		"Use `create` to record a new memory and `memory <id>` to look one up."

	helpText = "Available commands:\n" +
		"`create` — record a new memory\n" +
		"`memory <id>` — show a stored memory\n" +
		"`help` — show this message"

	thinkingText = "Thinking it over..."
)

type chatState int

const (
	stateIdle chatState = iota
	stateWaitingTitle
	stateWaitingContent
)

type chatSession struct {
	state chatState
	title string
}

// Chat drives the two-step create conversation for the bot front-end. Its
// terminal action is exactly one Memories.Create call.
type Chat struct {
	memories *Memories
	slack    slacksvc.Service

	mu       sync.Mutex
	sessions map[string]*chatSession
}

func NewChat(memories *Memories, slackSvc slacksvc.Service) *Chat {
	return &Chat{
		memories: memories,
		slack:    slackSvc,
		sessions: make(map[string]*chatSession),
	}
}

// HandleMessage processes one user message addressed to the bot. Messages
// from the bot itself must already be filtered out by the caller.
func (uc *Chat) HandleMessage(ctx context.Context, channelID, userID, text string) error {
	logger := logging.From(ctx)

	botUserID, err := uc.slack.GetBotUserID(ctx)
	if err != nil {
		logger.Warn("failed to resolve bot user ID", "error", err)
		botUserID = ""
	}
	trimmed := strings.TrimSpace(stripMention(text, botUserID))

	uc.mu.Lock()
	session := uc.sessions[userID]
	if session == nil {
		session = &chatSession{}
		uc.sessions[userID] = session
	}
	state := session.state
	uc.mu.Unlock()

	switch state {
	case stateWaitingTitle:
		return uc.handleTitle(ctx, channelID, userID, trimmed)
	case stateWaitingContent:
		return uc.handleContent(ctx, channelID, userID, trimmed)
	}

	command, arg := splitCommand(trimmed)
	logger.Debug("chat command", "user_id", userID, "command", command)

	switch command {
	case "create":
		uc.setSession(userID, stateWaitingTitle, "")
		return uc.say(ctx, channelID, "What should the memory be called?")

	case "memory":
		return uc.handleShow(ctx, channelID, arg)

	case "start", "hello", "hi":
		return uc.say(ctx, channelID, helloText)

	default:
		return uc.say(ctx, channelID, helpText)
	}
}

func (uc *Chat) handleTitle(ctx context.Context, channelID, userID, text string) error {
	if text == "" {
		return uc.say(ctx, channelID, "The title cannot be empty. What should the memory be called?")
	}

	uc.setSession(userID, stateWaitingContent, text)
	return uc.say(ctx, channelID, "Got it. Now tell me what happened.")
}

func (uc *Chat) handleContent(ctx context.Context, channelID, userID, text string) error {
	if text == "" {
		return uc.say(ctx, channelID, "The content cannot be empty. Tell me what happened.")
	}

	// Concurrent deliveries of the same reply (Slack retries the webhook on
	// slow acks) race for the session; only the one that takes it runs the
	// pipeline.
	title, ok := uc.takeSession(userID)
	if !ok {
		return uc.say(ctx, channelID, helpText)
	}

	// Placeholder first: the pipeline takes a while and the user should see
	// the bot is working.
	timestamp, err := uc.slack.PostMessage(ctx, channelID, nil, thinkingText)
	if err != nil {
		return err
	}

	out := uc.memories.Create(ctx, &model.MemoryInput{Title: title, Content: text})
	if !out.Success {
		return uc.slack.UpdateMessage(ctx, channelID, timestamp, nil,
			"Could not save the memory: "+out.Message)
	}

	blocks := memoryBlocks(out.Content)
	return uc.slack.UpdateMessage(ctx, channelID, timestamp, blocks, renderMemoryText(out.Content))
}

func (uc *Chat) handleShow(ctx context.Context, channelID, arg string) error {
	if arg == "" {
		return uc.say(ctx, channelID, "Please give me the memory ID, like `memory 3`.")
	}

	id, err := types.ParseMemoryID(arg)
	if err != nil {
		return uc.say(ctx, channelID, "That doesn't look like a memory ID.")
	}

	out := uc.memories.Get(ctx, id)
	if !out.Success {
		return uc.say(ctx, channelID, out.Message)
	}

	_, err = uc.slack.PostMessage(ctx, channelID, memoryBlocks(out.Content), renderMemoryText(out.Content))
	return err
}

func (uc *Chat) say(ctx context.Context, channelID, text string) error {
	_, err := uc.slack.PostMessage(ctx, channelID, nil, text)
	return err
}

func (uc *Chat) setSession(userID string, state chatState, title string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.sessions[userID] = &chatSession{state: state, title: title}
}

// takeSession atomically removes the user's session and returns its title.
// Returns false when another message already consumed it.
func (uc *Chat) takeSession(userID string) (string, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	session, ok := uc.sessions[userID]
	if !ok {
		return "", false
	}
	delete(uc.sessions, userID)
	return session.title, true
}

// renderMemoryText renders a stored memory as Slack mrkdwn.
func renderMemoryText(m *model.Memory) string {
	thoughts := "_no commentary_"
	if m.AIThoughts != nil {
		thoughts = *m.AIThoughts
	}
	return fmt.Sprintf("Memory `%d`\n*%s*\n_%s_\n———\n%s", m.ID, m.Title, m.Content, thoughts)
}

// memoryBlocks builds the Block Kit rendering: the entry text plus a link
// button when a public page exists.
func memoryBlocks(m *model.Memory) []goslack.Block {
	blocks := []goslack.Block{
		goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, renderMemoryText(m), false, false),
			nil, nil,
		),
	}

	if m.TelegraphURL != nil {
		button := goslack.NewButtonBlockElement(
			"open_page", m.ID.String(),
			goslack.NewTextBlockObject(goslack.PlainTextType, "Telegraph", false, false),
		)
		button.URL = *m.TelegraphURL
		blocks = append(blocks, goslack.NewActionBlock("memory_links", button))
	}

	return blocks
}

// stripMention removes the bot's own mention from the message. When the bot
// user ID could not be resolved, a leading mention is stripped as a
// fallback.
func stripMention(text, botUserID string) string {
	trimmed := strings.TrimSpace(text)

	if botUserID != "" {
		return strings.TrimSpace(strings.ReplaceAll(trimmed, "<@"+botUserID+">", " "))
	}

	if strings.HasPrefix(trimmed, "<@") {
		if end := strings.Index(trimmed, ">"); end > 0 {
			return strings.TrimSpace(trimmed[end+1:])
		}
	}
	return trimmed
}

func splitCommand(text string) (string, string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", ""
	}
	command := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	return command, strings.Join(fields[1:], " ")
}
