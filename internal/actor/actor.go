// Package actor implements the chat actor (spec.md §4.8): the single
// goroutine that owns one conversation's agent stack, drives the turn
// engine to completion, and reacts to cancellation and slash commands.
//
// Grounded on the teacher's tui.Model: one owner goroutine reads a
// buffered channel of incoming events (there, tea.Msg; here,
// ActorMessage) and reacts with a big switch, with a context.CancelFunc
// torn down and rebuilt per in-flight LLM call so the user can
// interrupt mid-stream. Generalized from the teacher's single fixed
// conversation into the stack-driven, multi-agent loop turnengine.Engine
// implements.
package actor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
	"github.com/xonecas/symbcore/internal/provider"
	"github.com/xonecas/symbcore/internal/security"
	"github.com/xonecas/symbcore/internal/stack"
	"github.com/xonecas/symbcore/internal/turnengine"
)

// Kind discriminates the ActorMessage sum type the actor's Recv loop
// accepts.
type Kind string

const (
	KindUserMessage  Kind = "user_message"
	KindSlashCommand Kind = "slash_command"
	KindCancel       Kind = "cancel"
	KindShutdown     Kind = "shutdown"
)

// Message is one item the driver (CLI, subprocess transport, or test)
// feeds to an Actor.
type Message struct {
	Kind Kind
	Text string // user text, or the raw slash-command line including "/"
}

// ErrExit is returned by Recv when the /exit or /quit slash command was
// processed; the driver should stop reading from the actor.
var ErrExit = errors.New("actor: exit requested")

// Actor owns one conversation's agent stack and the single in-flight
// request's cancellation, per spec.md §4.8.
type Actor struct {
	Engine   *turnengine.Engine
	Stack    *stack.Stack
	Bus      *event.Bus
	Settings turnengine.Settings

	// FileModAPI is the session-level file-modification API preference:
	// wiring sets it from the settings override and /fileapi changes it.
	// No tool executor reads it; file_modification always matches by
	// exact text, whatever this holds.
	FileModAPI provider.FileModAPI

	Verbose bool

	mu          sync.Mutex
	cancel      context.CancelFunc
	inFlight    bool
}

// New constructs an Actor that uses settings as given (including its
// security mode), with the find-replace file API and verbose off.
func New(engine *turnengine.Engine, st *stack.Stack, settings turnengine.Settings) *Actor {
	return &Actor{
		Engine:     engine,
		Stack:      st,
		Bus:        engine.Bus,
		Settings:   settings,
		FileModAPI: provider.FileModFindReplace,
	}
}

// FileModPreference returns the actor's current file-modification API
// preference under the actor's lock. No code in this module calls it.
func (a *Actor) FileModPreference() provider.FileModAPI {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.FileModAPI
}

// Recv processes one Message to completion (including driving the turn
// engine across any number of stack pushes/pops) before returning.
// Per spec.md §4.8 the actor processes messages one at a time; callers
// feeding a channel should call Recv serially, not concurrently.
func (a *Actor) Recv(parent context.Context, msg Message) error {
	switch msg.Kind {
	case KindUserMessage:
		return a.recvUserMessage(parent, msg.Text)
	case KindSlashCommand:
		return a.recvSlashCommand(parent, msg.Text)
	case KindCancel:
		a.recvCancel()
		return nil
	case KindShutdown:
		a.Bus.Close()
		return nil
	default:
		return fmt.Errorf("actor: unknown message kind %q", msg.Kind)
	}
}

func (a *Actor) recvUserMessage(parent context.Context, text string) error {
	a.Stack.WithCurrentMut(func(ag *stack.ActiveAgent) {
		ag.Conversation = append(ag.Conversation, convo.Message{
			Role:    convo.RoleUser,
			Content: []convo.Block{{Type: convo.BlockText, Text: text}},
		})
	})

	ctx, cancel := context.WithCancel(parent)
	a.mu.Lock()
	a.cancel = cancel
	a.inFlight = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.cancel = nil
		a.inFlight = false
		a.mu.Unlock()
		cancel()
	}()

	_, err := a.driveTurns(ctx)
	if err != nil && ctx.Err() != nil {
		// Cancelled mid-stream: roll back any assistant message left
		// with unmatched tool-use blocks so the next request doesn't
		// send a conversation the provider would reject (spec.md §4.8).
		a.Stack.WithCurrentMut(func(ag *stack.ActiveAgent) {
			ag.Conversation = rollbackUnmatched(ag.Conversation)
		})
		return nil
	}
	return err
}

// driveTurns repeatedly invokes the turn engine until it yields or
// errors, following stack pushes/pops without driver involvement
// (spec.md §4.7/§4.8: PushAgent/PopAgent keep control inside the actor).
func (a *Actor) driveTurns(ctx context.Context) (turnengine.Outcome, error) {
	for {
		outcome, err := a.Engine.ProcessTurn(ctx, a.Stack, a.Settings)
		if err != nil {
			return outcome, err
		}
		if outcome != turnengine.OutcomeContinueStack {
			return outcome, nil
		}
	}
}

// rollbackUnmatched trims trailing assistant messages whose tool-use
// blocks have no matching result, newest first, stopping at the first
// message that has none.
func rollbackUnmatched(conversation []convo.Message) []convo.Message {
	for len(conversation) > 0 {
		last := len(conversation) - 1
		if conversation[last].Role != convo.RoleAssistant {
			break
		}
		if !convo.HasUnmatchedToolUse(conversation, last) {
			break
		}
		conversation = conversation[:last]
	}
	return conversation
}

func (a *Actor) recvCancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *Actor) recvSlashCommand(parent context.Context, line string) error {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return nil
	}
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "/verbose":
		a.mu.Lock()
		a.Verbose = !a.Verbose
		verbose := a.Verbose
		a.mu.Unlock()
		a.Bus.Emit(event.Event{Kind: event.TaskUpdate, Tasks: &event.TaskList{Content: fmt.Sprintf("verbose: %v", verbose)}})
		return nil

	case "/exit", "/quit":
		return ErrExit

	case "/compact":
		return a.recvCompact(args)

	case "/fileapi":
		return a.recvFileAPI(args)

	case "/security":
		return a.recvSecurity(args)

	default:
		a.Bus.Emit(event.Event{Kind: event.ErrorEvent, ErrorMessage: "unknown command: " + cmd})
		return nil
	}
}

// recvCompact implements "/compact" and "/compact reasoning N" on the
// root agent's conversation: plain "/compact" empties it, and
// "/compact reasoning N" keeps only its N most recent messages (all of
// them when it has N or fewer). No summary message is inserted in place
// of what is dropped, and N counts whole messages, not exchanges or
// reasoning blocks.
func (a *Actor) recvCompact(args []string) error {
	keep := 0
	if len(args) == 2 && args[0] == "reasoning" {
		var n int
		if _, err := fmt.Sscanf(args[1], "%d", &n); err == nil && n > 0 {
			keep = n
		}
	}

	a.Stack.WithRootMut(func(ag *stack.ActiveAgent) {
		if keep <= 0 {
			ag.Conversation = nil
			return
		}
		if keep >= len(ag.Conversation) {
			return
		}
		ag.Conversation = append([]convo.Message{}, ag.Conversation[len(ag.Conversation)-keep:]...)
	})
	a.Bus.Emit(event.Event{Kind: event.TaskUpdate, Tasks: &event.TaskList{Content: "conversation compacted"}})
	return nil
}

func (a *Actor) recvFileAPI(args []string) error {
	if len(args) != 1 {
		a.Bus.Emit(event.Event{Kind: event.ErrorEvent, ErrorMessage: "usage: /fileapi <patch|findreplace>"})
		return nil
	}
	switch args[0] {
	case "patch":
		a.mu.Lock()
		a.FileModAPI = provider.FileModPatch
		a.mu.Unlock()
	case "findreplace":
		a.mu.Lock()
		a.FileModAPI = provider.FileModFindReplace
		a.mu.Unlock()
	default:
		a.Bus.Emit(event.Event{Kind: event.ErrorEvent, ErrorMessage: "unknown file API: " + args[0]})
	}
	return nil
}

func (a *Actor) recvSecurity(args []string) error {
	if len(args) != 2 || args[0] != "set" {
		a.Bus.Emit(event.Event{Kind: event.ErrorEvent, ErrorMessage: "usage: /security set <readonly|auto|all>"})
		return nil
	}
	mode, ok := security.ParseMode(args[1])
	if !ok {
		a.Bus.Emit(event.Event{Kind: event.ErrorEvent, ErrorMessage: "unknown security mode: " + args[1]})
		return nil
	}
	a.mu.Lock()
	a.Settings.SecurityMode = mode
	a.mu.Unlock()
	return nil
}
