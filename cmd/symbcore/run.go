package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xonecas/symbcore/internal/actor"
	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
	"github.com/xonecas/symbcore/internal/stack"
)

func newRunCmd(configPath, projectRoot *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(*configPath, *projectRoot)
		},
	}
}

func runInteractive(configPath, projectRoot string) error {
	app, err := buildApp(configPath, projectRoot)
	if err != nil {
		return err
	}

	sessionID, err := app.Sessions.NewSession()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	fmt.Printf("session %s (Ctrl-D to exit, /exit to quit)\n", sessionID)

	events := app.Bus.Subscribe()
	go printEvents(events)

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	persistedLen := 0
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		msg := actor.Message{Kind: actor.KindUserMessage, Text: line}
		if strings.HasPrefix(strings.TrimSpace(line), "/") {
			msg.Kind = actor.KindSlashCommand
		}

		recvErr := app.Actor.Recv(ctx, msg)
		persistedLen = persistNewMessages(app.Sessions, sessionID, app.Actor.Stack, persistedLen)
		if recvErr != nil {
			if recvErr == actor.ErrExit {
				break
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", recvErr)
		}
	}

	return nil
}

// persistNewMessages appends every root-agent message added since
// fromIdx to the session file and returns the new length, so the CLI
// loop only writes each message once (spec.md §6: the root agent's
// conversation is the persisted session; sub-agent stack entries are
// per-turn and never written to disk).
func persistNewMessages(sessions interface {
	AppendMessages(id string, msgs ...convo.Message) error
}, sessionID string, st *stack.Stack, fromIdx int) int {
	var newLen int
	var fresh []convo.Message
	st.WithRoot(func(ag *stack.ActiveAgent) {
		newLen = len(ag.Conversation)
		if newLen > fromIdx {
			fresh = append(fresh, ag.Conversation[fromIdx:newLen]...)
		}
	})
	if len(fresh) > 0 {
		if err := sessions.AppendMessages(sessionID, fresh...); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to persist session: %v\n", err)
		}
	}
	return newLen
}

func printEvents(events <-chan event.Event) {
	for ev := range events {
		switch ev.Kind {
		case event.StreamDelta:
			fmt.Print(ev.Text)
		case event.StreamEnd:
			fmt.Println()
		case event.ErrorEvent:
			fmt.Fprintf(os.Stderr, "\n[error] %s\n", ev.ErrorMessage)
		case event.ToolRequest:
			if ev.ToolReq != nil {
				fmt.Printf("\n[tool] %s\n", ev.ToolReq.ToolName)
			}
		case event.ToolExecutionCompleted:
			if !ev.Success {
				fmt.Printf("[tool error] %s: %s\n", ev.ToolName, ev.ToolError)
			}
		}
	}
}
