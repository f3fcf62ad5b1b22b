package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xonecas/symbcore/internal/actor"
	"github.com/xonecas/symbcore/internal/event"
)

// subprocessLine is one line of the subprocess protocol: either
// {"text": "..."} for a user message or the literal line "CANCEL" to
// interrupt the in-flight turn (spec.md §6).
type subprocessLine struct {
	Text string `json:"text"`
}

func newSubprocessCmd(configPath, projectRoot *string) *cobra.Command {
	return &cobra.Command{
		Use:   "subprocess",
		Short: "Run as a line-delimited JSON subprocess (one JSON object per line in, one event per line out)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubprocess(*configPath, *projectRoot)
		},
	}
}

func runSubprocess(configPath, projectRoot string) error {
	app, err := buildApp(configPath, projectRoot)
	if err != nil {
		return err
	}

	sessionID, err := app.Sessions.NewSession()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	events := app.Bus.Subscribe()
	go func() {
		for ev := range events {
			_ = enc.Encode(ev)
		}
	}()

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	persistedLen := 0
	for scanner.Scan() {
		raw := scanner.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}

		if strings.TrimSpace(raw) == "CANCEL" {
			_ = app.Actor.Recv(ctx, actor.Message{Kind: actor.KindCancel})
			continue
		}

		var line subprocessLine
		var msg actor.Message
		if err := json.Unmarshal([]byte(raw), &line); err != nil || line.Text == "" {
			// Not a recognized JSON object: treat as a raw slash command
			// or plain text line, matching the CLI's own leniency.
			trimmed := strings.TrimSpace(raw)
			msg = actor.Message{Kind: actor.KindUserMessage, Text: trimmed}
			if strings.HasPrefix(trimmed, "/") {
				msg.Kind = actor.KindSlashCommand
			}
		} else {
			msg = actor.Message{Kind: actor.KindUserMessage, Text: line.Text}
			if strings.HasPrefix(strings.TrimSpace(line.Text), "/") {
				msg.Kind = actor.KindSlashCommand
			}
		}

		recvErr := app.Actor.Recv(ctx, msg)
		persistedLen = persistNewMessages(app.Sessions, sessionID, app.Actor.Stack, persistedLen)
		if recvErr != nil {
			if recvErr == actor.ErrExit {
				break
			}
			app.Bus.Emit(event.Event{Kind: event.ErrorEvent, ErrorMessage: recvErr.Error()})
		}
	}

	return nil
}
