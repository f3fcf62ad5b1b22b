package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/symbcore/internal/actor"
	"github.com/xonecas/symbcore/internal/wiring"
)

func newServeCmd(configPath, projectRoot *string) *cobra.Command {
	var addr string
	var noMetrics bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve chat over a websocket event stream, with an optional Prometheus /metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath, *projectRoot, addr, noMetrics)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8787", "listen address")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	return cmd
}

func runServe(configPath, projectRoot, addr string, noMetrics bool) error {
	app, err := buildApp(configPath, projectRoot)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	if !noMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		serveChatWS(w, r, app)
	})

	log.Info().Str("addr", addr).Msg("symbcore serve listening")
	fmt.Printf("listening on %s (ws: /chat, metrics: /metrics)\n", addr)
	return http.ListenAndServe(addr, mux)
}

// chatMu serializes Actor.Recv calls from all websocket connections.
var chatMu sync.Mutex

type wsClientLine struct {
	Text string `json:"text"`
}

// serveChatWS upgrades one HTTP connection to a websocket, relays the
// actor's event bus to the client as JSON frames, and feeds client
// frames back in as actor.Messages. One websocket connection maps to
// the single shared App actor — concurrent connections all observe the
// same conversation, matching the single-threaded-cooperative
// scheduling model (spec.md §5). Actor.Recv must not run concurrently,
// so this handler serializes user and slash-command messages across
// connections with chatMu; CANCEL bypasses it so it can interrupt the
// in-flight turn.
func serveChatWS(w http.ResponseWriter, r *http.Request, app *wiring.App) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	events := app.Bus.Subscribe()

	go func() {
		for ev := range events {
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}()

	sessionID, err := app.Sessions.NewSession()
	if err != nil {
		log.Warn().Err(err).Msg("failed to create session for websocket connection")
	}
	persistedLen := 0

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}

		raw := strings.TrimSpace(string(data))
		if raw == "" {
			continue
		}
		if raw == "CANCEL" {
			_ = app.Actor.Recv(ctx, actor.Message{Kind: actor.KindCancel})
			continue
		}

		var line wsClientLine
		var msg actor.Message
		if err := json.Unmarshal(data, &line); err != nil || line.Text == "" {
			msg = actor.Message{Kind: actor.KindUserMessage, Text: raw}
			if strings.HasPrefix(raw, "/") {
				msg.Kind = actor.KindSlashCommand
			}
		} else {
			msg = actor.Message{Kind: actor.KindUserMessage, Text: line.Text}
			if strings.HasPrefix(strings.TrimSpace(line.Text), "/") {
				msg.Kind = actor.KindSlashCommand
			}
		}

		chatMu.Lock()
		recvErr := app.Actor.Recv(ctx, msg)
		if sessionID != "" {
			persistedLen = persistNewMessages(app.Sessions, sessionID, app.Actor.Stack, persistedLen)
		}
		chatMu.Unlock()
		if recvErr == actor.ErrExit {
			break
		}
	}

	conn.Close(websocket.StatusNormalClosure, "")
}
