package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xonecas/symbcore/internal/config"
	"github.com/xonecas/symbcore/internal/sessionlog"
)

func newSessionsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect persisted sessions",
	}
	cmd.AddCommand(newSessionsListCmd())
	return cmd
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions, most recently updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := config.EnsureDataDir()
			if err != nil {
				return err
			}
			store := sessionlog.New(dataDir)
			summaries, err := store.List()
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if len(summaries) == 0 {
				fmt.Println("no sessions found")
				return nil
			}
			for _, s := range summaries {
				updated := time.Unix(s.Updated, 0).Format("2006-01-02 15:04")
				fmt.Printf("%s  %s\n", s.ID, updated)
			}
			return nil
		},
	}
}
