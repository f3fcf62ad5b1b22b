package main

import (
	"fmt"
	"os"

	"github.com/xonecas/symbcore/internal/config"
	"github.com/xonecas/symbcore/internal/wiring"
)

// buildApp loads Settings and credentials and wires a full App rooted
// at projectRoot. Shared by run/subprocess/serve so each transport only
// deals with its own I/O loop.
func buildApp(configPath, projectRoot string) (*wiring.App, error) {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	settings, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	apiKey := creds.GetAPIKey("anthropic")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no anthropic API key configured (set it in credentials.json, or set ANTHROPIC_API_KEY)")
	}

	app, err := wiring.Build(projectRoot, settings, apiKey)
	if err != nil {
		return nil, fmt.Errorf("wire app: %w", err)
	}
	return app, nil
}
