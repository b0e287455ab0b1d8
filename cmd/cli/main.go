// Interactive terminal client for drawbridge diagram sessions.
//
// A chat interface that connects to a session workflow, renders assistant
// replies and diagram tool activity as they happen, and lets you type
// follow-up requests.
//
// Usage:
//
//	cli -m "draw a login flow"            Start new session with initial message
//	cli                                   Start new session, type the first message
//	cli --session <id>                    Resume existing session
//	cli -m "..." --provider anthropic     Use a specific provider
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.temporal.io/sdk/client"

	"github.com/drawbridge-ai/drawbridge/internal/cli"
)

func main() {
	message := flag.String("m", "", "Initial message (starts a turn immediately)")
	message2 := flag.String("message", "", "Initial message (alias for -m)")
	session := flag.String("session", "", "Resume existing session")
	provider := flag.String("provider", "default", "LLM provider (default, openai, anthropic, openrouter, deepseek, siliconflow)")
	model := flag.String("model", "", "Model override (provider default when empty)")
	temporalHost := flag.String("temporal-host", client.DefaultHostPort, "Temporal server address")
	noMarkdown := flag.Bool("no-markdown", false, "Disable markdown rendering")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	storePath := flag.String("store", "", "Path to local store (default: ~/.drawbridge/drawbridge.db)")
	flag.Parse()

	msg := *message
	if msg == "" {
		msg = *message2
	}

	path := *storePath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot determine home directory: %v\n", err)
			os.Exit(1)
		}
		dir := filepath.Join(home, ".drawbridge")
		if err := os.MkdirAll(dir, 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		path = filepath.Join(dir, "drawbridge.db")
	}

	config := cli.Config{
		TemporalHost: *temporalHost,
		WorkflowID:   *session,
		Message:      msg,
		Provider:     *provider,
		Model:        *model,
		NoMarkdown:   *noMarkdown,
		NoColor:      *noColor,
		StorePath:    path,
	}

	app := cli.NewApp(config)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
