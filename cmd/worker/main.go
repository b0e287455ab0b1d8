// Temporal worker hosting drawbridge diagram sessions.
//
// Registers the session workflow plus the LLM and document storage
// activities, then polls the task queue until interrupted. Temporal client
// options come from the standard environment configuration
// (TEMPORAL_ADDRESS, TEMPORAL_NAMESPACE, ...).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/contrib/envconfig"
	"go.temporal.io/sdk/worker"

	"github.com/drawbridge-ai/drawbridge/internal/activities"
	"github.com/drawbridge-ai/drawbridge/internal/cli"
	"github.com/drawbridge-ai/drawbridge/internal/llm"
	"github.com/drawbridge-ai/drawbridge/internal/store"
	"github.com/drawbridge-ai/drawbridge/internal/workflow"
)

func main() {
	taskQueue := flag.String("task-queue", cli.TaskQueue, "Temporal task queue")
	storePath := flag.String("store", "", "Path to document store (default: ~/.drawbridge/worker.db)")
	flag.Parse()

	if err := run(*taskQueue, *storePath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(taskQueue, storePath string) error {
	if storePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir := filepath.Join(home, ".drawbridge")
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
		storePath = filepath.Join(dir, "worker.db")
	}

	kv, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	defer kv.Close()

	options, err := envconfig.LoadDefaultClientOptions()
	if err != nil {
		return fmt.Errorf("failed to load Temporal client options: %w", err)
	}
	c, err := client.Dial(options)
	if err != nil {
		return fmt.Errorf("failed to connect to Temporal: %w", err)
	}
	defer c.Close()

	w := worker.New(c, taskQueue, worker.Options{})
	w.RegisterWorkflow(workflow.DiagramSessionWorkflow)
	w.RegisterActivity(activities.NewLLMActivities(llm.NewMultiProviderClient()))
	w.RegisterActivity(activities.NewStorageActivities(kv))

	return w.Run(worker.InterruptCh())
}
