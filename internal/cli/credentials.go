package cli

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/drawbridge-ai/drawbridge/internal/models"
	"github.com/drawbridge-ai/drawbridge/internal/store"
)

// apiKeyEnvVars maps provider ids to their conventional environment variables.
var apiKeyEnvVars = map[string]string{
	"openai":      "OPENAI_API_KEY",
	"anthropic":   "ANTHROPIC_API_KEY",
	"openrouter":  "OPENROUTER_API_KEY",
	"deepseek":    "DEEPSEEK_API_KEY",
	"siliconflow": "SILICONFLOW_API_KEY",
}

// ResolveAPIKey finds the API key for a provider: environment first, then the
// local credential store, then an interactive no-echo prompt. A prompted key
// is saved to the store for next time.
func ResolveAPIKey(kv *store.Store, providerID string) (string, error) {
	provider := models.ProviderByID(providerID)
	if !provider.RequiresAPIKey {
		return "", nil
	}

	if env := apiKeyEnvVars[provider.ID]; env != "" {
		if key := os.Getenv(env); key != "" {
			return key, nil
		}
	}

	if key, err := kv.Get(models.CredentialKey(provider.ID)); err == nil && key != "" {
		return key, nil
	}

	key, err := promptSecret(fmt.Sprintf("%s API key: ", provider.Name))
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	if key == "" {
		return "", fmt.Errorf("no API key provided for %s", provider.Name)
	}

	if err := kv.Set(models.CredentialKey(provider.ID), key); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not save API key: %v\n", err)
	}
	return key, nil
}

// promptSecret reads a line from the terminal without echoing it.
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
