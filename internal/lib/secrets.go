package lib

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// GetSecretFromEnvOrInput resolves a secret by trying, in order: the given
// environment variables, the credentials storage, and finally an interactive
// prompt. A value obtained from the prompt is persisted in storage for the
// next run; values from the environment are not.
func GetSecretFromEnvOrInput(storage CredentialsStorage, key, label string, envKeys []string, in io.Reader, out io.Writer, prompt string) (string, error) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			slog.Debug("secret resolved from environment", "key", key, "env", envKey)
			return value, nil
		}
	}

	value, err := storage.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting secret %q from storage: %w", key, err)
	}
	if value != "" {
		return value, nil
	}

	value, err = RequestSecretInput(in, out, prompt)
	if err != nil {
		return "", fmt.Errorf("requesting secret %q: %w", key, err)
	}
	if value == "" {
		return "", fmt.Errorf("%w - empty value provided for %s", BadUserInputError, label)
	}

	if err := storage.Set(key, value, KeyExtras{Label: label}); err != nil {
		return "", fmt.Errorf("storing secret %q: %w", key, err)
	}

	return value, nil
}
