package commands

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/petal-labs/appforge/cli/keystore"
)

// Key sources, in lookup order.
const (
	keySourceKeystore = "keystore"
	keySourceEnv      = "environment"
	keySourceDotEnv   = ".env"
)

// envVarForProvider returns the environment variable holding a provider's key.
func envVarForProvider(providerID string) string {
	return strings.ToUpper(strings.ReplaceAll(providerID, "-", "_")) + "_API_KEY"
}

// resolveAPIKey looks the provider key up in the keystore, then the
// environment, then a .env file. An empty key with a nil error means none
// was found.
func (a *App) resolveAPIKey(providerID string) (key, source string, err error) {
	ks, err := a.newKeystore()
	if err != nil {
		a.log.WithError(err).Debug("keystore unavailable")
	} else {
		key, err = ks.Get(providerID)
		var nf *keystore.ErrKeyNotFound
		switch {
		case err == nil && key != "":
			return key, keySourceKeystore, nil
		case err != nil && !errors.As(err, &nf):
			return "", "", err
		}
	}

	envVar := envVarForProvider(providerID)
	if key := a.getenv(envVar); key != "" {
		return key, keySourceEnv, nil
	}

	for _, path := range a.dotEnvFiles(providerID) {
		values, err := godotenv.Read(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				a.log.WithError(err).WithField("file", path).Warn("cannot read env file")
			}
			continue
		}
		if key := values[envVar]; key != "" {
			return key, keySourceDotEnv, nil
		}
	}

	return "", "", nil
}

// dotEnvFiles lists the .env files consulted for a provider key.
func (a *App) dotEnvFiles(providerID string) []string {
	files := []string{".env"}
	if a.cfg != nil {
		if pc := a.cfg.GetProvider(providerID); pc != nil && pc.EnvFile != "" {
			files = append([]string{pc.EnvFile}, files...)
		}
	}
	return files
}
