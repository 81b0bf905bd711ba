package keystore

import (
	"crypto/sha256"
	"errors"
	"os"
)

// MasterKeyEnvVar names the environment variable holding the keystore master key.
const MasterKeyEnvVar = "APPFORGE_MASTER_KEY"

// ErrNoMasterKey is returned by a source that has no key to offer.
var ErrNoMasterKey = errors.New("keystore: no master key available")

// MasterKeySource supplies the secret the file encryption key is derived from.
type MasterKeySource interface {
	GetMasterKey() ([]byte, error)
}

// DefaultMasterKeySource prefers APPFORGE_MASTER_KEY and falls back to a
// key bound to the current host and user.
func DefaultMasterKeySource() MasterKeySource {
	return FirstOf{EnvMasterKey(MasterKeyEnvVar), MachineMasterKey{}}
}

// EnvMasterKey reads the master key from the named environment variable.
type EnvMasterKey string

// GetMasterKey implements MasterKeySource.
func (e EnvMasterKey) GetMasterKey() ([]byte, error) {
	v := os.Getenv(string(e))
	if v == "" {
		return nil, ErrNoMasterKey
	}
	return []byte(v), nil
}

// MachineMasterKey derives a master key from the hostname and user name.
// It only keeps the file unreadable on other machines.
type MachineMasterKey struct{}

// GetMasterKey implements MasterKeySource.
func (MachineMasterKey) GetMasterKey() ([]byte, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}

	sum := sha256.Sum256([]byte(hostname + ":" + username + ":appforge-keystore"))
	return sum[:], nil
}

// StaticMasterKey is a fixed master key.
type StaticMasterKey []byte

// GetMasterKey implements MasterKeySource.
func (s StaticMasterKey) GetMasterKey() ([]byte, error) {
	if len(s) == 0 {
		return nil, ErrNoMasterKey
	}
	return []byte(s), nil
}

// FirstOf tries each source in order and returns the first key found.
type FirstOf []MasterKeySource

// GetMasterKey implements MasterKeySource.
func (f FirstOf) GetMasterKey() ([]byte, error) {
	for _, src := range f {
		key, err := src.GetMasterKey()
		if errors.Is(err, ErrNoMasterKey) {
			continue
		}
		return key, err
	}
	return nil, ErrNoMasterKey
}
