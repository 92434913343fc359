package tuning

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version" env:"PROTOCOL_VERSION"`

	MaxWorlds             int `yaml:"max_worlds" env:"MAX_WORLDS"`
	MaxCharactersPerWorld int `yaml:"max_characters_per_world" env:"MAX_CHARACTERS_PER_WORLD"`
	MaxNameLen            int `yaml:"max_name_len" env:"MAX_NAME_LEN"`

	SnapshotEverySec int `yaml:"snapshot_every_sec" env:"SNAPSHOT_EVERY_SEC"`
	SnapshotKeep     int `yaml:"snapshot_keep" env:"SNAPSHOT_KEEP"`

	Session SessionLimits `yaml:"session" envPrefix:"SESSION_"`

	// Worlds created on a fresh start (no snapshot).
	StarterWorlds []string `yaml:"starter_worlds" env:"STARTER_WORLDS" envSeparator:","`
}

type SessionLimits struct {
	MaxQueue        int `yaml:"max_queue" env:"MAX_QUEUE"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec" env:"READ_TIMEOUT_SEC"`
	WriteTimeoutSec int `yaml:"write_timeout_sec" env:"WRITE_TIMEOUT_SEC"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:       "1.0",
		MaxWorlds:             16,
		MaxCharactersPerWorld: 1024,
		MaxNameLen:            40,
		SnapshotEverySec:      300,
		SnapshotKeep:          8,
		Session: SessionLimits{
			MaxQueue:        32,
			ReadTimeoutSec:  60,
			WriteTimeoutSec: 5,
		},
		StarterWorlds: []string{"GYM"},
	}
}

// Load reads a tuning file over the defaults; keys missing from the file
// keep their default value.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// ApplyEnv overrides fields from SWOLE_* environment variables.
func ApplyEnv(t *Tuning) error {
	if err := env.ParseWithOptions(t, env.Options{Prefix: "SWOLE_"}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return t.Validate()
}

func (t Tuning) Validate() error {
	if t.MaxWorlds <= 0 {
		return fmt.Errorf("max_worlds must be > 0")
	}
	if t.MaxCharactersPerWorld <= 0 {
		return fmt.Errorf("max_characters_per_world must be > 0")
	}
	if t.MaxNameLen <= 0 {
		return fmt.Errorf("max_name_len must be > 0")
	}
	if t.SnapshotEverySec < 0 {
		return fmt.Errorf("snapshot_every_sec must be >= 0")
	}
	if t.Session.MaxQueue <= 0 {
		return fmt.Errorf("session.max_queue must be > 0")
	}
	if t.Session.ReadTimeoutSec < 0 {
		return fmt.Errorf("session.read_timeout_sec must be >= 0")
	}
	if t.Session.WriteTimeoutSec <= 0 {
		return fmt.Errorf("session.write_timeout_sec must be > 0")
	}
	return nil
}

func (t Tuning) SnapshotEvery() time.Duration {
	return time.Duration(t.SnapshotEverySec) * time.Second
}

func (s SessionLimits) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSec) * time.Second
}

func (s SessionLimits) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSec) * time.Second
}
