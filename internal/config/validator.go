package config

import (
	"errors"
	"fmt"

	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults fails fast on a config the server cannot start with
// and fills zero-valued limits.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg == nil {
		return nmerrors.NewConfigError("config", "", errors.New("config is nil"))
	}
	if err := v.validateRemote(&cfg.Remote); err != nil {
		return err
	}
	if err := v.validateLimits(&cfg.Limits); err != nil {
		return nmerrors.NewConfigError("limits", "", err)
	}
	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateRemote(remote *Remote) error {
	if remote.URL == "" {
		return nmerrors.NewConfigError("remote.url", "", fmt.Errorf("instance URL is required (set %s or %s)", EnvConnection, EnvURL))
	}
	if remote.Username == "" {
		return nmerrors.NewConfigError("remote.username", "", errors.New("username is required"))
	}
	if remote.Password == "" {
		return nmerrors.NewConfigError("remote.password", "", errors.New("password is required"))
	}
	if remote.TimeoutSec < 0 {
		return nmerrors.NewConfigError("remote.timeout_sec", fmt.Sprint(remote.TimeoutSec), errors.New("must not be negative"))
	}
	return nil
}

func (v *Validator) validateLimits(limits *Limits) error {
	checks := []struct {
		name  string
		value int
	}{
		{"scripts_per_source", limits.ScriptsPerSource},
		{"dictionary", limits.Dictionary},
		{"choices", limits.Choices},
		{"acls", limits.Acls},
		{"properties", limits.Properties},
		{"inheritance_depth", limits.InheritanceDepth},
	}
	for _, c := range checks {
		if c.value < 0 {
			return fmt.Errorf("%s must not be negative, got %d", c.name, c.value)
		}
		if c.value > 10000 {
			return fmt.Errorf("%s must be at most 10000, got %d", c.name, c.value)
		}
	}
	return nil
}

func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Remote.TimeoutSec == 0 {
		cfg.Remote.TimeoutSec = DefaultTimeoutSec
	}
	l := &cfg.Limits
	if l.ScriptsPerSource == 0 {
		l.ScriptsPerSource = DefaultScriptsPerSource
	}
	if l.Dictionary == 0 {
		l.Dictionary = DefaultDictionaryLimit
	}
	if l.Choices == 0 {
		l.Choices = DefaultChoicesLimit
	}
	if l.Acls == 0 {
		l.Acls = DefaultAclLimit
	}
	if l.Properties == 0 {
		l.Properties = DefaultPropertyLimit
	}
	if l.InheritanceDepth == 0 {
		l.InheritanceDepth = DefaultInheritanceDepth
	}
}

// ValidateConfig is a convenience wrapper around Validator
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
