package testhelpers

import (
	"github.com/standardbeagle/nowmeta/internal/config"
)

// TestConfigBuilder provides a fluent API for building test configs with safe defaults
// Usage:
//
//	cfg := testhelpers.NewTestConfigBuilder().
//		WithRemote(instance.Remote()).
//		Sequential().
//		Build()
type TestConfigBuilder struct {
	cfg *config.Config
}

// NewTestConfigBuilder starts from the defaults with a placeholder instance
// and logs under the caller-supplied directory (empty means temp dir)
func NewTestConfigBuilder() *TestConfigBuilder {
	cfg := config.Default()
	cfg.Remote.URL = "https://test.example.com"
	cfg.Remote.Username = FakeUsername
	cfg.Remote.Password = FakePassword
	return &TestConfigBuilder{cfg: cfg}
}

// WithRemote sets the instance connection
func (b *TestConfigBuilder) WithRemote(r config.Remote) *TestConfigBuilder {
	b.cfg.Remote = r
	return b
}

// WithLimits replaces the limits; zero fields keep their defaults
func (b *TestConfigBuilder) WithLimits(l config.Limits) *TestConfigBuilder {
	d := config.Default().Limits
	if l.ScriptsPerSource > 0 {
		d.ScriptsPerSource = l.ScriptsPerSource
	}
	if l.Dictionary > 0 {
		d.Dictionary = l.Dictionary
	}
	if l.Choices > 0 {
		d.Choices = l.Choices
	}
	if l.Acls > 0 {
		d.Acls = l.Acls
	}
	if l.Properties > 0 {
		d.Properties = l.Properties
	}
	if l.InheritanceDepth > 0 {
		d.InheritanceDepth = l.InheritanceDepth
	}
	b.cfg.Limits = d
	return b
}

// Sequential disables concurrent script-source queries
func (b *TestConfigBuilder) Sequential() *TestConfigBuilder {
	b.cfg.Aggregator.Concurrent = false
	return b
}

// WithLogDir sets the diagnostic log directory
func (b *TestConfigBuilder) WithLogDir(dir string) *TestConfigBuilder {
	b.cfg.Logging.Dir = dir
	return b
}

// Build returns a copy of the assembled config
func (b *TestConfigBuilder) Build() *config.Config {
	cfg := *b.cfg
	return &cfg
}
