// Package appconfig models the evaluated application configuration the
// core treats mostly as opaque (per the external Config collaborator,
// §6.3), except for the handful of paths it reads directly: enabled,
// hooks[type][name].enabled, deployers[name].{enabled,url,proxy,templates,
// deployment}, security.profile, notifications. Tagged variants cover
// those known paths; Raw carries everything else as a permissive subtree,
// per the Design Notes' guidance on modeling dynamic config objects.
package appconfig

import "github.com/choo-deploy/deployd/internal/domain"

// HookConfig is one entry of config.hooks[type][name].
type HookConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// DeployerConfig is one entry of config.deployers[name].
type DeployerConfig struct {
	Name       string         `yaml:"-" json:"-"`
	Enabled    bool           `yaml:"enabled" json:"enabled"`
	URL        string         `yaml:"url" json:"url"`
	Proxy      map[string]any `yaml:"proxy" json:"proxy,omitempty"`
	Templates  map[string]any `yaml:"templates" json:"templates,omitempty"`
	Deployment map[string]any `yaml:"deployment" json:"deployment,omitempty"`
}

// NotificationConfig is one entry of config.notifications.
type NotificationConfig struct {
	Kind    string         `yaml:"kind" json:"kind"`
	Enabled bool           `yaml:"enabled" json:"enabled"`
	Level   int            `yaml:"level" json:"level"`
	Config  map[string]any `yaml:"config" json:"config,omitempty"`
}

// Evaluated is the merged, template-evaluated configuration for one
// (env, owner, repo, ref). The core snapshots this into the job at
// correlation time.
type Evaluated struct {
	Enabled         bool                                         `yaml:"enabled" json:"enabled"`
	Hooks           map[domain.HookType]map[string]HookConfig    `yaml:"hooks" json:"hooks"`
	Deployers       map[string]DeployerConfig                    `yaml:"deployers" json:"deployers"`
	SecurityProfile string                                       `yaml:"security_profile" json:"security_profile"`
	Notifications   []NotificationConfig                         `yaml:"notifications" json:"notifications"`
	Raw             map[string]any                                `yaml:"-" json:"-"`
}

// Default returns the zero-deploy configuration used when the external
// Config collaborator cannot be reached: nothing enabled, which drives
// the flow straight to NOOP rather than guessing at a deploy.
func Default() *Evaluated {
	return &Evaluated{
		Enabled:   false,
		Hooks:     map[domain.HookType]map[string]HookConfig{},
		Deployers: map[string]DeployerConfig{},
	}
}

// EnabledDeployers returns the deployers with Enabled && URL != "".
func (e *Evaluated) EnabledDeployers() []DeployerConfig {
	var out []DeployerConfig
	for name, d := range e.Deployers {
		if d.Enabled && d.URL != "" {
			d.Name = name
			out = append(out, d)
		}
	}
	return out
}

// HasEnabledBuilderHook reports whether any builder hook is enabled.
func (e *Evaluated) HasEnabledBuilderHook() bool {
	for _, hc := range e.Hooks[domain.HookTypeBuilder] {
		if hc.Enabled {
			return true
		}
	}
	return false
}

// Snapshot converts the evaluated config to the opaque map a Job stores,
// so later re-reads (e.g. from the job store) don't depend on this type.
func (e *Evaluated) Snapshot() map[string]any {
	return map[string]any{
		"enabled":          e.Enabled,
		"hooks":            e.Hooks,
		"deployers":        e.Deployers,
		"security_profile": e.SecurityProfile,
		"notifications":    e.Notifications,
	}
}
