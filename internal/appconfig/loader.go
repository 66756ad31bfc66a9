package appconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/choo-deploy/deployd/internal/apperrors"
	"github.com/choo-deploy/deployd/internal/domain"
)

// Loader is the external Config collaborator (§6.3): hierarchical
// loading/merging/templating lives outside the core. The core only
// depends on this narrow read contract.
type Loader interface {
	LoadConfig(ctx context.Context, env, owner, repo, ref string, defaults map[string]any) (*Evaluated, error)
}

// YAMLLoader resolves one YAML file per (env, owner, repo, ref) under a
// root directory, named "<env>/<owner>/<repo>/<ref>.yaml". It does not
// merge or template-evaluate anything — hierarchical merging is an
// external-collaborator concern per §1's Non-goals — but it gives the CLI's
// `replay` and local/test runs a real, file-backed Loader implementation
// to exercise the boundary against, grounded on the teacher's
// config.LoadConfigFromPath (tolerate-missing-file, yaml.v3) idiom.
type YAMLLoader struct {
	Root string
}

func NewYAMLLoader(root string) *YAMLLoader {
	return &YAMLLoader{Root: root}
}

func (l *YAMLLoader) LoadConfig(_ context.Context, env, owner, repo, ref string, _ map[string]any) (*Evaluated, error) {
	path := filepath.Join(l.Root, env, owner, repo, ref+".yaml")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, apperrors.New(apperrors.CodeConfigError, fmt.Sprintf("read config %s", path), err)
	}

	cfg := &Evaluated{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.New(apperrors.CodeConfigParseError, fmt.Sprintf("parse config %s", path), err)
	}
	if cfg.Hooks == nil {
		cfg.Hooks = map[domain.HookType]map[string]HookConfig{}
	}
	if cfg.Deployers == nil {
		cfg.Deployers = map[string]DeployerConfig{}
	}
	return cfg, nil
}
