package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		HTTPPort:       8080,
		InstallRoot:    t.TempDir(),
		StateFile:      filepath.Join(t.TempDir(), "state.json"),
		Source:         Mojang,
		Workers:        4,
		JobWorkers:     1,
		MaxRetries:     2,
		RequestTimeout: time.Second,
		BackoffBase:    time.Millisecond,
		BackoffCeiling: 10 * time.Millisecond,
		Mirrors:        DefaultMirrors(),
		Loaders:        DefaultLoaderTemplates(),
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.HTTPPort = 0 }, wantErr: true},
		{name: "no workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.MaxRetries = -1 }, wantErr: true},
		{name: "ceiling below base", mutate: func(c *Config) { c.BackoffCeiling = 0; c.BackoffBase = time.Second }, wantErr: true},
		{name: "unknown source", mutate: func(c *Config) { c.Source = "nowhere" }, wantErr: true},
		{name: "mirror without url", mutate: func(c *Config) { c.Mirrors["broken"] = Mirror{Libraries: "x"} }, wantErr: true},
		{name: "missing loader template", mutate: func(c *Config) { c.Loaders.ForgeInstaller = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	root := filepath.Join(t.TempDir(), "game")
	t.Setenv("MCF_INSTALL_ROOT", root)
	t.Setenv("MCF_STATE_FILE", filepath.Join(t.TempDir(), "state", "state.json"))
	t.Setenv("MCF_WORKERS", "7")
	t.Setenv("MCF_AUTO_SCALE_WORKERS", "false")
	t.Setenv("MCF_SOURCE", "bmclapi")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, root, cfg.InstallRoot)
	assert.Equal(t, 7, cfg.Workers)
	assert.False(t, cfg.AutoScaleWorkers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.BackoffCeiling)
	assert.False(t, cfg.Authoritative())

	m, err := cfg.Mirror()
	require.NoError(t, err)
	assert.Equal(t, "https://bmclapi2.bangbang93.com/maven/", m.Libraries)

	_, err = os.Stat(root)
	assert.NoError(t, err, "install root should be created")
}

func TestLoad_MirrorsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "mirrors.toml")
	content := `
[source_link.custom]
version_json = "https://mirror.example/manifest.json"
libraries = "https://mirror.example/maven/"
assets = "https://mirror.example/assets/"

[modloader]
fabric_profile_template = "https://fabric.example/{game_version}/{loader_version}"
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	t.Setenv("MCF_INSTALL_ROOT", filepath.Join(dir, "game"))
	t.Setenv("MCF_STATE_FILE", filepath.Join(dir, "state.json"))
	t.Setenv("MCF_MIRRORS_FILE", file)
	t.Setenv("MCF_SOURCE", "custom")

	cfg, err := Load()
	require.NoError(t, err)

	m, err := cfg.Mirror()
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example/assets/", m.Assets)
	assert.Equal(t, "https://fabric.example/{game_version}/{loader_version}", cfg.Loaders.FabricProfile)
	assert.Equal(t, DefaultLoaderTemplates().ForgeInstaller, cfg.Loaders.ForgeInstaller)
	assert.Contains(t, cfg.Mirrors, Mojang)
}

func TestSetupLogger_WritesDailyFile(t *testing.T) {
	cfg := validConfig(t)
	cfg.LogDir = t.TempDir()
	cfg.LogFormat = "text"

	closer, err := SetupLogger(cfg)
	require.NoError(t, err)
	defer closer.Close()

	entries, err := os.ReadDir(cfg.LogDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, time.Now().Format("2006-01-02")+".log", entries[0].Name())
}
