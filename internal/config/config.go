package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	errpkg "github.com/veranemoloko/mc-fetch/internal/errors"
)

// Config holds all application configuration settings.
// It is built once by Load and passed by pointer into constructors; nothing mutates it afterwards.
type Config struct {
	Environment string `envconfig:"MCF_ENV" default:"development"`

	HTTPPort    int           `envconfig:"MCF_HTTP_PORT" default:"8080"`
	HTTPTimeout time.Duration `envconfig:"MCF_HTTP_TIMEOUT" default:"15s"`

	InstallRoot string `envconfig:"MCF_INSTALL_ROOT" default:"./.minecraft"`
	Source      string `envconfig:"MCF_SOURCE" default:"mojang"`
	MirrorsFile string `envconfig:"MCF_MIRRORS_FILE"`

	Workers          int           `envconfig:"MCF_WORKERS" default:"32"`
	AutoScaleWorkers bool          `envconfig:"MCF_AUTO_SCALE_WORKERS" default:"true"`
	MaxRetries       int           `envconfig:"MCF_MAX_RETRIES" default:"3"`
	RequestTimeout   time.Duration `envconfig:"MCF_REQUEST_TIMEOUT" default:"30s"`
	BackoffBase      time.Duration `envconfig:"MCF_BACKOFF_BASE" default:"1s"`
	BackoffCeiling   time.Duration `envconfig:"MCF_BACKOFF_CEILING" default:"10s"`

	PersistLoaderProfiles bool `envconfig:"MCF_PERSIST_LOADER_PROFILES" default:"true"`

	JobWorkers int    `envconfig:"MCF_JOB_WORKERS" default:"2"`
	StateFile  string `envconfig:"MCF_STATE_FILE" default:"./state.json"`

	ShutdownTimeout time.Duration `envconfig:"MCF_SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"MCF_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"MCF_LOG_FORMAT" default:"json"`
	LogDir    string `envconfig:"MCF_LOG_DIR"`

	Mirrors map[string]Mirror `ignored:"true"`
	Loaders LoaderTemplates   `ignored:"true"`
}

// Mirror is one download source. Libraries and Assets are URL prefixes ending in "/".
type Mirror struct {
	VersionManifest string `mapstructure:"version_json" validate:"required,url"`
	Libraries       string `mapstructure:"libraries" validate:"required,url"`
	Assets          string `mapstructure:"assets" validate:"required,url"`
	Meta            string `mapstructure:"meta" validate:"omitempty,url"`
}

// LoaderTemplates are URL templates with {game_version}, {loader_version} and {type} placeholders.
type LoaderTemplates struct {
	FabricProfile     string `mapstructure:"fabric_profile_template" validate:"required"`
	QuiltProfile      string `mapstructure:"quilt_profile_template" validate:"required"`
	FabricVersions    string `mapstructure:"fabric_versions_template" validate:"required"`
	QuiltVersions     string `mapstructure:"quilt_versions_template" validate:"required"`
	ForgeInstaller    string `mapstructure:"forge_installer_template" validate:"required"`
	NeoForgeInstaller string `mapstructure:"neoforge_installer_template" validate:"required"`
	OptiFineInstaller string `mapstructure:"optifine_installer_template" validate:"required"`
	ForgeMetadata     string `mapstructure:"forge_metadata_url" validate:"required"`
	NeoForgeMetadata  string `mapstructure:"neoforge_metadata_url" validate:"required"`
	OptiFineType      string `mapstructure:"optifine_type"`
}

// Mojang is the authoritative source identifier.
const Mojang = "mojang"

// DefaultMirrors returns the built-in source table.
func DefaultMirrors() map[string]Mirror {
	return map[string]Mirror{
		Mojang: {
			VersionManifest: "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json",
			Libraries:       "https://libraries.minecraft.net/",
			Assets:          "https://resources.download.minecraft.net/",
		},
		"bmclapi": {
			VersionManifest: "https://bmclapi2.bangbang93.com/mc/game/version_manifest_v2.json",
			Libraries:       "https://bmclapi2.bangbang93.com/maven/",
			Assets:          "https://bmclapi2.bangbang93.com/assets/",
			Meta:            "https://bmclapi2.bangbang93.com/",
		},
	}
}

// DefaultLoaderTemplates returns the built-in loader endpoints.
func DefaultLoaderTemplates() LoaderTemplates {
	return LoaderTemplates{
		FabricProfile:     "https://meta.fabricmc.net/v2/versions/loader/{game_version}/{loader_version}/profile/json",
		QuiltProfile:      "https://meta.quiltmc.org/v3/versions/loader/{game_version}/{loader_version}/profile/json",
		FabricVersions:    "https://meta.fabricmc.net/v2/versions/loader/{game_version}",
		QuiltVersions:     "https://meta.quiltmc.org/v3/versions/loader/{game_version}",
		ForgeInstaller:    "https://maven.minecraftforge.net/net/minecraftforge/forge/{game_version}-{loader_version}/forge-{game_version}-{loader_version}-installer.jar",
		NeoForgeInstaller: "https://maven.neoforged.net/releases/net/neoforged/neoforge/{loader_version}/neoforge-{loader_version}-installer.jar",
		OptiFineInstaller: "https://bmclapi2.bangbang93.com/optifine/{game_version}/{type}/{loader_version}",
		ForgeMetadata:     "https://maven.minecraftforge.net/net/minecraftforge/forge/maven-metadata.xml",
		NeoForgeMetadata:  "https://maven.neoforged.net/releases/net/neoforged/neoforge/maven-metadata.xml",
		OptiFineType:      "HD_U",
	}
}

// Mirror returns the active download source.
func (c *Config) Mirror() (Mirror, error) {
	m, ok := c.Mirrors[c.Source]
	if !ok {
		return Mirror{}, fmt.Errorf("%w: %q", errpkg.ErrUnknownSource, c.Source)
	}
	return m, nil
}

// Authoritative reports whether downloads go to the canonical hosts.
func (c *Config) Authoritative() bool {
	return c.Source == Mojang
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.Workers <= 0 {
		return fmt.Errorf("worker count must be positive: %d", c.Workers)
	}

	if c.JobWorkers <= 0 {
		return fmt.Errorf("job worker count must be positive: %d", c.JobWorkers)
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative: %d", c.MaxRetries)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive: %s", c.RequestTimeout)
	}

	if c.BackoffCeiling < c.BackoffBase {
		return fmt.Errorf("backoff ceiling %s is below base %s", c.BackoffCeiling, c.BackoffBase)
	}

	if c.InstallRoot == "" {
		return fmt.Errorf("install root cannot be empty")
	}
	if c.StateFile == "" {
		return fmt.Errorf("state file cannot be empty")
	}

	if _, err := c.Mirror(); err != nil {
		return err
	}

	v := validator.New()
	for name, m := range c.Mirrors {
		if err := v.Struct(m); err != nil {
			return fmt.Errorf("mirror %q: %w", name, err)
		}
	}
	if err := v.Struct(c.Loaders); err != nil {
		return fmt.Errorf("loader templates: %w", err)
	}

	return nil
}
