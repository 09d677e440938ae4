package launch

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/veranemoloko/mc-fetch/internal/artifact"
	errpkg "github.com/veranemoloko/mc-fetch/internal/errors"
	"github.com/veranemoloko/mc-fetch/internal/storage"
)

const (
	defaultMaxMemory = "2G"
	defaultUsername  = "Player"
	defaultBrand     = "mc-fetch"
)

// Runtime is a local Java installation.
type Runtime struct {
	Path    string `json:"path"`
	Version int    `json:"version"`
	Arch    string `json:"arch,omitempty"`
}

// RuntimeFinder locates a runtime for a required major version.
type RuntimeFinder interface {
	Find(ctx context.Context, major int) (Runtime, error)
}

// StaticRuntime always returns the same runtime.
type StaticRuntime Runtime

// Find implements RuntimeFinder.
func (s StaticRuntime) Find(ctx context.Context, major int) (Runtime, error) {
	if s.Path == "" {
		return Runtime{}, fmt.Errorf("no java runtime configured")
	}
	return Runtime(s), nil
}

// Options are the inputs of BuildCommand.
type Options struct {
	Runtime   Runtime
	Storage   *storage.FileStorage
	Resolved  *Resolved
	Platform  artifact.Platform
	GameDir   string
	Username  string
	MaxMemory string
	JVMArgs   []string
	Brand     string
}

// Command is a ready-to-run process description.
type Command struct {
	Path string   `json:"path" yaml:"path"`
	Args []string `json:"args" yaml:"args"`
	Dir  string   `json:"dir" yaml:"dir"`
}

// String renders the command line with naive quoting for display.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quote(c.Path))
	for _, a := range c.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"'") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}

// OfflineUUID derives a stable player id from the username.
func OfflineUUID(username string) uuid.UUID {
	return uuid.NewMD5(uuid.NameSpaceOID, []byte("OfflinePlayer:"+username))
}

// BuildCommand assembles the JVM flags, classpath, main class and game
// arguments for the resolved version.
func BuildCommand(opts Options) (Command, error) {
	if opts.Resolved == nil || opts.Resolved.Descriptor == nil {
		return Command{}, fmt.Errorf("%w: descriptor", errpkg.ErrMissingField)
	}
	desc := opts.Resolved.Descriptor
	if desc.MainClass == "" {
		return Command{}, fmt.Errorf("%w: mainClass", errpkg.ErrMissingField)
	}
	if opts.Runtime.Path == "" {
		return Command{}, fmt.Errorf("no java runtime configured")
	}

	fs := opts.Storage
	name := opts.Resolved.Name
	username := orDefault(opts.Username, defaultUsername)
	brand := orDefault(opts.Brand, defaultBrand)
	gameDir := orDefault(opts.GameDir, fs.VersionDir(name))
	nativesDir := fs.NativesDir(name)

	assetIndex := desc.Assets
	if desc.AssetIndex != nil && desc.AssetIndex.ID != "" {
		assetIndex = desc.AssetIndex.ID
	}

	args := []string{
		"-Xmx" + orDefault(opts.MaxMemory, defaultMaxMemory),
		"-XX:+UseG1GC",
		"-XX:-UseAdaptiveSizePolicy",
		"-XX:-OmitStackTraceInFastThrow",
		"-Dminecraft.launcher.brand=" + brand,
		"-Dlog4j2.formatMsgNoLookups=true",
		"-Djava.library.path=" + nativesDir,
		"-Dio.netty.native.workdir=" + nativesDir,
		"-Dstdout.encoding=UTF-8",
		"-Dstderr.encoding=UTF-8",
	}
	if opts.Platform.OS == "osx" {
		args = append(args, "-XstartOnFirstThread")
	}
	if desc.Logging != nil && desc.Logging.Client != nil && desc.Logging.Client.File.ID != "" {
		logPath := fs.LogConfigPath(desc.Logging.Client.File.ID)
		arg := desc.Logging.Client.Argument
		if arg == "" {
			arg = "-Dlog4j.configurationFile=${path}"
		}
		args = append(args, strings.ReplaceAll(arg, "${path}", logPath))
	}
	args = append(args, opts.JVMArgs...)

	classpath := Classpath(desc, fs, opts.Resolved.JarName, opts.Platform)
	args = append(args,
		"-cp", JoinClasspath(classpath, opts.Platform),
		desc.MainClass,
		"--username", username,
		"--version", name,
		"--gameDir", gameDir,
		"--assetsDir", fs.AssetsDir(),
		"--assetIndex", assetIndex,
		"--uuid", strings.ReplaceAll(OfflineUUID(username).String(), "-", ""),
		"--accessToken", "0",
		"--userType", "legacy",
		"--versionType", brand,
	)

	return Command{Path: opts.Runtime.Path, Args: args, Dir: gameDir}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
