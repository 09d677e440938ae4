package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/veranemoloko/mc-fetch/internal/config"
	"github.com/veranemoloko/mc-fetch/internal/service"
)

var rootCmd = &cobra.Command{
	Use:           "launcher",
	Short:         "Install and plan Minecraft versions",
	Long:          `launcher fetches game versions, libraries, natives and assets into an install root, installs mod-loader profiles, and prints the command line that starts a version.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("MCF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("root", "", "install root (overrides MCF_INSTALL_ROOT)")
	rootCmd.PersistentFlags().String("source", "", "download source id (overrides MCF_SOURCE)")
	rootCmd.PersistentFlags().Int("workers", 0, "concurrent downloads (overrides MCF_WORKERS)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format: table, json or yaml")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	_ = viper.BindPFlag("source", rootCmd.PersistentFlags().Lookup("source"))
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func registerCommands() {
	rootCmd.AddCommand(versionsCmd())
	rootCmd.AddCommand(installCmd())
	rootCmd.AddCommand(loaderCmd())
	rootCmd.AddCommand(planCmd())
}

// flagEnv maps persistent flags onto the environment variables config.Load reads.
var flagEnv = map[string]string{
	"root":    "MCF_INSTALL_ROOT",
	"source":  "MCF_SOURCE",
	"workers": "MCF_WORKERS",
}

// loadConfig applies flag overrides and reads the environment configuration.
func loadConfig() (*config.Config, error) {
	for key, env := range flagEnv {
		if !viper.IsSet(key) {
			continue
		}
		if v := viper.GetString(key); v != "" && v != "0" {
			if err := os.Setenv(env, v); err != nil {
				return nil, err
			}
		}
	}
	return config.Load()
}

func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log-level"))); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// withService builds the install pipeline for one command.
func withService(fn func(cfg *config.Config, svc *service.InstallService) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := service.NewInstallServiceFromConfig(cfg, newLogger())
	if err != nil {
		return err
	}
	return fn(cfg, svc)
}
