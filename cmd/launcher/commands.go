package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/veranemoloko/mc-fetch/internal/artifact"
	"github.com/veranemoloko/mc-fetch/internal/config"
	"github.com/veranemoloko/mc-fetch/internal/domain"
	"github.com/veranemoloko/mc-fetch/internal/launch"
	"github.com/veranemoloko/mc-fetch/internal/service"
	"github.com/veranemoloko/mc-fetch/internal/storage"
	"github.com/veranemoloko/mc-fetch/internal/validation"
)

func versionsCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List game versions known to the active source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(cfg *config.Config, svc *service.InstallService) error {
				list := svc.ListVersions(cmd.Context())
				if list.Status != domain.ListSuccess {
					return fmt.Errorf("version manifest unavailable: %s", list.Error)
				}
				entries := list.Bucket(domain.VersionKind(kind))
				return render(entries, func(tw table.Writer) {
					tw.AppendHeader(table.Row{"ID", "Type", "Released"})
					for _, v := range entries {
						tw.AppendRow(table.Row{v.ID, v.Type, v.ReleaseTime})
					}
					tw.AppendFooter(table.Row{"latest", list.Latest.Release, list.Latest.Snapshot})
				})
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "release, snapshot or historical")
	return cmd
}

func installCmd() *cobra.Command {
	var (
		req  domain.InstallRequest
		kind string
	)
	cmd := &cobra.Command{
		Use:   "install <version>",
		Short: "Install a game version with its libraries, natives and assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Version = args[0]
			req.Kind = domain.VersionKind(kind)
			if err := validation.Struct(req); err != nil {
				return err
			}
			return withService(func(cfg *config.Config, svc *service.InstallService) error {
				report, err := svc.Install(cmd.Context(), req)
				if err != nil {
					return err
				}
				if err := render(report, func(tw table.Writer) { reportTable(tw, report) }); err != nil {
					return err
				}
				if report.Status != domain.InstallSuccess {
					return fmt.Errorf("%d fetches or extractions failed", report.Failed())
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "install directory name (defaults to the version id)")
	cmd.Flags().StringVar(&kind, "kind", "", "restrict the lookup to release, snapshot or historical")
	return cmd
}

func reportTable(tw table.Writer, r *domain.InstallReport) {
	tw.SetTitle(fmt.Sprintf("%s (%s): %s", r.Name, r.Version, r.Status))
	tw.AppendHeader(table.Row{"Stage", "Total", "Succeeded", "Cached", "Failed", "Bytes"})
	tw.AppendRow(table.Row{"libraries", r.Libraries.Total, r.Libraries.Succeeded, r.Libraries.Cached, r.Libraries.Failed, r.Libraries.Bytes})
	tw.AppendRow(table.Row{"assets", r.Assets.Total, r.Assets.Succeeded, r.Assets.Cached, r.Assets.Failed, r.Assets.Bytes})

	extracted, broken := 0, 0
	for _, n := range r.Natives {
		if n.Status == domain.ExtractSuccess {
			extracted++
		} else {
			broken++
		}
	}
	tw.AppendRow(table.Row{"natives", len(r.Natives), extracted, "", broken, ""})

	for _, failures := range [][]domain.FetchResult{r.Libraries.Failures, r.Assets.Failures} {
		for _, f := range failures {
			tw.AppendFooter(table.Row{"failed", f.Item.URL, f.Detail})
		}
	}
}

func loaderCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "loader", Short: "Manage mod-loader profiles"}
	cmd.AddCommand(loaderInstallCmd())
	cmd.AddCommand(loaderVersionsCmd())
	return cmd
}

func loaderInstallCmd() *cobra.Command {
	var req domain.LoaderRequest
	cmd := &cobra.Command{
		Use:   "install <family> <game-version>",
		Short: "Install a fabric, quilt, forge, neoforge or optifine profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Family = domain.LoaderFamily(strings.ToLower(args[0]))
			req.GameVersion = args[1]
			if err := validation.Struct(req); err != nil {
				return err
			}
			return withService(func(cfg *config.Config, svc *service.InstallService) error {
				installed, err := svc.InstallLoader(cmd.Context(), req)
				if err != nil {
					return err
				}
				res := installed.Result
				return render(res, func(tw table.Writer) {
					tw.AppendHeader(table.Row{"ID", "Family", "Game", "Loader", "Inherits", "Path"})
					tw.AppendRow(table.Row{res.ID, res.Family, res.GameVersion, res.LoaderVersion, res.InheritsFrom, res.Path})
				})
			})
		},
	}
	cmd.Flags().StringVar(&req.LoaderVersion, "loader-version", "", "loader version (defaults to the latest)")
	cmd.Flags().StringVar(&req.Name, "name", "", "profile id (defaults to the loader's own id)")
	return cmd
}

func loaderVersionsCmd() *cobra.Command {
	var latest bool
	cmd := &cobra.Command{
		Use:   "versions <family> <game-version>",
		Short: "List loader versions available for a game version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			family := domain.LoaderFamily(strings.ToLower(args[0]))
			if err := validation.VersionID(args[1]); err != nil {
				return err
			}
			return withService(func(cfg *config.Config, svc *service.InstallService) error {
				versions, err := svc.LoaderVersions(cmd.Context(), family, args[1], latest)
				if err != nil {
					return err
				}
				return render(versions, func(tw table.Writer) {
					tw.AppendHeader(table.Row{"#", "Version"})
					for i, v := range versions {
						tw.AppendRow(table.Row{i + 1, v})
					}
				})
			})
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "print only the newest version")
	return cmd
}

func planCmd() *cobra.Command {
	var (
		java      string
		username  string
		memory    string
		gameDir   string
		extraArgs []string
	)
	cmd := &cobra.Command{
		Use:   "plan <name>",
		Short: "Print the command line that starts an installed version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.VersionID(args[0]); err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			command, err := plan(cmd.Context(), cfg, args[0], launch.StaticRuntime{Path: java}, launch.Options{
				Username:  username,
				MaxMemory: memory,
				GameDir:   gameDir,
				JVMArgs:   extraArgs,
			})
			if err != nil {
				return err
			}
			return render(command, func(tw table.Writer) {
				tw.Style().Options.DrawBorder = false
				tw.AppendRow(table.Row{command.String()})
			})
		},
	}
	cmd.Flags().StringVar(&java, "java", "java", "path to the java executable")
	cmd.Flags().StringVar(&username, "username", "", "offline player name")
	cmd.Flags().StringVar(&memory, "memory", "", "maximum heap, e.g. 4G")
	cmd.Flags().StringVar(&gameDir, "game-dir", "", "game directory (defaults to the version directory)")
	cmd.Flags().StringSliceVar(&extraArgs, "jvm-arg", nil, "additional JVM argument (repeatable)")
	return cmd
}

// plan resolves an installed version and builds its launch command.
func plan(ctx context.Context, cfg *config.Config, name string, finder launch.RuntimeFinder, opts launch.Options) (launch.Command, error) {
	fileStorage := storage.NewFileStorage(cfg.InstallRoot)
	resolved, err := launch.Resolve(fileStorage, name)
	if err != nil {
		return launch.Command{}, err
	}

	major := 0
	if resolved.Descriptor.JavaVersion != nil {
		major = resolved.Descriptor.JavaVersion.MajorVersion
	}
	rt, err := finder.Find(ctx, major)
	if err != nil {
		return launch.Command{}, err
	}

	opts.Runtime = rt
	opts.Storage = fileStorage
	opts.Resolved = resolved
	opts.Platform = artifact.CurrentPlatform()
	return launch.BuildCommand(opts)
}
