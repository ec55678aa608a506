// Package commands wires the acforge CLI: flag parsing, command
// dispatch, and result rendering. All the actual work happens in
// pkg/commands; this layer stays thin.
package commands

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/acforge/internal/version"
	"github.com/arthur-debert/acforge/pkg/commands/genconfig"
	"github.com/arthur-debert/acforge/pkg/commands/initialize"
	"github.com/arthur-debert/acforge/pkg/commands/status"
	"github.com/arthur-debert/acforge/pkg/commands/update"
	"github.com/arthur-debert/acforge/pkg/display"
	"github.com/arthur-debert/acforge/pkg/errors"
	"github.com/arthur-debert/acforge/pkg/logging"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		dryRun    bool
		force     bool
		plain     bool
	)

	rootCmd := &cobra.Command{
		Use:     "acforge",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, MsgFlagForce)
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, MsgFlagPlain)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	opts := &globalOptions{dryRun: &dryRun, force: &force, plain: &plain}
	rootCmd.AddCommand(newInitCmd(opts))
	rootCmd.AddCommand(newUpdateCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newGenConfigCmd(opts))
	rootCmd.AddCommand(newDocsCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

type globalOptions struct {
	dryRun *bool
	force  *bool
	plain  *bool
}

func (g *globalOptions) renderer(cmd *cobra.Command) *display.Renderer {
	if *g.plain {
		return display.New(cmd.OutOrStdout(), true)
	}
	return display.NewAuto(cmd.OutOrStdout())
}

// targetArg resolves the optional positional target, defaulting to the
// current directory.
func targetArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// parseParams turns repeated NAME=value flags into a parameter map.
func parseParams(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(raw))
	for _, entry := range raw {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || name == "" {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"invalid --param %q, expected NAME=value", entry)
		}
		params[name] = value
	}
	return params, nil
}

func newInitCmd(g *globalOptions) *cobra.Command {
	var rawParams []string

	cmd := &cobra.Command{
		Use:     "init [path]",
		Short:   MsgInitShort,
		Long:    MsgInitLong,
		Example: MsgInitExample,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(rawParams)
			if err != nil {
				return err
			}

			r := g.renderer(cmd)
			result, err := initialize.Init(cmd.Context(), initialize.Options{
				Target:     targetArg(args),
				CLIVersion: version.Version,
				Parameters: params,
				Force:      *g.force,
				DryRun:     *g.dryRun,
			})
			if err != nil {
				r.RenderError(err)
				return err
			}
			r.RenderInit(result)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&rawParams, "param", nil, MsgFlagParam)
	return cmd
}

func newUpdateCmd(g *globalOptions) *cobra.Command {
	var (
		rawParams  []string
		noPreserve bool
	)

	cmd := &cobra.Command{
		Use:     "update [path]",
		Short:   MsgUpdateShort,
		Long:    MsgUpdateLong,
		Example: MsgUpdateExample,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(rawParams)
			if err != nil {
				return err
			}

			r := g.renderer(cmd)
			result, err := update.Update(cmd.Context(), update.Options{
				Target:     targetArg(args),
				CLIVersion: version.Version,
				Parameters: params,
				Force:      *g.force,
				DryRun:     *g.dryRun,
				NoPreserve: noPreserve,
			})
			// A conflict-gated update returns both the analysis and an
			// error: show the details, then fail.
			if result != nil {
				r.RenderUpdate(result)
			}
			if err != nil {
				r.RenderError(err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&rawParams, "param", nil, MsgFlagParam)
	cmd.Flags().BoolVar(&noPreserve, "no-preserve", false, MsgFlagNoPreserve)
	return cmd
}

func newStatusCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status [path]",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := g.renderer(cmd)
			result, err := status.Status(status.Options{Target: targetArg(args)})
			if err != nil {
				r.RenderError(err)
				return err
			}
			r.RenderStatus(result)
			return nil
		},
	}
}

func newGenConfigCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "gen-config [path]",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := g.renderer(cmd)
			result, err := genconfig.GenConfig(cmd.Context(), genconfig.Options{
				Target:     targetArg(args),
				CLIVersion: version.Version,
				Force:      *g.force,
				DryRun:     *g.dryRun,
			})
			if err != nil {
				r.RenderError(err)
				return err
			}
			r.RenderGenConfig(result)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "acforge version %s\n", version.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", version.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", version.Date)
		},
	}
}
