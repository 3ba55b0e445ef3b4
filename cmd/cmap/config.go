package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/conceptmap/pkg/config"
	"github.com/vanderheijden86/conceptmap/pkg/content"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show, locate or create the config file",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as YAML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := yaml.Marshal(a.cfg)
				if err != nil {
					return fmt.Errorf("marshaling config: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path := a.configFile()
				if path == "" {
					return errors.New("cannot determine config directory")
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
		newConfigInitCmd(a),
	)
	return cmd
}

func newConfigInitCmd(a *app) *cobra.Command {
	var force, defaults bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the config file interactively",
		Long: `Ask for the common settings and write the config file. --defaults
skips the questions and writes the stock configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configFile()
			if path == "" {
				return errors.New("cannot determine config directory")
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := a.cfg
			if defaults {
				cfg = config.DefaultConfig()
			} else if err := runConfigForm(&cfg); err != nil {
				return err
			}
			if err := config.SaveTo(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "write the defaults without asking")
	return cmd
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// runConfigForm asks for the settings people change most and writes the
// answers into cfg.
func runConfigForm(cfg *config.Config) error {
	fps := strconv.Itoa(cfg.UI.FPS)
	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Default dataset").
				Description("YAML, JSON or JSONL file; leave empty for the built-in sample").
				Placeholder("~/notes/concepts.yaml").
				Value(&cfg.Dataset).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					_, err := content.FormatFor(s)
					return err
				}),
			huh.NewConfirm().
				Title("Restore saved positions?").
				Description("Reopen each dataset where you left it").
				Value(&cfg.Restore),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Parallax star field?").
				Value(&cfg.UI.Parallax),
			huh.NewConfirm().
				Title("Render notes as markdown?").
				Value(&cfg.UI.Markdown),
			huh.NewSelect[string]().
				Title("Animation frame rate").
				Options(
					huh.NewOption("15 fps", "15"),
					huh.NewOption("30 fps", "30"),
					huh.NewOption("60 fps", "60"),
				).
				Value(&fps),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if n, err := strconv.Atoi(fps); err == nil {
		cfg.UI.FPS = n
	}
	return nil
}
