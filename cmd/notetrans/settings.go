package main

import (
	"fmt"
	"strings"

	"github.com/dasmlab/notetrans/pkg/settings"
	"github.com/dasmlab/notetrans/pkg/translate"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newSettingsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and edit provider settings",
		Long: `Show and edit provider settings.

Every edit is saved immediately. Credentials can also be supplied with
NOTETRANS_* environment variables, which take precedence over the file.`,
	}

	cmd.AddCommand(
		newSettingsShowCmd(opts),
		newSettingsGetCmd(opts),
		newSettingsSetCmd(opts),
		newSettingsPathCmd(opts),
	)
	return cmd
}

func newSettingsShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "show",
		Aliases: []string{"ls"},
		Short:   "Show all settings, secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			s, err := store.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			masked := s.Masked()
			for _, sp := range translate.Specs() {
				status := "disabled"
				if sp.Enabled(s) {
					status = "enabled"
					if missing := missingFor(s, sp); len(missing) > 0 {
						status = "enabled, missing " + strings.Join(missing, ", ")
					}
				}
				fmt.Fprintf(out, "%-10s %s\n", sp.Provider, status)
			}
			fmt.Fprintln(out)
			for _, k := range settings.Keys() {
				line := fmt.Sprintf("  %-20s %s", k, masked[k])
				if env := settings.EnvVar(k); env != "" {
					line += fmt.Sprintf("  (%s)", env)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func missingFor(s settings.Settings, sp translate.ProviderSpec) []string {
	var missing []string
	for _, f := range sp.Required {
		if f.Value(s) == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

func newSettingsGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "get KEY",
		Short:     "Print one setting",
		Args:      cobra.ExactArgs(1),
		ValidArgs: settings.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			s, err := store.Load()
			if err != nil {
				return err
			}
			v, err := s.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newSettingsSetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "set KEY VALUE",
		Short:     "Change one setting and save",
		Args:      cobra.ExactArgs(2),
		ValidArgs: settings.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.newLogger()
			store, err := opts.store()
			if err != nil {
				return err
			}
			s, err := store.Load()
			if err != nil {
				return err
			}
			if err := s.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := store.Save(s); err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"key":  args[0],
				"path": store.Path,
			}).Info("Setting saved")
			return nil
		},
	}
}

func newSettingsPathCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.Path)
			return nil
		},
	}
}
