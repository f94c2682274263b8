// notetrans translates the selected text of a note with Youdao, Baidu and
// Microsoft translation services.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dasmlab/notetrans/pkg/service"
	"github.com/dasmlab/notetrans/pkg/settings"
	"github.com/dasmlab/notetrans/pkg/translate"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errReported means the user was already told what went wrong.
var errReported = errors.New("reported")

// options are the persistent flags shared by every subcommand.
type options struct {
	settingsPath string
	logLevel     string
	timeout      time.Duration

	youdaoURL    string
	baiduURL     string
	microsoftURL string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "notetrans",
		Short: "Translate selected note text with Youdao, Baidu and Microsoft",
		Long: `notetrans translates a text selection with every enabled provider.

Commands:
  translate   Translate a selection (args or stdin)
  settings    Show and edit provider settings
  serve       Run the HTTP API and gRPC health service
  version     Show version information

Providers:
  youdao      Youdao AI open platform (appId, secretKey)
  baidu       Baidu Fanyi (baiduAppId, baiduSecretKey)
  microsoft   Azure AI Translator (microsoftLocation, microsoftSecretKey)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags, inherited by all subcommands
	root.PersistentFlags().StringVar(&opts.settingsPath, "settings", "", "Settings file (.json, .yaml or .yml; default $XDG_CONFIG_HOME/notetrans/settings.json)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", translate.DefaultTimeout, "Timeout for each provider request")
	root.PersistentFlags().StringVar(&opts.youdaoURL, "youdao-url", "", "Override the Youdao endpoint")
	root.PersistentFlags().StringVar(&opts.baiduURL, "baidu-url", "", "Override the Baidu endpoint")
	root.PersistentFlags().StringVar(&opts.microsoftURL, "microsoft-url", "", "Override the Microsoft endpoint")

	root.AddCommand(
		newTranslateCmd(opts),
		newSettingsCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "notetrans version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// newLogger builds the process logger. Logs go to stderr so that
// translation output on stdout stays clean.
func (o *options) newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		logger.WithError(err).Warn("Invalid log level, using warn")
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)
	return logger
}

func (o *options) store() (*settings.FileStore, error) {
	return settings.NewFileStore(o.settingsPath)
}

// settingsSource returns the snapshot source for the pipeline: the stored
// record with NOTETRANS_* environment overrides applied.
func (o *options) settingsSource(store settings.Store, logger *logrus.Logger) func() (settings.Settings, error) {
	return func() (settings.Settings, error) {
		s, err := store.Load()
		if err != nil {
			return s, err
		}
		applied, err := s.ApplyEnv(os.LookupEnv)
		if err != nil {
			return s, fmt.Errorf("environment override: %w", err)
		}
		if len(applied) > 0 {
			logger.WithField("keys", applied).Debug("Applied environment overrides")
		}
		return s, nil
	}
}

func (o *options) translateConfig(logger *logrus.Logger) translate.Config {
	endpoints := map[translate.Provider]string{}
	if o.youdaoURL != "" {
		endpoints[translate.ProviderYoudao] = o.youdaoURL
	}
	if o.baiduURL != "" {
		endpoints[translate.ProviderBaidu] = o.baiduURL
	}
	if o.microsoftURL != "" {
		endpoints[translate.ProviderMicrosoft] = o.microsoftURL
	}
	return translate.Config{
		Timeout:   o.timeout,
		Endpoints: endpoints,
		Logger:    logger,
	}
}

// newPipeline wires the translate pipeline from the flags.
func (o *options) newPipeline(logger *logrus.Logger) (*service.Pipeline, settings.Store, error) {
	store, err := o.store()
	if err != nil {
		return nil, nil, err
	}
	d := translate.NewDispatcher(o.translateConfig(logger))
	return service.NewPipeline(o.settingsSource(store, logger), d, logger), store, nil
}
