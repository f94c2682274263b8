package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dasmlab/notetrans/pkg/service"
	"github.com/spf13/cobra"
)

func newTranslateCmd(opts *options) *cobra.Command {
	var asView bool

	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate a selection with every enabled provider",
		Long: `Translate a selection with every enabled provider.

Arguments are joined with spaces and treated as the active editor's
selection; --view treats them as a read-only view selection instead. With no
arguments the selection is read from stdin as a view selection.

Markup is stripped and punctuation replaced by spaces before the query is
sent. Each enabled provider is asked once; a failing provider does not affect
the others.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.newLogger()
			p, _, err := opts.newPipeline(logger)
			if err != nil {
				return err
			}

			ev, err := translateEvent(args, asView, cmd.InOrStdin())
			if err != nil {
				return err
			}

			n := &terminalNotifier{w: cmd.ErrOrStderr()}
			d := &terminalDisplay{w: cmd.OutOrStdout()}

			if !p.Runnable() {
				logger.Warn("No translation provider enabled; enable one with `notetrans settings set youdaoEnable true`")
			}
			if err := p.Handle(cmd.Context(), ev, n, d); err != nil {
				return err
			}
			if n.count > 0 {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asView, "view", false, "Treat the arguments as a read-only view selection")

	return cmd
}

// translateEvent builds the request from the command line: args are the
// editor selection, or the view selection with --view; stdin is the view
// selection when there are no args.
func translateEvent(args []string, asView bool, stdin io.Reader) (service.TranslateRequested, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return service.TranslateRequested{}, fmt.Errorf("reading stdin: %w", err)
		}
		text := string(data)
		return service.TranslateRequested{
			ViewSelection: func() (string, bool) { return text, text != "" },
		}, nil
	}

	text := strings.Join(args, " ")
	if asView {
		return service.TranslateRequested{
			ViewSelection: func() (string, bool) { return text, true },
		}, nil
	}
	return service.TranslateRequested{
		HasActiveEditor: true,
		EditorSelection: func() string { return text },
	}, nil
}

// terminalNotifier prints notifications to stderr.
type terminalNotifier struct {
	w     io.Writer
	count int
}

func (n *terminalNotifier) Notify(message string) {
	n.count++
	fmt.Fprintln(n.w, message)
}

// terminalDisplay prints the query followed by one block per provider.
type terminalDisplay struct {
	w io.Writer
}

func (d *terminalDisplay) Show(v service.View) {
	fmt.Fprintf(d.w, "Query: %s\n", v.Query)
	for _, o := range v.Outcomes {
		fmt.Fprintln(d.w)
		if o.Err != nil {
			fmt.Fprintf(d.w, "[%s] error: %v\n", o.Provider, o.Err)
			continue
		}
		r := o.Result
		if r.DetectedSource != "" {
			fmt.Fprintf(d.w, "[%s] (%s)\n", o.Provider, r.DetectedSource)
		} else {
			fmt.Fprintf(d.w, "[%s]\n", o.Provider)
		}
		fmt.Fprintln(d.w, r.TranslatedText)
		if r.Phonetic != "" {
			fmt.Fprintf(d.w, "  phonetic: %s\n", r.Phonetic)
		}
		if r.SpeakURL != "" {
			fmt.Fprintf(d.w, "  speak:    %s\n", r.SpeakURL)
		}
		if r.TSpeakURL != "" {
			fmt.Fprintf(d.w, "  tspeak:   %s\n", r.TSpeakURL)
		}
	}
}
