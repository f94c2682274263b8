package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dasmlab/notetrans/pkg/selection"
	"github.com/dasmlab/notetrans/pkg/settings"
	"github.com/dasmlab/notetrans/pkg/translate"
	"github.com/sirupsen/logrus"
)

// TranslateRequested is raised each time the user invokes translate.
type TranslateRequested struct {
	// HasActiveEditor is true when an editable view has focus.
	HasActiveEditor bool
	// EditorSelection returns the editor's current selection.
	EditorSelection func() string
	// ViewSelection returns the read-only view's selection, if any.
	ViewSelection func() (string, bool)
}

// Notifier shows a short message to the user.
type Notifier interface {
	Notify(message string)
}

// Display presents translation results.
type Display interface {
	Show(view View)
}

// View is everything a display needs for one invocation.
type View struct {
	Query    string
	Settings settings.Settings
	Outcomes []translate.Outcome
}

// Dispatcher sends a query to the enabled providers.
type Dispatcher interface {
	Dispatch(ctx context.Context, query string, s settings.Settings) []translate.Outcome
}

// Pipeline runs the translate command: validate, extract, clean, dispatch.
type Pipeline struct {
	// Settings returns the current settings snapshot.
	Settings   func() (settings.Settings, error)
	Dispatcher Dispatcher
	Logger     *logrus.Logger
}

// NewPipeline creates a Pipeline. Settings are read once per invocation.
func NewPipeline(source func() (settings.Settings, error), d Dispatcher, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.New()
	}
	return &Pipeline{
		Settings:   source,
		Dispatcher: d,
		Logger:     logger,
	}
}

// Runnable reports whether the translate command should be offered, i.e.
// whether at least one provider is enabled. A settings load error counts as
// not runnable.
func (p *Pipeline) Runnable() bool {
	s, err := p.Settings()
	if err != nil {
		p.Logger.WithError(err).Warn("Failed to load settings")
		return false
	}
	return translate.Runnable(s)
}

// Run validates the settings, then extracts, cleans and dispatches the
// selection. It returns translate.ErrNoProviderEnabled or a
// *translate.MissingCredentialsError before any provider is contacted.
func (p *Pipeline) Run(ctx context.Context, ev TranslateRequested) (*View, error) {
	s, err := p.Settings()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if err := translate.Check(s); err != nil {
		var mce *translate.MissingCredentialsError
		switch {
		case errors.As(err, &mce):
			translate.RecordInvocation(translate.InvocationMissingCredentials)
			p.Logger.WithField("missing", mce.Fields).Warn("Translate aborted: missing credentials")
		default:
			translate.RecordInvocation(translate.InvocationNoProvider)
			p.Logger.Debug("Translate skipped: no provider enabled")
		}
		return nil, err
	}

	raw := selection.Extract(ev.HasActiveEditor, ev.EditorSelection, ev.ViewSelection)
	query := selection.Clean(raw)

	p.Logger.WithFields(logrus.Fields{
		"editor":       ev.HasActiveEditor,
		"raw_length":   len(raw),
		"query_length": len(query),
		"providers":    translate.EnabledProviders(s),
	}).Debug("Dispatching translate request")

	translate.RecordInvocation(translate.InvocationDispatched)
	startTime := time.Now()
	outcomes := p.Dispatcher.Dispatch(ctx, query, s)

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	p.Logger.WithFields(logrus.Fields{
		"providers":   len(outcomes),
		"failed":      failed,
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Info("Translate completed")

	return &View{Query: query, Settings: s, Outcomes: outcomes}, nil
}

// Handle runs the pipeline and routes the result: missing credentials go to
// the notifier as one message, a successful run goes to the display, and a
// disabled configuration does nothing. Provider failures are part of the view.
func (p *Pipeline) Handle(ctx context.Context, ev TranslateRequested, n Notifier, d Display) error {
	view, err := p.Run(ctx, ev)
	if err != nil {
		var mce *translate.MissingCredentialsError
		switch {
		case errors.Is(err, translate.ErrNoProviderEnabled):
			return nil
		case errors.As(err, &mce):
			n.Notify(mce.Error())
			return nil
		default:
			return err
		}
	}
	d.Show(*view)
	return nil
}
