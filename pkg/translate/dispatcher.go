package translate

import (
	"context"
	"errors"
	"time"

	"github.com/dasmlab/notetrans/pkg/settings"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Outcome is one provider's answer within a dispatch.
// Exactly one of Result and Err is set.
type Outcome struct {
	Provider Provider
	Result   *Result
	Err      error
}

// Dispatcher sends a query to every enabled provider.
type Dispatcher struct {
	cfg Config
	// build creates the translators for a dispatch; replaced in tests.
	build func(settings.Settings, Config) []Translator
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	return &Dispatcher{
		cfg:   cfg.withDefaults(),
		build: NewTranslators,
	}
}

// NewDispatcherWith creates a Dispatcher that uses build instead of
// NewTranslators, e.g. to plug in custom Translator implementations.
func NewDispatcherWith(cfg Config, build func(settings.Settings, Config) []Translator) *Dispatcher {
	d := NewDispatcher(cfg)
	d.build = build
	return d
}

// Dispatch issues one request per enabled provider, concurrently, and
// returns their outcomes in dispatch order. Each provider gets a single
// attempt; a failure never affects the others. The query is sent even when
// empty.
//
// s must already have passed Check.
func (d *Dispatcher) Dispatch(ctx context.Context, query string, s settings.Settings) []Outcome {
	translators := d.build(s, d.cfg)
	outcomes := make([]Outcome, len(translators))

	var g errgroup.Group
	for i, t := range translators {
		i, t := i, t
		g.Go(func() error {
			outcomes[i] = d.translate(ctx, t, query)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (d *Dispatcher) translate(ctx context.Context, t Translator, query string) Outcome {
	p := t.Name()
	start := time.Now()

	res, err := t.Translate(ctx, &Request{Text: query})
	if err == nil && res == nil {
		err = errors.New("empty result")
	}
	RecordTranslationRequest(p, time.Since(start), err == nil, len(query))

	if err != nil {
		d.cfg.Logger.WithError(err).WithFields(logrus.Fields{
			"provider":    p,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Warn("Provider translation failed")
		return Outcome{Provider: p, Err: &TranslationError{Provider: p, Cause: err}}
	}
	if res.Provider == "" {
		res.Provider = p
	}
	return Outcome{Provider: p, Result: res}
}
