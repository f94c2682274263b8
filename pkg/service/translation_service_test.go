package service

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/dasmlab/notetrans/pkg/settings"
	"github.com/dasmlab/notetrans/pkg/translate"
	"github.com/sirupsen/logrus"
)

type recordingDispatcher struct {
	queries []string
	out     []translate.Outcome
}

func (r *recordingDispatcher) Dispatch(ctx context.Context, query string, s settings.Settings) []translate.Outcome {
	r.queries = append(r.queries, query)
	return r.out
}

type recordingNotifier struct{ messages []string }

func (r *recordingNotifier) Notify(message string) { r.messages = append(r.messages, message) }

type recordingDisplay struct{ views []View }

func (r *recordingDisplay) Show(v View) { r.views = append(r.views, v) }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func snapshot(s settings.Settings) func() (settings.Settings, error) {
	return func() (settings.Settings, error) { return s, nil }
}

func youdaoOnly() settings.Settings {
	s := settings.Defaults()
	s.YoudaoEnable = true
	s.AppID, s.SecretKey = "app", "secret"
	return s
}

func editor(text string) TranslateRequested {
	return TranslateRequested{
		HasActiveEditor: true,
		EditorSelection: func() string { return text },
	}
}

func TestHandleMissingCredentials(t *testing.T) {
	s := settings.Defaults()
	s.YoudaoEnable = true
	s.SecretKey = "x"

	d := &recordingDispatcher{}
	n := &recordingNotifier{}
	disp := &recordingDisplay{}
	p := NewPipeline(snapshot(s), d, quietLogger())

	if err := p.Handle(context.Background(), editor("hi"), n, disp); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if !reflect.DeepEqual(n.messages, []string{"appId can not be empty!"}) {
		t.Fatalf("notifications = %q", n.messages)
	}
	if len(d.queries) != 0 {
		t.Fatal("no provider request may be issued when credentials are missing")
	}
	if len(disp.views) != 0 {
		t.Fatal("display must not be invoked when credentials are missing")
	}
}

func TestHandleNoProviderEnabled(t *testing.T) {
	d := &recordingDispatcher{}
	n := &recordingNotifier{}
	disp := &recordingDisplay{}
	p := NewPipeline(snapshot(settings.Defaults()), d, quietLogger())

	if p.Runnable() {
		t.Fatal("Runnable() = true with every provider disabled")
	}
	if err := p.Handle(context.Background(), editor("hi"), n, disp); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if len(n.messages)+len(disp.views)+len(d.queries) != 0 {
		t.Fatal("a disabled configuration must be a silent no-op")
	}

	if _, err := p.Run(context.Background(), editor("hi")); !errors.Is(err, translate.ErrNoProviderEnabled) {
		t.Fatalf("Run() error = %v, want ErrNoProviderEnabled", err)
	}
}

func TestHandleCleansAndDisplays(t *testing.T) {
	out := []translate.Outcome{{
		Provider: translate.ProviderYoudao,
		Result:   &translate.Result{Provider: translate.ProviderYoudao, TranslatedText: "你好 世界"},
	}}
	d := &recordingDispatcher{out: out}
	n := &recordingNotifier{}
	disp := &recordingDisplay{}
	s := youdaoOnly()
	p := NewPipeline(snapshot(s), d, quietLogger())

	if !p.Runnable() {
		t.Fatal("Runnable() = false, want true")
	}
	if err := p.Handle(context.Background(), editor("**Hello**, world!"), n, disp); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	if !reflect.DeepEqual(d.queries, []string{"Hello  world"}) {
		t.Fatalf("dispatched queries = %q", d.queries)
	}
	if len(disp.views) != 1 {
		t.Fatalf("display invoked %d times, want 1", len(disp.views))
	}
	v := disp.views[0]
	if v.Query != "Hello  world" || !reflect.DeepEqual(v.Settings, s) || !reflect.DeepEqual(v.Outcomes, out) {
		t.Fatalf("unexpected view: %#v", v)
	}
	if len(n.messages) != 0 {
		t.Fatalf("unexpected notifications: %q", n.messages)
	}
}

func TestHandleProviderFailureStillDisplays(t *testing.T) {
	out := []translate.Outcome{{
		Provider: translate.ProviderYoudao,
		Err:      &translate.TranslationError{Provider: translate.ProviderYoudao, Cause: errors.New("timeout")},
	}}
	disp := &recordingDisplay{}
	p := NewPipeline(snapshot(youdaoOnly()), &recordingDispatcher{out: out}, quietLogger())

	if err := p.Handle(context.Background(), editor("x"), &recordingNotifier{}, disp); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if len(disp.views) != 1 || disp.views[0].Outcomes[0].Err == nil {
		t.Fatalf("provider failure should reach the display: %#v", disp.views)
	}
}

func TestRunUsesViewSelection(t *testing.T) {
	d := &recordingDispatcher{}
	p := NewPipeline(snapshot(youdaoOnly()), d, quietLogger())

	ev := TranslateRequested{
		ViewSelection: func() (string, bool) { return "  # Title  ", true },
	}
	v, err := p.Run(context.Background(), ev)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if v.Query != "Title" {
		t.Fatalf("Query = %q, want Title", v.Query)
	}
}

func TestRunWithoutSelectionDispatchesEmptyQuery(t *testing.T) {
	d := &recordingDispatcher{}
	p := NewPipeline(snapshot(youdaoOnly()), d, quietLogger())

	if _, err := p.Run(context.Background(), TranslateRequested{}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !reflect.DeepEqual(d.queries, []string{""}) {
		t.Fatalf("dispatched queries = %q, want one empty query", d.queries)
	}
}

func TestSettingsLoadError(t *testing.T) {
	loadErr := errors.New("corrupt file")
	p := NewPipeline(func() (settings.Settings, error) { return settings.Settings{}, loadErr }, &recordingDispatcher{}, quietLogger())

	if p.Runnable() {
		t.Fatal("Runnable() should be false when settings cannot be loaded")
	}
	if err := p.Handle(context.Background(), editor("x"), &recordingNotifier{}, &recordingDisplay{}); !errors.Is(err, loadErr) {
		t.Fatalf("Handle() error = %v, want wrapped load error", err)
	}
}
