package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap/zaptest"
)

type recordingPass struct {
	name string
	err  error
	log  *[]string
}

func (r *recordingPass) Name() string { return r.name }

func (r *recordingPass) Apply(_ context.Context, _ *goquery.Document) error {
	*r.log = append(*r.log, r.name)
	return r.err
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	errFirst := errors.New("first failed")
	errThird := errors.New("third failed")

	tests := []struct {
		name     string
		errs     []error
		wantRun  string
		wantErrs []error
	}{
		{name: "all passes succeed", errs: []error{nil, nil, nil}, wantRun: "a,b,c"},
		{name: "failures do not stop later passes", errs: []error{errFirst, nil, errThird}, wantRun: "a,b,c", wantErrs: []error{errFirst, errThird}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ran []string
			var passes []Pass
			for i, name := range []string{"a", "b", "c"} {
				passes = append(passes, &recordingPass{name: name, err: tt.errs[i], log: &ran})
			}

			p := New(zaptest.NewLogger(t), passes...)
			err := p.Run(context.Background(), mustParse(t, "<p>x</p>"))

			if got := strings.Join(ran, ","); got != tt.wantRun {
				t.Errorf("ran = %q, want %q", got, tt.wantRun)
			}
			if len(tt.wantErrs) == 0 && err != nil {
				t.Errorf("Run() error = %v, want nil", err)
			}
			for _, want := range tt.wantErrs {
				if !errors.Is(err, want) {
					t.Errorf("Run() error = %v, want it to wrap %v", err, want)
				}
			}
			if err != nil && !strings.Contains(err.Error(), "a: ") {
				t.Errorf("Run() error = %q, want pass name prefix", err)
			}
		})
	}
}

func TestPipeline_RunCancelled(t *testing.T) {
	t.Parallel()

	var ran []string
	p := New(nil, &recordingPass{name: "a", log: &ran})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx, mustParse(t, "<p>x</p>"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(ran) != 0 {
		t.Errorf("ran = %v, want nothing", ran)
	}
}

func TestPipeline_Passes(t *testing.T) {
	t.Parallel()

	var ran []string
	p := New(nil, &recordingPass{name: "a", log: &ran}, &recordingPass{name: "b", log: &ran})

	got := p.Passes()
	got[0] = nil
	if p.Passes()[0] == nil {
		t.Error("Passes() exposes internal slice")
	}
	if len(got) != 2 {
		t.Errorf("len(Passes()) = %d, want 2", len(got))
	}
}
