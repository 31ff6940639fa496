package generation

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/halalchat/backend/internal/inference"
)

// fakeClient returns a fixed response or error; it records the last request
// so tests can inspect the assembled instruction.
type fakeClient struct {
	text    string
	err     error
	lastReq inference.Request
}

func (f *fakeClient) Generate(_ context.Context, req inference.Request) (*inference.Response, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &inference.Response{Text: f.text}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestAdvise_StructuredAnswer(t *testing.T) {
	client := &fakeClient{text: `{"shouldVisualize": true, "visualizationType": "table", "title": "Prayer times"}`}
	a := NewAdvisor(client, testLogger())

	advice := a.Advise(context.Background(), "list the daily prayer times")

	if !advice.ShouldVisualize {
		t.Error("ShouldVisualize = false, want true")
	}
	if advice.VisualizationType != "table" {
		t.Errorf("VisualizationType = %q, want table", advice.VisualizationType)
	}
	if advice.Title != "Prayer times" {
		t.Errorf("Title = %q", advice.Title)
	}
}

func TestAdvise_LabeledLineFallback(t *testing.T) {
	client := &fakeClient{text: "Should Visualize: Yes\nVisualization Type: timeline\nTitle: Hijri year"}
	a := NewAdvisor(client, testLogger())

	advice := a.Advise(context.Background(), "major events of the Hijri year")

	if !advice.ShouldVisualize {
		t.Error("ShouldVisualize = false, want true")
	}
	if advice.VisualizationType != "timeline" {
		t.Errorf("VisualizationType = %q, want timeline", advice.VisualizationType)
	}
}

func TestAdvise_ServiceErrorDegradesToNone(t *testing.T) {
	client := &fakeClient{err: errors.New("service unavailable")}
	a := NewAdvisor(client, testLogger())

	advice := a.Advise(context.Background(), "anything")

	if advice.ShouldVisualize {
		t.Error("ShouldVisualize = true after service error, want false")
	}
}

func TestAdvise_UnparsableAnswerDegradesToNone(t *testing.T) {
	client := &fakeClient{text: "hmm, hard to say"}
	a := NewAdvisor(client, testLogger())

	advice := a.Advise(context.Background(), "anything")

	if advice.ShouldVisualize {
		t.Error("ShouldVisualize = true for unparsable answer, want false")
	}
}

func TestAdvise_UnknownTypeDegradesToNone(t *testing.T) {
	client := &fakeClient{text: `{"shouldVisualize": true, "visualizationType": "hologram", "title": "x"}`}
	a := NewAdvisor(client, testLogger())

	advice := a.Advise(context.Background(), "anything")

	if advice.ShouldVisualize {
		t.Error("ShouldVisualize = true for unknown type, want false")
	}
}
