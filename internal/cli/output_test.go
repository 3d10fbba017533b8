package cli

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/pfrederiksen/nearby-events/internal/event"
	"github.com/pfrederiksen/nearby-events/internal/geo"
	"github.com/pfrederiksen/nearby-events/internal/logger"
)

func TestWriteEvents(t *testing.T) {
	tests := []struct {
		name   string
		events []*event.Event
		want   string
	}{
		{
			name:   "nil",
			events: nil,
			want:   "[]\n",
		},
		{
			name:   "empty",
			events: []*event.Event{},
			want:   "[]\n",
		},
		{
			name: "unicode and markup preserved",
			events: []*event.Event{
				{Name: "Zoé & Café <Tacvba>", Date: "2026-11-05", Venue: "", Link: "https://www.songkick.com/concerts/1", Latitude: 20.68, Longitude: -103.35, DistanceKM: 0.8},
			},
			want: `[{"name":"Zoé & Café <Tacvba>","date":"2026-11-05","venue":"","link":"https://www.songkick.com/concerts/1","latitude":20.68,"longitude":-103.35,"distance_km":0.8}]` + "\n",
		},
		{
			name: "unencodable number",
			events: []*event.Event{
				event.NewEvent("broken", "", "", "", geo.Point{Lat: math.NaN(), Lon: 1}),
			},
			want: "[]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteEvents(&buf, tt.events); err != nil {
				t.Fatalf("WriteEvents() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("WriteEvents() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestEmitter_WritesOnce(t *testing.T) {
	var buf bytes.Buffer
	out := newEmitter(&buf)

	events := []*event.Event{{Name: "first"}}
	if err := out.Emit(events); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if err := out.Emit(nil); err != nil {
		t.Fatalf("second Emit() error = %v", err)
	}

	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("emitted %q, want a single line", buf.String())
	}
	if !strings.Contains(buf.String(), `"first"`) {
		t.Errorf("emitted %q, want the first payload", buf.String())
	}
}

func TestEmitter_LogsEncodingFailure(t *testing.T) {
	var stdout, logs bytes.Buffer
	out := newEmitter(&stdout)
	out.log = logger.New(logger.LevelDebug, &logs)

	events := []*event.Event{
		event.NewEvent("broken", "", "", "", geo.Point{Lat: math.Inf(1), Lon: 1}),
	}
	if err := out.Emit(events); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	if stdout.String() != "[]\n" {
		t.Errorf("stdout = %q, want %q", stdout.String(), "[]\n")
	}
	if !strings.Contains(logs.String(), "Emitting empty result") || !strings.Contains(logs.String(), "encoding events") {
		t.Errorf("encoding failure not logged: %s", logs.String())
	}
}

func TestEncodeEvents_ReportsCause(t *testing.T) {
	payload, err := encodeEvents([]*event.Event{{Name: "nan", DistanceKM: math.NaN()}})
	if err == nil {
		t.Fatal("encodeEvents() error = nil for NaN distance")
	}
	if string(payload) != "[]" {
		t.Errorf("payload = %q, want []", payload)
	}

	payload, err = encodeEvents(nil)
	if err != nil || string(payload) != "[]" {
		t.Errorf("encodeEvents(nil) = %q, %v", payload, err)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("stdout closed")
}

func TestEmitter_ReportsWriteError(t *testing.T) {
	out := newEmitter(failingWriter{})
	if err := out.Emit(nil); err == nil {
		t.Error("Emit() error = nil for failing writer")
	}
	if err := out.Emit(nil); err == nil {
		t.Error("repeated Emit() lost the write error")
	}
}
