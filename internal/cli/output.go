package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pfrederiksen/nearby-events/internal/event"
	"github.com/pfrederiksen/nearby-events/internal/logger"
)

var emptyArray = []byte("[]")

// errInvalidPayload is returned when encoded events fail re-validation
var errInvalidPayload = errors.New("encoded events are not valid JSON")

// WriteEvents writes events as one JSON array line. Anything that cannot be
// encoded as valid JSON is replaced by an empty array.
func WriteEvents(w io.Writer, events []*event.Event) error {
	payload, _ := encodeEvents(events)
	return writeLine(w, payload)
}

func writeLine(w io.Writer, payload []byte) error {
	line := make([]byte, 0, len(payload)+1)
	line = append(line, payload...)
	line = append(line, '\n')
	_, err := w.Write(line)
	return err
}

// encodeEvents returns the JSON payload for events. On failure it returns an
// empty array together with the cause.
func encodeEvents(events []*event.Event) ([]byte, error) {
	if events == nil {
		events = []*event.Event{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(events); err != nil {
		return append([]byte{}, emptyArray...), fmt.Errorf("encoding events: %w", err)
	}

	payload := bytes.TrimRight(buf.Bytes(), "\n")
	if !json.Valid(payload) {
		return append([]byte{}, emptyArray...), errInvalidPayload
	}
	return payload, nil
}

// emitter writes the payload at most once per run
type emitter struct {
	w    io.Writer
	log  *logger.Logger
	once sync.Once
	err  error
}

func newEmitter(w io.Writer) *emitter {
	return &emitter{w: w}
}

// Emit writes events unless something was already emitted. Encoding failures
// are logged and replaced by an empty array.
func (e *emitter) Emit(events []*event.Event) error {
	e.once.Do(func() {
		payload, err := encodeEvents(events)
		if err != nil {
			log := e.log
			if log == nil {
				log = logger.Default()
			}
			log.Error("Emitting empty result", logger.Fields{"events": len(events)}, err)
		}
		e.err = writeLine(e.w, payload)
	})
	return e.err
}
