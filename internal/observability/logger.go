package observability

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Pretty output goes through the
// terminal writer so log lines never interleave with the live status
// line's cursor save/restore sequence.
func NewLogger(level string, pretty bool) (zerolog.Logger, error) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var logger zerolog.Logger
	if pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: NewTermWriter()})
	} else {
		logger = zerolog.New(NewTermWriter())
	}
	return logger.Level(l).With().Timestamp().Logger(), nil
}

// Transcript appends model prompt/response pairs to a JSONL file with
// simple size-based rotation, so every raw model exchange can be
// audited after the fact.
type Transcript struct {
	Path    string
	MaxSize int64
}

func NewTranscript(dir string) *Transcript {
	return &Transcript{
		Path:    filepath.Join(dir, "llm.jsonl"),
		MaxSize: 10 * 1024 * 1024, // 10MB
	}
}

type transcriptRecord struct {
	Command   string    `json:"command"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Record appends one exchange. Failures are swallowed: transcript loss
// must never fail a command.
func (t *Transcript) Record(command, prompt, response string) {
	data, err := json.Marshal(transcriptRecord{
		Command:   command,
		Prompt:    prompt,
		Response:  response,
		Timestamp: time.Now(),
	})
	if err != nil {
		return
	}

	if err := os.MkdirAll(filepath.Dir(t.Path), 0755); err != nil {
		return
	}

	info, err := os.Stat(t.Path)
	if err == nil && info.Size() > t.MaxSize {
		t.rotate()
	}

	f, err := os.OpenFile(t.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	f.Write(append(data, '\n'))
}

func (t *Transcript) rotate() {
	// Simple rotation: keep one .old file
	oldPath := t.Path + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(t.Path, oldPath)
}
