package harness

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// transcriptTurn is the on-disk shape of one TurnProgress record, named and
// tagged separately from TurnProgress itself so the YAML schema stays
// stable even if the in-memory type grows fields later (spec §6.5 "session
// transcript").
type transcriptTurn struct {
	Turn       int                 `yaml:"turn"`
	StartedAt  time.Time           `yaml:"started_at"`
	FinishedAt time.Time           `yaml:"finished_at"`
	IssueCount int                 `yaml:"issue_count"`
	Applied    int                 `yaml:"applied"`
	Rejected   int                 `yaml:"rejected"`
	Warnings   []transcriptWarning `yaml:"warnings,omitempty"`
}

type transcriptWarning struct {
	FieldID string `yaml:"field_id"`
	Message string `yaml:"message"`
}

type transcriptDoc struct {
	Session string           `yaml:"session"`
	Turns   []transcriptTurn `yaml:"turns"`
}

// TranscriptRecorder appends TurnProgress records to a YAML session
// artifact (spec §6.5), one file per Run, rewritten in full on every turn
// since transcripts are small and callers may tail the file between turns.
type TranscriptRecorder struct {
	path string

	mu  sync.Mutex
	doc transcriptDoc
}

// NewTranscriptRecorder opens (or prepares to create) the transcript file at path.
func NewTranscriptRecorder(path string) *TranscriptRecorder {
	return &TranscriptRecorder{path: path}
}

// Record appends turn to the transcript and rewrites the file.
func (r *TranscriptRecorder) Record(sessionID string, turn *TurnProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.doc.Session == "" {
		r.doc.Session = sessionID
	}

	tt := transcriptTurn{
		Turn:       turn.TurnNumber,
		StartedAt:  turn.StartedAt,
		FinishedAt: turn.FinishedAt,
		IssueCount: len(turn.Issues),
		Applied:    turn.AppliedCount,
		Rejected:   turn.RejectedCount,
	}
	for _, w := range turn.Warnings {
		tt.Warnings = append(tt.Warnings, transcriptWarning{FieldID: string(w.FieldID), Message: w.Message})
	}
	r.doc.Turns = append(r.doc.Turns, tt)

	out, err := yaml.Marshal(r.doc)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	return os.WriteFile(r.path, out, 0o644)
}

// Path returns the file the recorder writes to.
func (r *TranscriptRecorder) Path() string {
	return r.path
}
