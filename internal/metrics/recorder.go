// Package metrics records build observations.
package metrics

import "time"

// Outcome labels a finished build.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial" // some documents failed
	OutcomeFailed  Outcome = "failed"
)

// Recorder receives build observations. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveBuild(d time.Duration, outcome Outcome)
	AddDocuments(compiled, failed int)
	SetPosts(n int)
}

// NoopRecorder discards every observation.
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuild(time.Duration, Outcome) {}
func (NoopRecorder) AddDocuments(int, int)               {}
func (NoopRecorder) SetPosts(int)                        {}
