// Package progrock provides the Progrock implementation of the telemetry adapter.
package progrock

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/crate/internal/core/ports"
)

var _ ports.Telemetry = (*Recorder)(nil)

// Recorder implements the ports.Telemetry interface by recording descriptor steps on a
// progrock tape. Closing it prints a one-line summary of the run to out.
type Recorder struct {
	tape *progrock.Tape
	rec  *progrock.Recorder
	out  io.Writer
}

// New creates a new Recorder that summarizes the run on out.
func New(out io.Writer) *Recorder {
	tape := progrock.NewTape()
	return &Recorder{
		tape: tape,
		rec:  progrock.NewRecorder(tape),
		out:  out,
	}
}

// Record starts a vertex for a descriptor step. The digest is derived from the
// step name so that re-running a step reuses the same vertex identity.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	d := digest.FromString(name)
	vertex := &Vertex{vertex: r.rec.Vertex(d, name)}
	return ports.ContextWithVertex(ctx, vertex), vertex
}

// Summary describes the steps recorded so far.
func (r *Recorder) Summary() string {
	return fmt.Sprintf("%d steps: %d unchanged, %d failed in %s",
		r.tape.TotalCount(),
		r.tape.CachedCount(),
		r.tape.ErroredCount(),
		r.tape.Duration().Round(time.Millisecond),
	)
}

// Close ends the recording session and prints the summary when any step ran.
func (r *Recorder) Close() error {
	if err := r.rec.Close(); err != nil {
		return err
	}
	if r.out == nil || r.tape.TotalCount() == 0 {
		return nil
	}
	_, err := fmt.Fprintln(r.out, r.Summary())
	return err
}
