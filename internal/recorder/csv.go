// ============================================================================
// AeroSim Recorder - CSV Data Writer
// ============================================================================
//
// Package: internal/recorder
// File: csv.go
// Purpose: Write output/data.csv: fixed-width columns in spec order
//          (time, position, velocity, acc, throttle, brake, thrust,
//          drag, brake_force), strictly increasing time, drop+warn on
//          a duplicate or backwards timestamp.
//
// Design:
//   Hand-rolled fmt.Fprintf fixed-width writer, not encoding/csv -
//   justified stdlib choice (see DESIGN.md): the column order/width is
//   fixed by spec, not general CSV escaping, so encoding/csv's quoting
//   and variable-field generality buys nothing here; no pack example
//   uses encoding/csv for a fixed-width report line.
//
// ============================================================================

package recorder

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ChuLiYu/aerosim/pkg/types"
)

// CSVRecorder writes one fixed-width row per tick to an underlying
// writer (typically output/data.csv).
type CSVRecorder struct {
	mu       sync.Mutex
	w        *bufio.Writer
	closer   io.Closer
	lastTime float64
	hasRow   bool
	log      *slog.Logger
}

// NewCSVRecorder wraps w (and an optional Closer, for a file handle the
// caller wants CSVRecorder.Close to close) and writes the header row
// immediately.
func NewCSVRecorder(w io.Writer, closer io.Closer) *CSVRecorder {
	r := &CSVRecorder{
		w:      bufio.NewWriter(w),
		closer: closer,
		log:    slog.Default().With("component", "csv_recorder"),
	}
	r.writeHeader()
	return r
}

func (r *CSVRecorder) writeHeader() {
	fmt.Fprintln(r.w, "time,position,velocity,acc,throttle,brake,thrust,drag,brake_force")
	r.w.Flush()
}

// LogTick implements squeue.TickLogger: it is called once per tick after
// the state manager commits the coherent snapshot.
func (r *CSVRecorder) LogTick(s types.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hasRow && s.SimulationTime <= r.lastTime {
		r.log.Warn("dropping out-of-order data row", "time", s.SimulationTime, "last_time", r.lastTime)
		return
	}

	fmt.Fprintf(r.w, "%.2f,%.4f,%.4f,%.4f,%.4f,%.4f,%.2f,%.2f,%.2f\n",
		s.SimulationTime, s.Position, s.Velocity, s.Acceleration,
		s.Throttle, s.Brake, s.Thrust, s.DragForce, s.BrakeForce)
	r.w.Flush()

	r.lastTime = s.SimulationTime
	r.hasRow = true
}

// Close flushes buffered output and closes the underlying writer, if one
// was supplied.
func (r *CSVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.w.Flush(); err != nil {
		return fmt.Errorf("recorder: flushing csv writer: %w", err)
	}
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
