// Package report provides the rank-gated diagnostic writer used by the
// conformance checks.
//
// Every process of a distributed run calls the checks with the same
// arguments. Only the process whose rank equals the primary rank writes,
// and each line is flushed before Printf returns so output from different
// processes never interleaves mid-line.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

// Comm identifies the calling process within its communication group.
type Comm interface {
	Rank() int
}

// StaticComm is a Comm with a fixed rank.
type StaticComm int

// Rank returns the fixed rank.
func (c StaticComm) Rank() int { return int(c) }

// rankEnvVars are checked in order by RankFromEnv.
var rankEnvVars = []string{
	"PTCHECK_RANK",
	"OMPI_COMM_WORLD_RANK",
	"PMI_RANK",
	"PMIX_RANK",
	"SLURM_PROCID",
}

// RankFromEnv returns the rank set by the process launcher, or 0 when the
// process was not started by one.
func RankFromEnv() StaticComm {
	for _, name := range rankEnvVars {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return StaticComm(n)
		}
	}
	return StaticComm(0)
}

type flusher interface {
	Flush() error
}

type syncer interface {
	Sync() error
}

// Reporter writes diagnostic lines on the primary process only.
type Reporter struct {
	mu      sync.Mutex
	w       io.Writer
	comm    Comm
	primary int
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithPrimary sets the rank that writes output. Defaults to 0.
func WithPrimary(rank int) Option {
	return func(r *Reporter) { r.primary = rank }
}

// New creates a Reporter writing to w. A nil comm is treated as rank 0.
func New(w io.Writer, comm Comm, opts ...Option) *Reporter {
	if comm == nil {
		comm = StaticComm(0)
	}
	r := &Reporter{w: w, comm: comm}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Discard returns a Reporter that writes nothing.
func Discard() *Reporter {
	return New(io.Discard, nil)
}

// IsPrimary reports whether this process writes output.
func (r *Reporter) IsPrimary() bool {
	return r.comm.Rank() == r.primary
}

// Printf formats and writes on the primary process, then flushes.
func (r *Reporter) Printf(format string, args ...any) {
	if !r.IsPrimary() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, format, args...)
	r.flush()
}

// flush pushes buffered bytes out. Errors are ignored: Sync on a terminal
// or pipe commonly fails and there is nothing useful to do about it.
func (r *Reporter) flush() {
	switch w := r.w.(type) {
	case flusher:
		_ = w.Flush()
	case syncer:
		_ = w.Sync()
	}
}
