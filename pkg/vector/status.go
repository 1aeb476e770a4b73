package vector

// AccessStatus is handed to Accessor.Access.
type AccessStatus struct {
	T        float64 // time of the vector
	Iter     int     // solver iteration
	Residual float64 // current residual norm
	Level    int     // grid level, 0 is finest
	NRefine  int     // number of temporal refinements so far
	GUpper   int     // global upper time index
	Done     bool    // solver has finished

	// WrapperTest is true when the call comes from the conformance checks
	// rather than a running solver.
	WrapperTest bool

	// CallingFunction identifies the solver phase; -1 outside a solve.
	CallingFunction int
}

// NewTestAccessStatus returns the status the conformance checks pass to
// Access for a vector at time t on the given level.
func NewTestAccessStatus(t float64, level int) *AccessStatus {
	return &AccessStatus{
		T:               t,
		Level:           level,
		WrapperTest:     true,
		CallingFunction: -1,
	}
}

// BufferStatus is handed to the buffer operations.
type BufferStatus struct {
	MessageType int
	size        int
}

// NewBufferStatus returns a status for the given message type with no size set.
func NewBufferStatus(messageType int) *BufferStatus {
	return &BufferStatus{MessageType: messageType}
}

// Size returns the buffer size recorded in the status.
func (bs *BufferStatus) Size() int { return bs.size }

// SetSize records the buffer size. The harness calls it with the allocated
// size before BufPack; BufPack may call it again to report bytes written.
func (bs *BufferStatus) SetSize(n int) { bs.size = n }

// CoarsenRefStatus is handed to Coarsen and Refine.
type CoarsenRefStatus struct {
	T       float64 // current time
	FTPrior float64 // previous time on the fine grid
	FTStop  float64 // next time on the fine grid
	CTPrior float64 // previous time on the coarse grid
	CTStop  float64 // next time on the coarse grid
	Level   int
	NRefine int
	GUpper  int
}

// NewCoarsenRefStatus returns a status centred on t with fine step fdt and
// coarse step cdt.
func NewCoarsenRefStatus(t, fdt, cdt float64) *CoarsenRefStatus {
	return &CoarsenRefStatus{
		T:       t,
		FTPrior: t - fdt,
		FTStop:  t + fdt,
		CTPrior: t - cdt,
		CTStop:  t + cdt,
	}
}
