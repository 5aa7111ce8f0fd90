package model

// Progress is one coarse-grained progress event, emitted at file
// granularity. Fraction is monotonically non-decreasing within an
// operation and reaches 1.0 on completion.
type Progress struct {
	Fraction float64
	Message  string
}

// ProgressFunc receives progress events. It may be invoked from a worker
// goroutine; the consumer is responsible for redispatching to its own
// execution context.
type ProgressFunc func(Progress)
