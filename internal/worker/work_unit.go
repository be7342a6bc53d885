package worker

// Contains the minimal data needed by a consumer to process a contiguous, half open range [Begin, End) of items,
// usually point indices
type WorkUnit struct {
	Begin int
	End   int
}

// Returns the number of items covered by the unit
func (w *WorkUnit) Len() int {
	return w.End - w.Begin
}
