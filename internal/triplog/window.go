package triplog

// speedWindow keeps the most recent speed samples, evicting the oldest first.
type speedWindow struct {
	limit  int
	values []float64
}

func newSpeedWindow(limit int, seed ...float64) *speedWindow {
	w := &speedWindow{limit: limit, values: make([]float64, 0, limit+1)}
	for _, v := range seed {
		w.push(v)
	}
	return w
}

func (w *speedWindow) push(v float64) {
	w.values = append(w.values, v)
	if over := len(w.values) - w.limit; over > 0 {
		w.values = append(w.values[:0], w.values[over:]...)
	}
}

func (w *speedWindow) snapshot() []float64 {
	out := make([]float64, len(w.values))
	copy(out, w.values)
	return out
}
