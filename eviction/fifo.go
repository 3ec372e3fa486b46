package eviction

// fifo evicts in first-insertion order. Re-recording a key does not move it.
type fifo struct {
	// queue[0] is the oldest key.
	queue []string
	set   map[string]struct{}
}

func newFIFO() *fifo {
	return &fifo{set: make(map[string]struct{})}
}

func (f *fifo) Touch(k string) {
	if _, ok := f.set[k]; ok {
		return
	}
	f.queue = append(f.queue, k)
	f.set[k] = struct{}{}
}

func (f *fifo) Evict() string {
	if len(f.queue) == 0 {
		return ""
	}
	k := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	delete(f.set, k)
	return k
}

func (f *fifo) Len() int { return len(f.set) }
