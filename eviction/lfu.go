package eviction

// lfu evicts the least frequently recorded key. Ties go to the key that
// reached that count first, which keeps eviction deterministic.
type lfu struct {
	counts map[string]int

	// buckets[c] lists keys with count c in the order they reached it.
	buckets map[int][]string

	// minCount is the smallest count currently present.
	minCount int
}

func newLFU() *lfu {
	return &lfu{
		counts:  make(map[string]int),
		buckets: make(map[int][]string),
	}
}

func (l *lfu) Touch(k string) {
	c, ok := l.counts[k]
	if !ok {
		l.counts[k] = 1
		l.buckets[1] = append(l.buckets[1], k)
		l.minCount = 1
		return
	}

	l.dropFromBucket(c, k)
	if l.minCount == c && len(l.buckets[c]) == 0 {
		l.minCount = c + 1
	}
	l.counts[k] = c + 1
	l.buckets[c+1] = append(l.buckets[c+1], k)
}

func (l *lfu) Evict() string {
	if len(l.counts) == 0 {
		return ""
	}
	b := l.buckets[l.minCount]
	k := b[0]
	l.dropFromBucket(l.minCount, k)
	delete(l.counts, k)

	if len(l.counts) > 0 && len(l.buckets[l.minCount]) == 0 {
		l.minCount = l.lowestCount()
	}
	return k
}

func (l *lfu) Len() int { return len(l.counts) }

func (l *lfu) dropFromBucket(c int, k string) {
	b := l.buckets[c]
	for i, v := range b {
		if v == k {
			b = append(b[:i], b[i+1:]...)
			break
		}
	}
	if len(b) == 0 {
		delete(l.buckets, c)
		return
	}
	l.buckets[c] = b
}

// lowestCount scans buckets. Only needed after the last key of the
// minimum bucket is evicted.
func (l *lfu) lowestCount() int {
	lowest := 0
	for c := range l.buckets {
		if lowest == 0 || c < lowest {
			lowest = c
		}
	}
	return lowest
}
