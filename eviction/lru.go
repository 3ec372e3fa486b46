package eviction

// lruNode is one key in the recency list.
type lruNode struct {
	key  string
	prev *lruNode
	next *lruNode
}

// lru keeps keys in a doubly-linked list ordered by last touch.
type lru struct {
	nodes map[string]*lruNode

	// head is the most recently touched key, tail the least.
	head *lruNode
	tail *lruNode
}

func newLRU() *lru {
	return &lru{nodes: make(map[string]*lruNode)}
}

// Touch inserts a new key at the front or moves an existing one there.
func (l *lru) Touch(k string) {
	if n, ok := l.nodes[k]; ok {
		l.unlink(n)
		l.pushFront(n)
		return
	}
	n := &lruNode{key: k}
	l.nodes[k] = n
	l.pushFront(n)
}

// Evict removes the tail.
func (l *lru) Evict() string {
	if l.tail == nil {
		return ""
	}
	n := l.tail
	l.unlink(n)
	delete(l.nodes, n.key)
	return n.key
}

func (l *lru) Len() int { return len(l.nodes) }

func (l *lru) pushFront(n *lruNode) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

func (l *lru) unlink(n *lruNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
