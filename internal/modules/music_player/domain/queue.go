package domain

// DefaultQueueCapacity is the default maximum number of pending entries.
const DefaultQueueCapacity = 500

// Queue is a bounded FIFO of entries waiting to be played.
// The currently playing entry is not part of the queue.
type Queue struct {
	entries  []QueueEntry
	capacity int
}

// NewQueue creates an empty Queue holding at most capacity entries.
// A non-positive capacity falls back to DefaultQueueCapacity.
func NewQueue(capacity int) Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return Queue{
		entries:  make([]QueueEntry, 0),
		capacity: capacity,
	}
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	return len(q.entries)
}

// Cap returns the maximum number of pending entries.
func (q *Queue) Cap() int {
	return q.capacity
}

// IsEmpty returns true if nothing is pending.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// IsFull returns true if no more entries can be pushed.
func (q *Queue) IsFull() bool {
	return q.Len() >= q.capacity
}

// Push appends an entry to the tail of the queue.
func (q *Queue) Push(entry QueueEntry) error {
	if q.IsFull() {
		return ErrQueueFull
	}
	q.entries = append(q.entries, entry)
	return nil
}

// PushMany appends entries in order until the queue is full.
// Returns how many entries were appended.
func (q *Queue) PushMany(entries ...QueueEntry) int {
	n := min(len(entries), q.capacity-q.Len())
	if n <= 0 {
		return 0
	}
	q.entries = append(q.entries, entries[:n]...)
	return n
}

// Pop removes and returns the head of the queue.
func (q *Queue) Pop() (QueueEntry, bool) {
	if q.IsEmpty() {
		return QueueEntry{}, false
	}
	entry := q.entries[0]
	q.entries[0] = QueueEntry{}
	q.entries = q.entries[1:]
	return entry, true
}

// Peek returns the head of the queue without removing it, or nil if empty.
func (q *Queue) Peek() *QueueEntry {
	if q.IsEmpty() {
		return nil
	}
	entry := q.entries[0]
	return &entry
}

// List returns a copy of all pending entries, head first.
func (q *Queue) List() []QueueEntry {
	result := make([]QueueEntry, q.Len())
	copy(result, q.entries)
	return result
}

// Clear removes all pending entries and returns how many were removed.
func (q *Queue) Clear() int {
	n := q.Len()
	q.entries = make([]QueueEntry, 0)
	return n
}
