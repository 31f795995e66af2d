package command

// Queue is a FIFO of commands. Producers Push at the tail and the dispatcher
// Pops from the head. It has no internal locking; the owner must not mutate it
// while a drain is in progress.
type Queue struct {
	items []Command
}

// NewQueue returns a queue seeded with cmds in order.
func NewQueue(cmds ...Command) *Queue {
	q := &Queue{}
	for _, c := range cmds {
		q.Push(c)
	}
	return q
}

// Push appends c at the tail.
func (q *Queue) Push(c Command) {
	q.items = append(q.items, c)
}

// Pop removes and returns the head command. ok is false when the queue is empty.
func (q *Queue) Pop() (c Command, ok bool) {
	if len(q.items) == 0 {
		return Command{}, false
	}
	c = q.items[0]
	q.items[0] = Command{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return c, true
}

// Len reports the number of queued commands.
func (q *Queue) Len() int { return len(q.items) }

// Empty reports whether the queue holds no commands.
func (q *Queue) Empty() bool { return len(q.items) == 0 }
