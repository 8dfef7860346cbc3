package processor

// semaphore is a counting semaphore that never blocks: callers either get a
// slot or are turned away.
type semaphore struct {
	ch chan struct{}
}

func newSemaphore(capacity int) *semaphore {
	return &semaphore{
		ch: make(chan struct{}, capacity),
	}
}

// tryAcquire takes a slot if one is free.
func (s *semaphore) tryAcquire() bool {
	select {
	case s.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// release releases a semaphore slot
func (s *semaphore) release() {
	<-s.ch
}
