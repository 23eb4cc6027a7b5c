package texture

// FillSlots bounds how many image fills may be in flight at once. When every
// slot is taken the caller drops the field update for that frame.
type FillSlots struct {
	slots chan struct{}
}

func NewFillSlots(n int) *FillSlots {
	if n < 1 {
		n = 1
	}
	return &FillSlots{slots: make(chan struct{}, n)}
}

func (s *FillSlots) TryAcquire() bool {
	select {
	case s.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *FillSlots) Release() {
	select {
	case <-s.slots:
	default:
	}
}

func (s *FillSlots) InUse() int { return len(s.slots) }

func (s *FillSlots) Cap() int { return cap(s.slots) }
