package alert

import (
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/streamtip/donatio/internal/models"
	"github.com/streamtip/donatio/pkg/logger"
)

const (
	// DefaultDisplayDuration is how long a notification stays visible.
	DefaultDisplayDuration = 5 * time.Second
	// DefaultLingerDuration is the exit animation time before the slot empties.
	DefaultLingerDuration = 300 * time.Millisecond

	subscriberBuffer = 32
)

var ErrSlotClosed = errors.New("notification slot is closed")

type Options struct {
	DisplayDuration time.Duration
	LingerDuration  time.Duration
	Clock           clock.Clock
	Sound           models.SoundHook
}

// Slot holds at most one live donation notification and drives it through
// Empty -> Showing -> Expiring -> Empty.
//
// All slot state is owned by a single loop goroutine. Public methods and
// timer callbacks submit closures to that loop, so transitions are applied in
// order without locks. Each Present bumps the generation; timer callbacks
// carry the generation they were scheduled for and are dropped on mismatch.
type Slot struct {
	logger  *logger.Logger
	clock   clock.Clock
	sound   models.SoundHook
	display time.Duration
	linger  time.Duration

	cmds     chan func()
	quit     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	// owned by run
	state       State
	visible     bool
	generation  uint64
	current     *models.DonationNotification
	expireTimer *clock.Timer
	lingerTimer *clock.Timer
	subscribers map[int]chan Event
	nextSubID   int
}

func NewSlot(logger *logger.Logger, opts Options) *Slot {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.DisplayDuration <= 0 {
		opts.DisplayDuration = DefaultDisplayDuration
	}
	if opts.LingerDuration <= 0 {
		opts.LingerDuration = DefaultLingerDuration
	}
	s := &Slot{
		logger:      logger,
		clock:       opts.Clock,
		sound:       opts.Sound,
		display:     opts.DisplayDuration,
		linger:      opts.LingerDuration,
		cmds:        make(chan func()),
		quit:        make(chan struct{}),
		stopped:     make(chan struct{}),
		subscribers: make(map[int]chan Event),
	}
	go s.run()
	return s
}

func (s *Slot) run() {
	defer close(s.stopped)
	for {
		select {
		case fn := <-s.cmds:
			fn()
		case <-s.quit:
			s.stopTimers()
			for id, ch := range s.subscribers {
				close(ch)
				delete(s.subscribers, id)
			}
			return
		}
	}
}

// do runs fn on the loop and waits for it to finish.
func (s *Slot) do(fn func()) error {
	done := make(chan struct{})
	select {
	case s.cmds <- func() { fn(); close(done) }:
	case <-s.quit:
		return ErrSlotClosed
	}
	<-done
	return nil
}

// post queues fn on the loop without waiting. Used by timer callbacks.
func (s *Slot) post(fn func()) {
	select {
	case s.cmds <- fn:
	case <-s.quit:
	}
}

// Present shows n, replacing whatever occupies the slot. Timers belonging to
// the replaced notification are stopped and can no longer act. It returns the
// generation assigned to n.
func (s *Slot) Present(n *models.DonationNotification) (uint64, error) {
	var gen uint64
	err := s.do(func() {
		s.stopTimers()
		if s.current != nil {
			s.logger.Debug("Replacing notification", "previous", s.current.ID, "state", s.state.String())
		}
		s.generation++
		gen = s.generation
		s.current = n
		s.state = Showing
		s.visible = true
		s.expireTimer = s.clock.AfterFunc(s.display, func() {
			s.post(func() { s.expire(gen) })
		})
		if s.sound != nil {
			s.sound.PlayNotificationSound(n.Amount)
		}
		s.emit(EventShown, gen, n)
	})
	return gen, err
}

// Dismiss starts the exit of the showing notification, as a user close does.
// It reports whether a notification was showing.
func (s *Slot) Dismiss() (bool, error) {
	var dismissed bool
	err := s.do(func() {
		if s.state != Showing {
			return
		}
		s.beginExit()
		dismissed = true
	})
	return dismissed, err
}

// Snapshot returns the current slot state.
func (s *Slot) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := s.do(func() {
		snap = Snapshot{
			State:      s.state,
			Visible:    s.visible,
			Generation: s.generation,
		}
		if s.current != nil {
			n := *s.current
			snap.Notification = &n
		}
	})
	return snap, err
}

// Subscribe registers an event consumer. Events are dropped for a subscriber
// whose buffer is full. The returned cancel func unregisters it.
func (s *Slot) Subscribe() (<-chan Event, func(), error) {
	ch := make(chan Event, subscriberBuffer)
	var id int
	err := s.do(func() {
		id = s.nextSubID
		s.nextSubID++
		s.subscribers[id] = ch
	})
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = s.do(func() {
				if sub, ok := s.subscribers[id]; ok {
					close(sub)
					delete(s.subscribers, id)
				}
			})
		})
	}
	return ch, cancel, nil
}

// Close stops the loop and its timers and closes all subscriptions.
func (s *Slot) Close() {
	s.stopOnce.Do(func() { close(s.quit) })
	<-s.stopped
}

func (s *Slot) expire(gen uint64) {
	if gen != s.generation || s.state != Showing {
		s.logger.Debug("Dropping stale expire timer", "generation", gen, "current", s.generation)
		return
	}
	s.beginExit()
}

func (s *Slot) beginExit() {
	if s.expireTimer != nil {
		s.expireTimer.Stop()
		s.expireTimer = nil
	}
	gen := s.generation
	s.state = Expiring
	s.visible = false
	s.lingerTimer = s.clock.AfterFunc(s.linger, func() {
		s.post(func() { s.finish(gen) })
	})
	s.emit(EventHidden, gen, s.current)
}

func (s *Slot) finish(gen uint64) {
	if gen != s.generation || s.state != Expiring {
		s.logger.Debug("Dropping stale linger timer", "generation", gen, "current", s.generation)
		return
	}
	closed := s.current
	s.lingerTimer = nil
	s.current = nil
	s.state = Empty
	s.emit(EventClosed, gen, closed)
}

func (s *Slot) stopTimers() {
	if s.expireTimer != nil {
		s.expireTimer.Stop()
		s.expireTimer = nil
	}
	if s.lingerTimer != nil {
		s.lingerTimer.Stop()
		s.lingerTimer = nil
	}
}

func (s *Slot) emit(kind EventKind, gen uint64, n *models.DonationNotification) {
	ev := Event{
		Kind:       kind,
		Generation: gen,
		At:         s.clock.Now(),
	}
	if n != nil {
		ev.Notification = *n
	}
	for id, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("Dropping alert event for slow subscriber", "subscriber", id, "kind", string(kind))
		}
	}
}
