package live

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/vango-dev/vbind"
	"github.com/vango-dev/vbind/pkg/compiler"
	"github.com/vango-dev/vbind/pkg/dom"
)

// Factory builds a fresh Instance for one session, compiled through
// surface. The render target should be an element: text directly under a
// fragment root has no addressable parent and produces no patches.
type Factory func(surface compiler.Surface) (*vbind.Instance, error)

// Session is one browser page bound to its own Instance.
type Session struct {
	// ID is the session identifier.
	ID string

	// CreatedAt is when the session was created.
	CreatedAt time.Time

	mu         sync.Mutex
	vm         *vbind.Instance
	pending    []dom.Patch
	lastActive time.Time
	connected  bool
}

// newSession builds the instance, assigns node IDs and starts collecting
// patches. Patches emitted while compiling are not kept: the first render
// already carries them.
func newSession(id string, factory Factory, now time.Time) (*Session, error) {
	s := &Session{ID: id, CreatedAt: now, lastActive: now}

	ids := dom.NewIDAllocator("n")
	updater := &dom.Updater{IDs: ids}
	vm, err := factory(updater)
	if err != nil {
		return nil, fmt.Errorf("build instance: %w", err)
	}
	ids.Assign(vm.El())
	updater.Sink = s.collect
	s.vm = vm
	return s, nil
}

func (s *Session) collect(p dom.Patch) {
	s.pending = append(s.pending, p)
}

// Instance returns the session's instance.
func (s *Session) Instance() *vbind.Instance {
	return s.vm
}

// Handle dispatches f and returns the patches it produced. Patches are
// returned even when a listener fails.
func (s *Session) Handle(f Frame) ([]dom.Patch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now()
	s.pending = nil

	event, err := f.eventType()
	if err != nil {
		return nil, err
	}
	n := s.vm.El().FindByNodeID(f.ID)
	if n == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, f.ID)
	}

	if f.Type == FrameInput {
		err = n.Input(f.Value)
	} else {
		err = n.Dispatch(dom.Event{Type: event, Value: f.Value, Target: n})
	}

	patches := s.pending
	s.pending = nil
	return patches, err
}

// Render writes the tree with node IDs.
func (s *Session) Render(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dom.Render(w, s.vm.El(), dom.RenderOptions{IDs: true})
}

// Listeners maps node IDs to the events they listen for.
func (s *Session) Listeners() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]string)
	s.vm.El().Walk(func(n *dom.Node) bool {
		if n.ID == "" {
			return true
		}
		if events := n.Events(); len(events) > 0 {
			sort.Strings(events)
			out[n.ID] = events
		}
		return true
	})
	return out
}

// setConnected marks whether a websocket is attached. It reports false
// when the session already had one.
func (s *Session) setConnected(c bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c && s.connected {
		return false
	}
	s.connected = c
	s.lastActive = time.Now()
	return true
}

// idleSince reports whether the session is unattached and idle since
// before cutoff.
func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.connected && s.lastActive.Before(cutoff)
}
