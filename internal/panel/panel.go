// Package panel implements the node detail panel: an open/close/switch
// state machine over an on-demand detail fetch. Rapid node switching is
// handled with a debounce timer, per-fetch cancellation, and a pending-call
// id that makes stale completions no-ops, so the panel always ends up
// showing the most recently requested node.
package panel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"topoview/internal/domain"
)

// State is the panel lifecycle state.
type State string

const (
	StateClosed  State = "closed"
	StateOpening State = "opening" // debounce or fetch in flight
	StateOpen    State = "open"
	StateError   State = "error"
)

// DefaultDebounce delays the detail fetch after an open request so a rapid
// click sequence only fetches the final node.
const DefaultDebounce = 100 * time.Millisecond

// DetailFetcher loads the aggregated node detail. The fetch must honor ctx
// cancellation; the panel cancels superseded fetches.
type DetailFetcher interface {
	NodeDetail(ctx context.Context, hostname, snapshot, network string) (*domain.NodeDetail, error)
}

// Options configures a Panel.
type Options struct {
	Debounce time.Duration
	// OnClose runs after every transition to CLOSED, however triggered, so
	// the canvas can clear its selection indicator.
	OnClose func()
	// OnChange receives the panel view after every state change.
	OnChange func(View)
	// OnAttachHooks/OnDetachHooks mirror the document-level Escape and
	// backdrop close listeners: attached when the panel opens, detached when
	// it closes. Every attach has a matching detach.
	OnAttachHooks func()
	OnDetachHooks func()
	Log           zerolog.Logger
}

// Panel owns the detail panel state. All mutation goes through Open, Close,
// HandleEscape, and HandleBackdropClick; asynchronous fetch completions are
// admitted only when their call id is still authoritative.
type Panel struct {
	mu       sync.Mutex
	fetcher  DetailFetcher
	snapshot string
	network  string

	debounce time.Duration
	onClose  func()
	onChange func(View)
	onAttach func()
	onDetach func()
	log      zerolog.Logger

	state    State
	hostname string
	detail   *domain.NodeDetail
	errMsg   string
	loading  bool

	callSeq       uint64
	timer         *time.Timer
	cancel        context.CancelFunc
	hooksAttached bool
}

// New creates a closed panel backed by the given fetcher.
func New(fetcher DetailFetcher, opts Options) *Panel {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Panel{
		fetcher:  fetcher,
		debounce: opts.Debounce,
		onClose:  opts.OnClose,
		onChange: opts.OnChange,
		onAttach: opts.OnAttachHooks,
		onDetach: opts.OnDetachHooks,
		log:      opts.Log.With().Str("component", "panel").Logger(),
		state:    StateClosed,
	}
}

// SetScope sets the snapshot/network used for subsequent fetches. Called on
// every topology load.
func (p *Panel) SetScope(snapshot, network string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot = snapshot
	p.network = network
}

// Open requests the panel for the given node. Clicking the node that is
// already open toggles the panel closed; any other request (re)enters the
// opening flow: restart the debounce timer, cancel the previous in-flight
// fetch, and take over the authoritative call id.
func (p *Panel) Open(hostname string) {
	p.mu.Lock()

	if p.state == StateOpen && p.hostname == hostname {
		after := p.closeLocked()
		p.mu.Unlock()
		p.runAfter(after)
		p.notify()
		return
	}

	p.state = StateOpening
	p.hostname = hostname
	p.loading = true
	p.errMsg = ""
	p.detail = nil

	p.callSeq++
	id := p.callSeq

	if p.timer != nil {
		p.timer.Stop()
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}

	var attach func()
	if !p.hooksAttached {
		p.hooksAttached = true
		attach = p.onAttach
	}

	p.timer = time.AfterFunc(p.debounce, func() {
		p.fetch(id, hostname)
	})

	p.mu.Unlock()

	if attach != nil {
		attach()
	}
	p.notify()
}

// Close transitions to CLOSED from any state: stop the debounce timer,
// cancel any in-flight fetch, clear the hostname/detail/error, detach the
// close hooks, and invoke the OnClose callback.
func (p *Panel) Close() {
	p.mu.Lock()
	if p.state == StateClosed {
		p.mu.Unlock()
		return
	}
	after := p.closeLocked()
	p.mu.Unlock()
	p.runAfter(after)
	p.notify()
}

// HandleEscape closes the panel when its close hooks are attached. After a
// close the hooks are gone, so a second Escape has no effect.
func (p *Panel) HandleEscape() bool {
	p.mu.Lock()
	attached := p.hooksAttached
	p.mu.Unlock()
	if !attached {
		return false
	}
	p.Close()
	return true
}

// HandleBackdropClick closes the panel on a click outside it, same contract
// as HandleEscape.
func (p *Panel) HandleBackdropClick() bool {
	return p.HandleEscape()
}

// closeLocked resets the panel state and returns the callbacks to run after
// the lock is released. Bumping callSeq turns any in-flight completion into
// a no-op.
func (p *Panel) closeLocked() []func() {
	p.state = StateClosed
	p.hostname = ""
	p.detail = nil
	p.errMsg = ""
	p.loading = false
	p.callSeq++

	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}

	var after []func()
	if p.hooksAttached {
		p.hooksAttached = false
		if p.onDetach != nil {
			after = append(after, p.onDetach)
		}
	}
	if p.onClose != nil {
		after = append(after, p.onClose)
	}
	return after
}

// fetch runs once the debounce elapses. It re-checks the call id before
// issuing the request and again before applying the result, so completions
// belonging to a superseded open never mutate state.
func (p *Panel) fetch(id uint64, hostname string) {
	p.mu.Lock()
	if id != p.callSeq {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	snapshot, network := p.snapshot, p.network
	p.mu.Unlock()

	detail, err := p.fetcher.NodeDetail(ctx, hostname, snapshot, network)

	p.mu.Lock()
	if id != p.callSeq {
		// Superseded while in flight; result is discarded.
		p.mu.Unlock()
		return
	}
	p.cancel = nil

	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Cancellation is a control-flow signal, not an error state.
			p.mu.Unlock()
			return
		}
		p.log.Warn().Str("hostname", hostname).Err(err).Msg("detail fetch failed")
		p.state = StateError
		p.errMsg = err.Error()
		p.loading = false
		p.detail = nil
		p.mu.Unlock()
		p.notify()
		return
	}

	p.state = StateOpen
	p.detail = detail
	p.loading = false
	p.errMsg = ""
	p.mu.Unlock()
	p.notify()
}

func (p *Panel) runAfter(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

func (p *Panel) notify() {
	if p.onChange != nil {
		p.onChange(p.View())
	}
}

// View is the rendered panel state.
type View struct {
	State    State           `json:"state"`
	IsOpen   bool            `json:"is_open"`
	Hostname string          `json:"hostname,omitempty"`
	Loading  bool            `json:"loading"`
	Error    string          `json:"error,omitempty"`
	Detail   *RenderedDetail `json:"detail,omitempty"`
}

// View snapshots the panel state for clients.
func (p *Panel) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := View{
		State:    p.state,
		IsOpen:   p.state != StateClosed,
		Hostname: p.hostname,
		Loading:  p.loading,
		Error:    p.errMsg,
	}
	if p.detail != nil {
		v.Detail = RenderDetail(p.detail)
	}
	return v
}
