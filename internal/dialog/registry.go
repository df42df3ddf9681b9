package dialog

import (
	"regexp"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"firestige.xyz/sipcore/internal/core"
	"firestige.xyz/sipcore/internal/log"
	"firestige.xyz/sipcore/internal/sdp"
	"firestige.xyz/sipcore/internal/sip"
)

// CaptureOpts configures how the registry admits and retains calls.
type CaptureOpts struct {
	Limit   uint32
	Rotate  bool
	RTP     bool
	OutFile string
	Idle    time.Duration
}

// MatchOpts configures the admission policy applied to brand-new calls.
type MatchOpts struct {
	Invite  bool
	Complete bool
	MExpr   string
	MInvert bool
	MICase  bool
}

// Stats is the result of Registry.Stats.
type Stats struct {
	Total     int
	Displayed int
}

// Registry owns every Call: the by-Call-ID map, the creation-ordered
// `all` sequence, the active-call set, and the admission/rotation policy
// that gates new calls. A single RWMutex implements a single-writer,
// many-readers model: CheckPacket and every other operation that mutates
// registry state (SetMatch, SetSort, Remove, Clear, SoftClear, HasChanged,
// InvalidateVerdicts) take the write lock; lookups, snapshots and Stats
// take a read lock for the duration of their traversal.
type Registry struct {
	mu sync.RWMutex

	byCallID map[string]*Call
	all      []*Call
	active   *cache.Cache

	lastIndex uint64
	changed   bool

	capture CaptureOpts
	match   MatchOpts
	mexprRe *regexp.Regexp
	sort    SortOpts

	dropped uint64

	logger log.Logger
}

// NewRegistry commits capture, match and sort options atomically,
// compiling match.MExpr if set. It returns core.ErrInvalidPattern without
// mutating any prior state if the pattern fails to compile.
func NewRegistry(capture CaptureOpts, match MatchOpts, sortOpts SortOpts) (*Registry, error) {
	re, err := compileMExpr(match)
	if err != nil {
		return nil, err
	}
	idle := capture.Idle
	if idle <= 0 {
		idle = 30 * time.Second
	}
	r := &Registry{
		byCallID: make(map[string]*Call),
		capture:  capture,
		match:    match,
		mexprRe:  re,
		sort:     sortOpts,
		logger:   log.GetLogger(),
	}
	r.active = cache.New(idle, idle/2+time.Second)
	return r, nil
}

func compileMExpr(match MatchOpts) (*regexp.Regexp, error) {
	if match.MExpr == "" {
		return nil, nil
	}
	pattern := match.MExpr
	if match.MICase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, core.ErrInvalidPattern
	}
	return re, nil
}

// SetMatch recompiles the admission match options. On a bad pattern the
// prior match options and compiled pattern are left untouched.
func (r *Registry) SetMatch(match MatchOpts) error {
	re, err := compileMExpr(match)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.match = match
	r.mexprRe = re
	return nil
}

// CheckPacket admits msg into an existing or new call, applying
// admission and rotation policy. It returns the call the message was
// appended to, or nil if the message was dropped.
func (r *Registry) CheckPacket(msg *sip.Message) *Call {
	// Call-ID is extracted cheaply first, before the lock is taken. The
	// full header parse happens under the lock: explicitly to evaluate
	// admission for a brand new call or to attach RTP streams, and
	// implicitly when appendMessage feeds the message to the dialog state
	// machine (which reads its start line).
	callID := sip.QuickCallID(msg.Raw)
	if callID == "" {
		r.countDrop()
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if call, ok := r.byCallID[callID]; ok {
		if r.capture.RTP {
			if err := msg.Parse(); err != nil {
				r.countDrop()
				return nil
			}
			r.attachStreams(call, msg)
		}
		call.appendMessage(msg)
		r.touchActive(call)
		r.changed = true
		return call
	}

	if err := msg.Parse(); err != nil {
		r.countDrop()
		return nil
	}

	if !r.admits(msg) {
		r.countDrop()
		return nil
	}

	if len(r.all) >= int(r.capture.Limit) {
		if !r.capture.Rotate || !r.evictOldest() {
			r.countDrop()
			return nil
		}
	}

	r.lastIndex++
	call := newCall(callID, r.lastIndex)
	call.appendMessage(msg)
	r.byCallID[callID] = call
	r.all = append(r.all, call)
	r.touchActive(call)
	r.changed = true
	if r.capture.RTP {
		r.attachStreams(call, msg)
	}

	r.linkXCallID(call, msg.XCallID)
	r.resolvePendingBackrefs(call)

	return call
}

func (r *Registry) admits(msg *sip.Message) bool {
	if r.match.Invite && msg.Method != sip.MethodInvite {
		return false
	}
	if r.match.Complete && msg.ToTag {
		return false
	}
	if r.mexprRe != nil {
		matched := r.mexprRe.Match(msg.Raw)
		want := !r.match.MInvert
		if matched != want {
			return false
		}
	}
	return true
}

func (r *Registry) attachStreams(call *Call, msg *sip.Message) {
	if !sdp.HasSDPBody("", msg.Body) {
		return
	}
	descriptors := sdp.Parse(msg.Body)
	if msg.IsResponse() {
		call.pairMediaStreams(descriptors, msg.Arrival)
		return
	}
	call.setOfferDescriptors(descriptors)
}

// linkXCallID resolves call's X-Call-ID against the by-Call-ID map,
// storing a back-reference if the target already exists or the literal
// string otherwise.
func (r *Registry) linkXCallID(call *Call, xCallID string) {
	if xCallID == "" {
		return
	}
	if target, ok := r.byCallID[xCallID]; ok {
		call.XCallIDRef = target
	} else {
		call.XCallIDLiteral = xCallID
	}
}

// resolvePendingBackrefs fixes up any existing call whose X-Call-ID was
// stored as a literal string naming the call just created (late
// resolution of a forward X-Call-ID reference).
func (r *Registry) resolvePendingBackrefs(newCall *Call) {
	for _, c := range r.all {
		if c != newCall && c.XCallIDRef == nil && c.XCallIDLiteral == newCall.CallID {
			c.XCallIDRef = newCall
			c.XCallIDLiteral = ""
		}
	}
}

func (r *Registry) touchActive(call *Call) {
	if call.Terminated() {
		r.active.Delete(call.CallID)
		return
	}
	r.active.SetDefault(call.CallID, call)
}

func (r *Registry) countDrop() {
	r.dropped++
	r.logger.WithField("dropped_total", r.dropped).Debug("sipcore: packet dropped")
}

// evictOldest removes the oldest non-locked call to make room for a new
// one. It invalidates any X-Call-ID back-pointer to the evicted call. It
// reports false, removing nothing, when every call is locked.
func (r *Registry) evictOldest() bool {
	idx := -1
	for i, c := range r.all {
		if !c.Locked {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	victim := r.all[idx]
	r.logger.WithField("call_id", victim.CallID).Info("sipcore: evicting oldest call for rotation")
	r.removeAt(idx, victim)
	return true
}

func (r *Registry) removeAt(idx int, victim *Call) {
	r.all = append(r.all[:idx], r.all[idx+1:]...)
	delete(r.byCallID, victim.CallID)
	r.active.Delete(victim.CallID)
	for _, c := range r.all {
		if c.XCallIDRef == victim {
			c.XCallIDRef = nil
			c.XCallIDLiteral = victim.CallID
		}
	}
	r.changed = true
}

// Remove destroys a call by Call-ID (explicit removal). It is a no-op if
// the call does not exist.
func (r *Registry) Remove(callID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.all {
		if c.CallID == callID {
			r.removeAt(i, c)
			return
		}
	}
}

// Clear destroys every call.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCallID = make(map[string]*Call)
	r.all = nil
	r.active.Flush()
	r.changed = true
}

// SoftClear destroys every call for which keep returns false, leaving
// matching calls in place. keep is typically the filter engine's
// per-call evaluation.
func (r *Registry) SoftClear(keep func(*Call) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.all[:0]
	newByCallID := make(map[string]*Call, len(r.byCallID))
	for _, c := range r.all {
		if keep(c) {
			kept = append(kept, c)
			newByCallID[c.CallID] = c
		} else {
			r.active.Delete(c.CallID)
		}
	}
	r.all = kept
	r.byCallID = newByCallID
	r.changed = true
}

// FindByCallID is an O(1) map lookup by Call-ID.
func (r *Registry) FindByCallID(callID string) *Call {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byCallID[callID]
}

// FindByIndex looks up a call by position in the creation-ordered `all`
// sequence.
func (r *Registry) FindByIndex(i int) *Call {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.all) {
		return nil
	}
	return r.all[i]
}

// All returns a snapshot of the creation-ordered call sequence.
func (r *Registry) All() []*Call {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Call, len(r.all))
	copy(out, r.all)
	return out
}

// Active returns a snapshot of the active-call set, ordered by creation
// index for determinism; go-cache's own iteration order is unspecified.
func (r *Registry) Active() []*Call {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.active.Items()
	out := make([]*Call, 0, len(items))
	for _, item := range items {
		if c, ok := item.Object.(*Call); ok {
			out = append(out, c)
		}
	}
	sortByIndex(out)
	return out
}

func sortByIndex(calls []*Call) {
	for i := 1; i < len(calls); i++ {
		for j := i; j > 0 && calls[j-1].Index > calls[j].Index; j-- {
			calls[j-1], calls[j] = calls[j], calls[j-1]
		}
	}
}

// Stats reports the total call count and the number currently displayed:
// Displayed counts calls whose cached verdict is VerdictPass; it does
// not evaluate VerdictUnknown calls.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Stats{Total: len(r.all)}
	for _, c := range r.all {
		if c.FilterVerdict == VerdictPass {
			s.Displayed++
		}
	}
	return s
}

// HasChanged returns and atomically clears the change flag.
func (r *Registry) HasChanged() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.changed
	r.changed = false
	return v
}

// InvalidateVerdicts resets every call's cached filter verdict to
// VerdictUnknown, called whenever a filter expression changes.
func (r *Registry) InvalidateVerdicts() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.all {
		c.FilterVerdict = VerdictUnknown
	}
}

// Dropped returns the internal dropped-packet counter (messages with no
// Call-ID, parse errors, admission-policy rejections and capacity-reached
// rejections; never surfaced as an error).
func (r *Registry) Dropped() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dropped
}
