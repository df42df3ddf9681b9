package filter

import (
	"regexp"
	"sync"

	"firestige.xyz/sipcore/internal/core"
	"firestige.xyz/sipcore/internal/dialog"
)

// expr is one compiled field filter: a field selector's compiled pattern
// plus its invert flag.
type expr struct {
	pattern *regexp.Regexp
	invert  bool
}

// Engine compiles and evaluates per-field filters and memoizes the
// resulting verdict on each Call. SetFilter holds the engine's own lock
// for the duration of the swap, and old compiled patterns are only
// released once no evaluation can observe them mid-match.
type Engine struct {
	mu      sync.RWMutex
	filters map[Field]expr
}

// NewEngine returns an Engine with no filters set; every call passes.
func NewEngine() *Engine {
	return &Engine{filters: make(map[Field]expr)}
}

// SetFilter compiles expr for field and installs it, replacing any prior
// filter on that field. Passing an empty pattern clears the field's
// filter. On a bad pattern the engine's prior state is left unchanged
// and core.ErrInvalidPattern is returned.
func (e *Engine) SetFilter(field Field, pattern string, invert, caseInsensitive bool) error {
	if pattern == "" {
		e.mu.Lock()
		delete(e.filters, field)
		e.mu.Unlock()
		return nil
	}
	p := pattern
	if caseInsensitive {
		p = "(?i)" + p
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return core.ErrInvalidPattern
	}
	e.mu.Lock()
	e.filters[field] = expr{pattern: re, invert: invert}
	e.mu.Unlock()
	return nil
}

// Clear removes every filter (all calls pass until new filters are set).
func (e *Engine) Clear() {
	e.mu.Lock()
	e.filters = make(map[Field]expr)
	e.mu.Unlock()
}

// Evaluate returns call's filter verdict, using the cached value unless
// it is VerdictUnknown, in which case it recomputes and caches the
// result.
func (e *Engine) Evaluate(call *dialog.Call) dialog.Verdict {
	if v := call.FilterVerdict; v != dialog.VerdictUnknown {
		return v
	}
	v := e.evaluateFresh(call)
	call.FilterVerdict = v
	return v
}

func (e *Engine) evaluateFresh(call *dialog.Call) dialog.Verdict {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for field, x := range e.filters {
		if field == FieldPayload {
			if !e.matchesAnyMessage(call, x) {
				return dialog.VerdictReject
			}
			continue
		}
		value := dialog.GetAttribute(call, fieldAttr(field))
		if x.pattern.MatchString(value) == x.invert {
			return dialog.VerdictReject
		}
	}
	return dialog.VerdictPass
}

// matchesAnyMessage implements the PAYLOAD selector's OR-over-messages
// rule: the call matches if at least one message's body matches. A
// message with no body (Content-Length: 0 or absent) never matches,
// regardless of pattern; the selector inspects the SDP/body payload,
// never the header block.
func (e *Engine) matchesAnyMessage(call *dialog.Call, x expr) bool {
	for _, m := range call.Messages {
		_ = m.Parse()
		if len(m.Body) == 0 {
			continue
		}
		matched := x.pattern.Match(m.Body)
		if matched != x.invert {
			return true
		}
	}
	return false
}

func fieldAttr(f Field) dialog.AttrID {
	switch f {
	case FieldFrom:
		return dialog.AttrFrom
	case FieldTo:
		return dialog.AttrTo
	case FieldSource:
		return dialog.AttrSrc
	case FieldDestination:
		return dialog.AttrDst
	case FieldMethod:
		return dialog.AttrMethod
	case FieldCallListLine:
		return dialog.AttrCallListLine
	default:
		return dialog.AttrUnknown
	}
}
