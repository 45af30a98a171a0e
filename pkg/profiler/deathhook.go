package profiler

import "github.com/intprof/intprof/pkg/host"

// deadCode is the snapshot of code records destroyed while a session was
// sampling, keyed by record id. Like the fixed trace storage it lives for
// the process lifetime: it is only written under the host lock, and it is
// cleared, never freed, between sessions.
var deadCode map[host.CodeID]host.FuncLoc

// codeDeathHook wraps the host's code record destructor so that a record
// still referenced from a pending sample can be resolved after the host has
// destroyed it and possibly reused its id.
//
// If two records occupy the same id at different times within one session,
// the snapshot of the first shadows the live second. Invalidating stale
// entries would require hooking record allocation as well.
type codeDeathHook struct {
	codes     *host.CodeRegistry
	prev      host.DestroyFunc
	installed bool
}

func newCodeDeathHook(codes *host.CodeRegistry) *codeDeathHook {
	return &codeDeathHook{codes: codes}
}

// reset clears the snapshot, allocating it on first ever use. Must be called
// with the host lock held.
func (h *codeDeathHook) reset() {
	if deadCode == nil {
		deadCode = make(map[host.CodeID]host.FuncLoc)

		return
	}
	clear(deadCode)
}

// install swaps the registry's destructor for the recording wrapper. Must be
// called with the host lock held. Idempotent within a session.
func (h *codeDeathHook) install() {
	if h.installed {
		return
	}
	h.prev = h.codes.SwapDestroy(h.record)
	h.installed = true
}

// uninstall restores the original destructor. Must be called with the host
// lock held.
func (h *codeDeathHook) uninstall() {
	if !h.installed {
		return
	}
	h.codes.SwapDestroy(h.prev)
	h.prev = nil
	h.installed = false
}

// record snapshots the record's identity before delegating to the original
// destructor.
func (h *codeDeathHook) record(rec *host.CodeRecord) {
	deadCode[rec.ID] = host.FuncLoc{Name: rec.Name, Filename: rec.Filename}
	h.prev(rec)
}

// resolve returns the snapshot taken when the record was destroyed.
func (h *codeDeathHook) resolve(id host.CodeID) (host.FuncLoc, bool) {
	loc, ok := deadCode[id]

	return loc, ok
}
