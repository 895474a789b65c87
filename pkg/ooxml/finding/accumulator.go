package finding

// Accumulator is a single-owner, append-only buffer of findings with a
// configurable cap. It is not safe for concurrent use; a caller that
// parallelizes across parts gives each worker its own Accumulator and
// merges them in part order (see spec §5).
type Accumulator struct {
	max       int
	findings  []Finding
	truncated bool
	closed    bool
}

// NewAccumulator creates an Accumulator capped at max findings. A max of
// zero or less means unlimited.
func NewAccumulator(max int) *Accumulator {
	return &Accumulator{max: max}
}

// Append adds a finding if the cap has not been reached. It returns
// false once the cap is reached (or was already reached), signaling the
// caller to stop traversal at the next element boundary. Once truncated,
// further findings are silently dropped until Close records the
// truncation notice.
//
// Reaching the cap exactly (rather than only overflowing it) also sets
// the truncated flag: a caller stops traversing as soon as Append
// returns false, so the accumulator can never actually observe whether
// more findings were waiting beyond the one that filled the last slot.
// Reporting "possibly truncated" at the boundary is the conservative
// choice.
func (a *Accumulator) Append(f Finding) bool {
	if a.closed {
		return false
	}
	if a.max > 0 && len(a.findings) >= a.max {
		a.truncated = true
		return false
	}
	a.findings = append(a.findings, f)
	if a.max > 0 && len(a.findings) >= a.max {
		a.truncated = true
	}
	return a.max <= 0 || len(a.findings) < a.max
}

// Full reports whether the cap has been reached; callers can check this
// between top-level phases without trying an Append first.
func (a *Accumulator) Full() bool {
	return a.max > 0 && len(a.findings) >= a.max
}

// Truncated reports whether the cap was ever reached, i.e. whether
// Close will append a truncation notice. Safe to call before Close.
func (a *Accumulator) Truncated() bool {
	return a.truncated
}

// Merge appends another accumulator's findings in order, respecting
// this accumulator's cap. Used to combine per-part sub-accumulators
// from a parallel implementation back into document order.
func (a *Accumulator) Merge(other *Accumulator) {
	for _, f := range other.findings {
		if !a.Append(f) {
			return
		}
	}
}

// Close finalizes the accumulator, appending a truncation notice if the
// cap was hit. Safe to call multiple times.
func (a *Accumulator) Close() []Finding {
	if !a.closed {
		a.closed = true
		if a.truncated {
			a.findings = append(a.findings, Finding{
				Category:    CategoryPackage,
				Severity:    SeverityInfo,
				Description: "additional findings were truncated by the configured max_errors cap",
				PartURI:     "/",
			})
		}
	}
	return a.findings
}

// Findings returns the findings accumulated so far without closing.
func (a *Accumulator) Findings() []Finding {
	return a.findings
}

// Len returns the number of findings accumulated so far (excluding any
// truncation notice, which is only added by Close).
func (a *Accumulator) Len() int {
	return len(a.findings)
}
