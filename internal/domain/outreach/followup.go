package outreach

import "time"

// CadencePolicy is the slice of athlete settings the follow-up derivation
// needs.
type CadencePolicy struct {
	MaxFollowups         int
	DaysBetweenFollowups int
}

// NextStep is the outcome of a follow-up derivation: the email type that
// should be created next for a coach, and whether it is due yet.
type NextStep struct {
	Type EmailType
	Due  bool
}

// NextFollowUp computes the next due follow-up for one (athlete, coach)
// pair from its full outreach history. It is a pure function of the history,
// the policy, and the clock, so the sweep that acts on it stays trivially
// idempotent: running it twice on unchanged history yields the same answer,
// and the caller creates a record only when none of that sequence exists.
//
// Rules:
//   - no sent intro yet, or any in-flight record: nothing to derive
//   - any reply ends the cadence for this coach
//   - the next sequence number is one past the highest follow-up already
//     created (sent or in flight), capped by MaxFollowups
//   - the step is due once the latest sent record is at least
//     DaysBetweenFollowups old
func NextFollowUp(history []*Record, policy CadencePolicy, now time.Time) NextStep {
	var latestSent *Record
	highestSeq := 0
	introSent := false

	for _, r := range history {
		if r.Status.InFlight() {
			return NextStep{}
		}
		if r.Replied {
			return NextStep{}
		}
		if r.Status != StatusSent {
			continue
		}
		if r.EmailType == TypeIntro {
			introSent = true
		}
		if seq := r.EmailType.Sequence(); seq > highestSeq {
			highestSeq = seq
		}
		// Only records with a real sent_at can anchor the cadence clock.
		if r.SentAt.Valid && (latestSent == nil || r.SentAt.Time.After(latestSent.SentAt.Time)) {
			latestSent = r
		}
	}

	if !introSent || latestSent == nil {
		return NextStep{}
	}
	if highestSeq >= policy.MaxFollowups {
		return NextStep{}
	}

	next, ok := FollowupType(highestSeq + 1)
	if !ok {
		return NextStep{}
	}

	age := now.Sub(latestSent.SentAt.Time)
	due := age >= time.Duration(policy.DaysBetweenFollowups)*24*time.Hour
	return NextStep{Type: next, Due: due}
}

// NextStage returns the email type a fresh send to this coach should use,
// given the coach's sent history: intro when nothing has gone out, otherwise
// the next follow-up in sequence, or "" when the cadence is exhausted or
// the coach replied.
func NextStage(history []*Record, maxFollowups int) EmailType {
	highestSeq := 0
	introSent := false
	for _, r := range history {
		if r.Replied {
			return ""
		}
		if r.Status != StatusSent {
			continue
		}
		if r.EmailType == TypeIntro {
			introSent = true
		}
		if seq := r.EmailType.Sequence(); seq > highestSeq {
			highestSeq = seq
		}
	}
	if !introSent && highestSeq == 0 {
		return TypeIntro
	}
	if highestSeq >= maxFollowups {
		return ""
	}
	next, ok := FollowupType(highestSeq + 1)
	if !ok {
		return ""
	}
	return next
}
