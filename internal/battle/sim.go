package battle

import "time"

// tickOutcome summarizes one simulation step so the caller can decide what
// to broadcast. The step itself never touches timers or sockets.
type tickOutcome struct {
	hits   []Side
	ended  bool
	winner *Side // nil with ended=true means a draw
}

// advance runs one simulation step of the given length. Callers hold r.mu.
//
// Order per step: age every meteor, resolve direct hits, reload the hit
// meteors toward the other slot, then apply multi-target drain. Knockouts
// are evaluated over both slots at once so a double knockout in the same
// step is a draw rather than whichever slot happened to be checked first.
func (r *Room) advance(tick time.Duration) tickOutcome {
	var out tickOutcome
	if r.phase != PhasePlaying {
		return out
	}

	for _, m := range r.meteors {
		m.Remaining -= tick
	}

	// Direct hits. All penalties land before any knockout check.
	var expired []*Meteor
	for _, m := range r.meteors {
		if m.Remaining > 0 {
			continue
		}
		expired = append(expired, m)
		p := r.player(m.Target)
		p.HP -= DirectHitPenalty
		if p.HP < 0 {
			p.HP = 0
		}
		out.hits = append(out.hits, m.Target)
	}

	if ended, winner := r.knockout(); ended {
		out.ended, out.winner = true, winner
		return out
	}

	// A missed shot keeps flying past the defender toward the other
	// side, keeping its question but on a fresh countdown.
	for _, m := range expired {
		m.Target = m.Target.Opponent()
		m.Remaining = CenterTravel
		m.Limit = CenterTravel
	}

	// Multi-target drain: a slot under fire from 2+ meteors bleeds one
	// tick's worth of extra time, regardless of whether it is 2 or 3.
	var targeted [2]int
	for _, m := range r.meteors {
		targeted[m.Target]++
	}
	for _, side := range []Side{SideA, SideB} {
		if targeted[side] < 2 {
			continue
		}
		p := r.player(side)
		p.HP -= tick
		if p.HP < 0 {
			p.HP = 0
		}
	}

	if ended, winner := r.knockout(); ended {
		out.ended, out.winner = true, winner
	}
	return out
}

// knockout reports whether the match is over and who won. Both slots down
// in the same evaluation is a draw (nil winner).
func (r *Room) knockout() (bool, *Side) {
	aDown := r.player(SideA).HP <= 0
	bDown := r.player(SideB).HP <= 0
	switch {
	case aDown && bDown:
		return true, nil
	case aDown:
		w := SideB
		return true, &w
	case bDown:
		w := SideA
		return true, &w
	}
	return false, nil
}
