package battle

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/opquiz/meteor-crash/pkg/http/ws"
)

// SubmitAnswer resolves a free-text answer against the meteors currently
// flying at the submitter's slot. A wrong answer only produces a cosmetic
// miss message; a duplicate inside the cooldown window is dropped outright.
func (r *Room) SubmitAnswer(connID uuid.UUID, text string, now time.Time) {
	r.mu.Lock()

	if r.phase != PhasePlaying {
		r.mu.Unlock()
		return
	}
	side, bound := r.conns[connID]
	if !bound {
		r.mu.Unlock()
		return
	}

	if last, ok := r.lastAnswer[connID]; ok && now.Sub(last) < AnswerCooldown {
		r.mu.Unlock()
		return
	}
	r.lastAnswer[connID] = now

	normalized := normalizeAnswer(text)

	var returned *Meteor
	for _, m := range r.meteors {
		if m.Target != side {
			continue
		}
		if matchesAnswer(normalized, m) {
			returned = m
			break
		}
	}

	var msgs []outbound
	if returned == nil {
		r.metrics.answerMissed()
		msgs = r.snapshotLocked(ws.TypeRoomState, fmt.Sprintf("%s missed", r.player(side).Name))
		r.mu.Unlock()
		r.deliver(msgs)
		return
	}

	// A fast answer leaves the consumed time on the clock: the opponent
	// gets the full trip minus whatever the answerer already burned.
	consumed := returned.Limit - returned.Remaining
	limit := ShipToShipTravel - consumed
	if limit < MinReturnTravel {
		limit = MinReturnTravel
	}

	returned.Target = side.Opponent()
	returned.Limit = limit
	returned.Remaining = limit
	returned.Question = r.drawQuestion()

	r.metrics.answerCorrect()
	r.logger.Info().
		Str("meteor_id", returned.ID.String()).
		Str("from", side.String()).
		Dur("limit", limit).
		Msg("meteor returned")

	msgs = r.snapshotLocked(ws.TypeRoomState, fmt.Sprintf("%s returned a meteor", r.player(side).Name))
	r.mu.Unlock()
	r.deliver(msgs)
}

func matchesAnswer(normalized string, m *Meteor) bool {
	if normalized == "" {
		return false
	}
	if normalizeAnswer(m.Question.AnswerText) == normalized {
		return true
	}
	for _, alt := range m.Question.AltAnswers {
		if normalizeAnswer(alt) == normalized {
			return true
		}
	}
	return false
}

// normalizeAnswer strips all whitespace (leading, trailing, internal) and
// case-folds, so "  Monkey D Luffy " matches "monkeydluffy".
func normalizeAnswer(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
