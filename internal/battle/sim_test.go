package battle

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opquiz/meteor-crash/pkg/http/ws"
)

func TestNewRoomSeedsOpeningVolley(t *testing.T) {
	room, _, _ := newTestRoom(SideA, time.Second)

	assert.Equal(t, FirstTargetHP, room.player(SideA).HP)
	assert.Equal(t, FirstTargetHP, room.player(SideA).MaxHP)
	assert.Equal(t, SecondTargetHP, room.player(SideB).HP)
	assert.Equal(t, SecondTargetHP, room.player(SideB).MaxHP)

	assert.Len(t, room.meteors, MeteorCount)
	for _, m := range room.meteors {
		assert.Equal(t, SideA, m.Target)
		assert.Equal(t, OpeningTravel, m.Remaining)
		assert.Equal(t, OpeningTravel, m.Limit)
		assert.NotEmpty(t, m.Question.ID)
	}
}

func TestDirectHitPenalizesAndFliesOn(t *testing.T) {
	room, _, _ := newTestRoom(SideA, time.Second)

	// One meteor about to land on A; the others are far away over B so
	// no drain muddies the numbers.
	room.meteors[0].Remaining = time.Second
	room.meteors[0].Limit = CenterTravel
	room.meteors[1].Target = SideB
	room.meteors[1].Remaining = 100 * time.Second
	room.meteors[2].Target = SideB
	room.meteors[2].Remaining = 100 * time.Second
	hitQuestion := room.meteors[0].Question.ID

	out := room.advance(time.Second)

	assert.False(t, out.ended)
	assert.Equal(t, []Side{SideA}, out.hits)
	assert.Equal(t, FirstTargetHP-DirectHitPenalty, room.player(SideA).HP)

	// The missed shot keeps flying toward B on the post-hit countdown,
	// question unchanged.
	m := room.meteors[0]
	assert.Equal(t, SideB, m.Target)
	assert.Equal(t, CenterTravel, m.Remaining)
	assert.Equal(t, CenterTravel, m.Limit)
	assert.Equal(t, hitQuestion, m.Question.ID)
}

func TestDirectHitFiresExactlyOnce(t *testing.T) {
	room, _, _ := newTestRoom(SideA, time.Second)

	room.meteors[0].Remaining = time.Second
	room.meteors[1].Target = SideB
	room.meteors[1].Remaining = 100 * time.Second
	room.meteors[2].Target = SideB
	room.meteors[2].Remaining = 100 * time.Second

	out := room.advance(time.Second)
	require.Equal(t, []Side{SideA}, out.hits)
	hpAfterHit := room.player(SideA).HP

	// The reload gives the meteor a positive countdown, so the next tick
	// must not hit A again.
	out = room.advance(time.Second)
	assert.Empty(t, out.hits)
	assert.Equal(t, hpAfterHit, room.player(SideA).HP)
}

func TestFullVolleyDrainThenTripleHit(t *testing.T) {
	room, _, _ := newTestRoom(SideA, time.Second)

	// 44 ticks: all three meteors bear down on A, so A bleeds one tick
	// of drain per tick while the countdowns run.
	for i := 0; i < 44; i++ {
		out := room.advance(time.Second)
		require.False(t, out.ended, "tick %d", i)
		require.Empty(t, out.hits, "tick %d", i)
	}
	assert.Equal(t, FirstTargetHP-44*time.Second, room.player(SideA).HP)

	// Tick 45: all three land at once; afterwards they all fly toward B
	// so A takes no drain this tick.
	out := room.advance(time.Second)
	assert.False(t, out.ended)
	assert.Len(t, out.hits, 3)
	assert.Equal(t, FirstTargetHP-44*time.Second-3*DirectHitPenalty, room.player(SideA).HP)
	for _, m := range room.meteors {
		assert.Equal(t, SideB, m.Target)
		assert.Equal(t, CenterTravel, m.Remaining)
	}
}

func TestMultiTargetDrain(t *testing.T) {
	// Scenario: two meteors over B, B almost out of time, 250ms ticks.
	room, _, _ := newTestRoom(SideA, 250*time.Millisecond)

	room.meteors[0].Target = SideB
	room.meteors[0].Remaining = 100 * time.Second
	room.meteors[1].Target = SideB
	room.meteors[1].Remaining = 100 * time.Second
	room.meteors[2].Target = SideA
	room.meteors[2].Remaining = 100 * time.Second
	room.player(SideB).HP = 1200 * time.Millisecond

	out := room.advance(250 * time.Millisecond)

	assert.False(t, out.ended)
	assert.Equal(t, 950*time.Millisecond, room.player(SideB).HP)

	// A single meteor never drains.
	assert.Equal(t, FirstTargetHP, room.player(SideA).HP)
}

func TestDrainToZeroEndsMatch(t *testing.T) {
	room, _, _ := newTestRoom(SideA, 250*time.Millisecond)

	room.meteors[0].Target = SideB
	room.meteors[0].Remaining = 100 * time.Second
	room.meteors[1].Target = SideB
	room.meteors[1].Remaining = 100 * time.Second
	room.meteors[2].Target = SideA
	room.meteors[2].Remaining = 100 * time.Second
	room.player(SideB).HP = 250 * time.Millisecond

	out := room.advance(250 * time.Millisecond)

	require.True(t, out.ended)
	require.NotNil(t, out.winner)
	assert.Equal(t, SideA, *out.winner)
	assert.Equal(t, time.Duration(0), room.player(SideB).HP)
}

func TestDirectHitKnockoutAbortsTick(t *testing.T) {
	room, _, _ := newTestRoom(SideA, time.Second)

	room.player(SideA).HP = 20 * time.Second
	room.meteors[0].Remaining = time.Second
	room.meteors[1].Remaining = 100 * time.Second
	room.meteors[2].Remaining = 100 * time.Second

	out := room.advance(time.Second)

	require.True(t, out.ended)
	require.NotNil(t, out.winner)
	assert.Equal(t, SideB, *out.winner)
	assert.Equal(t, time.Duration(0), room.player(SideA).HP)

	// The lethal meteor is not reloaded: the tick aborted at the knockout.
	assert.Equal(t, SideA, room.meteors[0].Target)
}

func TestSimultaneousKnockoutIsDraw(t *testing.T) {
	room, sender, conns := newTestRoom(SideA, time.Second)

	room.player(SideA).HP = 20 * time.Second
	room.player(SideB).HP = 25 * time.Second
	room.meteors[0].Remaining = time.Second
	room.meteors[1].Target = SideB
	room.meteors[1].Remaining = time.Second
	room.meteors[2].Remaining = 100 * time.Second

	room.handleTick()

	assert.Equal(t, PhaseEnded, room.Phase())
	assert.Nil(t, room.Winner())

	// The tick loop is stopped before the terminal broadcast.
	select {
	case <-room.done:
	default:
		t.Fatal("tick loop still armed after match end")
	}

	last, ok := sender.lastFor(conns.a)
	require.True(t, ok)
	assert.Equal(t, ws.TypeRoomEnded, last.Type)

	var payload ws.RoomStatePayload
	require.NoError(t, json.Unmarshal(last.Payload, &payload))
	assert.Equal(t, "ended", payload.Phase)
	assert.Nil(t, payload.WinnerSide)
}

func TestEndedRoomIgnoresFurtherTicks(t *testing.T) {
	room, sender, conns := newTestRoom(SideA, time.Second)

	room.player(SideA).HP = 10 * time.Second
	room.meteors[0].Remaining = time.Second
	room.meteors[1].Remaining = 100 * time.Second
	room.meteors[2].Remaining = 100 * time.Second

	room.handleTick()
	require.Equal(t, PhaseEnded, room.Phase())
	sentBefore := len(sender.messagesFor(conns.a))

	room.handleTick()
	assert.Equal(t, sentBefore, len(sender.messagesFor(conns.a)), "no broadcast after ended")
}

func TestInvariantsHoldAcrossManyTicks(t *testing.T) {
	room, _, _ := newTestRoom(SideB, time.Second)

	ids := map[string]bool{}
	for _, m := range room.meteors {
		ids[m.ID.String()] = true
	}

	for i := 0; i < 500; i++ {
		out := room.advance(time.Second)

		assert.Len(t, room.meteors, MeteorCount)
		for _, m := range room.meteors {
			assert.True(t, ids[m.ID.String()], "meteor identity must survive retargeting")
		}
		for _, side := range []Side{SideA, SideB} {
			p := room.player(side)
			assert.GreaterOrEqual(t, p.HP, time.Duration(0))
			assert.LessOrEqual(t, p.HP, p.MaxHP)
		}
		if out.ended {
			return
		}
	}
	t.Fatal("expected an unanswered match to end within 500 ticks")
}

func TestTickBroadcastCarriesPersonalizedSide(t *testing.T) {
	room, sender, conns := newTestRoom(SideA, time.Second)

	room.handleTick()

	lastA, ok := sender.lastFor(conns.a)
	require.True(t, ok)
	lastB, ok := sender.lastFor(conns.b)
	require.True(t, ok)

	var payloadA, payloadB ws.RoomStatePayload
	require.NoError(t, json.Unmarshal(lastA.Payload, &payloadA))
	require.NoError(t, json.Unmarshal(lastB.Payload, &payloadB))

	assert.Equal(t, ws.TypeRoomState, lastA.Type)
	assert.Equal(t, "A", payloadA.YouSide)
	assert.Equal(t, "B", payloadB.YouSide)
	assert.Equal(t, payloadA.RoomID, payloadB.RoomID)
	assert.Equal(t, FirstTargetHP.Milliseconds(), payloadA.MaxHPMs)

	// Answer text never rides along; question text is visible to both.
	require.Len(t, payloadA.Meteors, MeteorCount)
	for _, m := range payloadA.Meteors {
		assert.NotEmpty(t, m.Text)
	}
}
