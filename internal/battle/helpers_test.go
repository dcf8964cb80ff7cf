package battle

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/opquiz/meteor-crash/internal/question"
	"github.com/opquiz/meteor-crash/pkg/http/ws"
)

// fakeSender captures outbound messages per connection.
type fakeSender struct {
	mu   sync.Mutex
	sent map[uuid.UUID][]ws.Message
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(map[uuid.UUID][]ws.Message)}
}

func (f *fakeSender) SendTo(connID uuid.UUID, msg ws.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[connID] = append(f.sent[connID], msg)
	return nil
}

func (f *fakeSender) messagesFor(connID uuid.UUID) []ws.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ws.Message, len(f.sent[connID]))
	copy(out, f.sent[connID])
	return out
}

func (f *fakeSender) lastFor(connID uuid.UUID) (ws.Message, bool) {
	msgs := f.messagesFor(connID)
	if len(msgs) == 0 {
		return ws.Message{}, false
	}
	return msgs[len(msgs)-1], true
}

func testBatch() []question.Question {
	return []question.Question{
		{ID: "q-luffy", Text: "Who ate the Gomu Gomu no Mi?", AnswerText: "Luffy", AltAnswers: []string{"Monkey D. Luffy"}},
		{ID: "q-zoro", Text: "Who uses three swords?", AnswerText: "Zoro", AltAnswers: []string{"Roronoa Zoro"}},
		{ID: "q-nami", Text: "Who is the navigator?", AnswerText: "Nami"},
		{ID: "q-going-merry", Text: "Name of the first ship?", AnswerText: "Going Merry"},
	}
}

type testConns struct {
	a uuid.UUID
	b uuid.UUID
}

// newTestRoom builds a room with a pinned first target and no running tick
// loop; tests drive the simulation by hand.
func newTestRoom(firstTarget Side, tick time.Duration) (*Room, *fakeSender, testConns) {
	sender := newFakeSender()
	conns := testConns{a: uuid.New(), b: uuid.New()}
	extA := int64(101)

	room := NewRoom(RoomConfig{
		First:       Identity{ConnID: conns.a, Name: "Zoro", ExternalID: &extA},
		Second:      Identity{ConnID: conns.b, Name: "Sanji"},
		Batch:       testBatch(),
		Tick:        tick,
		Rand:        rand.New(rand.NewSource(42)),
		Sender:      sender,
		Logger:      zerolog.Nop(),
		FirstTarget: &firstTarget,
	})
	return room, sender, conns
}
