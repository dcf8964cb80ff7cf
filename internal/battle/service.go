package battle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/opquiz/meteor-crash/internal/battle/queue"
	"github.com/opquiz/meteor-crash/internal/question"
	"github.com/opquiz/meteor-crash/pkg/http/ws"
)

// QuestionFetcher supplies the question batch for a new room. Implemented
// by *question.Service.
type QuestionFetcher interface {
	FetchBatch(ctx context.Context, mode string) (question.Batch, error)
}

// Service turns matched pairs into running duel rooms.
type Service struct {
	questions    QuestionFetcher
	registry     *Registry
	sender       Sender
	metrics      *Metrics
	logger       zerolog.Logger
	mode         string
	fetchTimeout time.Duration
	tick         time.Duration
}

// ServiceOptions configures the battle service.
type ServiceOptions struct {
	Mode         string
	FetchTimeout time.Duration
	TickInterval time.Duration
}

func NewService(questions QuestionFetcher, registry *Registry, sender Sender, metrics *Metrics, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.Mode == "" {
		opts.Mode = "meteor"
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 4 * time.Second
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	return &Service{
		questions:    questions,
		registry:     registry,
		sender:       sender,
		metrics:      metrics,
		logger:       logger,
		mode:         opts.Mode,
		fetchTimeout: opts.FetchTimeout,
		tick:         opts.TickInterval,
	}
}

// CreateRoom fetches a question batch and spins up a room for the pair.
// The fetch must succeed before anything is registered or ticked: an empty
// or unreachable question source aborts the match outright and both players
// are told so via room:matched carrying an error and no room id.
func (s *Service) CreateRoom(ctx context.Context, pair queue.Pair) (*Room, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	batch, err := s.questions.FetchBatch(fetchCtx, s.mode)
	if err != nil {
		s.logger.Error().Err(err).Str("mode", s.mode).Msg("question fetch failed, aborting match")
		s.notifyMatched(pair, "", "no questions available")
		return nil, fmt.Errorf("fetch question batch: %w", err)
	}

	room := NewRoom(RoomConfig{
		First:   Identity{ConnID: pair.First.ConnID, Name: pair.First.Name, ExternalID: pair.First.ExternalID},
		Second:  Identity{ConnID: pair.Second.ConnID, Name: pair.Second.Name, ExternalID: pair.Second.ExternalID},
		Batch:   batch.Questions,
		Tick:    s.tick,
		Sender:  s.sender,
		Metrics: s.metrics,
		Logger:  s.logger,
	})

	s.registry.Add(room)
	room.Start()
	s.metrics.battleStarted()

	s.logger.Info().
		Str("room_id", room.ID.String()).
		Str("player_a", pair.First.Name).
		Str("player_b", pair.Second.Name).
		Msg("battle started")

	s.notifyMatched(pair, room.ID.String(), "")
	room.BroadcastState("")
	return room, nil
}

func (s *Service) notifyMatched(pair queue.Pair, roomID, errMsg string) {
	raw, _ := json.Marshal(ws.RoomMatchedPayload{RoomID: roomID, Error: errMsg})
	msg := ws.Message{Type: ws.TypeRoomMatched, Payload: raw}
	for _, e := range []queue.Entry{pair.First, pair.Second} {
		if err := s.sender.SendTo(e.ConnID, msg); err != nil {
			s.logger.Warn().Err(err).Str("conn_id", e.ConnID.String()).Msg("matched notification failed")
		}
	}
}
