package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck-api/internal/dto"
)

// SubjectSubmissionGraded is the NATS subject graded submissions fan out on.
const SubjectSubmissionGraded = "quiz.submission.graded"

// Notifier publishes domain events for other systems to consume.
type Notifier interface {
	SubmissionGraded(ctx context.Context, submission dto.SubmissionResponse) error
}

type gradedEvent struct {
	EventID    string                 `json:"event_id"`
	Submission dto.SubmissionResponse `json:"submission"`
	SentAt     time.Time              `json:"sent_at"`
}

type natsNotifier struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewNatsNotifier publishes events over NATS. A nil connection yields a
// notifier that drops events, so callers never need to nil-check.
func NewNatsNotifier(conn *nats.Conn, logger zerolog.Logger) Notifier {
	return &natsNotifier{
		conn:   conn,
		logger: logger.With().Str("component", "nats_notifier").Logger(),
	}
}

func (n *natsNotifier) SubmissionGraded(ctx context.Context, submission dto.SubmissionResponse) error {
	if n.conn == nil {
		return nil
	}

	payload, err := json.Marshal(gradedEvent{
		EventID:    uuid.NewString(),
		Submission: submission,
		SentAt:     time.Now(),
	})
	if err != nil {
		return err
	}

	if err := n.conn.Publish(SubjectSubmissionGraded, payload); err != nil {
		return err
	}

	n.logger.Debug().Str("student_id", submission.StudentID).Msg("graded event published")
	return nil
}
