package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prevanet/prevention-server/internal/database"
	"github.com/prevanet/prevention-server/internal/engine"
	"github.com/prevanet/prevention-server/internal/protocol"
	"github.com/prevanet/prevention-server/internal/queue"
)

// Worker consumes daily sample messages, stores them, and runs the AI
// pipeline. The raw sample write is the durable side effect of record:
// pipeline failures are logged and never abort ingestion.
type Worker struct {
	consumer *queue.Consumer
	producer *queue.Producer
	db       *database.DB
	profiles engine.ProfileStore
	engine   *engine.Engine
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewWorker creates a new ingestion worker.
func NewWorker(consumer *queue.Consumer, producer *queue.Producer, db *database.DB, profiles engine.ProfileStore, eng *engine.Engine) *Worker {
	return &Worker{
		consumer: consumer,
		producer: producer,
		db:       db,
		profiles: profiles,
		engine:   eng,
		stopCh:   make(chan struct{}),
	}
}

// Start begins consuming and processing sample messages.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop stops the worker gracefully.
func (w *Worker) Stop() {
	close(w.stopCh)
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return
		default:
		}

		msg, err := w.consumer.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("Failed to consume message")
			continue
		}

		if err := w.processMessage(ctx, msg.Value); err != nil {
			log.Error().Err(err).Msg("Failed to process sample message")
			// Poison or persistently failing messages would wedge the
			// partition; commit and move on, the sample can be resubmitted.
		}

		if err := w.consumer.Commit(ctx, msg); err != nil {
			log.Error().Err(err).Msg("Failed to commit offset")
		}
	}
}

func (w *Worker) processMessage(ctx context.Context, value []byte) error {
	msg, err := protocol.DecodeSampleMessage(value)
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}

	// Invalid input is rejected at the boundary, before the engine sees it.
	if err := msg.Validate(); err != nil {
		log.Warn().Err(err).Str("user_id", msg.UserID).Msg("Rejected invalid sample")
		return nil
	}

	day, err := msg.Day()
	if err != nil {
		return err
	}

	profile, err := w.profiles.Profile(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	// First sample from an unknown user starts a collecting profile with
	// all signals enabled.
	if profile == nil {
		profile = defaultProfile(msg.UserID)
		if err := w.profiles.SaveProfile(ctx, profile); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		log.Info().Str("user_id", msg.UserID).Msg("Created baseline profile")
	}

	sample := &database.DailySample{
		UserID:            msg.UserID,
		Date:              day,
		Steps:             &msg.Steps,
		SleepMinutes:      &msg.SleepMinutes,
		SedentaryMinutes:  &msg.SedentaryMinutes,
		LocationDiversity: &msg.LocationDiversity,
		ActiveMinutes:     &msg.ActiveMinutes,
	}

	inserted, err := w.db.UpsertDailySample(ctx, sample)
	if err != nil {
		return fmt.Errorf("failed to store sample: %w", err)
	}

	// Resubmitted days overwrite the sample but must not inflate the
	// learning window.
	if profile.Status == database.BaselineStatusCollecting && inserted {
		profile.DaysCollected++
		if err := w.profiles.SaveProfile(ctx, profile); err != nil {
			return fmt.Errorf("failed to update day counter: %w", err)
		}
	}

	// The sample is durable from here on. Evaluation failures are logged
	// and reported to operators, not surfaced as ingestion errors.
	eval, err := w.engine.EvaluateDay(ctx, sample)
	if err != nil {
		log.Error().Err(err).Str("user_id", msg.UserID).Str("date", msg.Date).Msg("AI pipeline failed; sample stored without evaluation")
		return nil
	}
	if eval == nil {
		return nil
	}

	if eval.Activated {
		w.notify(ctx, &protocol.InsightNotification{
			Type:   protocol.NotificationTypeBaselineActivated,
			UserID: msg.UserID,
			Date:   time.Now().UTC(),
		})
	}

	if eval.Insight != nil {
		w.notify(ctx, &protocol.InsightNotification{
			Type:           protocol.NotificationTypeInsight,
			UserID:         msg.UserID,
			InsightID:      eval.Insight.ID,
			Date:           eval.Insight.Date,
			RiskScore:      eval.Insight.RiskScore,
			RiskLevel:      eval.Insight.RiskLevel,
			SummaryMessage: eval.Insight.SummaryMessage,
			Deviations:     countFlags(eval.DeviationFlags),
		})
	}

	return nil
}

func (w *Worker) notify(ctx context.Context, n *protocol.InsightNotification) {
	data, err := protocol.EncodeInsightNotification(n)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode notification")
		return
	}
	if err := w.producer.Publish(ctx, n.UserID, data); err != nil {
		log.Error().Err(err).Str("user_id", n.UserID).Msg("Failed to publish notification")
	}
}

func defaultProfile(userID string) *database.BaselineProfile {
	enabled := make(map[string]bool, len(database.Signals))
	for _, signal := range database.Signals {
		enabled[signal] = true
	}
	return &database.BaselineProfile{
		UserID:         userID,
		Status:         database.BaselineStatusCollecting,
		StartDate:      time.Now().UTC(),
		EnabledSignals: enabled,
		Baselines:      make(map[string]database.SignalBaseline),
	}
}

func countFlags(flags map[string]bool) int {
	n := 0
	for _, deviated := range flags {
		if deviated {
			n++
		}
	}
	return n
}
