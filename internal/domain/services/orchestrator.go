package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"scambait/internal/config"
	"scambait/internal/domain/models"
	"scambait/internal/infrastructure/cache"
	"scambait/internal/infrastructure/database/repository"
	"scambait/pkg/logger"
)

// Orchestrator sequences one conversation turn: detect and extract
// concurrently, reduce the session, generate the reply, persist, and
// emit the terminal report when the session ends. It owns no decision
// logic of its own.
type Orchestrator struct {
	detector  *Detector
	extractor *Extractor
	engine    *Engine
	store     *cache.RedisCache
	sink      ReportSink
	archive   *repository.ReportRepository
	cfg       config.SessionConfig
	callbacks config.CallbackConfig
	logger    *logger.Logger
}

func NewOrchestrator(
	detector *Detector,
	extractor *Extractor,
	engine *Engine,
	store *cache.RedisCache,
	sink ReportSink,
	archive *repository.ReportRepository,
	cfg config.SessionConfig,
	callbacks config.CallbackConfig,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		detector:  detector,
		extractor: extractor,
		engine:    engine,
		store:     store,
		sink:      sink,
		archive:   archive,
		cfg:       cfg,
		callbacks: callbacks,
		logger:    log.WithComponent("orchestrator"),
	}
}

// turnResult carries everything one turn produced, feeding the pure
// session reducer.
type turnResult struct {
	incoming  string
	detection *models.DetectionResult
	delta     models.IntelligenceDelta
	reply     TurnReply
	now       time.Time
}

// HandleTurn processes one inbound message for a conversation.
func (o *Orchestrator) HandleTurn(ctx context.Context, conversationID, text string) (*models.TurnResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidInput
	}
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	log := o.logger.WithConversation(conversationID)

	if err := o.lock(ctx, conversationID); err != nil {
		return nil, err
	}
	defer func() {
		if err := o.store.ReleaseSessionLock(context.WithoutCancel(ctx), conversationID); err != nil {
			log.Warn().Err(err).Msg("failed to release session lock")
		}
	}()

	session, err := o.store.GetSession(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		now := time.Now().UTC()
		session = &models.ConversationSession{
			ID:        conversationID,
			Status:    models.SessionActive,
			Phase:     models.PhaseEngagement,
			Category:  models.CategoryOther,
			StartedAt: now,
			UpdatedAt: now,
		}
	}
	if session.Status == models.SessionEnded {
		return nil, ErrSessionEnded
	}

	// detection and extraction are independent reads of the message
	var (
		wg        sync.WaitGroup
		detection *models.DetectionResult
		delta     models.IntelligenceDelta
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		detection = o.detector.Detect(ctx, text, session.History)
	}()
	go func() {
		defer wg.Done()
		delta = o.extractor.Extract(ctx, text)
	}()
	wg.Wait()

	reply := o.engine.GenerateResponse(ctx, session, detection, delta, text)

	result := turnResult{
		incoming:  text,
		detection: detection,
		delta:     delta,
		reply:     reply,
		now:       time.Now().UTC(),
	}
	next := reduce(session, result)

	if err := o.store.PutSession(ctx, next, o.cfg.TTL); err != nil {
		return nil, err
	}

	log.Info().
		Bool("is_scam", detection.IsScam).
		Int("confidence", detection.Confidence).
		Str("category", string(detection.Category)).
		Str("phase", string(next.Phase)).
		Int("turn", next.TurnCount).
		Msg("turn processed")

	if next.Status == models.SessionEnded {
		o.emitReport(next)
	}

	return &models.TurnResponse{
		ConversationID: conversationID,
		Reply:          reply.Text,
		ScamDetected:   detection.IsScam,
		Detection:      detection,
		Intelligence:   &delta,
		Session:        next.Snapshot(),
		Ended:          next.Status == models.SessionEnded,
		EndReason:      next.EndReason,
	}, nil
}

// reduce folds one turn into the session. It is a pure function of
// (prev, result): intelligence only grows, the turn count increments,
// and the phase never moves backwards.
func reduce(prev *models.ConversationSession, r turnResult) *models.ConversationSession {
	next := *prev
	next.Intelligence = prev.Intelligence
	next.History = append(append([]models.Message{}, prev.History...),
		models.Message{Sender: models.SenderScammer, Text: r.incoming, Timestamp: r.now},
		models.Message{Sender: models.SenderHoneypot, Text: r.reply.Text, Timestamp: r.now},
	)

	next.TurnCount = prev.TurnCount + 1
	next.Intelligence.Merge(r.delta)
	next.UpdatedAt = r.now

	if r.detection.Confidence > next.Confidence {
		next.Confidence = r.detection.Confidence
	}
	if next.Category == models.CategoryOther && r.detection.Category != models.CategoryOther {
		next.Category = r.detection.Category
	}
	if next.Persona == "" && r.reply.Persona != "" {
		next.Persona = r.reply.Persona
	}
	if models.PhaseIndex(r.reply.Phase) > models.PhaseIndex(next.Phase) {
		next.Phase = r.reply.Phase
	}
	if r.reply.Exited {
		next.Status = models.SessionEnded
		next.EndReason = r.reply.ExitWhy
	}
	return &next
}

// lock takes the per-session write lock, retrying until the
// configured wait elapses.
func (o *Orchestrator) lock(ctx context.Context, conversationID string) error {
	deadline := time.Now().Add(o.cfg.LockWait)
	for {
		ok, err := o.store.AcquireSessionLock(ctx, conversationID, o.cfg.LockTTL)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrSessionLocked
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// emitReport builds the terminal report and ships it to the callback
// sink and archive without blocking the response.
func (o *Orchestrator) emitReport(session *models.ConversationSession) {
	report := &models.TerminalReport{
		ReportID:       uuid.NewString(),
		ConversationID: session.ID,
		Category:       session.Category,
		Confidence:     session.Confidence,
		Persona:        session.Persona,
		TurnCount:      session.TurnCount,
		Completeness:   session.Intelligence.Completeness(),
		Intelligence:   session.Intelligence,
		EndReason:      session.EndReason,
		StartedAt:      session.StartedAt,
		EndedAt:        session.UpdatedAt,
	}

	log := o.logger.WithConversation(session.ID)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if o.archive != nil {
			if err := o.archive.Insert(ctx, report); err != nil {
				log.Error().Err(err).Msg("failed to archive report")
			}
		}
		if o.sink != nil && o.callbacks.Enabled {
			if err := o.sink.Send(ctx, report); err != nil {
				log.Error().Err(err).Msg("failed to deliver report")
			}
		}
	}()
}
