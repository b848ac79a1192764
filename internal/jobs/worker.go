package jobs

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deangilmoreremix/smartcrm-backend/internal/observability"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/envutil"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/repos"
	"github.com/deangilmoreremix/smartcrm-backend/internal/services"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

type WorkerConfig struct {
	Workers        int
	TickInterval   time.Duration
	MaxAttempts    int
	RetryDelay     time.Duration
	StaleRunning   time.Duration
	HeartbeatEvery time.Duration
}

func WorkerConfigFromEnv() WorkerConfig {
	return WorkerConfig{
		Workers:        envutil.Int("WORKER_COUNT", 2),
		TickInterval:   time.Duration(envutil.Int("WORKER_TICK_SECONDS", 10)) * time.Second,
		MaxAttempts:    envutil.Int("WORKER_MAX_ATTEMPTS", 3),
		RetryDelay:     time.Duration(envutil.Int("WORKER_RETRY_DELAY_SECONDS", 300)) * time.Second,
		StaleRunning:   time.Duration(envutil.Int("WORKER_STALE_RUNNING_SECONDS", 600)) * time.Second,
		HeartbeatEvery: time.Duration(envutil.Int("WORKER_HEARTBEAT_SECONDS", 30)) * time.Second,
	}
}

// SendWorker drains the scheduled_send queue: N goroutines tick, claim due
// rows one at a time, and deliver them over the step's channel.
type SendWorker struct {
	log         *logger.Logger
	db          *gorm.DB
	cfg         WorkerConfig
	sendRepo    repos.ScheduledSendRepo
	seqRepo     repos.SequenceRepo
	contactRepo repos.ContactRepo
	emails      services.EmailService
	sms         services.SMSService
	notifier    services.Notifier

	wg sync.WaitGroup
}

func NewSendWorker(
	log *logger.Logger,
	db *gorm.DB,
	cfg WorkerConfig,
	sendRepo repos.ScheduledSendRepo,
	seqRepo repos.SequenceRepo,
	contactRepo repos.ContactRepo,
	emails services.EmailService,
	sms services.SMSService,
	notifier services.Notifier,
) *SendWorker {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Minute
	}
	if cfg.StaleRunning <= 0 {
		cfg.StaleRunning = 10 * time.Minute
	}
	if cfg.HeartbeatEvery <= 0 {
		cfg.HeartbeatEvery = 30 * time.Second
	}
	return &SendWorker{
		log:         log.With("component", "SendWorker"),
		db:          db,
		cfg:         cfg,
		sendRepo:    sendRepo,
		seqRepo:     seqRepo,
		contactRepo: contactRepo,
		emails:      emails,
		sms:         sms,
		notifier:    notifier,
	}
}

// Start launches the pool; it returns immediately. Cancel ctx and call Wait
// to drain.
func (w *SendWorker) Start(ctx context.Context) {
	w.log.Info("send worker starting", "workers", w.cfg.Workers, "tick", w.cfg.TickInterval)
	for i := 0; i < w.cfg.Workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i)
	}
}

func (w *SendWorker) Wait() {
	w.wg.Wait()
}

func (w *SendWorker) run(ctx context.Context, id int) {
	defer w.wg.Done()
	log := w.log.With("worker", id)

	ticker := time.NewTicker(w.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("send worker stopping")
			return
		case <-ticker.C:
			w.drain(ctx, log)
		}
	}
}

// drain claims rows until the queue has nothing due.
func (w *SendWorker) drain(ctx context.Context, log *logger.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}
		claimed, err := w.sendRepo.ClaimNextRunnable(ctx, nil, w.cfg.MaxAttempts, w.cfg.RetryDelay, w.cfg.StaleRunning)
		if err != nil {
			log.Error("claim failed", "error", err)
			return
		}
		if claimed == nil {
			return
		}
		runErr := w.process(ctx, log, claimed)
		observability.Current().ObserveWorkerRun(runErr)
		if runErr != nil {
			log.Warn("send failed", "send_id", claimed.ID, "attempts", claimed.Attempts, "error", runErr)
		}
	}
}

// process delivers one claimed row. A panic in the send path marks the row
// failed instead of taking the worker down.
func (w *SendWorker) process(ctx context.Context, log *logger.Logger, send *types.ScheduledSend) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			if mErr := w.sendRepo.MarkFailed(ctx, nil, send.ID, err); mErr != nil {
				log.Error("mark failed after panic", "send_id", send.ID, "error", mErr)
			}
		}
	}()

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go w.heartbeat(hbCtx, send)

	seqs, err := w.seqRepo.GetByIDs(ctx, nil, []uuid.UUID{send.SequenceID})
	if err != nil {
		return w.fail(ctx, send, fmt.Errorf("fetch sequence: %w", err))
	}
	if len(seqs) == 0 || seqs[0].Status != types.SequenceStatusActive {
		// Sequence vanished or was paused/completed between scheduling and
		// claim; this delivery no longer applies.
		if sErr := w.sendRepo.MarkSkipped(ctx, nil, send.ID); sErr != nil {
			return fmt.Errorf("mark skipped: %w", sErr)
		}
		return nil
	}
	seq := seqs[0]

	var step *types.SequenceStep
	for _, s := range seq.Steps {
		if s.ID == send.StepID {
			step = s
			break
		}
	}
	if step == nil {
		return w.fail(ctx, send, fmt.Errorf("step %s not found on sequence %s", send.StepID, seq.ID))
	}

	contacts, err := w.contactRepo.GetByIDs(ctx, nil, []uuid.UUID{send.ContactID})
	if err != nil {
		return w.fail(ctx, send, fmt.Errorf("fetch contact: %w", err))
	}
	if len(contacts) == 0 {
		// Contact was deleted; nothing left to send to.
		if sErr := w.sendRepo.MarkSkipped(ctx, nil, send.ID); sErr != nil {
			return fmt.Errorf("mark skipped: %w", sErr)
		}
		return nil
	}
	contact := contacts[0]

	subject, body := renderStep(step, contact)
	switch send.Channel {
	case types.ChannelEmail:
		_, err = w.emails.Send(ctx, send.OwnerUserID, contact, subject, body)
	case types.ChannelSMS:
		_, err = w.sms.SendToContact(ctx, send.OwnerUserID, contact, body)
	default:
		err = fmt.Errorf("unknown channel %q", send.Channel)
	}
	if err != nil {
		return w.fail(ctx, send, err)
	}

	if mErr := w.sendRepo.MarkSent(ctx, nil, send.ID, time.Now()); mErr != nil {
		return fmt.Errorf("mark sent: %w", mErr)
	}
	log.Info("step sent", "send_id", send.ID, "sequence_id", seq.ID, "ordinal", step.Ordinal, "channel", send.Channel)
	w.notifier.SequenceStepSent(ctx, send.OwnerUserID, seq.ID, step.Ordinal, send.Channel)

	return w.maybeComplete(ctx, log, seq)
}

// maybeComplete closes out the sequence once its last step lands.
func (w *SendWorker) maybeComplete(ctx context.Context, log *logger.Logger, seq *types.Sequence) error {
	pending, err := w.sendRepo.CountPendingBySequence(ctx, nil, seq.ID)
	if err != nil {
		return fmt.Errorf("count pending: %w", err)
	}
	if pending > 0 {
		return nil
	}
	now := time.Now()
	if uErr := w.seqRepo.UpdateFields(ctx, nil, seq.ID, map[string]interface{}{
		"status":       types.SequenceStatusCompleted,
		"completed_at": now,
	}); uErr != nil {
		return fmt.Errorf("complete sequence: %w", uErr)
	}
	seq.Status = types.SequenceStatusCompleted
	seq.CompletedAt = &now
	log.Info("sequence completed", "sequence_id", seq.ID)
	w.notifier.SequenceCompleted(ctx, seq.OwnerUserID, seq)
	return nil
}

func (w *SendWorker) fail(ctx context.Context, send *types.ScheduledSend, cause error) error {
	if mErr := w.sendRepo.MarkFailed(ctx, nil, send.ID, cause); mErr != nil {
		return fmt.Errorf("mark failed (%v): %w", cause, mErr)
	}
	return cause
}

func (w *SendWorker) heartbeat(ctx context.Context, send *types.ScheduledSend) {
	ticker := time.NewTicker(w.cfg.HeartbeatEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.sendRepo.Heartbeat(ctx, nil, send.ID); err != nil {
				w.log.Warn("heartbeat failed", "send_id", send.ID, "error", err)
			}
		}
	}
}

// renderStep fills the step's name/company tokens from the contact.
func renderStep(step *types.SequenceStep, contact *types.Contact) (subject, body string) {
	subject = services.PersonalizeSubject(step.Subject, contact.FirstName, contact.Company)
	body = step.Body
	body = strings.ReplaceAll(body, "{{first_name}}", contact.FirstName)
	body = strings.ReplaceAll(body, "{{company}}", contact.Company)
	return subject, strings.TrimSpace(body)
}
