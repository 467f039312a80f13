package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shareit/internal/events"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	redisQueueKey = "shareit:notifications:queue"
	deadLetterKey = "shareit:notifications:deadletter"
)

// Sink delivers one event to an external system. Deliveries may repeat after
// a partial failure, so sinks must tolerate duplicates.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, ev *events.Event) error
}

// NotificationStore is the outbox table.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetPendingNotifications(ctx context.Context, limit int) ([]models.Notification, error)
	UpdateNotificationStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
}

// NotificationWorker persists events to the outbox and fans them out to sinks.
// Redis is the fast path when configured, the local channel otherwise, and
// the table is polled for retries and anything the fast paths dropped.
type NotificationWorker struct {
	store        NotificationStore
	sinks        []Sink
	redis        *redis.Client
	retryPolicy  RetryPolicy
	queue        chan models.Notification
	pollInterval time.Duration
	batchSize    int
	logger       *zerolog.Logger

	// ids settled by this process; a notification can arrive both from a
	// fast path and from polling
	settled map[int64]struct{}
}

func NewNotificationWorker(store NotificationStore, sinks []Sink, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *NotificationWorker {
	return &NotificationWorker{
		store:        store,
		sinks:        sinks,
		redis:        redisClient,
		retryPolicy:  retry.withDefaults(),
		queue:        make(chan models.Notification, models.NotificationQueueSize),
		pollInterval: 2 * time.Second,
		batchSize:    20,
		logger:       logger,
		settled:      make(map[int64]struct{}),
	}
}

// Subscribe enqueues every published event.
func (w *NotificationWorker) Subscribe(bus *events.EventBus) {
	bus.SubscribeAll(func(ev *events.Event) error {
		return w.Enqueue(context.Background(), ev)
	})
}

// Enqueue persists ev and schedules it for delivery.
func (w *NotificationWorker) Enqueue(ctx context.Context, ev *events.Event) error {
	if ev == nil || ev.Type == "" {
		return errors.New("event type is required")
	}

	n := models.Notification{
		EventType: ev.Type,
		BookingID: bookingIDOf(ev),
		Payload:   string(ev.Payload),
		Status:    models.NotificationPending,
	}
	if err := w.store.CreateNotification(ctx, &n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	if w.redis != nil {
		err := w.pushRedis(ctx, redisQueueKey, n)
		if err == nil {
			return nil
		}
		w.logger.Warn().Err(err).Int64("notification_id", n.ID).Msg("redis push failed, using memory queue")
	}

	select {
	case w.queue <- n:
	default:
		w.logger.Warn().Int64("notification_id", n.ID).Msg("memory queue full, left for polling")
	}
	return nil
}

func bookingIDOf(ev *events.Event) int64 {
	var p struct {
		BookingID int64 `json:"booking_id"`
	}
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return 0
	}
	return p.BookingID
}

// Start runs the delivery loop until ctx is done.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.logger.Info().Int("sinks", len(w.sinks)).Msg("notification worker started")
	defer w.logger.Info().Msg("notification worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if n, ok := w.tryLocalQueue(); ok {
			w.process(ctx, &n)
			continue
		}
		if n, ok := w.tryRedis(ctx); ok {
			w.process(ctx, &n)
			continue
		}

		if processed := w.drainPending(ctx); processed == 0 {
			select {
			case <-ctx.Done():
				return
			case n := <-w.queue:
				w.process(ctx, &n)
			case <-time.After(w.pollInterval):
			}
		}
	}
}

func (w *NotificationWorker) drainPending(ctx context.Context) int {
	pending, err := w.store.GetPendingNotifications(ctx, w.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error().Err(err).Msg("fetch pending notifications")
		}
		return 0
	}
	for i := range pending {
		w.process(ctx, &pending[i])
	}
	return len(pending)
}

func (w *NotificationWorker) tryLocalQueue() (models.Notification, bool) {
	select {
	case n := <-w.queue:
		return n, true
	default:
		return models.Notification{}, false
	}
}

func (w *NotificationWorker) tryRedis(ctx context.Context) (models.Notification, bool) {
	if w.redis == nil {
		return models.Notification{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, redisQueueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.logger.Error().Err(err).Msg("redis BRPOP")
		}
		return models.Notification{}, false
	}
	if len(res) != 2 {
		return models.Notification{}, false
	}
	var n models.Notification
	if err := json.Unmarshal([]byte(res[1]), &n); err != nil {
		w.logger.Error().Err(err).Msg("decode redis notification")
		return models.Notification{}, false
	}
	return n, true
}

func (w *NotificationWorker) process(ctx context.Context, n *models.Notification) {
	if _, ok := w.settled[n.ID]; ok {
		return
	}
	ev := &events.Event{Type: n.EventType, Payload: []byte(n.Payload), CreatedAt: n.CreatedAt}

	var errs []error
	var failed []string
	for _, sink := range w.sinks {
		if err := sink.Deliver(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			failed = append(failed, sink.Name())
			continue
		}
		metrics.IncNotification(sink.Name(), "ok")
	}

	if err := errors.Join(errs...); err != nil {
		w.retryOrFail(ctx, n, err, failed)
		return
	}
	w.settle(n.ID)
	if err := w.store.UpdateNotificationStatus(ctx, n.ID, models.NotificationCompleted, "", nil); err != nil {
		w.logger.Error().Err(err).Int64("notification_id", n.ID).Msg("mark completed")
	}
}

func (w *NotificationWorker) settle(id int64) {
	if len(w.settled) >= 4096 {
		w.settled = make(map[int64]struct{})
	}
	w.settled[id] = struct{}{}
}

func (w *NotificationWorker) retryOrFail(ctx context.Context, n *models.Notification, cause error, failedSinks []string) {
	attempt := n.RetryCount + 1
	log := w.logger.With().Int64("notification_id", n.ID).Str("event", n.EventType).Int("attempt", attempt).Logger()

	if w.retryPolicy.Exhausted(attempt) {
		log.Error().Err(cause).Msg("notification failed permanently")
		countFailure(failedSinks, "failed")
		w.settle(n.ID)
		if err := w.store.UpdateNotificationStatus(ctx, n.ID, models.NotificationFailed, cause.Error(), nil); err != nil {
			log.Error().Err(err).Msg("mark failed")
		}
		if w.redis != nil {
			if err := w.pushRedis(ctx, deadLetterKey, *n); err != nil {
				log.Error().Err(err).Msg("dead-letter push")
			}
		}
		return
	}

	next := time.Now().Add(w.retryPolicy.NextDelay(attempt))
	log.Warn().Err(cause).Time("next_retry_at", next).Msg("notification delivery failed, will retry")
	countFailure(failedSinks, "retry")
	if err := w.store.UpdateNotificationStatus(ctx, n.ID, models.NotificationRetry, cause.Error(), &next); err != nil {
		log.Error().Err(err).Msg("mark retry")
	}
}

func countFailure(sinks []string, result string) {
	for _, name := range sinks {
		metrics.IncNotification(name, result)
	}
}

func (w *NotificationWorker) pushRedis(ctx context.Context, key string, n models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, key, data).Err()
}

// DeadLetters returns up to limit notifications from the Redis dead-letter list.
func (w *NotificationWorker) DeadLetters(ctx context.Context, limit int64) ([]models.Notification, error) {
	if w.redis == nil {
		return nil, nil
	}
	raw, err := w.redis.LRange(ctx, deadLetterKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.Notification, 0, len(raw))
	for _, item := range raw {
		var n models.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			return nil, fmt.Errorf("decode dead letter: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}
