package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/saradorri/edrewards/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// Handler applies one outbox event. Handlers must be idempotent: an event can be
// delivered by the immediate dispatch and again by the background loop.
type Handler func(ctx context.Context, event *domain.OutboxEvent) error

// Config controls the background loop
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// Processor implements domain.OutboxProcessor
type Processor struct {
	outboxRepo domain.OutboxRepository
	handlers   map[string]Handler
	logger     *logger.Logger
	cfg        Config

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
}

// NewProcessor creates a new outbox processor
func NewProcessor(outboxRepo domain.OutboxRepository, cfg Config, logger *logger.Logger) *Processor {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Processor{
		outboxRepo: outboxRepo,
		handlers:   make(map[string]Handler),
		logger:     logger.Named("outbox"),
		cfg:        cfg,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// RegisterHandler binds a handler to an event type
func (p *Processor) RegisterHandler(eventType string, handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[eventType] = handler
}

// ProcessEvents processes a batch of pending events
func (p *Processor) ProcessEvents(ctx context.Context) error {
	if err := p.checkCancellation(); err != nil {
		return err
	}

	events, err := p.outboxRepo.GetPendingEvents(ctx, p.cfg.BatchSize)
	if err != nil {
		p.logger.Error("Failed to get pending events", zap.Error(err))
		return err
	}

	for _, event := range events {
		select {
		case <-p.ctx.Done():
			return fmt.Errorf("processor cancelled")
		default:
		}

		if err := p.ProcessEvent(ctx, event); err != nil {
			p.recordFailure(ctx, event, err)
		}
	}

	return nil
}

// ProcessEvent runs the handler of a single event and marks it processed on success
func (p *Processor) ProcessEvent(ctx context.Context, event *domain.OutboxEvent) error {
	p.logger.Info("Processing outbox event",
		zap.String("eventID", event.ID),
		zap.String("eventType", event.Type),
		zap.Int("retryCount", event.RetryCount))

	p.mu.RLock()
	handler, ok := p.handlers[event.Type]
	p.mu.RUnlock()
	if !ok {
		p.logger.Warn("Unknown event type",
			zap.String("eventID", event.ID),
			zap.String("eventType", event.Type))
		metrics.OutboxEventsTotal.WithLabelValues(event.Type, "unknown").Inc()
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err := handler(ctx, event); err != nil {
		metrics.OutboxEventsTotal.WithLabelValues(event.Type, "error").Inc()
		return fmt.Errorf("handle %s event %s: %w", event.Type, event.ID, err)
	}

	if err := p.outboxRepo.MarkAsProcessed(ctx, event.ID); err != nil {
		p.logger.Error("Failed to mark event as processed", zap.String("eventID", event.ID), zap.Error(err))
		return err
	}

	metrics.OutboxEventsTotal.WithLabelValues(event.Type, "processed").Inc()
	p.logger.Info("Outbox event processed", zap.String("eventID", event.ID), zap.String("eventType", event.Type))
	return nil
}

// Dispatch processes an event right after the commit that recorded it.
// A failure leaves the event pending for the background loop.
func (p *Processor) Dispatch(event *domain.OutboxEvent) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(p.ctx, 30*time.Second)
		defer cancel()
		if err := p.ProcessEvent(ctx, event); err != nil {
			p.logger.Warn("Immediate dispatch failed, leaving event for retry",
				zap.String("eventID", event.ID),
				zap.Error(err))
		}
	}()
}

func (p *Processor) recordFailure(ctx context.Context, event *domain.OutboxEvent, err error) {
	p.logger.Error("Failed to process event",
		zap.String("eventID", event.ID),
		zap.String("eventType", event.Type),
		zap.Error(err))

	if event.RetryCount+1 < p.cfg.MaxRetries {
		if retryErr := p.outboxRepo.IncrementRetryCount(ctx, event.ID, err.Error()); retryErr != nil {
			p.logger.Error("Failed to increment retry count", zap.Error(retryErr))
		}
		return
	}

	if failErr := p.outboxRepo.MarkAsFailed(ctx, event.ID, err.Error()); failErr != nil {
		p.logger.Error("Failed to mark event as failed", zap.Error(failErr))
	}
	metrics.OutboxEventsTotal.WithLabelValues(event.Type, "failed").Inc()
}

// checkCancellation checks if the processor has been cancelled
func (p *Processor) checkCancellation() error {
	select {
	case <-p.ctx.Done():
		return fmt.Errorf("processor cancelled")
	default:
		return nil
	}
}

// StartBackgroundProcessing starts the background processing loop
func (p *Processor) StartBackgroundProcessing() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		p.logger.Warn("Outbox processor is already running")
		return
	}

	p.isRunning = true
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.cfg.Interval)
		defer ticker.Stop()

		p.logger.Info("Outbox background processing started", zap.Duration("interval", p.cfg.Interval))

		for {
			select {
			case <-p.ctx.Done():
				p.logger.Info("Outbox background processing stopped")
				return
			case <-ticker.C:
				if err := p.ProcessEvents(p.ctx); err != nil {
					p.logger.Error("Background processing failed", zap.Error(err))
				}
			}
		}
	}()
}

// StopBackgroundProcessing stops the background loop and waits for in-flight dispatches
func (p *Processor) StopBackgroundProcessing() {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		p.logger.Warn("Outbox processor is not running")
		p.cancel()
		p.wg.Wait()
		return
	}
	p.isRunning = false
	p.mu.Unlock()

	p.logger.Info("Stopping outbox background processing...")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("Outbox background processing stopped")
}
