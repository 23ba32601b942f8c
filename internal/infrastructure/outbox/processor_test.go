package outbox

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/domain/mocks"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(ctrl *gomock.Controller) (*Processor, *mocks.MockOutboxRepository) {
	repo := mocks.NewMockOutboxRepository(ctrl)
	return NewProcessor(repo, Config{Interval: 10 * time.Millisecond, MaxRetries: 3}, logger.NewLogger("test", "debug")), repo
}

func TestProcessEvents(t *testing.T) {
	ctx := context.Background()
	handlerErr := errors.New("referrer locked")

	tests := []struct {
		name       string
		event      *domain.OutboxEvent
		handlerErr error
		setup      func(repo *mocks.MockOutboxRepository)
	}{
		{
			name:  "Success",
			event: &domain.OutboxEvent{ID: "e1", Type: domain.EventTypeReferralEvaluation},
			setup: func(repo *mocks.MockOutboxRepository) {
				repo.EXPECT().MarkAsProcessed(gomock.Any(), "e1").Return(nil)
			},
		},
		{
			name:       "Handler_Error_Retries",
			event:      &domain.OutboxEvent{ID: "e2", Type: domain.EventTypeReferralEvaluation, RetryCount: 0},
			handlerErr: handlerErr,
			setup: func(repo *mocks.MockOutboxRepository) {
				repo.EXPECT().IncrementRetryCount(gomock.Any(), "e2", gomock.Any()).Return(nil)
			},
		},
		{
			name:       "Last_Retry_Marks_Failed",
			event:      &domain.OutboxEvent{ID: "e3", Type: domain.EventTypeReferralEvaluation, RetryCount: 2},
			handlerErr: handlerErr,
			setup: func(repo *mocks.MockOutboxRepository) {
				repo.EXPECT().MarkAsFailed(gomock.Any(), "e3", gomock.Any()).Return(nil)
			},
		},
		{
			name:  "Unknown_Event_Type",
			event: &domain.OutboxEvent{ID: "e4", Type: "something_else"},
			setup: func(repo *mocks.MockOutboxRepository) {
				repo.EXPECT().IncrementRetryCount(gomock.Any(), "e4", "unknown event type: something_else").Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			p, repo := newTestProcessor(ctrl)
			var calls int32
			p.RegisterHandler(domain.EventTypeReferralEvaluation, func(ctx context.Context, event *domain.OutboxEvent) error {
				atomic.AddInt32(&calls, 1)
				return tt.handlerErr
			})

			repo.EXPECT().GetPendingEvents(gomock.Any(), 100).Return([]*domain.OutboxEvent{tt.event}, nil)
			tt.setup(repo)

			require.NoError(t, p.ProcessEvents(ctx))
			if tt.event.Type == domain.EventTypeReferralEvaluation {
				assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
			}
		})
	}
}

func TestProcessEventsFetchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, repo := newTestProcessor(ctrl)
	repo.EXPECT().GetPendingEvents(gomock.Any(), 100).Return(nil, errors.New("connection refused"))

	assert.Error(t, p.ProcessEvents(context.Background()))
}

func TestDispatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, repo := newTestProcessor(ctrl)
	handled := make(chan string, 1)
	p.RegisterHandler(domain.EventTypeReferralEvaluation, func(ctx context.Context, event *domain.OutboxEvent) error {
		handled <- event.ID
		return nil
	})
	repo.EXPECT().MarkAsProcessed(gomock.Any(), "e1").Return(nil)

	p.Dispatch(&domain.OutboxEvent{ID: "e1", Type: domain.EventTypeReferralEvaluation})

	select {
	case id := <-handled:
		assert.Equal(t, "e1", id)
	case <-time.After(time.Second):
		t.Fatal("event was not dispatched")
	}
	p.StopBackgroundProcessing()
}

func TestBackgroundProcessing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, repo := newTestProcessor(ctrl)
	polled := make(chan struct{}, 1)
	repo.EXPECT().GetPendingEvents(gomock.Any(), 100).DoAndReturn(
		func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
			select {
			case polled <- struct{}{}:
			default:
			}
			return nil, nil
		}).MinTimes(1)

	p.StartBackgroundProcessing()
	p.StartBackgroundProcessing()

	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("background loop did not poll")
	}
	p.StopBackgroundProcessing()

	assert.Error(t, p.ProcessEvents(context.Background()))
}
