package amqp

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/YelzhanWeb/theo-eats/internal/adapter/logger"
	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kitchenFunc func(ctx context.Context, msg interfaces.OrderPlacedMessage) error

func (f kitchenFunc) ProcessOrder(ctx context.Context, msg interfaces.OrderPlacedMessage) error {
	return f(ctx, msg)
}

func TestHandleOrder(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		serviceErr  error
		wantErr     bool
		wantRequeue bool
	}{
		{name: "processed", body: `{"order_id": 4}`},
		{name: "malformed", body: `{`, wantErr: true},
		{name: "missing id", body: `{"session_id": "s"}`, wantErr: true},
		{name: "rejected", body: `{"order_id": 4}`, serviceErr: domain.ErrInvalidTransition, wantErr: true},
		{name: "transient", body: `{"order_id": 4}`, serviceErr: errors.New("connection reset"), wantErr: true, wantRequeue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got int64
			h := NewOrderHandler(kitchenFunc(func(ctx context.Context, msg interfaces.OrderPlacedMessage) error {
				got = msg.OrderID
				return tt.serviceErr
			}), logger.Discard())

			err := h.HandleOrder(context.Background(), []byte(tt.body))
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, int64(4), got)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantRequeue, errors.Is(err, interfaces.ErrRequeue))
		})
	}
}

func TestHandleNotificationPrints(t *testing.T) {
	var out bytes.Buffer
	h := NewNotificationHandler(logger.Discard(), &out)

	err := h.HandleNotification(context.Background(), []byte(`{"order_id": 9, "old_status": "placed", "new_status": "preparing", "changed_by": "kitchen-1"}`))
	require.NoError(t, err)
	assert.Equal(t, "Notification for order 9: Status changed from 'placed' to 'preparing' by kitchen-1\n", out.String())
}
