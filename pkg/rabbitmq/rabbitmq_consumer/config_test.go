package rabbitmq_consumer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsumerConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     ConsumerConfig
		wantErr bool
	}{
		{name: "server named exclusive queue", cfg: ConsumerConfig{DeclareQueue: true, ExclusiveQueue: true, AutoDeleteQueue: true, ExchangeNameForBind: "favorites_changes"}},
		{name: "existing queue", cfg: ConsumerConfig{QueueName: "favorites"}},
		{name: "no queue", cfg: ConsumerConfig{}, wantErr: true},
		{name: "exchange without type", cfg: ConsumerConfig{DeclareQueue: true, DeclareExchangeForBind: true, ExchangeNameForBind: "x"}, wantErr: true},
		{name: "negative prefetch", cfg: ConsumerConfig{QueueName: "q", PrefetchCount: -1}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewDistributingConsumer_RequiresHandler(t *testing.T) {
	_, err := NewDistributingConsumer(ConsumerConfig{QueueName: "q"}, nil, nil)
	assert.Error(t, err)
}
