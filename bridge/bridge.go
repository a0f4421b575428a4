package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/n0rdy/queuewatch/common"
	"github.com/n0rdy/queuewatch/configs"

	rabbithole "github.com/michaelklishin/rabbit-hole/v2"
	"github.com/rs/zerolog/log"
)

// Bridge serves the `/queues` shape the dashboard polls, backed by the RabbitMQ management API.
type Bridge struct {
	client *rabbithole.Client
}

func NewBridge(bridgeConfig configs.BridgeConfig) (*Bridge, error) {
	client, err := rabbithole.NewClient(bridgeConfig.ManagementURL, bridgeConfig.Username, bridgeConfig.Password)
	if err != nil {
		return nil, fmt.Errorf("create management client: %w", err)
	}

	return &Bridge{
		client: client,
	}, nil
}

// ListQueues returns every queue of every vhost. An empty broker yields an empty, non-nil slice.
func (b *Bridge) ListQueues() ([]common.QueueResponse, error) {
	infos, err := b.client.ListQueues()
	if err != nil {
		log.Error().Err(err).Msg("failed to list queues from the management API")
		return nil, common.ErrBrokerUnreachable
	}

	// the management payload already uses the field names of the `/queues` shape,
	// so re-encoding it keeps only name, messages, consumers and message_stats
	raw, err := json.Marshal(infos)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode management API queues")
		return nil, common.ErrInternal
	}

	queues := make([]common.QueueResponse, 0, len(infos))
	if err := json.Unmarshal(raw, &queues); err != nil {
		log.Error().Err(err).Msg("failed to decode management API queues")
		return nil, common.ErrInternal
	}
	return queues, nil
}
