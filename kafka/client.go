package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
)

// NewClient creates a franz-go client seeded with this broker.
// The caller is responsible for closing the client when done.
func (c *KafkaContainer) NewClient(opts ...kgo.Opt) (*kgo.Client, error) {
	clientOpts := append([]kgo.Opt{kgo.SeedBrokers(c.BootstrapAddress())}, opts...)

	client, err := kgo.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka client: %w", err)
	}
	return client, nil
}

// HealthCheck verifies the broker answers client requests. The broker can
// briefly refuse connections right after reporting started, so the ping is
// retried with exponential backoff.
func (c *KafkaContainer) HealthCheck(ctx context.Context) error {
	client, err := c.NewClient()
	if err != nil {
		return err
	}
	defer client.Close()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return client.Ping(pingCtx)
	}

	if err := backoff.Retry(ping, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("broker health check failed: %w", err)
	}
	return nil
}

// CreateTopic creates a topic with the given partition count and replication
// factor on this broker.
func (c *KafkaContainer) CreateTopic(ctx context.Context, topic string, partitions int32, replicationFactor int16) error {
	client, err := c.NewClient()
	if err != nil {
		return err
	}
	defer client.Close()

	req := kmsg.NewCreateTopicsRequest()
	req.Topics = []kmsg.CreateTopicsRequestTopic{
		{
			Topic:             topic,
			NumPartitions:     partitions,
			ReplicationFactor: replicationFactor,
		},
	}

	resp, err := client.Request(ctx, &req)
	if err != nil {
		return fmt.Errorf("create topics request failed: %w", err)
	}

	createResp, ok := resp.(*kmsg.CreateTopicsResponse)
	if !ok {
		return fmt.Errorf("unexpected response type %T", resp)
	}
	for _, t := range createResp.Topics {
		if err := kerr.ErrorForCode(t.ErrorCode); err != nil {
			return fmt.Errorf("failed to create topic %s: %w", t.Topic, err)
		}
	}

	return nil
}
