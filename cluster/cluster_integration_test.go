//go:build integration

package cluster

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

func TestKafkaCluster_SingleBroker(t *testing.T) {
	ctx := context.Background()

	cluster, err := NewKafkaCluster(ctx, nil)
	require.NoError(t, err, "failed to create cluster")
	defer func() {
		assert.NoError(t, cluster.Terminate(ctx), "failed to terminate cluster")
	}()

	require.Len(t, cluster.Brokers(), 1)
	assert.NoError(t, cluster.HealthCheck(ctx), "cluster health check failed")
	assert.NoError(t, cluster.Zookeeper().HealthCheck(ctx), "zookeeper health check failed")
}

func TestKafkaCluster_ThreeBrokers(t *testing.T) {
	ctx := context.Background()

	cluster, err := NewKafkaCluster(ctx, &ClusterConfig{Brokers: 3})
	require.NoError(t, err, "failed to create 3-broker cluster")
	defer func() {
		assert.NoError(t, cluster.Terminate(ctx), "failed to terminate cluster")
	}()

	require.Len(t, cluster.Brokers(), 3)
	require.NoError(t, cluster.HealthCheck(ctx), "cluster health check failed")

	t.Run("bootstrap lists every broker", func(t *testing.T) {
		endpoints := strings.Split(cluster.BootstrapServers(), ",")
		assert.Len(t, endpoints, 3)
		for _, e := range endpoints {
			assert.True(t, strings.HasPrefix(e, "PLAINTEXT://"), "endpoint %q should be a PLAINTEXT endpoint", e)
		}
		assert.Len(t, cluster.BootstrapAddresses(), 3)
	})

	t.Run("replicated round trip", func(t *testing.T) {
		topic := "replicated-" + uuid.NewString()
		require.NoError(t, cluster.Brokers()[0].CreateTopic(ctx, topic, 1, 3), "failed to create replicated topic")

		client, err := kgo.NewClient(
			kgo.SeedBrokers(cluster.BootstrapAddresses()...),
			kgo.ConsumeTopics(topic),
			kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
			kgo.RequiredAcks(kgo.AllISRAcks()),
		)
		require.NoError(t, err, "failed to create client")
		defer client.Close()

		record := &kgo.Record{Topic: topic, Value: []byte("replicated payload")}
		require.NoError(t, client.ProduceSync(ctx, record).FirstErr(), "failed to produce")

		pollCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		fetches := client.PollFetches(pollCtx)
		require.Empty(t, fetches.Errors(), "fetch returned errors")

		records := fetches.Records()
		require.Len(t, records, 1)
		assert.Equal(t, "replicated payload", string(records[0].Value))
	})
}
