package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplicationOverrides(t *testing.T) {
	t.Run("sized to cluster", func(t *testing.T) {
		overrides := replicationOverrides(3, nil)

		assert.Equal(t, "3", overrides["offsets.topic.replication.factor"])
		assert.Equal(t, "3", overrides["transaction.state.log.replication.factor"])
		assert.Equal(t, "3", overrides["transaction.state.log.min.isr"])
	})

	t.Run("caller values win", func(t *testing.T) {
		overrides := replicationOverrides(3, map[string]string{
			"transaction.state.log.min.isr": "2",
			"num.partitions":                "6",
		})

		assert.Equal(t, "2", overrides["transaction.state.log.min.isr"])
		assert.Equal(t, "6", overrides["num.partitions"])
		assert.Equal(t, "3", overrides["offsets.topic.replication.factor"])
	})
}

func TestDefaultClusterConfig(t *testing.T) {
	cfg := DefaultClusterConfig()
	assert.Equal(t, 1, cfg.Brokers)
	assert.Empty(t, cfg.KafkaVersion)
}

func TestNewKafkaCluster_RejectsNegativeBrokerCount(t *testing.T) {
	cluster, err := NewKafkaCluster(context.Background(), &ClusterConfig{Brokers: -2})
	require.Error(t, err)
	assert.Nil(t, cluster)
	assert.Contains(t, err.Error(), "broker count must be positive")
}
