// Package cluster provides a multi-broker Kafka fixture: N broker containers
// with distinct broker ids on a shared Docker network, coordinated by a
// single ZooKeeper container. It composes the kafka and zookeeper fixtures.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"

	"github.com/tphakala/kafkatest/internal/testutil"
	"github.com/tphakala/kafkatest/kafka"
	"github.com/tphakala/kafkatest/zookeeper"
)

// zookeeperAlias is the network alias brokers use to reach ZooKeeper.
const zookeeperAlias = "zookeeper"

// KafkaCluster wraps a ZooKeeper container and N Kafka broker containers on a
// dedicated Docker network.
type KafkaCluster struct {
	network   *testcontainers.DockerNetwork
	zookeeper *zookeeper.ZookeeperContainer
	brokers   []*kafka.KafkaContainer
	cleanup   *testutil.CleanupManager
}

// ClusterConfig holds configuration for Kafka cluster creation.
type ClusterConfig struct {
	// Number of brokers (default: 1)
	Brokers int
	// Kafka version for brokers and ZooKeeper (default: latest supported)
	KafkaVersion string
	// Additional broker configuration applied to every broker
	AdditionalConfig map[string]string
	// How long to wait for each broker to report started (default: 2m)
	StartupTimeout time.Duration
}

// DefaultClusterConfig returns a ClusterConfig with sensible defaults.
func DefaultClusterConfig() ClusterConfig {
	return ClusterConfig{
		Brokers: 1,
	}
}

// NewKafkaCluster creates and starts a network, a ZooKeeper container and the
// configured number of broker containers. On any failure everything started
// so far is torn down before returning.
// If config is nil, uses DefaultClusterConfig().
func NewKafkaCluster(ctx context.Context, config *ClusterConfig) (*KafkaCluster, error) {
	if config == nil {
		defaultCfg := DefaultClusterConfig()
		config = &defaultCfg
	}
	if config.Brokers == 0 {
		config.Brokers = 1
	}
	if config.Brokers < 0 {
		return nil, fmt.Errorf("broker count must be positive: %d", config.Brokers)
	}

	cleanup := testutil.NewCleanupManager()
	fail := func(err error) (*KafkaCluster, error) {
		// Best effort teardown of whatever already started.
		_ = cleanup.Cleanup()
		return nil, err
	}

	clusterNet, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cluster network: %w", err)
	}
	cleanup.Add("network", func() error {
		return clusterNet.Remove(context.Background())
	})

	zk, err := zookeeper.NewZookeeperContainer(ctx, &zookeeper.ZookeeperConfig{
		KafkaVersion:   config.KafkaVersion,
		Networks:       []string{clusterNet.Name},
		NetworkAliases: map[string][]string{clusterNet.Name: {zookeeperAlias}},
	})
	if err != nil {
		return fail(fmt.Errorf("failed to start cluster ZooKeeper: %w", err))
	}
	cleanup.Add("zookeeper", func() error {
		return zk.Terminate(context.Background())
	})

	brokerConfig := replicationOverrides(config.Brokers, config.AdditionalConfig)
	zkConnect := fmt.Sprintf("%s:%d", zookeeperAlias, zookeeper.ClientPort)

	brokers := make([]*kafka.KafkaContainer, 0, config.Brokers)
	for id := 0; id < config.Brokers; id++ {
		alias := "broker-" + strconv.Itoa(id)
		broker, err := kafka.NewKafkaContainer(ctx, &kafka.KafkaConfig{
			KafkaVersion:      config.KafkaVersion,
			BrokerID:          id,
			AdditionalConfig:  brokerConfig,
			ExternalZookeeper: zkConnect,
			Networks:          []string{clusterNet.Name},
			NetworkAliases:    map[string][]string{clusterNet.Name: {alias}},
			StartupTimeout:    config.StartupTimeout,
		})
		if err != nil {
			return fail(fmt.Errorf("failed to start broker %d: %w", id, err))
		}
		cleanup.Add(alias, func() error {
			return broker.Terminate(context.Background())
		})
		brokers = append(brokers, broker)
	}

	return &KafkaCluster{
		network:   clusterNet,
		zookeeper: zk,
		brokers:   brokers,
		cleanup:   cleanup,
	}, nil
}

// replicationOverrides sizes the internal-topic replication settings to the
// cluster so multi-broker clusters come up healthy, keeping any value the
// caller pinned explicitly.
func replicationOverrides(brokers int, extra map[string]string) map[string]string {
	overrides := map[string]string{
		"offsets.topic.replication.factor":         strconv.Itoa(brokers),
		"transaction.state.log.replication.factor": strconv.Itoa(brokers),
		"transaction.state.log.min.isr":            strconv.Itoa(brokers),
	}
	for k, v := range extra {
		overrides[k] = v
	}
	return overrides
}

// BootstrapServers returns the comma-joined bootstrap endpoints of all
// brokers, e.g. "PLAINTEXT://localhost:32768,PLAINTEXT://localhost:32769".
func (c *KafkaCluster) BootstrapServers() string {
	endpoints := make([]string, len(c.brokers))
	for i, b := range c.brokers {
		endpoints[i] = b.BootstrapServers()
	}
	return strings.Join(endpoints, ",")
}

// BootstrapAddresses returns the host:port of every broker, for client seed
// lists.
func (c *KafkaCluster) BootstrapAddresses() []string {
	addrs := make([]string, len(c.brokers))
	for i, b := range c.brokers {
		addrs[i] = b.BootstrapAddress()
	}
	return addrs
}

// Brokers returns the broker fixtures, indexed by broker id.
func (c *KafkaCluster) Brokers() []*kafka.KafkaContainer {
	return c.brokers
}

// Zookeeper returns the cluster's ZooKeeper fixture.
func (c *KafkaCluster) Zookeeper() *zookeeper.ZookeeperContainer {
	return c.zookeeper
}

// HealthCheck verifies every broker answers client requests.
func (c *KafkaCluster) HealthCheck(ctx context.Context) error {
	for _, b := range c.brokers {
		if err := b.HealthCheck(ctx); err != nil {
			return fmt.Errorf("broker %d unhealthy: %w", b.BrokerID(), err)
		}
	}
	return nil
}

// Terminate tears the cluster down: brokers first, then ZooKeeper, then the
// network.
func (c *KafkaCluster) Terminate(_ context.Context) error {
	return errors.Join(c.cleanup.Cleanup()...)
}
