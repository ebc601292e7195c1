package kafka

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/log"
	"github.com/testcontainers/testcontainers-go/wait"
)

// starterScript is the path the broker launch script is written to. The
// container entrypoint polls for it, which sequences "container up" after
// "listener configuration ready": the mapped port and per-network addresses
// needed for advertised.listeners only exist once the container has started.
const starterScript = "/testcontainers_start.sh"

// KafkaContainer wraps a testcontainers single-node Kafka broker instance
// running a Strimzi image.
type KafkaContainer struct {
	container testcontainers.Container
	brokerID  int
	host      string
	port      int
}

// NewKafkaContainer creates and starts a Kafka broker container.
// If config is nil, uses DefaultKafkaConfig().
func NewKafkaContainer(ctx context.Context, config *KafkaConfig) (*KafkaContainer, error) {
	if config == nil {
		defaultCfg := DefaultKafkaConfig()
		config = &defaultCfg
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid kafka config: %w", err)
	}

	cfg := *config

	req := testcontainers.ContainerRequest{
		Image:          cfg.Image(),
		ExposedPorts:   []string{clientPortSpec},
		Env:            map[string]string{"LOG_DIR": "/tmp"},
		Networks:       cfg.Networks,
		NetworkAliases: cfg.NetworkAliases,
		Entrypoint:     []string{"sh"},
		Cmd: []string{
			"-c",
			"while [ ! -f " + starterScript + " ]; do sleep 0.1; done; " + starterScript,
		},
		LifecycleHooks: []testcontainers.ContainerLifecycleHooks{
			{PostStarts: []testcontainers.ContainerHook{configureBroker(cfg)}},
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Kafka container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		// Use background context for cleanup to ensure it succeeds even if parent ctx expired
		_ = container.Terminate(context.Background())
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, clientPortSpec)
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	return &KafkaContainer{
		container: container,
		brokerID:  cfg.BrokerID,
		host:      host,
		port:      mappedPort.Int(),
	}, nil
}

// configureBroker returns the post-start hook that derives the listener
// configuration from the running container, writes the launch script, and
// waits for the broker to report started.
func configureBroker(cfg KafkaConfig) testcontainers.ContainerHook {
	return func(ctx context.Context, c testcontainers.Container) error {
		host, err := c.Host(ctx)
		if err != nil {
			return fmt.Errorf("failed to get container host: %w", err)
		}

		mappedPort, err := c.MappedPort(ctx, clientPortSpec)
		if err != nil {
			return fmt.Errorf("failed to get mapped port: %w", err)
		}

		containerIPs, err := c.ContainerIPs(ctx)
		if err != nil {
			return fmt.Errorf("failed to get container addresses: %w", err)
		}

		bootstrap := fmt.Sprintf("PLAINTEXT://%s", net.JoinHostPort(host, strconv.Itoa(mappedPort.Int())))

		embeddedZookeeper := cfg.ExternalZookeeper == ""
		zookeeperConnect := cfg.ExternalZookeeper
		if embeddedZookeeper {
			zookeeperConnect = fmt.Sprintf("localhost:%d", ZookeeperPort)
		}

		overrides := serverOverrides(bootstrap, containerIPs, zookeeperConnect, cfg.BrokerID, cfg.AdditionalConfig)
		script := starterScriptContent(embeddedZookeeper, overrides)

		log.Default().Printf("kafkatest: broker %d advertising %s", cfg.BrokerID, bootstrap)

		if err := c.CopyToContainer(ctx, []byte(script), starterScript, 0o700); err != nil {
			return fmt.Errorf("failed to copy starter script: %w", err)
		}

		if err := wait.ForLog("started (kafka.server.KafkaServer)").
			WithStartupTimeout(cfg.StartupTimeout).
			WaitUntilReady(ctx, c); err != nil {
			return fmt.Errorf("broker did not report started: %w", err)
		}

		return nil
	}
}

// starterScriptContent renders the launch script written into the container.
// In embedded mode a ZooKeeper is started in the background before the broker.
func starterScriptContent(embeddedZookeeper bool, overrides []string) string {
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	if embeddedZookeeper {
		b.WriteString("bin/zookeeper-server-start.sh config/zookeeper.properties &\n")
	}
	b.WriteString("bin/kafka-server-start.sh config/server.properties")
	b.WriteString(overrideFlags(overrides))
	b.WriteString("\n")
	return b.String()
}

// BootstrapServers returns the externally reachable bootstrap endpoint in
// listener form, e.g. "PLAINTEXT://localhost:32768".
func (c *KafkaContainer) BootstrapServers() string {
	return fmt.Sprintf("PLAINTEXT://%s", c.BootstrapAddress())
}

// BootstrapAddress returns the externally reachable host:port for clients.
func (c *KafkaContainer) BootstrapAddress() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// GetHost returns the host address where the broker is accessible.
func (c *KafkaContainer) GetHost() string {
	return c.host
}

// GetPort returns the mapped port where the client listener is accessible.
func (c *KafkaContainer) GetPort() int {
	return c.port
}

// BrokerID returns the broker.id the container was started with.
func (c *KafkaContainer) BrokerID() int {
	return c.brokerID
}

// Container returns the underlying testcontainers container for advanced use
// such as log inspection or exec.
func (c *KafkaContainer) Container() testcontainers.Container {
	return c.container
}

// Terminate stops and removes the Kafka container.
func (c *KafkaContainer) Terminate(ctx context.Context) error {
	if c.container != nil {
		if err := c.container.Terminate(ctx); err != nil {
			return fmt.Errorf("failed to terminate container: %w", err)
		}
	}
	return nil
}
