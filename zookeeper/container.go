// Package zookeeper provides a testcontainers ZooKeeper fixture, the
// external coordination service for the kafka and cluster fixtures. It runs
// the ZooKeeper bundled in the same Strimzi Kafka image, so broker and
// coordinator versions always agree.
package zookeeper

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tphakala/kafkatest/internal/testutil"
	"github.com/tphakala/kafkatest/kafka"
)

// ClientPort is the ZooKeeper client port inside the container.
const ClientPort = 2181

// clientPortSpec is the testcontainers port spec for ClientPort.
const clientPortSpec = "2181/tcp"

// ZookeeperContainer wraps a testcontainers ZooKeeper instance.
type ZookeeperContainer struct {
	container testcontainers.Container
	host      string
	port      int
}

// ZookeeperConfig holds configuration for ZooKeeper container creation.
// Image fields default to the same Strimzi image the kafka package uses.
type ZookeeperConfig struct {
	// Kafka version of the Strimzi image to run (default: latest supported)
	KafkaVersion string
	// Strimzi image version (default: same as kafka.DefaultKafkaConfig)
	ImageVersion string
	// Image repository (default: "quay.io/strimzi/kafka")
	ImageRegistry string
	// Docker networks to attach, by name (optional)
	Networks []string
	// Network aliases per network name (optional)
	NetworkAliases map[string][]string
	// How long to wait for ZooKeeper to bind its port (default: 1m)
	StartupTimeout time.Duration
}

// DefaultZookeeperConfig returns a ZookeeperConfig with sensible defaults.
func DefaultZookeeperConfig() ZookeeperConfig {
	kafkaDefaults := kafka.DefaultKafkaConfig()
	return ZookeeperConfig{
		KafkaVersion:   kafkaDefaults.KafkaVersion,
		ImageVersion:   kafkaDefaults.ImageVersion,
		ImageRegistry:  kafkaDefaults.ImageRegistry,
		StartupTimeout: time.Minute,
	}
}

// NewZookeeperContainer creates and starts a ZooKeeper container.
// If config is nil, uses DefaultZookeeperConfig().
func NewZookeeperContainer(ctx context.Context, config *ZookeeperConfig) (*ZookeeperContainer, error) {
	if config == nil {
		defaultCfg := DefaultZookeeperConfig()
		config = &defaultCfg
	}

	defaults := DefaultZookeeperConfig()
	if config.KafkaVersion == "" {
		config.KafkaVersion = defaults.KafkaVersion
	}
	if config.ImageVersion == "" {
		config.ImageVersion = defaults.ImageVersion
	}
	if config.ImageRegistry == "" {
		config.ImageRegistry = defaults.ImageRegistry
	}
	if config.StartupTimeout <= 0 {
		config.StartupTimeout = defaults.StartupTimeout
	}

	imageCfg := kafka.KafkaConfig{
		KafkaVersion:  config.KafkaVersion,
		ImageVersion:  config.ImageVersion,
		ImageRegistry: config.ImageRegistry,
	}

	// Unlike the broker, ZooKeeper needs no configuration that depends on the
	// running container, so the command runs directly without a starter script.
	req := testcontainers.ContainerRequest{
		Image:          imageCfg.Image(),
		ExposedPorts:   []string{clientPortSpec},
		Env:            map[string]string{"LOG_DIR": "/tmp"},
		Networks:       config.Networks,
		NetworkAliases: config.NetworkAliases,
		Entrypoint:     []string{"sh"},
		Cmd:            []string{"-c", "bin/zookeeper-server-start.sh config/zookeeper.properties"},
		WaitingFor: wait.ForLog("binding to port").
			WithStartupTimeout(config.StartupTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start ZooKeeper container: %w", err)
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

	return &ZookeeperContainer{
		container: container,
		host:      host,
		port:      mappedPort.Int(),
	}, nil
}

// ConnectString returns the host:port clients on the host can reach.
func (c *ZookeeperContainer) ConnectString() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// GetHost returns the host address where ZooKeeper is accessible.
func (c *ZookeeperContainer) GetHost() string {
	return c.host
}

// GetPort returns the mapped client port.
func (c *ZookeeperContainer) GetPort() int {
	return c.port
}

// HealthCheck verifies ZooKeeper is serving by issuing the srvr four-letter
// command and checking for a version banner. srvr is on the default 4lw
// whitelist, ruok is not.
func (c *ZookeeperContainer) HealthCheck(ctx context.Context) error {
	if err := testutil.WaitForTCP(c.host, c.port, 30*time.Second); err != nil {
		return fmt.Errorf("zookeeper port not reachable: %w", err)
	}

	dialer := net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", c.ConnectString())
	if err != nil {
		return fmt.Errorf("failed to connect to zookeeper: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return fmt.Errorf("failed to set deadline: %w", err)
	}

	if _, err := conn.Write([]byte("srvr")); err != nil {
		return fmt.Errorf("failed to send srvr command: %w", err)
	}

	// The server closes the connection after answering a four-letter command.
	reply, err := io.ReadAll(conn)
	if err != nil {
		return fmt.Errorf("failed to read srvr reply: %w", err)
	}
	if !strings.Contains(string(reply), "Zookeeper version") {
		return fmt.Errorf("unexpected srvr reply: %q", string(reply))
	}

	return nil
}

// Terminate stops and removes the ZooKeeper container.
func (c *ZookeeperContainer) Terminate(ctx context.Context) error {
	if c.container != nil {
		if err := c.container.Terminate(ctx); err != nil {
			return fmt.Errorf("failed to terminate container: %w", err)
		}
	}
	return nil
}
