package kafka

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// defaultImageRegistry is the repository the broker images are pulled from.
const defaultImageRegistry = "quay.io/strimzi/kafka"

// defaultImageVersion is the Strimzi image release the supported Kafka
// versions belong to. Image tags combine both: <image>-kafka-<kafka>.
const defaultImageVersion = "0.32.0"

// envPrefix scopes the environment variables the fixture honors:
// KAFKATEST_IMAGE_REGISTRY, KAFKATEST_IMAGE_VERSION, KAFKATEST_KAFKA_VERSION.
const envPrefix = "KAFKATEST"

// KafkaConfig holds configuration for Kafka container creation.
type KafkaConfig struct {
	// Kafka version to run (default: latest supported, see LatestKafkaVersion)
	KafkaVersion string
	// Strimzi image version the tag is built from (default: "0.32.0")
	ImageVersion string
	// Image repository (default: "quay.io/strimzi/kafka")
	ImageRegistry string
	// Broker id injected as a broker.id override (default: 0)
	BrokerID int
	// Additional broker configuration, emitted as --override key=value flags
	AdditionalConfig map[string]string
	// External ZooKeeper connect string; empty runs an embedded ZooKeeper
	// inside the broker container
	ExternalZookeeper string
	// Docker networks to attach, by name (optional)
	Networks []string
	// Network aliases per network name (optional)
	NetworkAliases map[string][]string
	// How long to wait for the broker to report started (default: 2m)
	StartupTimeout time.Duration
}

// DefaultKafkaConfig returns a KafkaConfig with sensible defaults. Image and
// version defaults can be overridden through KAFKATEST_* environment
// variables without touching test code.
func DefaultKafkaConfig() KafkaConfig {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault("image_registry", defaultImageRegistry)
	v.SetDefault("image_version", defaultImageVersion)
	v.SetDefault("kafka_version", LatestKafkaVersion())

	return KafkaConfig{
		KafkaVersion:   v.GetString("kafka_version"),
		ImageVersion:   v.GetString("image_version"),
		ImageRegistry:  v.GetString("image_registry"),
		BrokerID:       0,
		StartupTimeout: 2 * time.Minute,
	}
}

// validate fills unset fields from defaults and rejects unsupported versions.
func (c *KafkaConfig) validate() error {
	defaults := DefaultKafkaConfig()

	if c.KafkaVersion == "" {
		c.KafkaVersion = defaults.KafkaVersion
	}
	if c.ImageVersion == "" {
		c.ImageVersion = defaults.ImageVersion
	}
	if c.ImageRegistry == "" {
		c.ImageRegistry = defaults.ImageRegistry
	}
	if c.StartupTimeout <= 0 {
		c.StartupTimeout = defaults.StartupTimeout
	}
	if c.BrokerID < 0 {
		return fmt.Errorf("broker id must not be negative: %d", c.BrokerID)
	}

	// Registry and image version overrides are a supported escape hatch for
	// mirrored images, so only the Kafka version is validated against the
	// catalogue, and only for the stock registry.
	if c.ImageRegistry == defaultImageRegistry && !isSupportedKafkaVersion(c.KafkaVersion) {
		return fmt.Errorf("unsupported Kafka version %q (supported: %v)", c.KafkaVersion, SupportedKafkaVersions())
	}

	return nil
}

// Image returns the full image reference for the configured versions, e.g.
// "quay.io/strimzi/kafka:0.32.0-kafka-3.3.1".
func (c *KafkaConfig) Image() string {
	return fmt.Sprintf("%s:%s-kafka-%s", c.ImageRegistry, c.ImageVersion, c.KafkaVersion)
}
