// Package kafka provides a testcontainers-based single-node Kafka broker
// fixture for integration tests, built on the Strimzi Kafka images.
//
// The broker's listener configuration depends on addresses that only exist
// once the container is running, so the container entrypoint waits for a
// launch script that the fixture writes in a post-start hook. By default the
// broker runs with an embedded ZooKeeper; for multi-container setups point it
// at an external one (see the zookeeper and cluster packages).
//
// Typical usage with TestMain:
//
//	var broker *kafka.KafkaContainer
//
//	func TestMain(m *testing.M) {
//	    var err error
//	    broker, err = kafka.NewKafkaContainer(context.Background(), nil)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    code := m.Run()
//	    _ = broker.Terminate(context.Background())
//	    os.Exit(code)
//	}
//
// Image selection can be overridden without code changes through the
// KAFKATEST_IMAGE_REGISTRY, KAFKATEST_IMAGE_VERSION and
// KAFKATEST_KAFKA_VERSION environment variables.
package kafka
