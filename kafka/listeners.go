package kafka

import (
	"fmt"
	"sort"
	"strings"
)

// Ports used by the broker inside the container. Only ClientPort is mapped to
// the host; InterBrokerPort stays container-internal.
const (
	ClientPort      = 9092
	InterBrokerPort = 9093
	ZookeeperPort   = 2181
)

// clientPortSpec is the testcontainers port spec for ClientPort.
const clientPortSpec = "9092/tcp"

// serverOverrides computes the broker configuration overrides for a started
// container. advertisedBootstrap is the externally reachable client endpoint
// (PLAINTEXT://host:mappedPort); containerIPs holds one address per attached
// Docker network, each of which gets its own uniquely named inter-broker
// listener (BROKER1, BROKER2, ...) on InterBrokerPort. Listener names must be
// unique or the broker refuses to start.
//
// Caller-supplied extra configuration is appended in sorted key order so the
// generated startup script is deterministic.
func serverOverrides(advertisedBootstrap string, containerIPs []string, zookeeperConnect string, brokerID int, extra map[string]string) []string {
	names := make([]string, 0, len(containerIPs))
	advertised := make([]string, 0, len(containerIPs)+1)
	advertised = append(advertised, advertisedBootstrap)

	for i, ip := range containerIPs {
		name := fmt.Sprintf("BROKER%d", i+1)
		names = append(names, name)
		advertised = append(advertised, fmt.Sprintf("%s://%s:%d", name, ip, InterBrokerPort))
	}

	listeners := make([]string, 0, len(names)+1)
	protocolMap := make([]string, 0, len(names)+1)
	for _, name := range names {
		listeners = append(listeners, fmt.Sprintf("%s://0.0.0.0:%d", name, InterBrokerPort))
		protocolMap = append(protocolMap, name+":PLAINTEXT")
	}
	listeners = append(listeners, fmt.Sprintf("PLAINTEXT://0.0.0.0:%d", ClientPort))
	protocolMap = append(protocolMap, "PLAINTEXT:PLAINTEXT")

	// Replication traffic goes over the first network's listener. Without any
	// attached network there is nothing to name, so fall back to the client
	// listener.
	interBroker := "PLAINTEXT"
	if len(names) > 0 {
		interBroker = names[0]
	}

	overrides := []string{
		"listeners=" + strings.Join(listeners, ","),
		"advertised.listeners=" + strings.Join(advertised, ","),
		"zookeeper.connect=" + zookeeperConnect,
		"listener.security.protocol.map=" + strings.Join(protocolMap, ","),
		"inter.broker.listener.name=" + interBroker,
		fmt.Sprintf("broker.id=%d", brokerID),
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		overrides = append(overrides, k+"="+extra[k])
	}

	return overrides
}

// overrideFlags renders overrides as kafka-server-start.sh command-line flags.
func overrideFlags(overrides []string) string {
	var b strings.Builder
	for _, o := range overrides {
		b.WriteString(" --override ")
		b.WriteString(o)
	}
	return b.String()
}
