package kafka

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStarterScriptContent(t *testing.T) {
	overrides := serverOverrides("PLAINTEXT://localhost:32768", []string{"172.17.0.2"}, "localhost:2181", 0, nil)

	t.Run("embedded zookeeper", func(t *testing.T) {
		script := starterScriptContent(true, overrides)

		lines := strings.Split(strings.TrimRight(script, "\n"), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "#!/bin/bash", lines[0])
		assert.Equal(t, "bin/zookeeper-server-start.sh config/zookeeper.properties &", lines[1])
		assert.True(t, strings.HasPrefix(lines[2], "bin/kafka-server-start.sh config/server.properties --override listeners="))
	})

	t.Run("external zookeeper", func(t *testing.T) {
		script := starterScriptContent(false, overrides)

		assert.NotContains(t, script, "zookeeper-server-start.sh", "external mode must not start an embedded ZooKeeper")
		lines := strings.Split(strings.TrimRight(script, "\n"), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "#!/bin/bash", lines[0])
	})

	t.Run("every override carried as a flag", func(t *testing.T) {
		script := starterScriptContent(true, overrides)
		for _, o := range overrides {
			assert.Contains(t, script, " --override "+o)
		}
	})
}
