package kafka

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// supported_kafka.versions lists the Kafka versions shipped in the Strimzi
// images this fixture knows how to launch, one version per line.
//
//go:embed supported_kafka.versions
var rawSupportedVersions string

var supportedVersions = parseSupportedVersions(rawSupportedVersions)

// parseSupportedVersions splits the embedded version list and orders it by
// semantic version, oldest first. Lexicographic ordering would misplace
// versions once a minor or patch component reaches two digits, so ordering
// goes through semver.
func parseSupportedVersions(raw string) []string {
	versions := make([]*semver.Version, 0, 8)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := semver.NewVersion(line)
		if err != nil {
			panic(fmt.Sprintf("kafkatest: invalid version %q in supported_kafka.versions: %v", line, err))
		}
		versions = append(versions, v)
	}
	if len(versions) == 0 {
		panic("kafkatest: supported_kafka.versions is empty")
	}

	sort.Sort(semver.Collection(versions))

	ordered := make([]string, len(versions))
	for i, v := range versions {
		ordered[i] = v.Original()
	}
	return ordered
}

// SupportedKafkaVersions returns the Kafka versions this fixture supports,
// ordered oldest to newest.
func SupportedKafkaVersions() []string {
	out := make([]string, len(supportedVersions))
	copy(out, supportedVersions)
	return out
}

// LatestKafkaVersion returns the newest supported Kafka version. It is the
// default when the caller does not pin a version.
func LatestKafkaVersion() string {
	return supportedVersions[len(supportedVersions)-1]
}

// isSupportedKafkaVersion reports whether v is in the supported set.
func isSupportedKafkaVersion(v string) bool {
	for _, s := range supportedVersions {
		if s == v {
			return true
		}
	}
	return false
}
