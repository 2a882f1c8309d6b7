package hostspec

import (
	"fmt"
	"os"

	"github.com/siftail/dtop/internal/core"
)

// Dedup rejects a set of specs containing two distinct specifiers that
// derive the same HostId (spec.md §9, open question: "this spec rejects
// the second at startup with a ConfigError-equivalent diagnostic"; also
// the round-trip property that ssh://u@h:22 and ssh://u@h collide).
func Dedup(specs []Spec) error {
	seen := make(map[core.HostId]string, len(specs))
	for _, s := range specs {
		id := s.HostId()
		if prior, ok := seen[id]; ok {
			return fmt.Errorf("hostspec: host %q and %q both resolve to id %q", prior, s.Raw, id)
		}
		seen[id] = s.Raw
	}
	return nil
}

// ResolveCertDir returns the TLS certificate directory for a Spec,
// falling back to DOCKER_CERT_PATH (spec.md §6).
func ResolveCertDir(s Spec, certDirFlag string) string {
	if certDirFlag != "" {
		return certDirFlag
	}
	return os.Getenv("DOCKER_CERT_PATH")
}
