package hostspec

import (
	"fmt"

	"github.com/siftail/dtop/internal/dockerx"
)

// NewClient builds the dockerx.Client a Spec describes. certDir is only
// consulted for Kind == TLS; sshKeyPath and sshKnownHosts only for Kind
// == SSH (spec.md §6: "ssh uses the local SSH agent or default identity
// files when no key is given").
func NewClient(s Spec, certDir, sshKeyPath, sshKnownHosts string) (dockerx.Client, error) {
	switch s.Kind {
	case Local:
		return dockerx.NewLocalClient()
	case TCP:
		return dockerx.NewTCPClient(s.Addr)
	case TLS:
		return dockerx.NewTLSClient(s.Addr, certDir)
	case SSH:
		return newSSHClient(s, sshKeyPath, sshKnownHosts)
	default:
		return nil, fmt.Errorf("hostspec: unknown kind for %q", s.Raw)
	}
}
