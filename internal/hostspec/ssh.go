package hostspec

import "github.com/siftail/dtop/internal/dockerx"

// newSSHClient adapts a parsed ssh:// Spec into dockerx.SSHOptions. Path
// is only used as the remote socket path when the specifier carried one
// (e.g. ssh://user@host/var/run/docker.sock); otherwise dockerx picks
// the daemon default.
func newSSHClient(s Spec, keyPath, knownHosts string) (dockerx.Client, error) {
	return dockerx.NewSSHClient(dockerx.SSHOptions{
		User:           s.User,
		Addr:           s.Addr,
		Port:           s.Port,
		KeyPath:        keyPath,
		KnownHostsPath: knownHosts,
		SocketPath:     s.Path,
	})
}
