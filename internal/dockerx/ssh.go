package dockerx

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/docker/client"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHOptions configures an ssh:// host (spec.md §6). An empty KeyPath
// falls back to the SSH agent, then ~/.ssh/id_ed25519, then ~/.ssh/id_rsa
// (see sshAuthMethods); an empty KnownHostsPath defaults to
// ~/.ssh/known_hosts; an empty SocketPath defaults to the daemon's
// standard socket.
type SSHOptions struct {
	User          string
	Addr          string // host, no port
	Port          int    // 0 -> 22
	KeyPath       string
	KnownHostsPath string
	SocketPath    string
}

// NewSSHClient dials the daemon over an SSH tunnel, the way docker/cli's
// connhelper package does it: one ssh.Client per host, and every Docker
// API call rides a "unix" dial through that connection to the remote
// daemon socket. docker/docker/client has no native ssh:// support
// without importing docker/cli, so this is hand-rolled against
// golang.org/x/crypto/ssh, the transport library the pack already uses
// for outbound connections.
func NewSSHClient(opts SSHOptions) (*RealClient, error) {
	port := opts.Port
	if port == 0 {
		port = 22
	}
	sock := opts.SocketPath
	if sock == "" {
		sock = "/var/run/docker.sock"
	}

	auth, err := sshAuthMethods(opts.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("dockerx: ssh auth: %w", err)
	}
	hostKeyCB, err := sshHostKeyCallback(opts.KnownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("dockerx: ssh host key: %w", err)
	}

	cfg := &ssh.ClientConfig{
		User:            opts.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCB,
		Timeout:         10 * time.Second,
	}

	sshConn, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", opts.Addr, port), cfg)
	if err != nil {
		return nil, fmt.Errorf("dockerx: ssh dial %s: %w", opts.Addr, err)
	}

	dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
		return sshConn.Dial("unix", sock)
	}

	cli, err := client.NewClientWithOpts(
		client.WithHost("http://docker.sock"),
		client.WithDialContext(dial),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		sshConn.Close()
		return nil, fmt.Errorf("dockerx: create ssh client: %w", err)
	}
	return &RealClient{cli: cli, sshConn: sshConn}, nil
}

// sshAuthMethods tries, in order: an explicit private key file, the
// running SSH agent, then the user's default identity files.
func sshAuthMethods(keyPath string) ([]ssh.AuthMethod, error) {
	if keyPath != "" {
		signer, err := signerFromFile(keyPath)
		if err != nil {
			return nil, err
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}

	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			agentClient := agent.NewClient(conn)
			return []ssh.AuthMethod{ssh.PublicKeysCallback(agentClient.Signers)}, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("no ssh key given, no agent, and home dir unknown: %w", err)
	}
	for _, name := range []string{"id_ed25519", "id_rsa"} {
		if signer, err := signerFromFile(filepath.Join(home, ".ssh", name)); err == nil {
			return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
		}
	}
	return nil, fmt.Errorf("no ssh key given, no agent reachable, and no default identity file found")
}

func signerFromFile(path string) (ssh.Signer, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key %s: %w", path, err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse key %s: %w", path, err)
	}
	return signer, nil
}

// sshHostKeyCallback builds a knownhosts.HostKeyCallback against
// knownHostsPath, defaulting to ~/.ssh/known_hosts.
func sshHostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	path := knownHostsPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("home dir unknown: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts %s: %w", path, err)
	}
	return cb, nil
}
