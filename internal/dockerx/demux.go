package dockerx

import (
	"fmt"
	"io"

	"github.com/docker/docker/pkg/stdcopy"
)

// demuxLogs separates a container log stream's interleaved stdout/stderr
// frames into a single plain byte stream, the same io.Pipe + stdcopy
// pattern siftail's internal/dockerx/real.go uses for ContainerLogs.
func demuxLogs(src io.ReadCloser) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		defer src.Close()
		if _, err := stdcopy.StdCopy(pw, pw, src); err != nil {
			pw.CloseWithError(fmt.Errorf("dockerx: log demux: %w", err))
		}
	}()
	return pr
}
