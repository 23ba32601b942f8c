package testutil

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// RequireDockerAccess skips the test when no docker socket is reachable
func RequireDockerAccess(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	sockets := []string{"/var/run/docker.sock"}
	if home, err := os.UserHomeDir(); err == nil {
		sockets = append(sockets, filepath.Join(home, ".docker", "run", "docker.sock"))
	}
	for _, socket := range sockets {
		conn, err := net.DialTimeout("unix", socket, time.Second)
		if err == nil {
			_ = conn.Close()
			return
		}
	}
	t.Skip("docker is not available")
}
