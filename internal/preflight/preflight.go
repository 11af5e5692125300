// Package preflight verifies external requirements before a session commits
// to running: model data on disk and a reachable broker.
package preflight

import (
	"fmt"
	"net"
	"os"
	"time"
)

// Status reports the result of one check.
type Status struct {
	OK     bool
	Detail string
}

// CheckModel verifies that speech model data exists at path.
func CheckModel(path string) Status {
	info, err := os.Stat(path)
	if err != nil {
		return Status{Detail: fmt.Sprintf("model data not found at %s", path)}
	}
	if !info.IsDir() {
		return Status{Detail: fmt.Sprintf("%s is not a model directory", path)}
	}
	return Status{OK: true, Detail: path}
}

// CheckBroker verifies that the broker accepts TCP connections.
func CheckBroker(address string, port int, timeout time.Duration) Status {
	target := net.JoinHostPort(address, fmt.Sprintf("%d", port))
	conn, err := net.DialTimeout("tcp", target, timeout)
	if err != nil {
		return Status{Detail: fmt.Sprintf("broker unreachable at %s: %v", target, err)}
	}
	conn.Close()
	return Status{OK: true, Detail: target}
}
