package george

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Protocol constants.
const (
	// DefaultURL is the WebSocket endpoint of the TVPaint RPC plugin.
	DefaultURL = "ws://localhost:3000"

	// ExecuteMethod is the JSON-RPC method that runs one George command.
	ExecuteMethod = "execute_george"

	// CommandPrefix is the prefix for commands sent to a socket bridge.
	CommandPrefix = "CMD:"

	// OKPrefix is the prefix for replies relayed by a socket bridge.
	OKPrefix = "OK:"

	// ErrorPrefix is the prefix for bridge-level failures.
	ErrorPrefix = "ERR:"

	// SocketPathPrefix is the prefix for bridge socket paths.
	SocketPathPrefix = "/tmp/tvpaint-george-"

	// SocketPathSuffix is the suffix for bridge socket paths.
	SocketPathSuffix = ".sock"

	// MaxLineLength is the maximum allowed length of a command line in bytes.
	MaxLineLength = 16384

	// ConnectionTimeout bounds dialing a transport. Commands themselves
	// have no timeout: a host that never answers blocks the caller.
	ConnectionTimeout = 5 * time.Second
)

// SocketPath returns the bridge socket path for a given TVPaint process ID.
func SocketPath(pid int) string {
	return fmt.Sprintf("%s%d%s", SocketPathPrefix, pid, SocketPathSuffix)
}

// BridgeSocket is a bridge socket left on disk by a TVPaint process.
type BridgeSocket struct {
	Path string
	PID  int       // TVPaint process id from the file name
	Seen time.Time // last modification of the socket file
}

// FindBridges lists the bridge sockets in dir, newest first. Files that are
// not sockets, or whose name carries no process id, are skipped.
func FindBridges(dir string) ([]BridgeSocket, error) {
	prefix := filepath.Base(SocketPathPrefix)
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"*"+SocketPathSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to glob bridge sockets: %w", err)
	}

	bridges := make([]BridgeSocket, 0, len(matches))
	for _, path := range matches {
		pid, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), prefix), SocketPathSuffix))
		if err != nil {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.Mode().Type() != fs.ModeSocket {
			continue
		}
		bridges = append(bridges, BridgeSocket{Path: path, PID: pid, Seen: info.ModTime()})
	}
	slices.SortFunc(bridges, func(a, b BridgeSocket) int {
		return b.Seen.Compare(a.Seen)
	})
	return bridges, nil
}

// DiscoverSocket returns the newest bridge socket in /tmp, or "" when there
// is none.
func DiscoverSocket() string {
	bridges, err := FindBridges(filepath.Dir(SocketPathPrefix))
	if err != nil || len(bridges) == 0 {
		return ""
	}
	return bridges[0].Path
}

// Path is a filesystem path argument. It is always sent to the host in
// forward-slash form, whatever the local separator.
type Path string

// String returns the normalized path.
func (p Path) String() string {
	return NormalizePath(string(p))
}

// NormalizePath converts a local path to the forward-slash form George expects.
func NormalizePath(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
}
