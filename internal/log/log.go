package log

import (
	"os"

	"github.com/btcsuite/btclog"
	btclogv2 "github.com/btcsuite/btclog/v2"
)

// logWriter feeds the rotating on-disk log file. InitLogRotator must be
// called before any subsystem logger writes anything for file output to
// take effect; until then writes are silently discarded.
var logWriter = NewRotatingLogWriter()

// root fans every record out to stdout and to logWriter.
var root = NewHandlerSet(
	btclogv2.NewDefaultHandler(os.Stdout),
	btclogv2.NewDefaultHandler(logWriter),
)

// InitLogRotator wires the on-disk half of root's output to a rotating log
// file under cfg.LogDir. Safe to call once during startup.
func InitLogRotator(cfg *LogRotatorConfig) error {
	return logWriter.InitLogRotator(cfg)
}

// SubLogger returns a btclog.Logger tagged with tag, suitable for passing to
// actor.EngineConfig.Log so log lines can be attributed to the component
// that emitted them.
func SubLogger(tag string) btclog.Logger {
	return btclogv2.NewSLogger(root.SubSystem(tag))
}

// SetLevel changes the logging level across every handler in the root set.
func SetLevel(level btclog.Level) {
	root.SetLevel(level)
}
