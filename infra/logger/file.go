package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig describes a rotating log file that receives a copy of every
// log line in JSON form.
type FileConfig struct {
	Path string
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int
}

var (
	fileMu sync.RWMutex
	file   *lumberjack.Logger
)

// SetFile tees every logger into the rotating file described by c. An
// empty Path disables file output. Any previous file is closed.
func SetFile(c FileConfig) error {
	var lj *lumberjack.Logger
	if c.Path != "" {
		if dir := filepath.Dir(c.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("log file: %w", err)
			}
		}
		lj = &lumberjack.Logger{
			Filename:   c.Path,
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
		}
	}
	fileMu.Lock()
	prev := file
	file = lj
	fileMu.Unlock()
	if prev != nil {
		return prev.Close()
	}
	return nil
}

// CloseFile closes the log file, if any. Loggers keep writing to their
// primary output afterwards.
func CloseFile() error {
	return SetFile(FileConfig{})
}

// fileTee forwards writes to the current log file and drops them when none
// is configured.
type fileTee struct{}

func (fileTee) Write(p []byte) (int, error) {
	fileMu.RLock()
	defer fileMu.RUnlock()
	if file == nil {
		return len(p), nil
	}
	return file.Write(p)
}

var _ io.Writer = fileTee{}
