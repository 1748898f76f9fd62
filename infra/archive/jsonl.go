// Package archive keeps a copy of every published trip plan, either in
// rotating JSONL files or as objects in an S3 bucket.
package archive

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kilianp07/evroute/core/factory"
	"github.com/kilianp07/evroute/core/notify"
)

// JSONLConfig configures the file archive. Sizes are in megabytes and ages
// in days.
type JSONLConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

// JSONLArchive appends one plan message per line and rotates the file.
type JSONLArchive struct {
	mu   sync.Mutex
	out  *lumberjack.Logger
	path string
}

func init() {
	_ = notify.RegisterPublisher("jsonl", func(conf map[string]any) (notify.Publisher, error) {
		var c JSONLConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewJSONLArchive(c)
	})
}

// NewJSONLArchive creates the parent directory of cfg.Path. MaxSizeMB
// defaults to 100.
func NewJSONLArchive(cfg JSONLConfig) (*JSONLArchive, error) {
	if cfg.Path == "" {
		return nil, errors.New("jsonl archive: path is required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 100
	}
	return &JSONLArchive{
		out: &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		},
		path: cfg.Path,
	}, nil
}

// Publish appends msg.
func (a *JSONLArchive) Publish(_ context.Context, msg notify.PlanMessage) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return json.NewEncoder(a.out).Encode(msg)
}

// Query reads the current file and uncompressed backups and returns the
// messages created at or after since, oldest first. Unreadable lines are
// skipped.
func (a *JSONLArchive) Query(_ context.Context, since time.Time) ([]notify.PlanMessage, error) {
	files, err := filepath.Glob(a.globPattern())
	if err != nil {
		return nil, err
	}
	var res []notify.PlanMessage
	for _, f := range files {
		if filepath.Ext(f) == ".gz" {
			continue
		}
		msgs, err := readJSONL(f)
		if err != nil {
			continue
		}
		for _, m := range msgs {
			if !m.CreatedAt.Before(since) {
				res = append(res, m)
			}
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

// globPattern matches the active file and lumberjack backups, which are
// named <base>-<timestamp><ext>.
func (a *JSONLArchive) globPattern() string {
	ext := filepath.Ext(a.path)
	return a.path[:len(a.path)-len(ext)] + "*" + ext + "*"
}

func readJSONL(path string) ([]notify.PlanMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var out []notify.PlanMessage
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var m notify.PlanMessage
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, sc.Err()
}

// Rotate forces a new file.
func (a *JSONLArchive) Rotate() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.out.Rotate()
}

// Close closes the current file.
func (a *JSONLArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.out.Close()
}
