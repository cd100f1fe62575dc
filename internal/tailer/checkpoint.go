package tailer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nxadm/tail"
	"go.uber.org/zap"

	"github.com/livp123/wowclp/internal/utils/fileutil"
	"github.com/livp123/wowclp/internal/utils/logger"
)

// Start positions.
const (
	PositionStart      = "start"
	PositionEnd        = "end"
	PositionCheckpoint = "checkpoint"
)

// DefaultSaveInterval is how often offsets are flushed to disk.
const DefaultSaveInterval = 2 * time.Second

// CheckpointManager persists per-file read offsets so a restarted follower
// resumes where it stopped.
// CheckpointManager 持久化每个文件的读取偏移量，使重启后可以续读。
type CheckpointManager struct {
	log      *zap.SugaredLogger
	mu       sync.Mutex
	offsets  map[string]int64
	file     string
	interval time.Duration
	ticker   *time.Ticker
	stop     chan struct{}
	stopOnce sync.Once
}

// NewCheckpointManager creates a manager backed by file.
// NewCheckpointManager 创建以 file 为存储的管理器。
func NewCheckpointManager(file string) *CheckpointManager {
	return &CheckpointManager{
		log:      logger.Get(context.Background()),
		offsets:  make(map[string]int64),
		file:     file,
		interval: DefaultSaveInterval,
		stop:     make(chan struct{}),
	}
}

// Load reads offsets from disk. A missing file is not an error.
// Load 从磁盘读取偏移量，文件不存在不视为错误。
func (cm *CheckpointManager) Load() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	data, err := os.ReadFile(cm.file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		cm.log.Warnf("[WARN]  Failed to load checkpoints: %v", err)
		return err
	}

	if err := json.Unmarshal(data, &cm.offsets); err != nil {
		cm.log.Warnf("[WARN]  Failed to parse checkpoints: %v", err)
		return err
	}
	return nil
}

// Save writes offsets to disk.
// Save 将偏移量写入磁盘。
func (cm *CheckpointManager) Save() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.file == "" {
		return nil
	}

	data, err := json.MarshalIndent(cm.offsets, "", "  ")
	if err != nil {
		return err
	}
	if err := fileutil.AtomicWriteFile(cm.file, data, 0644); err != nil {
		cm.log.Warnf("[WARN]  Failed to save checkpoints: %v", err)
		return err
	}
	return nil
}

// Start loads saved offsets and begins periodic saving.
// Start 加载已保存的偏移量并开始定期保存。
func (cm *CheckpointManager) Start() {
	_ = cm.Load()
	cm.ticker = time.NewTicker(cm.interval)
	go func() {
		for {
			select {
			case <-cm.ticker.C:
				_ = cm.Save()
			case <-cm.stop:
				return
			}
		}
	}()
}

// Stop stops periodic saving and does a final save.
// Stop 停止定期保存并执行最后一次保存。
func (cm *CheckpointManager) Stop() error {
	cm.stopOnce.Do(func() {
		if cm.ticker != nil {
			cm.ticker.Stop()
		}
		close(cm.stop)
	})
	return cm.Save()
}

// UpdateOffset records the offset for a file.
func (cm *CheckpointManager) UpdateOffset(file string, offset int64) {
	cm.mu.Lock()
	cm.offsets[key(file)] = offset
	cm.mu.Unlock()
}

// Offset returns the saved offset for a file.
func (cm *CheckpointManager) Offset(file string) (int64, bool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	off, ok := cm.offsets[key(file)]
	return off, ok
}

// SeekInfo returns where to start reading file for the given position.
// A checkpoint beyond the current size means the log was recreated, so
// reading restarts from the beginning. Without a usable checkpoint the
// follower starts at the end.
// SeekInfo 根据起始位置返回读取 file 的起点。
func (cm *CheckpointManager) SeekInfo(file, position string) *tail.SeekInfo {
	switch position {
	case PositionStart:
		return &tail.SeekInfo{Offset: 0, Whence: io.SeekStart}
	case PositionCheckpoint, "offset":
		saved, ok := cm.Offset(file)
		if ok {
			info, err := os.Stat(file)
			if err == nil {
				if info.Size() < saved {
					cm.log.Infof("[ROTATE] Combat log %s was recreated (size %d < offset %d), reading from start", file, info.Size(), saved)
					return &tail.SeekInfo{Offset: 0, Whence: io.SeekStart}
				}
				return &tail.SeekInfo{Offset: saved, Whence: io.SeekStart}
			}
		}
		return &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	default:
		return &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}
}

func key(file string) string {
	if abs, err := filepath.Abs(file); err == nil {
		return abs
	}
	return file
}
