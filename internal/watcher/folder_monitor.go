package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kuroonai/submaker/pkg/utils"
)

// FileHandler receives paths of media files once they have stopped
// changing.
type FileHandler interface {
	OnMediaFile(filePath string)
}

// FolderMonitor watches a directory and hands quiescent media files to the
// handler. Writes are debounced per file so a file still being copied in is
// not picked up half-written.
type FolderMonitor struct {
	watcher        *fsnotify.Watcher
	folderPath     string
	fileExtensions []string
	handler        FileHandler
	debounceTime   time.Duration

	mutex        sync.Mutex
	pendingFiles map[string]*time.Timer
	stopChan     chan struct{}
	stopOnce     sync.Once
}

// NewFolderMonitor creates a monitor for folderPath reacting to the given
// extensions (lowercase, with dot).
func NewFolderMonitor(folderPath string, extensions []string, handler FileHandler, debounceTime time.Duration) (*FolderMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	return &FolderMonitor{
		watcher:        watcher,
		folderPath:     folderPath,
		fileExtensions: extensions,
		handler:        handler,
		debounceTime:   debounceTime,
		pendingFiles:   make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start begins watching. The folder is created if missing.
func (m *FolderMonitor) Start() error {
	if err := os.MkdirAll(m.folderPath, 0755); err != nil {
		return fmt.Errorf("creating watched folder: %w", err)
	}

	if err := m.watcher.Add(m.folderPath); err != nil {
		return fmt.Errorf("watching folder: %w", err)
	}

	go m.watchLoop()

	utils.Info("watching folder: %s", m.folderPath)
	return nil
}

// Stop ends watching and cancels pending debounce timers.
func (m *FolderMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.watcher.Close()

		m.mutex.Lock()
		defer m.mutex.Unlock()
		for _, timer := range m.pendingFiles {
			timer.Stop()
		}

		utils.Info("stopped watching folder: %s", m.folderPath)
	})
}

func (m *FolderMonitor) watchLoop() {
	for {
		select {
		case <-m.stopChan:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.handleFileEvent(event)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			utils.Error("watching folder: %v", err)
		}
	}
}

func (m *FolderMonitor) handleFileEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	if !m.isWatchedFile(event.Name) {
		return
	}

	// restart the debounce timer; the handler fires only after the file has
	// been quiet for debounceTime
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if timer, exists := m.pendingFiles[event.Name]; exists {
		timer.Stop()
	}

	path := event.Name
	m.pendingFiles[path] = time.AfterFunc(m.debounceTime, func() {
		m.mutex.Lock()
		delete(m.pendingFiles, path)
		m.mutex.Unlock()

		select {
		case <-m.stopChan:
			return
		default:
		}

		utils.Debug("file settled: %s", path)
		m.handler.OnMediaFile(path)
	})
}

func (m *FolderMonitor) isWatchedFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, watched := range m.fileExtensions {
		if ext == watched {
			return true
		}
	}
	return false
}
