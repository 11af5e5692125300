package config

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Manager holds the live configuration and watches the config file for
// changes. Only dynamic settings (log level) take effect mid-session;
// structural changes apply on the next start and are logged as such.
type Manager struct {
	mu      sync.RWMutex
	path    string
	config  *Config
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup

	// OnReload is called with the new config after a successful reload.
	OnReload func(*Config)
}

func NewManager() (*Manager, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return NewManagerFrom(path)
}

func NewManagerFrom(path string) (*Manager, error) {
	config, err := LoadFrom(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Manager{path: path, config: config}, nil
}

func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	configCopy := *m.config
	return &configCopy
}

func (m *Manager) StartWatching(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	m.watcher = watcher

	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return err
	}

	m.wg.Add(1)
	go m.watchLoop(ctx)

	log.Debug("watching config for changes", "path", m.path)
	return nil
}

func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
}

func (m *Manager) watchLoop(ctx context.Context) {
	defer m.wg.Done()
	configFileName := filepath.Base(m.path)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				m.reload()
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("config watcher error", "err", err)

		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) reload() {
	newConfig, err := LoadFrom(m.path)
	if err != nil {
		log.Warn("config reload failed", "err", err)
		return
	}
	if err := newConfig.Validate(); err != nil {
		log.Warn("ignoring invalid config after reload", "err", err)
		return
	}

	m.mu.Lock()
	old := m.config
	m.config = newConfig
	m.mu.Unlock()

	structural := old.Model != newConfig.Model ||
		old.Broker != newConfig.Broker ||
		old.Audio != newConfig.Audio ||
		old.Console != newConfig.Console
	if structural {
		log.Info("structural config change detected, restart to apply")
	}
	log.Info("configuration reloaded", "path", m.path)

	if m.OnReload != nil {
		m.OnReload(newConfig)
	}
}
