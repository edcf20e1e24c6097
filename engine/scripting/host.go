package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/filesystem"
	"github.com/spaghettifunk/ember/engine/resources"
)

// Host owns the scripting runtime: it loads a project's script bundle into a
// fresh Lua state (the game assembly) and notifies observers when a load
// completes. Reload requests may arrive from watcher goroutines; they are
// queued and only applied by ProcessPending on the frame thread, so observers
// never run concurrently with a tick.
type Host struct {
	fs          *filesystem.FileSystem
	project     *resources.Project
	assembly    *Assembly
	observers   []func()
	reloads     chan struct{}
	initialized bool
}

func NewHost(fs *filesystem.FileSystem) *Host {
	return &Host{
		fs:      fs,
		reloads: make(chan struct{}, 1),
	}
}

func (h *Host) Initialize() error {
	if h.initialized {
		return nil
	}
	h.initialized = true
	core.LogInfo("Scripting host initialized")
	return nil
}

// OnGameAssemblyLoaded registers an observer invoked, in registration order,
// every time a game assembly finishes loading.
func (h *Host) OnGameAssemblyLoaded(fn func()) {
	h.observers = append(h.observers, fn)
}

// GameAssembly returns the currently loaded assembly, nil before the first
// successful load.
func (h *Host) GameAssembly() *Assembly {
	return h.assembly
}

// LoadProjectAssembly loads the project's script bundle and fires the
// assembly-loaded observers. Must run on the frame thread.
func (h *Host) LoadProjectAssembly(project *resources.Project) error {
	if !h.initialized {
		return fmt.Errorf("scripting host is not initialized")
	}
	h.project = project

	assembly, err := h.buildAssembly(project)
	if err != nil {
		return err
	}
	// The previous generation is dropped wholesale; handles into it are
	// invalid from here on.
	h.assembly = assembly

	core.LogInfo("Game assembly loaded: %d script types", len(assembly.types))
	for _, observer := range h.observers {
		observer()
	}
	return nil
}

func (h *Host) buildAssembly(project *resources.Project) (*Assembly, error) {
	l := lua.NewState()
	lua.OpenLibraries(l)

	if err := lua.DoString(l, preludeSource); err != nil {
		return nil, fmt.Errorf("script prelude: %w", err)
	}

	scriptsDir := h.fs.Resolve(project.ScriptsDir)
	scripts, err := listScripts(scriptsDir)
	if err != nil {
		return nil, err
	}
	for _, script := range scripts {
		if err := lua.DoFile(l, script); err != nil {
			return nil, fmt.Errorf("script %s: %w", script, err)
		}
	}

	assembly := &Assembly{
		state:  l,
		byName: map[string]*ScriptType{},
	}
	if err := assembly.enumerateTypes(); err != nil {
		return nil, err
	}
	return assembly, nil
}

// listScripts returns the bundle's .lua files in deterministic (sorted)
// order. A missing scripts directory is an empty bundle, not an error.
func listScripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read scripts dir: %w", err)
	}

	var scripts []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lua") {
			continue
		}
		scripts = append(scripts, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(scripts)
	return scripts, nil
}

// RequestReload queues an assembly reload. Safe to call from any goroutine;
// redundant requests collapse into one.
func (h *Host) RequestReload() {
	select {
	case h.reloads <- struct{}{}:
	default:
	}
}

// ProcessPending applies at most one queued reload. Called once per frame
// from the tick, which is what keeps assembly swaps off other threads.
func (h *Host) ProcessPending() {
	select {
	case <-h.reloads:
	default:
		return
	}
	if h.project == nil {
		return
	}
	core.LogInfo("Reloading game assembly...")
	if err := h.LoadProjectAssembly(h.project); err != nil {
		core.LogError("game assembly reload failed: %s", err)
	}
}
