package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/ember/engine/core"
)

type AssetType uint8

const (
	AssetTypeNone AssetType = iota
	AssetTypeScript
	AssetTypeScene
	AssetTypeProject
)

type AssetInfo struct {
	Path     string
	Type     AssetType
	Modified time.Time
}

// ReloadRequester is notified when a watched script changes on disk. The
// scripting host implements it; requests are applied on the frame thread.
type ReloadRequester interface {
	RequestReload()
}

// AssetManager indexes project files and watches them for changes. Script
// edits trigger a reload request on the scripting host; everything else is
// just tracked so tooling can ask what exists.
type AssetManager struct {
	assets map[string]AssetInfo
	host   ReloadRequester

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager(host ReloadRequester) (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		host:     host,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

// Initialize starts watching the project root and all sub-directories.
func (am *AssetManager) Initialize(projectDir string) error {
	go am.start()

	return am.addRecursive(projectDir)
}

func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset watcher already closed")
	}
	return am.watchRecursive(name, false)
}

// Asset returns the index entry for a tracked path.
func (am *AssetManager) Asset(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	info, ok := am.assets[path]
	return info, ok
}

// AssetsOfType lists every tracked path of the given type.
func (am *AssetManager) AssetsOfType(t AssetType) []string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	var paths []string
	for path, info := range am.assets {
		if info.Type == t {
			paths = append(paths, path)
		}
	}
	return paths
}

func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	return nil
}

func (am *AssetManager) start() {
	for {
		select {

		case e := <-am.fsnotify.Events:
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					am.watchRecursive(e.Name, false)
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name, true)
			}
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
				am.fsnotify.Remove(e.Name)
			}

		case e := <-am.fsnotify.Errors:
			core.LogError(e.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files it finds along the way. Indexing pre-existing files
// must not look like a change, so no reload is requested here.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath, false)
		return nil
	})
}

func (am *AssetManager) handleFileEvent(path string, notify bool) {
	assetType := determineAssetType(path)
	if assetType == AssetTypeNone {
		return
	}

	am.mutex.Lock()
	am.assets[path] = AssetInfo{
		Path:     path,
		Type:     assetType,
		Modified: time.Now(),
	}
	am.mutex.Unlock()

	if notify && assetType == AssetTypeScript && am.host != nil {
		core.LogDebug("script changed on disk: %s", path)
		am.host.RequestReload()
	}
}

func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) AssetType {
	switch filepath.Ext(path) {
	case ".lua":
		return AssetTypeScript
	case ".scene":
		return AssetTypeScene
	case ".ember":
		return AssetTypeProject
	default:
		return AssetTypeNone
	}
}
