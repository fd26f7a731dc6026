// Package assets indexes the compiled shaders on disk and keeps the index
// current while the program runs.
package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/vkcore/engine/core"
)

type ShaderStage int

const (
	ShaderStageNone ShaderStage = iota
	ShaderStageVertex
	ShaderStageFragment
	ShaderStageCompute
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageFragment:
		return "fragment"
	case ShaderStageCompute:
		return "compute"
	default:
		return "none"
	}
}

// ShaderInfo is one compiled shader found under the catalog root.
type ShaderInfo struct {
	Name     string // e.g. "clear.frag"
	Path     string
	Stage    ShaderStage
	Modified time.Time
}

// ChangeKind says what happened to a shader.
type ChangeKind int

const (
	Updated ChangeKind = iota
	Removed
)

type Change struct {
	Kind   ChangeKind
	Shader ShaderInfo
}

// ShaderCatalog watches a directory tree for *.spv files. Lookups are safe
// from any goroutine; changes are delivered on Changes.
type ShaderCatalog struct {
	root    string
	shaders map[string]ShaderInfo
	mutex   sync.RWMutex

	watcher  *fsnotify.Watcher
	changes  chan Change
	done     chan struct{}
	wg       sync.WaitGroup
	isClosed bool
	closeErr error
	log      *core.Logger
}

// NewShaderCatalog indexes root and starts watching it. A missing root is
// not an error: the catalog is empty until the directory appears under a
// watched parent.
func NewShaderCatalog(root string, log *core.Logger) (*ShaderCatalog, error) {
	if log == nil {
		log = core.NewNopLogger()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	sc := &ShaderCatalog{
		root:    root,
		shaders: make(map[string]ShaderInfo),
		watcher: w,
		changes: make(chan Change, 16),
		done:    make(chan struct{}),
		log:     log.With("catalog", root),
	}
	if _, err := os.Stat(root); err == nil {
		if err := sc.watchRecursive(root); err != nil {
			w.Close()
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		w.Close()
		return nil, err
	} else {
		sc.log.Warnf("shader directory does not exist")
	}

	sc.wg.Add(1)
	go sc.run()
	return sc, nil
}

// Changes reports shader updates and removals. Events are dropped if nobody
// keeps up with the channel.
func (sc *ShaderCatalog) Changes() <-chan Change {
	return sc.changes
}

func (sc *ShaderCatalog) Lookup(name string) (ShaderInfo, bool) {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	info, ok := sc.shaders[name]
	return info, ok
}

// List returns all known shaders sorted by name.
func (sc *ShaderCatalog) List() []ShaderInfo {
	sc.mutex.RLock()
	out := make([]ShaderInfo, 0, len(sc.shaders))
	for _, info := range sc.shaders {
		out = append(out, info)
	}
	sc.mutex.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Close stops watching and reports the error from closing the watcher, if any.
// Changes is closed once the watcher goroutine exits.
func (sc *ShaderCatalog) Close() error {
	sc.mutex.Lock()
	if sc.isClosed {
		sc.mutex.Unlock()
		return nil
	}
	sc.isClosed = true
	sc.mutex.Unlock()

	close(sc.done)
	sc.wg.Wait()
	return sc.closeErr
}

func (sc *ShaderCatalog) run() {
	defer sc.wg.Done()
	defer close(sc.changes)
	defer func() { sc.closeErr = sc.watcher.Close() }()

	for {
		select {
		case e, ok := <-sc.watcher.Events:
			if !ok {
				return
			}
			sc.handleEvent(e)
		case err, ok := <-sc.watcher.Errors:
			if !ok {
				return
			}
			sc.log.Errorf("watch error: %v", err)
		case <-sc.done:
			return
		}
	}
}

func (sc *ShaderCatalog) handleEvent(e fsnotify.Event) {
	if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if e.Op&fsnotify.Create != 0 {
				if err := sc.watchRecursive(e.Name); err != nil {
					sc.log.Warnf("watch %s: %v", e.Name, err)
				}
			}
			return
		}
		if info, ok := sc.index(e.Name); ok {
			sc.notify(Change{Kind: Updated, Shader: info})
		}
	}
	if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		if info, ok := sc.forget(e.Name); ok {
			sc.notify(Change{Kind: Removed, Shader: info})
		}
		// the path may have been a directory; removing an unknown watch just fails
		_ = sc.watcher.Remove(e.Name)
	}
}

func (sc *ShaderCatalog) notify(c Change) {
	select {
	case sc.changes <- c:
	default:
		sc.log.Debugf("change for %s dropped", c.Shader.Name)
	}
}

// watchRecursive adds root and every directory below it, indexing files on the way.
func (sc *ShaderCatalog) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return sc.watcher.Add(path)
		}
		sc.index(path)
		return nil
	})
}

func (sc *ShaderCatalog) index(path string) (ShaderInfo, bool) {
	name, stage, ok := ParseShaderName(path)
	if !ok {
		return ShaderInfo{}, false
	}
	info := ShaderInfo{Name: name, Path: path, Stage: stage}
	if s, err := os.Stat(path); err == nil {
		info.Modified = s.ModTime()
	}
	sc.mutex.Lock()
	sc.shaders[name] = info
	sc.mutex.Unlock()
	sc.log.Debugf("indexed %s (%s)", name, stage)
	return info, true
}

func (sc *ShaderCatalog) forget(path string) (ShaderInfo, bool) {
	name, _, ok := ParseShaderName(path)
	if !ok {
		return ShaderInfo{}, false
	}
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	info, exists := sc.shaders[name]
	if !exists || info.Path != path {
		return ShaderInfo{}, false
	}
	delete(sc.shaders, name)
	return info, true
}

// ParseShaderName splits "dir/clear.frag.spv" into "clear.frag" and its stage.
func ParseShaderName(path string) (string, ShaderStage, bool) {
	base := filepath.Base(path)
	if filepath.Ext(base) != ".spv" {
		return "", ShaderStageNone, false
	}
	name := strings.TrimSuffix(base, ".spv")
	switch filepath.Ext(name) {
	case ".vert":
		return name, ShaderStageVertex, true
	case ".frag":
		return name, ShaderStageFragment, true
	case ".comp":
		return name, ShaderStageCompute, true
	default:
		return name, ShaderStageNone, true
	}
}
