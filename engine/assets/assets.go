package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/h2non/filetype"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/sync/errgroup"

	"github.com/hq2318768188/FFEngine/engine/assets/loaders"
	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
	"github.com/hq2318768188/FFEngine/engine/resources"
)

type AssetInfo struct {
	Path       string
	Type       AssetType
	LastLoaded time.Time
}

// AssetEvent reports a change to an indexed file.
type AssetEvent struct {
	Info AssetInfo
	Op   fsnotify.Op
}

// JobSubmitter runs decode work off the calling goroutine.
type JobSubmitter interface {
	Submit(jt metadata.JobTask) error
}

/**
 * @brief Indexes the asset directory, keeps the index current through
 * fsnotify and loads images through the source cache so every file is
 * decoded once while someone holds it.
 */
type AssetManager struct {
	assetsDir string
	assets    map[string]AssetInfo
	loader    ImageLoader
	shaders   *loaders.ShaderLoader
	sources   *SourceCache
	jobs      JobSubmitter
	bus       *core.EventBus

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	changes  chan AssetEvent
}

func NewAssetManager(bus *core.EventBus, sources *SourceCache, jobs JobSubmitter) (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loader:   &loaders.ImageLoader{},
		shaders:  &loaders.ShaderLoader{},
		sources:  sources,
		jobs:     jobs,
		bus:      bus,
		fsnotify: fsWatch,
		changes:  make(chan AssetEvent, 64),
		done:     make(chan struct{}),
	}, nil
}

// Initialize indexes assetsDir, which may start with ~, and watches it.
// An empty directory disables the index.
func (am *AssetManager) Initialize(assetsDir string) error {
	go am.start()

	if assetsDir == "" {
		return nil
	}
	dir, err := homedir.Expand(assetsDir)
	if err != nil {
		return err
	}
	am.mutex.Lock()
	am.assetsDir = filepath.Clean(dir)
	am.mutex.Unlock()

	return am.addRecursive(am.assetsDir)
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset watcher already closed")
	}
	return am.watchRecursive(name, false)
}

// Changes delivers index updates. Events are dropped when nobody reads.
func (am *AssetManager) Changes() <-chan AssetEvent {
	return am.changes
}

func (am *AssetManager) AssetsDir() string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return am.assetsDir
}

// Lookup returns the index entry of a path relative to the asset directory.
func (am *AssetManager) Lookup(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[filepath.ToSlash(path)]
	return info, ok
}

func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// resolve maps an indexed relative path into the asset directory. Other
// paths are used as given.
func (am *AssetManager) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	if _, ok := am.assets[filepath.ToSlash(path)]; ok {
		return filepath.Join(am.assetsDir, path)
	}
	return path
}

func sourceKey(path string, flipY bool) string {
	if flipY {
		return path + "#flipY"
	}
	return path
}

/**
 * @brief Returns the decoded image at path with one hold for the caller.
 * A cached source is shared; otherwise the file is decoded and registered.
 * The hold is given back by a sourceRelease event, which a texture
 * publishes for each of its sources when disposed.
 */
func (am *AssetManager) LoadImage(path string, flipY bool) (*resources.Source, error) {
	key := sourceKey(path, flipY)
	if s := am.sources.GetSource(key); s != nil {
		return s, nil
	}

	s, err := am.loader.Load(am.resolve(path), flipY)
	if err != nil {
		core.LogError("failed to load image `%s`: %s", path, err)
		return nil, err
	}
	s.Path = key
	if !am.sources.CacheSource(key, s) {
		// lost a race with another loader of the same path
		if existing := am.sources.GetSource(key); existing != nil {
			return existing, nil
		}
		am.sources.CacheSource(key, s)
	}

	am.mutex.Lock()
	if info, ok := am.assets[filepath.ToSlash(path)]; ok {
		info.LastLoaded = time.Now()
		am.assets[info.Path] = info
	}
	am.mutex.Unlock()
	return s, nil
}

// LoadShaderSource reads an indexed GLSL stage without its #version line.
func (am *AssetManager) LoadShaderSource(path string) (string, error) {
	info, ok := am.Lookup(path)
	if !ok || info.Type != AssetTypeShader {
		return "", fmt.Errorf("%w: `%s` is not an indexed shader", core.ErrAssetNotFound, path)
	}
	source, err := am.shaders.Load(am.resolve(path))
	if err != nil {
		return "", err
	}
	am.mutex.Lock()
	info.LastLoaded = time.Now()
	am.assets[info.Path] = info
	am.mutex.Unlock()
	return source, nil
}

// LoadImageAsync decodes on the job system and reports on a worker.
func (am *AssetManager) LoadImageAsync(path string, flipY bool, callback func(*resources.Source, error)) error {
	if am.jobs == nil {
		return core.ErrNotInitialized
	}
	return am.jobs.Submit(metadata.JobTask{
		JobType:  metadata.JOB_TYPE_RESOURCE_LOAD,
		Priority: metadata.JOB_PRIORITY_NORMAL,
		OnStart: func(params interface{}) (interface{}, error) {
			return am.LoadImage(path, flipY)
		},
		OnComplete: func(result interface{}) {
			callback(result.(*resources.Source), nil)
		},
		OnFailure: func(err error) {
			callback(nil, err)
		},
	})
}

// LoadTexture builds a 2D texture over the image at path. The texture
// takes over the hold on its source.
func (am *AssetManager) LoadTexture(path string) (*resources.Texture, error) {
	s, err := am.LoadImage(path, true)
	if err != nil {
		return nil, err
	}
	t := resources.NewTexture(am.bus, s.Width, s.Height)
	t.Name = path
	t.SetSource(0, s)
	return t, nil
}

/**
 * @brief Builds a cube texture from six face images in +X, -X, +Y, -Y, +Z,
 * -Z order, decoding the faces concurrently. Every face must have the
 * size of the first one.
 */
func (am *AssetManager) LoadCubeTexture(paths [resources.CubeFaceCount]string) (*resources.Texture, error) {
	var faces [resources.CubeFaceCount]*resources.Source

	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			s, err := am.LoadImage(path, false)
			if err != nil {
				return err
			}
			faces[i] = s
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		for i, s := range faces[1:] {
			if s.Width != faces[0].Width || s.Height != faces[0].Height {
				err = fmt.Errorf("%w: cube face %d is %dx%d, expected %dx%d",
					core.ErrTextureBuild, i+1, s.Width, s.Height, faces[0].Width, faces[0].Height)
				break
			}
		}
	}
	if err != nil {
		for _, s := range faces {
			if s != nil {
				am.sources.Release(s.Path)
			}
		}
		return nil, err
	}

	t := resources.NewCubeTexture(am.bus, faces[0].Width, faces[0].Height)
	t.Name = paths[0]
	for i, s := range faces {
		t.SetSource(i, s)
	}
	return t, nil
}

func (am *AssetManager) start() {
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					am.watchRecursive(e.Name, false)
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name, e.Op)
			}
			// Can't stat a deleted path, so just try to remove it from the watch list too.
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name, e.Op)
				am.fsnotify.Remove(e.Name)
			}

		case e, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(e.Error())

		case <-am.done:
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list.
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
		am.handleFileEvent(walkPath, fsnotify.Create)
		return nil
	})
}

func (am *AssetManager) relative(path string) string {
	am.mutex.RLock()
	dir := am.assetsDir
	am.mutex.RUnlock()
	if rel, err := filepath.Rel(dir, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string, op fsnotify.Op) {
	assetType := determineAssetType(path)
	if assetType == AssetTypeNone {
		return
	}
	info := AssetInfo{
		Path: am.relative(path),
		Type: assetType,
	}

	am.mutex.Lock()
	if old, ok := am.assets[info.Path]; ok {
		info.LastLoaded = old.LastLoaded
	}
	am.assets[info.Path] = info
	am.mutex.Unlock()

	am.notify(AssetEvent{Info: info, Op: op})
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string, op fsnotify.Op) {
	rel := am.relative(path)

	am.mutex.Lock()
	info, ok := am.assets[rel]
	delete(am.assets, rel)
	am.mutex.Unlock()

	if ok {
		am.notify(AssetEvent{Info: info, Op: op})
	}
}

func (am *AssetManager) notify(e AssetEvent) {
	select {
	case am.changes <- e:
	default:
	}
}

/**
 * @brief Classifies by extension, falling back to the file header for
 * images with an unusual or missing extension.
 */
func determineAssetType(path string) AssetType {
	switch filepath.Ext(path) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return AssetTypeImage
	case ".vert", ".frag", ".glsl":
		return AssetTypeShader
	}
	file, err := os.Open(path)
	if err != nil {
		return AssetTypeNone
	}
	defer file.Close()

	// 261 bytes is what filetype needs to match every known type
	head := make([]byte, 261)
	n, _ := file.Read(head)
	if filetype.IsImage(head[:n]) {
		return AssetTypeImage
	}
	return AssetTypeNone
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	return am.fsnotify.Close()
}
