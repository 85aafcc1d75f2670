package assets

import (
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/hq2318768188/FFEngine/engine/containers"
	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/resources"
)

// HashPath is the cache key of a path.
func HashPath(path string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(path))
	return h.Sum64()
}

/**
 * @brief Shares decoded sources by path. An entry is present exactly while
 * someone holds it: registration counts as the first hold, every hit adds
 * one and every sourceRelease event gives one back.
 */
type SourceCache struct {
	owner   string
	bus     *core.EventBus
	sources *containers.RefCache[uint64, *resources.Source]
}

func NewSourceCache(bus *core.EventBus) *SourceCache {
	sc := &SourceCache{
		owner: uuid.NewString(),
		bus:   bus,
		sources: containers.NewRefCache("sources", func(key uint64, s *resources.Source) {
			core.LogDebug("source `%s` released", s.Path)
		}),
	}
	bus.AddEventListener(core.EVENT_SOURCE_RELEASE, sc.owner, sc.onSourceRelease)
	return sc
}

// GetSource returns the cached source for path and takes a hold on it, or
// nil on a miss.
func (sc *SourceCache) GetSource(path string) *resources.Source {
	s, ok := sc.sources.AcquireExisting(HashPath(path))
	if !ok {
		return nil
	}
	return s
}

/**
 * @brief Registers source under path with one hold for the caller. The first
 * registration wins; later ones change nothing and return false.
 */
func (sc *SourceCache) CacheSource(path string, source *resources.Source) bool {
	key := HashPath(path)
	source.HashCode = key
	return sc.sources.Insert(key, source)
}

// Release gives back one hold on the source registered under path.
func (sc *SourceCache) Release(path string) bool {
	return sc.sources.Release(HashPath(path))
}

func (sc *SourceCache) onSourceRelease(event *core.Event) {
	var key uint64
	switch {
	case event.Target != nil:
		s, ok := event.Target.(*resources.Source)
		if !ok {
			return
		}
		key = s.HashCode
	case event.UserData != nil:
		path, ok := event.UserData.(string)
		if !ok {
			return
		}
		key = HashPath(path)
	default:
		return
	}
	sc.sources.Release(key)
}

func (sc *SourceCache) RefCount(path string) uint32 {
	return sc.sources.RefCount(HashPath(path))
}

func (sc *SourceCache) Len() int {
	return sc.sources.Len()
}

func (sc *SourceCache) Shutdown() error {
	sc.bus.RemoveEventListener(core.EVENT_SOURCE_RELEASE, sc.owner)
	sc.sources.Purge()
	return nil
}
