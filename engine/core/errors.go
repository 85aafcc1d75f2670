package core

import (
	"errors"
)

var (
	// scene graph
	ErrSelfChild       = errors.New("a node cannot be added as its own child")
	ErrDuplicateChild  = errors.New("node is already a child of this parent")
	ErrAlreadyParented = errors.New("node already has a parent, remove it first")
	ErrCycle           = errors.New("node is an ancestor of the new parent")

	// render submission
	ErrNilScene    = errors.New("scene is nil")
	ErrNilCamera   = errors.New("camera is nil")
	ErrNilGeometry = errors.New("drawable has no geometry")
	ErrNilMaterial = errors.New("drawable has no material")

	// gpu resources
	ErrProgramBuild = errors.New("program build failed")
	ErrTextureBuild = errors.New("texture build failed")
	ErrBufferBuild  = errors.New("buffer build failed")
	ErrDisposed     = errors.New("resource was disposed")

	// job system
	ErrNoWorkers           = errors.New("attempting to create worker pool with less than 1 worker")
	ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")
	ErrJobSystemStopped    = errors.New("job system is shut down")
	ErrNilJob              = errors.New("job has no OnStart")

	ErrNotInitialized      = errors.New("system not initialized")
	ErrUnknownConfigFormat = errors.New("unknown config file format")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrUnknown             = errors.New("unknown")
)
