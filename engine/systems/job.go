package systems

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
)

/**
 * @brief A fixed pool of workers fed by one queue per priority. Workers
 * prefer the high queue, then normal, then low.
 */
type JobSystem struct {
	numWorkers int
	queues     [3]chan metadata.JobTask
	quit       chan struct{}
	stopped    atomic.Bool
	wg         sync.WaitGroup
	// submitters that may still be sending
	pending atomic.Int32
}

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, core.ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, core.ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		quit:       make(chan struct{}),
	}
	for i := range js.queues {
		js.queues[i] = make(chan metadata.JobTask, channelSize)
	}

	js.start()

	return js, nil
}

func (js *JobSystem) queue(p metadata.JobPriority) chan metadata.JobTask {
	switch p {
	case metadata.JOB_PRIORITY_HIGH:
		return js.queues[2]
	case metadata.JOB_PRIORITY_LOW:
		return js.queues[0]
	default:
		return js.queues[1]
	}
}

func (js *JobSystem) start() {
	high, normal, low := js.queues[2], js.queues[1], js.queues[0]
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for {
				// take any waiting high priority work first
				select {
				case job := <-high:
					js.run(job)
					continue
				default:
				}
				select {
				case job := <-high:
					js.run(job)
				case job := <-normal:
					js.run(job)
				case job := <-low:
					js.run(job)
				case <-js.quit:
					js.drain()
					return
				}
			}
		}()
	}
}

// drain runs whatever was queued before shutdown.
func (js *JobSystem) drain() {
	for i := len(js.queues) - 1; i >= 0; i-- {
		for {
			select {
			case job := <-js.queues[i]:
				js.run(job)
				continue
			default:
			}
			break
		}
	}
}

func (js *JobSystem) run(job metadata.JobTask) {
	result, err := job.OnStart(job.InputParams)
	if err != nil {
		core.LogError(err.Error())
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete(result)
	}
}

/**
 * @brief Shuts the job system down. Every job a Submit accepted still runs,
 * the ones that land after the workers stopped run on the caller.
 */
func (js *JobSystem) Shutdown() error {
	if !js.stopped.CompareAndSwap(false, true) {
		return nil
	}
	close(js.quit)
	js.wg.Wait()

	// a send racing the close may still land; once no submitter is left
	// nothing else can
	for {
		js.drain()
		if js.pending.Load() == 0 {
			js.drain()
			return nil
		}
		runtime.Gosched()
	}
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue of its priority is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt metadata.JobTask) error {
	if jt.OnStart == nil {
		return core.ErrNilJob
	}
	js.pending.Add(1)
	defer js.pending.Add(-1)
	if js.stopped.Load() {
		return core.ErrJobSystemStopped
	}
	select {
	case js.queue(jt.Priority) <- jt:
		return nil
	case <-js.quit:
		return core.ErrJobSystemStopped
	}
}

// TrySubmit queues the job only if there is room right away.
func (js *JobSystem) TrySubmit(jt metadata.JobTask) bool {
	if jt.OnStart == nil {
		return false
	}
	js.pending.Add(1)
	defer js.pending.Add(-1)
	if js.stopped.Load() {
		return false
	}
	select {
	case js.queue(jt.Priority) <- jt:
		return true
	default:
		return false
	}
}
