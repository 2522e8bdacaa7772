package systems

import (
	"errors"
	"sync"

	"github.com/spaghettifunk/grindsim/engine/core"
)

// JobTask is one unit of CPU work. OnComplete or OnFailure runs on the
// worker after Run returns, then OnCompletionCallback.
type JobTask struct {
	Name                 string
	Run                  func() error
	OnComplete           func()
	OnFailure            func(err error)
	OnCompletionCallback func()
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup
	once       sync.Once
}

var ErrNoWorkers = errors.New("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}
	js.start()
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	if job.OnCompletionCallback != nil {
		defer job.OnCompletionCallback()
	}
	if err := job.Run(); err != nil {
		core.LogError("Job '%s' failed: %s", job.Name, err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete()
	}
}

/**
 * @brief Shuts the job system down after the queued jobs have run.
 */
func (js *JobSystem) Shutdown() error {
	js.once.Do(func() {
		close(js.jobQueue)
	})
	js.wg.Wait()
	return nil
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full.
 */
func (js *JobSystem) Submit(jt JobTask) {
	js.jobQueue <- jt
}

// RunAll runs every task on the pool and waits for all of them. It returns
// the first error in task order.
func (js *JobSystem) RunAll(tasks []JobTask) error {
	errs := make([]error, len(tasks))
	var done sync.WaitGroup
	done.Add(len(tasks))
	for i := range tasks {
		i := i
		task := tasks[i]
		inner := task.OnFailure
		task.OnFailure = func(err error) {
			errs[i] = err
			if inner != nil {
				inner(err)
			}
		}
		prev := task.OnCompletionCallback
		task.OnCompletionCallback = func() {
			if prev != nil {
				prev()
			}
			done.Done()
		}
		js.Submit(task)
	}
	done.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
