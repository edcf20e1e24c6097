package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/ember/engine/core"
)

// JobTask describes a unit of background work. OnStart runs on a worker
// goroutine; OnComplete and OnFailure run on the frame thread during the next
// Update, so they may safely touch engine state.
type JobTask struct {
	Name        string
	InputParams interface{}
	OnStart     func(params interface{}) (interface{}, error)
	OnComplete  func(result interface{})
	OnFailure   func(err error)
}

type jobResult struct {
	task   JobTask
	result interface{}
	err    error
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	results    chan jobResult
	wg         sync.WaitGroup
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

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
		results:    make(chan jobResult, channelSize+numWorkers),
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
				result, err := js.runJob(job)
				js.results <- jobResult{task: job, result: result, err: err}
			}
		}()
	}
}

func (js *JobSystem) runJob(job JobTask) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name, r)
		}
	}()
	return job.OnStart(job.InputParams)
}

/**
 * @brief Shuts the job system down.
 */
func (js *JobSystem) Shutdown() error {
	close(js.jobQueue)
	js.wg.Wait()
	return nil
}

/**
 * @brief Updates the job system. Should happen once an update cycle; drains
 * finished jobs and runs their callbacks on the calling thread.
 */
func (js *JobSystem) Update() {
	for {
		select {
		case res := <-js.results:
			if res.err != nil {
				core.LogError("job %s failed: %s", res.task.Name, res.err)
				if res.task.OnFailure != nil {
					res.task.OnFailure(res.err)
				}
				continue
			}
			if res.task.OnComplete != nil {
				res.task.OnComplete(res.result)
			}
		default:
			return
		}
	}
}

// AddWorkNonBlocking adds work and returns immediately even when the queue
// is full.
func (js *JobSystem) AddWorkNonBlocking(jt JobTask) {
	go js.Submit(jt)
}

/**
 * @brief Submits the provided job to be queued for execution.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) {
	js.jobQueue <- jt
}
