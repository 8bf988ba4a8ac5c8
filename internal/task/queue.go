package task

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"tcg_sync_v1_202608/pkg/report"
)

// ==================== 任务定义 ====================

// JobStatus 任务状态
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job 一个待执行的后台任务
type Job struct {
	Name       string
	Run        func(ctx context.Context) error
	Status     JobStatus
	EnqueuedAt time.Time
	Err        error
}

// QueueError 队列错误
type QueueError string

func (e QueueError) Error() string {
	return string(e)
}

const (
	// ErrQueueFull 缓冲区已满，投递方立即失败而不是阻塞等待
	ErrQueueFull QueueError = "任务队列已满"
	// ErrQueueClosed 队列已停止，不再接收新任务
	ErrQueueClosed QueueError = "任务队列已关闭"
)

// ==================== 队列实现 ====================

const (
	defaultWorkers = 4
	defaultBuffer  = 1024
)

// Queue 固定工作协程数的任务队列
// 顶层同步任务和它扇出的子任务共用一个池，并发上限全局可控
type Queue struct {
	jobs     chan *Job
	workers  int
	reporter report.Reporter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
	stats  map[JobStatus]int
}

// NewQueue 创建任务队列，workers / buffer 传 0 取默认值
func NewQueue(workers, buffer int, reporter report.Reporter) *Queue {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if reporter == nil {
		reporter = report.NewLogReporter()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		jobs:     make(chan *Job, buffer),
		workers:  workers,
		reporter: reporter,
		ctx:      ctx,
		cancel:   cancel,
		stats:    make(map[JobStatus]int),
	}
}

// Start 启动工作协程池
func (q *Queue) Start() {
	log.Printf("[Queue] 启动任务队列，工作协程 %d 个，缓冲 %d", q.workers, cap(q.jobs))
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i + 1)
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	for job := range q.jobs {
		select {
		case <-q.ctx.Done():
			// 停机后只清空通道，不再执行
			q.finish(job, q.ctx.Err())
			continue
		default:
		}

		q.setStatus(job, JobRunning)
		q.runJob(id, job)
	}
}

// runJob 执行单个任务，panic 收敛为任务失败，不拖垮工作协程
func (q *Queue) runJob(workerID int, job *Job) {
	defer func() {
		if rec := recover(); rec != nil {
			q.finish(job, fmt.Errorf("任务 panic: %v", rec))
		}
	}()

	log.Printf("[Queue] 工作协程 %d 开始执行任务: %s", workerID, job.Name)
	q.finish(job, job.Run(q.ctx))
}

func (q *Queue) finish(job *Job, err error) {
	if err != nil {
		job.Err = err
		q.setStatus(job, JobFailed)
		// 失败只上报不重试，下一轮周期同步天然补偿
		q.reporter.Report(err, map[string]interface{}{"job": job.Name})
		return
	}
	q.setStatus(job, JobCompleted)
}

func (q *Queue) setStatus(job *Job, status JobStatus) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job.Status != "" {
		q.stats[job.Status]--
	}
	job.Status = status
	q.stats[status]++
}

// Enqueue 投递任务，队列满或已关闭时立即返回错误
func (q *Queue) Enqueue(name string, run func(ctx context.Context) error) error {
	job := &Job{
		Name:       name,
		Run:        run,
		EnqueuedAt: time.Now(),
	}

	// 发送和关闭竞争会 panic，投递必须和 Stop 持同一把锁
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		job.Status = JobQueued
		q.stats[JobQueued]++
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop 停止队列：不再接收新任务，等在跑的任务退出
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
	log.Printf("[Queue] 任务队列已停止")
}

// Stats 各状态任务计数快照
func (q *Queue) Stats() map[JobStatus]int {
	q.mu.Lock()
	defer q.mu.Unlock()
	snapshot := make(map[JobStatus]int, len(q.stats))
	for status, count := range q.stats {
		snapshot[status] = count
	}
	return snapshot
}

// Pending 通道里排队中的任务数
func (q *Queue) Pending() int {
	return len(q.jobs)
}
