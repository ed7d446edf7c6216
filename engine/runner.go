package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/mediarank/core"
	"github.com/rushteam/mediarank/docstore"
)

// Job 是刷新流程中的一个串行步骤。
type Job struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Runner 在后台串行执行刷新流程，并把进度写入状态文档供轮询。
// 同一时刻只允许一个流程在跑，重复触发直接拒绝。
type Runner struct {
	Docs   *docstore.Docs
	Logger zerolog.Logger

	mu      sync.Mutex
	running bool
}

// ErrRefreshRunning 表示已有刷新流程在执行。
var ErrRefreshRunning = core.NewDomainError(core.ModuleDocs, core.ErrorCodeInvalidInput, "engine: refresh already running")

// Start 启动后台刷新流程，立即返回。进度通过 Status 轮询。
func (r *Runner) Start(ctx context.Context, jobs []Job) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrRefreshRunning
	}
	r.running = true
	r.mu.Unlock()

	_ = r.Docs.SaveRunStatus(ctx, docstore.RunStatus{
		Status:    "running",
		StartedAt: time.Now(),
	})

	go r.run(ctx, jobs)
	return nil
}

func (r *Runner) run(ctx context.Context, jobs []Job) {
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	total := len(jobs)
	for i, job := range jobs {
		_ = r.Docs.SaveRunStatus(ctx, docstore.RunStatus{
			Step:     job.Name,
			Status:   "running",
			Progress: float64(i) / float64(total),
		})
		r.Logger.Info().Str("step", job.Name).Msg("refresh step started")

		if err := job.Fn(ctx); err != nil {
			r.Logger.Error().Err(err).Str("step", job.Name).Msg("refresh step failed")
			_ = r.Docs.SaveRunStatus(ctx, docstore.RunStatus{
				Step:     job.Name,
				Status:   "failed",
				Message:  err.Error(),
				Progress: float64(i) / float64(total),
			})
			return
		}
	}

	_ = r.Docs.SaveRunStatus(ctx, docstore.RunStatus{
		Status:   "done",
		Progress: 1,
	})
	r.Logger.Info().Int("steps", total).Msg("refresh completed")
}

// Status 返回当前刷新状态。
func (r *Runner) Status(ctx context.Context) (docstore.RunStatus, error) {
	return r.Docs.LoadRunStatus(ctx)
}

// RefreshJobs 返回标准刷新流程：重建索引 → 生成离线分数 → 作废排除集合。
func (e *Engine) RefreshJobs(force bool) []Job {
	return []Job{
		{Name: "rebuild_indexes", Fn: func(ctx context.Context) error {
			return e.Rebuild(ctx, force)
		}},
		{Name: "generate_scores", Fn: func(ctx context.Context) error {
			return e.GenerateScores(ctx)
		}},
		{Name: "invalidate_sets", Fn: func(ctx context.Context) error {
			e.Sets.Invalidate()
			return nil
		}},
	}
}
