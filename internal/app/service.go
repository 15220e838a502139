package app

import (
	"context"
	"errors"
	"os/signal"
	"time"

	"go.uber.org/zap"
)

var (
	errServiceExited = errors.New("service exited unexpectedly")
	errNoServices    = errors.New("no services to run")
)

// Service 由 Runner 托管的长驻组件（HTTP、后台任务）
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 并行启动全部服务，任一退出即整体收尾
type Runner struct {
	services []Service
}

// NewRunner 创建服务运行器，nil 服务会被忽略
func NewRunner(services ...Service) *Runner {
	kept := make([]Service, 0, len(services))
	for _, svc := range services {
		if svc != nil {
			kept = append(kept, svc)
		}
	}
	return &Runner{services: kept}
}

// RunWithOptions 监听系统信号并运行
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errNoServices
	}
	opts, err := normalizeOptions(opts)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), opts.Signals...)
	defer stop()
	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

type exitResult struct {
	name string
	err  error
}

// Run 阻塞直到 ctx 取消或某个服务退出，随后按注册顺序停止全部服务
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errNoServices
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exits := make(chan exitResult, len(r.services))
	for _, svc := range r.services {
		go func() {
			log.Infow("service_start", "service", svc.Name())
			exits <- exitResult{name: svc.Name(), err: svc.Start(ctx)}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Infow("runner_signal_received")
	case exit := <-exits:
		log.Infow("service_exit", "service", exit.name, "error", exit.err)
		runErr = exit.err
		if runErr == nil && ctx.Err() == nil {
			runErr = errServiceExited
		}
	}
	cancel()

	if stopTimeout <= 0 {
		stopTimeout = defaultShutdownTimeout
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	for _, svc := range r.services {
		if err := svc.Stop(stopCtx); err != nil {
			log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}
	log.Infow("runner_shutdown_complete")
	return runErr
}
