package app

import (
	"errors"
	"fmt"

	"github.com/elevate-affiliate/internal/config"
	"github.com/elevate-affiliate/internal/provider"
	"github.com/elevate-affiliate/internal/router"
	"github.com/elevate-affiliate/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		httpService := NewHTTPService(addr, engine)
		services = append(services, httpService)
	}

	// 初始化 Worker 服务，未启用队列时 API 进程自行承担过期清扫
	if needsWorker(cfg, mode) {
		consumer := worker.NewConsumer(container)
		var scheduler worker.SweepScheduler
		if container.QueueClient != nil {
			scheduler = container.QueueClient
		}
		workerService, err := worker.NewService(cfg, consumer, scheduler)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}

	if len(services) == 0 {
		return nil, fmt.Errorf("mode %q starts no services", mode)
	}

	return NewRunner(services...), nil
}

func needsWorker(cfg *config.Config, mode string) bool {
	switch mode {
	case ModeAll, ModeWorker:
		return true
	case ModeAPI:
		return !cfg.Queue.Enabled
	default:
		return false
	}
}

// Run 应用启动入口
func Run(opts Options) error {
	opts, err := normalizeOptions(opts)
	if err != nil {
		return err
	}
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
