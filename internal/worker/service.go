package worker

import (
	"context"
	"errors"
	"time"

	"github.com/elevate-affiliate/internal/config"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultCouponSweepInterval = 5 * time.Minute

// SweepScheduler 清扫任务入队方
type SweepScheduler interface {
	Enabled() bool
	EnqueueCouponExpireSweep(opts ...asynq.Option) error
}

// Service 异步队列服务
// 队列关闭时只运行本地过期清扫循环
type Service struct {
	name          string
	server        *asynq.Server
	mux           *asynq.ServeMux
	consumer      *Consumer
	scheduler     SweepScheduler
	sweepInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer, scheduler SweepScheduler) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	svc := &Service{
		name:          "worker",
		consumer:      consumer,
		sweepInterval: resolveSweepInterval(cfg.Worker),
	}
	if cfg.Queue.Enabled {
		opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
		svc.server = asynq.NewServer(opt, serverCfg)
		svc.mux = asynq.NewServeMux()
		consumer.Register(svc.mux)
		if scheduler != nil && scheduler.Enabled() {
			svc.scheduler = scheduler
		}
	}
	return svc, nil
}

func resolveSweepInterval(cfg config.WorkerConfig) time.Duration {
	if cfg.CouponSweepIntervalSeconds <= 0 {
		return defaultCouponSweepInterval
	}
	return time.Duration(cfg.CouponSweepIntervalSeconds) * time.Second
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.consumer == nil {
		return errors.New("worker not initialized")
	}
	if s.server == nil {
		s.runSweepLoop(ctx)
		return nil
	}
	go s.runSweepLoop(ctx)
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runSweepLoop 定时清扫：有队列时入队由任一 worker 执行，否则本地直接执行
func (s *Service) runSweepLoop(ctx context.Context) {
	runOnce := func() {
		if s.scheduler != nil {
			err := s.scheduler.EnqueueCouponExpireSweep(asynq.Unique(s.sweepInterval))
			if err == nil || errors.Is(err, asynq.ErrDuplicateTask) {
				return
			}
			logger.Warnw("worker_coupon_sweep_enqueue_failed", "error", err)
		}
		_ = s.consumer.sweepExpiredCoupons()
	}
	runOnce()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
