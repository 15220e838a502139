package queue

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/elevate-affiliate/internal/config"
	"github.com/elevate-affiliate/internal/constants"

	"github.com/hibiken/asynq"
)

// DefaultQueue 默认队列名称
const DefaultQueue = constants.QueueDefault

const (
	defaultConcurrency    = 10
	whatsAppMaxRetry      = 3
	whatsAppTaskTimeout   = 30 * time.Second
	whatsAppTaskRetention = 24 * time.Hour
	sweepTaskTimeout      = 2 * time.Minute
)

// Client asynq 客户端包装；未启用队列时所有入队操作都是空操作
type Client struct {
	inner *asynq.Client
	queue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	c := &Client{queue: DefaultQueue}
	if cfg == nil || !cfg.Enabled {
		return c, nil
	}
	c.inner = asynq.NewClient(buildRedisOpt(cfg))
	return c, nil
}

// Enabled 是否真正连接了队列
func (c *Client) Enabled() bool {
	return c != nil && c.inner != nil
}

// Close 关闭底层连接
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.inner.Close()
}

// EnqueueCouponWhatsApp 投递优惠券通知；同一张券在保留期内只投递一次
func (c *Client) EnqueueCouponWhatsApp(payload CouponWhatsAppPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewCouponWhatsAppTask(payload)
	if err != nil {
		return err
	}
	base := []asynq.Option{
		asynq.MaxRetry(whatsAppMaxRetry),
		asynq.Timeout(whatsAppTaskTimeout),
		asynq.Retention(whatsAppTaskRetention),
	}
	if payload.CouponID != 0 {
		base = append(base, asynq.TaskID(fmt.Sprintf("coupon-whatsapp-%d", payload.CouponID)))
	}
	return c.enqueue(task, append(base, opts...))
}

// EnqueueCouponExpireSweep 投递过期清扫任务，失败不重试（下一轮会再次投递）
func (c *Client) EnqueueCouponExpireSweep(opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	base := []asynq.Option{asynq.MaxRetry(0), asynq.Timeout(sweepTaskTimeout)}
	return c.enqueue(NewCouponExpireSweepTask(), append(base, opts...))
}

func (c *Client) enqueue(task *asynq.Task, opts []asynq.Option) error {
	opts = append([]asynq.Option{asynq.Queue(c.queue)}, opts...)
	_, err := c.inner.Enqueue(task, opts...)
	// 重复投递视为成功
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// BuildServerConfig 生成 worker 端连接参数与并发设置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{DefaultQueue: 1},
	}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			serverCfg.Concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			serverCfg.Queues = cfg.Queues
		}
	}
	return buildRedisOpt(cfg), serverCfg
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
