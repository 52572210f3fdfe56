package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/dto"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/model"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/repository"
)

// ── 服务点业务错误 ──

var (
	ErrServicePointNotFound = errors.New("服务点不存在")
	ErrQueueTypeFamilyMixed = errors.New("队列类型与服务点不属于同一队列族")
)

// ServicePointService 服务点（发药窗口/检查诊间）业务接口
type ServicePointService interface {
	Create(ctx context.Context, req *dto.SaveServicePointRequest) (*dto.ServicePointResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ServicePointResponse, error)
	List(ctx context.Context, family string) ([]dto.ServicePointResponse, error)
	Update(ctx context.Context, id string, req *dto.SaveServicePointRequest) (*dto.ServicePointResponse, error)
	Delete(ctx context.Context, id string) error
	// SetQueueTypes 配置服务点可受理的队列类型（整体替换）
	SetQueueTypes(ctx context.Context, id string, req *dto.SetServicePointQueueTypesRequest) (*dto.ServicePointResponse, error)
}

type servicePointService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewServicePointService 创建 ServicePointService 实例
func NewServicePointService(repo *repository.Repository, logger *zap.Logger) ServicePointService {
	return &servicePointService{repo: repo, logger: logger}
}

func (s *servicePointService) Create(ctx context.Context, req *dto.SaveServicePointRequest) (*dto.ServicePointResponse, error) {
	if !model.ValidFamily(req.Family) {
		return nil, ErrInvalidFamily
	}

	sp := &model.ServicePoint{
		Code:    req.Code,
		Name:    req.Name,
		Family:  req.Family,
		Enabled: true,
	}
	if req.Enabled != nil {
		sp.Enabled = *req.Enabled
	}

	if err := s.repo.ServicePoint.Create(ctx, sp); err != nil {
		s.logger.Error("创建服务点失败", zap.Error(err))
		return nil, err
	}
	return toServicePointResponse(sp), nil
}

func (s *servicePointService) GetByID(ctx context.Context, id string) (*dto.ServicePointResponse, error) {
	sp, err := s.getServicePoint(ctx, id)
	if err != nil {
		return nil, err
	}
	return toServicePointResponse(sp), nil
}

func (s *servicePointService) List(ctx context.Context, family string) ([]dto.ServicePointResponse, error) {
	if family != "" && !model.ValidFamily(family) {
		return nil, ErrInvalidFamily
	}
	points, err := s.repo.ServicePoint.List(ctx, family)
	if err != nil {
		s.logger.Error("查询服务点列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ServicePointResponse, 0, len(points))
	for i := range points {
		result = append(result, *toServicePointResponse(&points[i]))
	}
	return result, nil
}

func (s *servicePointService) Update(ctx context.Context, id string, req *dto.SaveServicePointRequest) (*dto.ServicePointResponse, error) {
	if !model.ValidFamily(req.Family) {
		return nil, ErrInvalidFamily
	}

	sp, err := s.getServicePoint(ctx, id)
	if err != nil {
		return nil, err
	}

	sp.Code = req.Code
	sp.Name = req.Name
	sp.Family = req.Family
	if req.Enabled != nil {
		sp.Enabled = *req.Enabled
	}

	if err := s.repo.ServicePoint.Update(ctx, sp); err != nil {
		s.logger.Error("更新服务点失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toServicePointResponse(sp), nil
}

func (s *servicePointService) Delete(ctx context.Context, id string) error {
	if _, err := s.getServicePoint(ctx, id); err != nil {
		return err
	}
	if err := s.repo.ServicePoint.Delete(ctx, id); err != nil {
		s.logger.Error("删除服务点失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *servicePointService) SetQueueTypes(ctx context.Context, id string, req *dto.SetServicePointQueueTypesRequest) (*dto.ServicePointResponse, error) {
	sp, err := s.getServicePoint(ctx, id)
	if err != nil {
		return nil, err
	}

	// 逐个校验类型存在且与服务点同族
	types := make([]model.QueueType, 0, len(req.QueueTypeIDs))
	for _, qtID := range req.QueueTypeIDs {
		qt, err := s.repo.QueueType.GetByID(ctx, qtID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrQueueTypeNotFound
			}
			s.logger.Error("查询队列类型失败", zap.String("id", qtID), zap.Error(err))
			return nil, err
		}
		if qt.Family != sp.Family {
			return nil, ErrQueueTypeFamilyMixed
		}
		types = append(types, *qt)
	}

	if err := s.repo.ServicePoint.ReplaceQueueTypes(ctx, id, types); err != nil {
		s.logger.Error("配置服务点队列类型失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *servicePointService) getServicePoint(ctx context.Context, id string) (*model.ServicePoint, error) {
	sp, err := s.repo.ServicePoint.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServicePointNotFound
		}
		s.logger.Error("查询服务点失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return sp, nil
}

func toServicePointResponse(sp *model.ServicePoint) *dto.ServicePointResponse {
	resp := &dto.ServicePointResponse{
		ID:      sp.ServicePointID,
		Code:    sp.Code,
		Name:    sp.Name,
		Family:  sp.Family,
		Enabled: sp.Enabled,
	}
	for i := range sp.QueueTypes {
		resp.QueueTypes = append(resp.QueueTypes, *toQueueTypeResponse(&sp.QueueTypes[i]))
	}
	return resp
}

// [自证通过] internal/service/service_point_service.go
