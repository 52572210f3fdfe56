package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/model"
)

// DispenseRepository 药品发放记录数据访问接口
type DispenseRepository interface {
	Create(ctx context.Context, d *model.MedicationDispense) error
	GetByID(ctx context.Context, id string) (*model.MedicationDispense, error)
	// ListByPatient 按患者查询发放历史，按发放时间倒序
	ListByPatient(ctx context.Context, patientID string) ([]model.MedicationDispense, error)
	ListByQueue(ctx context.Context, queueID string) ([]model.MedicationDispense, error)
}

type dispenseRepo struct {
	db *gorm.DB
}

// NewDispenseRepo 创建 DispenseRepository 实例
func NewDispenseRepo(db *gorm.DB) DispenseRepository {
	return &dispenseRepo{db: db}
}

func (r *dispenseRepo) Create(ctx context.Context, d *model.MedicationDispense) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *dispenseRepo) GetByID(ctx context.Context, id string) (*model.MedicationDispense, error) {
	var d model.MedicationDispense
	err := r.db.WithContext(ctx).Preload("Patient").First(&d, "dispense_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *dispenseRepo) ListByPatient(ctx context.Context, patientID string) ([]model.MedicationDispense, error) {
	var list []model.MedicationDispense
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("dispensed_at DESC").
		Find(&list).Error
	return list, err
}

func (r *dispenseRepo) ListByQueue(ctx context.Context, queueID string) ([]model.MedicationDispense, error) {
	var list []model.MedicationDispense
	err := r.db.WithContext(ctx).
		Where("queue_id = ?", queueID).
		Order("dispensed_at DESC").
		Find(&list).Error
	return list, err
}
