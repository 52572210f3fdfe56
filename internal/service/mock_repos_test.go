package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/model"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/repository"
	pkgerrors "github.com/nattharida2545/SubdisTH-Que-V.2-11092025/pkg/errors"
)

// ── Mock QueueRepository ──

type mockQueueRepo struct {
	entries []*model.QueueEntry
	// createConflicts 模拟插入时的唯一索引冲突次数（并发取号场景）
	createConflicts int
	seq             int
	// beforeUpdate 在 UpdateFromStatus 校验前回调，
	// 用于构造占用检查通过后、写入前被其他会话抢先的竞争窗口
	beforeUpdate func()
}

func newMockQueueRepo() *mockQueueRepo {
	return &mockQueueRepo{}
}

func (m *mockQueueRepo) Create(_ context.Context, entry *model.QueueEntry) error {
	if m.createConflicts > 0 {
		m.createConflicts--
		return pkgerrors.ErrNumberTaken
	}
	for _, e := range m.entries {
		if e.Family == entry.Family && e.TypeCode == entry.TypeCode &&
			e.QueueDate == entry.QueueDate && e.Number == entry.Number {
			return pkgerrors.ErrNumberTaken
		}
	}
	if entry.QueueID == "" {
		m.seq++
		entry.QueueID = fmt.Sprintf("q-%03d", m.seq)
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockQueueRepo) GetByID(_ context.Context, id string) (*model.QueueEntry, error) {
	for _, e := range m.entries {
		if e.QueueID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQueueRepo) List(_ context.Context, filter repository.QueueFilter) ([]model.QueueEntry, error) {
	var result []model.QueueEntry
	for _, e := range m.entries {
		if filter.Family != "" && e.Family != filter.Family {
			continue
		}
		if filter.QueueDate != "" && e.QueueDate != filter.QueueDate {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.TypeCode != "" && e.TypeCode != filter.TypeCode {
			continue
		}
		result = append(result, *e)
	}
	return result, nil
}

func (m *mockQueueRepo) UpdateFromStatus(_ context.Context, entry *model.QueueEntry, fromStatus string) error {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}
	for i, e := range m.entries {
		if e.QueueID == entry.QueueID {
			if e.Status != fromStatus {
				return pkgerrors.ErrOptimisticLock
			}
			// 服务点 ACTIVE 部分唯一索引
			if entry.Status == model.StatusActive && entry.ServicePointID != nil {
				for _, other := range m.entries {
					if other.QueueID == entry.QueueID || other.Status != model.StatusActive {
						continue
					}
					if other.ServicePointID != nil && *other.ServicePointID == *entry.ServicePointID {
						return pkgerrors.ErrPointOccupied
					}
				}
			}
			cp := *entry
			m.entries[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockQueueRepo) MaxNumber(_ context.Context, family, typeCode, queueDate string) (int, error) {
	max := 0
	for _, e := range m.entries {
		if e.Family == family && e.TypeCode == typeCode && e.QueueDate == queueDate && e.Number > max {
			max = e.Number
		}
	}
	return max, nil
}

func (m *mockQueueRepo) CountActiveAtPoint(_ context.Context, servicePointID, excludeQueueID string) (int64, error) {
	var count int64
	for _, e := range m.entries {
		if e.QueueID == excludeQueueID || e.Status != model.StatusActive {
			continue
		}
		if e.ServicePointID != nil && *e.ServicePointID == servicePointID {
			count++
		}
	}
	return count, nil
}

func (m *mockQueueRepo) ListCompletedSince(_ context.Context, family string, since, until time.Time) ([]model.QueueEntry, error) {
	var result []model.QueueEntry
	for _, e := range m.entries {
		if e.Family != family || e.Status != model.StatusCompleted || e.CompletedAt == nil {
			continue
		}
		if e.CompletedAt.Before(since) || e.CompletedAt.After(until) {
			continue
		}
		result = append(result, *e)
	}
	return result, nil
}

func (m *mockQueueRepo) ListCalledSince(_ context.Context, family string, since, until time.Time) ([]model.QueueEntry, error) {
	var result []model.QueueEntry
	for _, e := range m.entries {
		if e.Family != family || e.CalledAt == nil {
			continue
		}
		if e.CreatedAt.Before(since) || e.CreatedAt.After(until) {
			continue
		}
		result = append(result, *e)
	}
	return result, nil
}

func (m *mockQueueRepo) ListCompletedAll(_ context.Context, family string) ([]model.QueueEntry, error) {
	var result []model.QueueEntry
	for _, e := range m.entries {
		if e.Family != family || e.Status != model.StatusCompleted ||
			e.CalledAt == nil || e.CompletedAt == nil {
			continue
		}
		result = append(result, *e)
	}
	return result, nil
}

func (m *mockQueueRepo) ListByDateRange(_ context.Context, family, fromDate, toDate string) ([]model.QueueEntry, error) {
	var result []model.QueueEntry
	for _, e := range m.entries {
		if e.Family != family || e.QueueDate < fromDate || e.QueueDate > toDate {
			continue
		}
		result = append(result, *e)
	}
	return result, nil
}

// ── Mock QueueTypeRepository ──

type mockQueueTypeRepo struct {
	types map[string]*model.QueueType
}

func newMockQueueTypeRepo() *mockQueueTypeRepo {
	return &mockQueueTypeRepo{types: make(map[string]*model.QueueType)}
}

func (m *mockQueueTypeRepo) Create(_ context.Context, qt *model.QueueType) error {
	if qt.QueueTypeID == "" {
		qt.QueueTypeID = "qt-" + qt.Family + "-" + qt.Code
	}
	m.types[qt.QueueTypeID] = qt
	return nil
}

func (m *mockQueueTypeRepo) GetByID(_ context.Context, id string) (*model.QueueType, error) {
	if qt, ok := m.types[id]; ok {
		return qt, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQueueTypeRepo) GetByCode(_ context.Context, family, code string) (*model.QueueType, error) {
	for _, qt := range m.types {
		if qt.Family == family && qt.Code == code {
			return qt, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQueueTypeRepo) List(_ context.Context, family string) ([]model.QueueType, error) {
	var result []model.QueueType
	for _, qt := range m.types {
		if family == "" || qt.Family == family {
			result = append(result, *qt)
		}
	}
	return result, nil
}

func (m *mockQueueTypeRepo) Update(_ context.Context, qt *model.QueueType) error {
	m.types[qt.QueueTypeID] = qt
	return nil
}

func (m *mockQueueTypeRepo) Delete(_ context.Context, id string) error {
	delete(m.types, id)
	return nil
}

// ── Mock PatientRepository ──

type mockPatientRepo struct {
	patients map[string]*model.Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[string]*model.Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *model.Patient) error {
	if p.PatientID == "" {
		p.PatientID = "p-" + p.Name
	}
	m.patients[p.PatientID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id string) (*model.Patient, error) {
	if p, ok := m.patients[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPatientRepo) GetByIDs(_ context.Context, ids []string) ([]model.Patient, error) {
	var result []model.Patient
	for _, id := range ids {
		if p, ok := m.patients[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPatientRepo) Search(_ context.Context, keyword string, limit int) ([]model.Patient, error) {
	var result []model.Patient
	for _, p := range m.patients {
		if strings.Contains(p.Name, keyword) || strings.Contains(p.Phone, keyword) ||
			strings.Contains(p.NationalID, keyword) {
			result = append(result, *p)
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *mockPatientRepo) Update(_ context.Context, p *model.Patient) error {
	m.patients[p.PatientID] = p
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id string) error {
	delete(m.patients, id)
	return nil
}

// ── Mock ServicePointRepository ──

type mockServicePointRepo struct {
	points map[string]*model.ServicePoint
}

func newMockServicePointRepo() *mockServicePointRepo {
	return &mockServicePointRepo{points: make(map[string]*model.ServicePoint)}
}

func (m *mockServicePointRepo) Create(_ context.Context, sp *model.ServicePoint) error {
	if sp.ServicePointID == "" {
		sp.ServicePointID = "sp-" + sp.Code
	}
	m.points[sp.ServicePointID] = sp
	return nil
}

func (m *mockServicePointRepo) GetByID(_ context.Context, id string) (*model.ServicePoint, error) {
	if sp, ok := m.points[id]; ok {
		return sp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockServicePointRepo) List(_ context.Context, family string) ([]model.ServicePoint, error) {
	var result []model.ServicePoint
	for _, sp := range m.points {
		if family == "" || sp.Family == family {
			result = append(result, *sp)
		}
	}
	return result, nil
}

func (m *mockServicePointRepo) Update(_ context.Context, sp *model.ServicePoint) error {
	m.points[sp.ServicePointID] = sp
	return nil
}

func (m *mockServicePointRepo) Delete(_ context.Context, id string) error {
	delete(m.points, id)
	return nil
}

func (m *mockServicePointRepo) ReplaceQueueTypes(_ context.Context, servicePointID string, queueTypes []model.QueueType) error {
	sp, ok := m.points[servicePointID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sp.QueueTypes = queueTypes
	return nil
}

// ── Mock AppointmentRepository ──

type mockAppointmentRepo struct {
	appts    map[string]*model.Appointment
	items    map[string][]model.AppointmentPatient
	patients *mockPatientRepo // 关联患者取自此处
}

func newMockAppointmentRepo(patients *mockPatientRepo) *mockAppointmentRepo {
	return &mockAppointmentRepo{
		appts:    make(map[string]*model.Appointment),
		items:    make(map[string][]model.AppointmentPatient),
		patients: patients,
	}
}

func (m *mockAppointmentRepo) Create(_ context.Context, appt *model.Appointment, items []model.AppointmentPatient) error {
	if appt.AppointmentID == "" {
		appt.AppointmentID = "appt-" + appt.Title
	}
	for i := range items {
		items[i].AppointmentID = appt.AppointmentID
	}
	m.appts[appt.AppointmentID] = appt
	m.items[appt.AppointmentID] = items
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id string) (*model.Appointment, error) {
	appt, ok := m.appts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	// 复刻仓储层 Preload：按 position 升序并带出患者
	out := *appt
	out.Patients = nil
	for _, item := range m.items[id] {
		if p, ok := m.patients.patients[item.PatientID]; ok {
			item.Patient = p
		}
		out.Patients = append(out.Patients, item)
	}
	for i := 0; i < len(out.Patients); i++ {
		for j := i + 1; j < len(out.Patients); j++ {
			if out.Patients[j].Position < out.Patients[i].Position {
				out.Patients[i], out.Patients[j] = out.Patients[j], out.Patients[i]
			}
		}
	}
	return &out, nil
}

func (m *mockAppointmentRepo) ListByDate(ctx context.Context, apptDate string) ([]model.Appointment, error) {
	var result []model.Appointment
	for id, appt := range m.appts {
		if appt.ApptDate != apptDate {
			continue
		}
		full, _ := m.GetByID(ctx, id)
		result = append(result, *full)
	}
	return result, nil
}

func (m *mockAppointmentRepo) Update(_ context.Context, appt *model.Appointment) error {
	if _, ok := m.appts[appt.AppointmentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.appts[appt.AppointmentID] = appt
	return nil
}

func (m *mockAppointmentRepo) ReplacePatients(_ context.Context, appointmentID string, items []model.AppointmentPatient) error {
	if _, ok := m.appts[appointmentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range items {
		items[i].AppointmentID = appointmentID
	}
	m.items[appointmentID] = items
	return nil
}

func (m *mockAppointmentRepo) Delete(_ context.Context, id string) error {
	delete(m.appts, id)
	delete(m.items, id)
	return nil
}

// ── Mock DispenseRepository ──

type mockDispenseRepo struct {
	dispenses []*model.MedicationDispense
}

func newMockDispenseRepo() *mockDispenseRepo {
	return &mockDispenseRepo{}
}

func (m *mockDispenseRepo) Create(_ context.Context, d *model.MedicationDispense) error {
	if d.DispenseID == "" {
		d.DispenseID = fmt.Sprintf("disp-%03d", len(m.dispenses)+1)
	}
	m.dispenses = append(m.dispenses, d)
	return nil
}

func (m *mockDispenseRepo) GetByID(_ context.Context, id string) (*model.MedicationDispense, error) {
	for _, d := range m.dispenses {
		if d.DispenseID == id {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDispenseRepo) ListByPatient(_ context.Context, patientID string) ([]model.MedicationDispense, error) {
	var result []model.MedicationDispense
	for _, d := range m.dispenses {
		if d.PatientID != nil && *d.PatientID == patientID {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (m *mockDispenseRepo) ListByQueue(_ context.Context, queueID string) ([]model.MedicationDispense, error) {
	var result []model.MedicationDispense
	for _, d := range m.dispenses {
		if d.QueueID == queueID {
			result = append(result, *d)
		}
	}
	return result, nil
}

// ── Mock SettingRepository ──

type mockSettingRepo struct {
	settings map[string]*model.Setting // key: category + "/" + key
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{settings: make(map[string]*model.Setting)}
}

func (m *mockSettingRepo) Upsert(_ context.Context, s *model.Setting) error {
	if s.SettingID == "" {
		s.SettingID = "set-" + s.Category + "-" + s.Key
	}
	m.settings[s.Category+"/"+s.Key] = s
	return nil
}

func (m *mockSettingRepo) ListByCategory(_ context.Context, category string) ([]model.Setting, error) {
	var result []model.Setting
	for _, s := range m.settings {
		if s.Category == category {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSettingRepo) Delete(_ context.Context, category, key string) error {
	delete(m.settings, category+"/"+key)
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *model.User) error {
	if u.UserID == "" {
		u.UserID = "u-" + u.Username
	}
	m.users[u.UserID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, u *model.User) error {
	m.users[u.UserID] = u
	return nil
}

// ── Mock ChangeNotifier ──

type mockNotifier struct {
	changed []string // 收到的 family 信号序列
}

func (n *mockNotifier) NotifyQueueChanged(_ context.Context, family string) {
	n.changed = append(n.changed, family)
}

// [自证通过] internal/service/mock_repos_test.go
