package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/config"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/dto"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/model"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/repository"
)

// ── 测试辅助 ──

func setupTestQueueService() (QueueService, *mockQueueRepo, *mockNotifier) {
	queueRepo := newMockQueueRepo()
	typeRepo := newMockQueueTypeRepo()
	patientRepo := newMockPatientRepo()

	// 预置药房 A 类型（前缀 A，三位补零）与停用的 B 类型
	typeRepo.Create(context.Background(), &model.QueueType{
		Family: model.FamilyPharmacy, Code: "GEN", Name: "一般", Prefix: "A", Format: "000", Enabled: true,
	})
	typeRepo.Create(context.Background(), &model.QueueType{
		Family: model.FamilyPharmacy, Code: "OLD", Name: "停用", Prefix: "B", Format: "00", Enabled: false,
	})
	typeRepo.Create(context.Background(), &model.QueueType{
		Family: model.FamilyInspection, Code: "INS", Name: "检查", Prefix: "I", Format: "0", Enabled: true,
	})

	repo := &repository.Repository{
		Queue:     queueRepo,
		QueueType: typeRepo,
		Patient:   patientRepo,
	}
	cfg := &config.Config{Queue: config.QueueConfig{AllocateMaxRetries: 3}}
	notifier := &mockNotifier{}
	svc := NewQueueService(cfg, repo, notifier, zap.NewNop())
	return svc, queueRepo, notifier
}

func mustCreateQueue(t *testing.T, svc QueueService, family, typeCode string) *dto.QueueEntryResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), &dto.CreateQueueRequest{
		Family:    family,
		TypeCode:  typeCode,
		QueueDate: "2026-09-01",
	})
	if err != nil {
		t.Fatalf("取号应成功: %v", err)
	}
	return resp
}

// ── Create（取号）测试 ──

func TestQueueService_Create_SequentialNumbers(t *testing.T) {
	svc, _, _ := setupTestQueueService()

	for want := 1; want <= 3; want++ {
		resp := mustCreateQueue(t, svc, model.FamilyPharmacy, "GEN")
		if resp.Number != want {
			t.Errorf("期望序号=%d，实际=%d", want, resp.Number)
		}
		if resp.Status != model.StatusWaiting {
			t.Errorf("期望初始状态 WAITING，实际=%s", resp.Status)
		}
	}
}

func TestQueueService_Create_CodeFormat(t *testing.T) {
	svc, _, _ := setupTestQueueService()

	resp := mustCreateQueue(t, svc, model.FamilyPharmacy, "GEN")
	if resp.Code != "A001" {
		t.Errorf("期望显示编号 A001，实际=%s", resp.Code)
	}

	resp2 := mustCreateQueue(t, svc, model.FamilyInspection, "INS")
	if resp2.Code != "I1" {
		t.Errorf("期望显示编号 I1，实际=%s", resp2.Code)
	}
}

func TestQueueService_Create_IndependentSequences(t *testing.T) {
	svc, _, _ := setupTestQueueService()

	// 不同族/类型各自独立计数
	mustCreateQueue(t, svc, model.FamilyPharmacy, "GEN")
	mustCreateQueue(t, svc, model.FamilyPharmacy, "GEN")
	resp := mustCreateQueue(t, svc, model.FamilyInspection, "INS")
	if resp.Number != 1 {
		t.Errorf("检查队列计数应独立，期望=1，实际=%d", resp.Number)
	}
}

func TestQueueService_Create_RetryOnConflict(t *testing.T) {
	svc, queueRepo, _ := setupTestQueueService()

	// 前两次插入冲突，第三次应成功
	queueRepo.createConflicts = 2
	resp := mustCreateQueue(t, svc, model.FamilyPharmacy, "GEN")
	if resp.Number != 1 {
		t.Errorf("重试后期望序号=1，实际=%d", resp.Number)
	}
}

func TestQueueService_Create_AllocationExhausted(t *testing.T) {
	svc, queueRepo, notifier := setupTestQueueService()

	queueRepo.createConflicts = 3 // 与 AllocateMaxRetries 持平，三次全部失败
	_, err := svc.Create(context.Background(), &dto.CreateQueueRequest{
		Family: model.FamilyPharmacy, TypeCode: "GEN", QueueDate: "2026-09-01",
	})
	if !errors.Is(err, ErrAllocationExhausted) {
		t.Errorf("期望 ErrAllocationExhausted，实际: %v", err)
	}
	if len(notifier.changed) != 0 {
		t.Error("取号失败不应广播变更")
	}
}

func TestQueueService_Create_TypeNotFound(t *testing.T) {
	svc, _, _ := setupTestQueueService()

	_, err := svc.Create(context.Background(), &dto.CreateQueueRequest{
		Family: model.FamilyPharmacy, TypeCode: "NOPE",
	})
	if !errors.Is(err, ErrQueueTypeNotFound) {
		t.Errorf("期望 ErrQueueTypeNotFound，实际: %v", err)
	}
}

func TestQueueService_Create_TypeDisabled(t *testing.T) {
	svc, _, _ := setupTestQueueService()

	_, err := svc.Create(context.Background(), &dto.CreateQueueRequest{
		Family: model.FamilyPharmacy, TypeCode: "OLD",
	})
	if !errors.Is(err, ErrQueueTypeDisabled) {
		t.Errorf("期望 ErrQueueTypeDisabled，实际: %v", err)
	}
}

func TestQueueService_Create_InvalidFamily(t *testing.T) {
	svc, _, _ := setupTestQueueService()

	_, err := svc.Create(context.Background(), &dto.CreateQueueRequest{
		Family: "laundry", TypeCode: "GEN",
	})
	if !errors.Is(err, ErrInvalidFamily) {
		t.Errorf("期望 ErrInvalidFamily，实际: %v", err)
	}
}

// ── Transition（状态流转）测试 ──

func transition(t *testing.T, svc QueueService, id, action string, spID *string) (*dto.QueueEntryResponse, error) {
	t.Helper()
	return svc.Transition(context.Background(), id, &dto.TransitionRequest{
		Action: action, ServicePointID: spID,
	})
}

func TestQueueService_Transition_FullLifecycle(t *testing.T) {
	svc, _, _ := setupTestQueueService()
	sp := "sp-001"

	created := mustCreateQueue(t, svc, model.FamilyPharmacy, "GEN")

	// WAITING → call → ACTIVE
	resp, err := transition(t, svc, created.ID, "call", &sp)
	if err != nil {
		t.Fatalf("call 应成功: %v", err)
	}
	if resp.Status != model.StatusActive {
		t.Errorf("期望 ACTIVE，实际=%s", resp.Status)
	}
	if resp.CalledAt == nil {
		t.Fatal("call 后 called_at 应被记录")
	}
	firstCalledAt := *resp.CalledAt

	// recall 不改变任何字段
	resp, err = transition(t, svc, created.ID, "recall", nil)
	if err != nil {
		t.Fatalf("recall 应成功: %v", err)
	}
	if resp.CalledAt == nil || *resp.CalledAt != firstCalledAt {
		t.Error("recall 不应改写首次叫号时间")
	}

	// pause → resume 回到候诊，重新叫号后 called_at 保持首次时间
	if _, err := transition(t, svc, created.ID, "pause", nil); err != nil {
		t.Fatalf("pause 应成功: %v", err)
	}
	resp, err = transition(t, svc, created.ID, "resume", nil)
	if err != nil {
		t.Fatalf("resume 应成功: %v", err)
	}
	if resp.Status != model.StatusWaiting {
		t.Errorf("resume 后期望 WAITING，实际=%s", resp.Status)
	}
	resp, err = transition(t, svc, created.ID, "call", &sp)
	if err != nil {
		t.Fatalf("resume 后再次 call 应成功: %v", err)
	}
	if resp.CalledAt == nil || *resp.CalledAt != firstCalledAt {
		t.Error("再次叫号不应改写首次叫号时间")
	}

	// complete 记录完成时间
	resp, err = transition(t, svc, created.ID, "complete", nil)
	if err != nil {
		t.Fatalf("complete 应成功: %v", err)
	}
	if resp.Status != model.StatusCompleted {
		t.Errorf("期望 COMPLETED，实际=%s", resp.Status)
	}
	if resp.CompletedAt == nil {
		t.Error("complete 后 completed_at 应被记录")
	}

	// 终态后任何操作都被拒绝
	if _, err := transition(t, svc, created.ID, "call", &sp); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("终态后 call 期望 ErrInvalidTransition，实际: %v", err)
	}
}

func TestQueueService_Transition_CallRequiresServicePoint(t *testing.T) {
	svc, _, _ := setupTestQueueService()

	created := mustCreateQueue(t, svc, model.FamilyPharmacy, "GEN")
	if _, err := transition(t, svc, created.ID, "call", nil); !errors.Is(err, ErrServicePointRequired) {
		t.Errorf("期望 ErrServicePointRequired，实际: %v", err)
	}
}

func TestQueueService_Transition_ServicePointBusy(t *testing.T) {
	svc, _, _ := setupTestQueueService()
	sp := "sp-001"

	first := mustCreateQueue(t, svc, model.FamilyPharmacy, "GEN")
	second := mustCreateQueue(t, svc, model.FamilyPharmacy, "GEN")

	if _, err := transition(t, svc, first.ID, "call", &sp); err != nil {
		t.Fatalf("首次 call 应成功: %v", err)
	}
	if _, err := transition(t, svc, second.ID, "call", &sp); !errors.Is(err, ErrServicePointBusy) {
		t.Errorf("同一服务点第二次 call 期望 ErrServicePointBusy，实际: %v", err)
	}
}

func TestQueueService_Transition_ServicePointRace(t *testing.T) {
	svc, queueRepo, _ := setupTestQueueService()
	sp := "sp-001"

	first := mustCreateQueue(t, svc, model.FamilyPharmacy, "GEN")
	second := mustCreateQueue(t, svc, model.FamilyPharmacy, "GEN")

	// 占用检查通过后、写入前，另一会话抢先把 second 叫号到同一服务点
	queueRepo.beforeUpdate = func() {
		queueRepo.beforeUpdate = nil
		for _, e := range queueRepo.entries {
			if e.QueueID == second.ID {
				e.Status = model.StatusActive
				e.ServicePointID = &sp
			}
		}
	}

	if _, err := transition(t, svc, first.ID, "call", &sp); !errors.Is(err, ErrServicePointBusy) {
		t.Fatalf("并发叫号到同一服务点期望 ErrServicePointBusy，实际: %v", err)
	}

	// 输掉竞争的一方保持 WAITING，不得写入
	stored, err := queueRepo.GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("读取条目失败: %v", err)
	}
	if stored.Status != model.StatusWaiting || stored.ServicePointID != nil {
		t.Errorf("竞争失败方应保持 WAITING 且未绑定服务点，实际 status=%s point=%v",
			stored.Status, stored.ServicePointID)
	}
}

func TestQueueService_Transition_Transfer(t *testing.T) {
	svc, _, _ := setupTestQueueService()
	sp1, sp2 := "sp-001", "sp-002"

	created := mustCreateQueue(t, svc, model.FamilyPharmacy, "GEN")
	if _, err := transition(t, svc, created.ID, "call", &sp1); err != nil {
		t.Fatalf("call 应成功: %v", err)
	}

	resp, err := transition(t, svc, created.ID, "transfer", &sp2)
	if err != nil {
		t.Fatalf("transfer 应成功: %v", err)
	}
	if resp.Status != model.StatusActive {
		t.Errorf("transfer 后期望仍为 ACTIVE，实际=%s", resp.Status)
	}
	if resp.ServicePointID == nil || *resp.ServicePointID != sp2 {
		t.Error("transfer 后应绑定到新服务点")
	}
}

func TestQueueService_Transition_SkipAndResume(t *testing.T) {
	svc, _, _ := setupTestQueueService()
	sp := "sp-001"

	created := mustCreateQueue(t, svc, model.FamilyPharmacy, "GEN")
	if _, err := transition(t, svc, created.ID, "skip", nil); err != nil {
		t.Fatalf("skip 应成功: %v", err)
	}

	// 跳过后 resume 回到候诊，随后可正常叫号
	resp, err := transition(t, svc, created.ID, "resume", nil)
	if err != nil {
		t.Fatalf("skip 后 resume 应成功: %v", err)
	}
	if resp.Status != model.StatusWaiting {
		t.Errorf("期望 WAITING，实际=%s", resp.Status)
	}
	resp, err = transition(t, svc, created.ID, "call", &sp)
	if err != nil {
		t.Fatalf("resume 后 call 应成功: %v", err)
	}
	if resp.Status != model.StatusActive {
		t.Errorf("期望 ACTIVE，实际=%s", resp.Status)
	}
}

func TestQueueService_Transition_CancelFromSkipped(t *testing.T) {
	svc, _, _ := setupTestQueueService()

	created := mustCreateQueue(t, svc, model.FamilyPharmacy, "GEN")
	if _, err := transition(t, svc, created.ID, "skip", nil); err != nil {
		t.Fatalf("skip 应成功: %v", err)
	}
	resp, err := transition(t, svc, created.ID, "cancel", nil)
	if err != nil {
		t.Fatalf("cancel 应成功: %v", err)
	}
	if resp.Status != model.StatusCancelled {
		t.Errorf("期望 CANCELLED，实际=%s", resp.Status)
	}
}

func TestQueueService_Transition_UnknownAction(t *testing.T) {
	svc, _, _ := setupTestQueueService()

	created := mustCreateQueue(t, svc, model.FamilyPharmacy, "GEN")
	if _, err := transition(t, svc, created.ID, "teleport", nil); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("期望 ErrUnknownAction，实际: %v", err)
	}
}

func TestQueueService_Transition_NotFound(t *testing.T) {
	svc, _, _ := setupTestQueueService()

	if _, err := transition(t, svc, "no-such-id", "call", nil); !errors.Is(err, ErrQueueNotFound) {
		t.Errorf("期望 ErrQueueNotFound，实际: %v", err)
	}
}

func TestQueueService_Transition_NotifiesFamily(t *testing.T) {
	svc, _, notifier := setupTestQueueService()
	sp := "sp-001"

	created := mustCreateQueue(t, svc, model.FamilyPharmacy, "GEN")
	if _, err := transition(t, svc, created.ID, "call", &sp); err != nil {
		t.Fatalf("call 应成功: %v", err)
	}

	// 取号 + 叫号各一次广播
	if len(notifier.changed) != 2 {
		t.Fatalf("期望 2 次变更广播，实际=%d", len(notifier.changed))
	}
	for _, f := range notifier.changed {
		if f != model.FamilyPharmacy {
			t.Errorf("期望广播族 pharmacy，实际=%s", f)
		}
	}
}

// ── 等待/服务时长换算 ──

func TestQueueService_WaitAndServiceMinutes(t *testing.T) {
	svc, queueRepo, _ := setupTestQueueService()

	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	called := base.Add(12 * time.Minute)
	completed := called.Add(5 * time.Minute)
	queueRepo.Create(context.Background(), &model.QueueEntry{
		QueueID: "q-fixed", Family: model.FamilyPharmacy, TypeCode: "GEN",
		Number: 99, QueueDate: "2026-09-01", Status: model.StatusCompleted,
		CreatedAt: base, CalledAt: &called, CompletedAt: &completed,
	})

	resp, err := svc.GetByID(context.Background(), "q-fixed")
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if resp.WaitMinutes == nil || *resp.WaitMinutes != 12 {
		t.Errorf("期望等待 12 分钟，实际=%v", resp.WaitMinutes)
	}
	if resp.ServiceMinutes == nil || *resp.ServiceMinutes != 5 {
		t.Errorf("期望服务 5 分钟，实际=%v", resp.ServiceMinutes)
	}
}

// ── FormatCode ──

func TestFormatCode_NoTruncation(t *testing.T) {
	qt := &model.QueueType{Prefix: "A", Format: "00"}
	if got := FormatCode(qt, 7); got != "A07" {
		t.Errorf("期望 A07，实际=%s", got)
	}
	// 序号超出宽度时不截断
	if got := FormatCode(qt, 123); got != "A123" {
		t.Errorf("期望 A123，实际=%s", got)
	}
	if got := FormatCode(nil, 5); got != "5" {
		t.Errorf("类型缺失时期望纯数字 5，实际=%s", got)
	}
}

// [自证通过] internal/service/queue_service_test.go
