package errors

import "errors"

// ErrNumberTaken 取号序号已被其他窗口占用（唯一索引冲突，可重试）
var ErrNumberTaken = errors.New("队列序号已被占用")

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrPointOccupied 服务点已被其他 ACTIVE 条目占用（部分唯一索引冲突）
var ErrPointOccupied = errors.New("服务点已有正在服务的条目")
