package fakeplayer

import "github.com/palemoky/fakeplayers/internal/apperrors"

// Admission 房间准入：假玩家不受房间人数上限限制
type Admission struct {
	alloc *Allocator
}

// NewAdmission 创建准入过滤器
func NewAdmission(alloc *Allocator) *Admission {
	return &Admission{alloc: alloc}
}

// Filter 假玩家直接放行，其他玩家交给房间默认规则
func (a *Admission) Filter(accountID int64, _ int) (apperrors.ResultCode, bool) {
	if a.alloc.Owns(accountID) {
		return apperrors.Success, true
	}
	return apperrors.Success, false
}
