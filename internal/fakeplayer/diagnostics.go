package fakeplayer

import (
	"go.uber.org/zap"

	"github.com/palemoky/fakeplayers/internal/apperrors"
)

// Diagnostics 记录进入房间的情况
type Diagnostics struct {
	alloc *Allocator
	log   *zap.Logger
}

// NewDiagnostics 创建诊断记录器
func NewDiagnostics(alloc *Allocator, l *zap.Logger) *Diagnostics {
	if l == nil {
		l = zap.NewNop()
	}
	return &Diagnostics{alloc: alloc, log: l}
}

// OnRoomEntered 进入房间回调
func (d *Diagnostics) OnRoomEntered(accountID int64, networkID uint64, isHost bool, code apperrors.ResultCode) {
	fields := []zap.Field{
		zap.Int64("account_id", accountID),
		zap.Uint64("network_id", networkID),
		zap.Stringer("code", code),
	}
	switch {
	case isHost:
		d.log.Info("host entered room", fields...)
	case !d.alloc.Owns(accountID):
		return
	case code != apperrors.Success:
		d.log.Error("fake player failed to enter room", fields...)
	default:
		d.log.Info("fake player entered room", fields...)
	}
}
