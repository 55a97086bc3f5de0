package apperrors

import (
	"github.com/cockroachdb/errors"

	"github.com/palemoky/fakeplayers/internal/protocol"
)

// ResultCode 主机操作结果码
type ResultCode int

const (
	Success ResultCode = iota
	InvalidLogin
	DuplicatePlayer
	PlayerCountExceeded
	RosterFull
	NotFound
	Failed
)

func (c ResultCode) String() string {
	switch c {
	case Success:
		return "Success"
	case InvalidLogin:
		return "InvalidLogin"
	case DuplicatePlayer:
		return "DuplicatePlayer"
	case PlayerCountExceeded:
		return "PlayerCountExceeded"
	case RosterFull:
		return "RosterFull"
	case NotFound:
		return "NotFound"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// GameError 主机错误（名册、房间和会话共享）
type GameError struct {
	Code    int
	Result  ResultCode
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrInvalidLogin        = &GameError{Code: protocol.ErrCodeInvalidLogin, Result: InvalidLogin, Message: "登录参数无效"}
	ErrDuplicatePlayer     = &GameError{Code: protocol.ErrCodeDuplicatePlayer, Result: DuplicatePlayer, Message: "玩家已存在"}
	ErrPlayerCountExceeded = &GameError{Code: protocol.ErrCodePlayerCountExceeded, Result: PlayerCountExceeded, Message: "房间人数已满"}
	ErrRosterFull          = &GameError{Code: protocol.ErrCodeRosterFull, Result: RosterFull, Message: "名册已满"}
	ErrNotFound            = &GameError{Code: protocol.ErrCodeNotFound, Result: NotFound, Message: "玩家不存在"}
)

// ErrHostShape 主机对象结构与预期不符（例如句柄不是主机会话）
var ErrHostShape = errors.New("host object shape mismatch")

// CodeOf 返回错误对应的结果码，nil 为 Success
func CodeOf(err error) ResultCode {
	if err == nil {
		return Success
	}
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Result
	}
	return Failed
}

// ErrorFor 返回结果码对应的错误，Success 返回 nil
func ErrorFor(code ResultCode) *GameError {
	switch code {
	case Success:
		return nil
	case InvalidLogin:
		return ErrInvalidLogin
	case DuplicatePlayer:
		return ErrDuplicatePlayer
	case PlayerCountExceeded:
		return ErrPlayerCountExceeded
	case RosterFull:
		return ErrRosterFull
	case NotFound:
		return ErrNotFound
	default:
		return &GameError{Code: protocol.ErrCodeUnknown, Result: code, Message: "未知错误"}
	}
}
