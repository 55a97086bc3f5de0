package protocol

// 错误码
const (
	ErrCodeUnknown             = 1000
	ErrCodeInvalidMsg          = 1001
	ErrCodeNotLoggedIn         = 1003
	ErrCodeInvalidLogin        = 2001
	ErrCodeDuplicatePlayer     = 2002
	ErrCodePlayerCountExceeded = 2003
	ErrCodeRosterFull          = 2004
	ErrCodeNotFound            = 2005
	ErrCodeServerMaintenance   = 5003
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:             "未知错误",
	ErrCodeInvalidMsg:          "无效的消息格式",
	ErrCodeNotLoggedIn:         "尚未登录",
	ErrCodeInvalidLogin:        "登录参数无效",
	ErrCodeDuplicatePlayer:     "玩家已存在",
	ErrCodePlayerCountExceeded: "房间人数已满",
	ErrCodeRosterFull:          "名册已满",
	ErrCodeNotFound:            "玩家不存在",
	ErrCodeServerMaintenance:   "服务器维护中",
}
