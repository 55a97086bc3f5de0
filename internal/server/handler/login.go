package handler

import (
	"go.uber.org/zap"

	"github.com/palemoky/fakeplayers/internal/apperrors"
	"github.com/palemoky/fakeplayers/internal/protocol"
	"github.com/palemoky/fakeplayers/internal/protocol/codec"
	"github.com/palemoky/fakeplayers/internal/server/session"
	"github.com/palemoky/fakeplayers/internal/types"
)

// handleLogin 登录并注册到名册，第一个登录的玩家成为主机
//
// 主机注册成功会同步触发假玩家创建，因此这里可能阻塞到确认完成。
func (h *Handler) handleLogin(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.LoginPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	if client.Session() != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeDuplicatePlayer))
		return
	}

	c := session.NewContext(session.New(nil, h.world.Sessions().GetNewSessionID()))
	isHost := !h.world.HasHost()
	c.Login(payload.AccountID, client.GetID(), payload.NetworkID, payload.Name, "", isHost, 0)
	if c.Snapshot() == nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidLogin))
		return
	}

	if err := h.world.Sessions().Add(c); err != nil {
		client.SendMessage(codec.NewErrorMessage(codeOf(apperrors.CodeOf(err))))
		return
	}
	client.SetSession(c)

	code := h.world.RegisterPlayer(c)
	if code != apperrors.Success {
		client.SetSession(nil)
		h.world.Sessions().Remove(c)
		c.Dispose()
		client.SendMessage(codec.NewErrorMessage(codeOf(code)))
		return
	}

	m, _ := h.world.Roster().Get(payload.NetworkID)
	client.SendMessage(codec.MustNewMessage(protocol.MsgLoggedIn, protocol.LoggedInPayload{
		SessionID: c.Session().ID(),
		IsHost:    m.IsHost,
		Result:    code.String(),
	}))

	h.log.Info("player logged in",
		zap.String("name", payload.Name), zap.Uint64("network_id", payload.NetworkID), zap.Bool("host", m.IsHost))
}

func codeOf(code apperrors.ResultCode) int {
	if ge := apperrors.ErrorFor(code); ge != nil {
		return ge.Code
	}
	return protocol.ErrCodeUnknown
}
