package handler

import (
	"github.com/samber/lo"

	"github.com/palemoky/fakeplayers/internal/protocol"
	"github.com/palemoky/fakeplayers/internal/protocol/codec"
	"github.com/palemoky/fakeplayers/internal/server/roster"
	"github.com/palemoky/fakeplayers/internal/types"
)

// handleRoster 查询名册
func (h *Handler) handleRoster(client types.ClientInterface) {
	client.SendMessage(codec.MustNewMessage(protocol.MsgRosterResult, RosterPayload(h.world.Roster())))
}

// RosterPayload 构建名册结果
func RosterPayload(r *roster.Roster) protocol.RosterResultPayload {
	return protocol.RosterResultPayload{
		Members:  lo.Map(r.Members(), func(m roster.Member, _ int) protocol.RosterMember { return MemberInfo(m) }),
		Capacity: r.Capacity(),
	}
}

// MemberInfo 转换名册成员
func MemberInfo(m roster.Member) protocol.RosterMember {
	return protocol.RosterMember{
		NetworkID: m.NetworkID,
		AccountID: m.AccountID,
		Name:      m.Name,
		IsHost:    m.IsHost,
	}
}
