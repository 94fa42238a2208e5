package http

import (
	"encoding/json"

	"github.com/dkazarin/echoline-server/internal/core"
	"github.com/dkazarin/echoline-server/internal/proto"
	"github.com/dkazarin/echoline-server/internal/store"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.ErrorEvent, error) {
	switch inbound.Type {
	case proto.TypeMessageSend:
		var send proto.SendData
		if err := json.Unmarshal(inbound.Data, &send); err != nil {
			return nil, nil, err
		}
		if send.ReceiverID <= 0 {
			return nil, &proto.ErrorEvent{Code: core.ErrCodeBadRequest, Message: "receiverId is required"}, nil
		}
		return &core.Command{
			Kind:       core.CommandSendMessage,
			ReceiverID: send.ReceiverID,
			Text:       send.Text,
		}, nil, nil

	case proto.TypeTypingStart, proto.TypeTypingStop:
		var typing proto.TypingData
		if err := json.Unmarshal(inbound.Data, &typing); err != nil {
			return nil, nil, err
		}
		if typing.ReceiverID <= 0 {
			return nil, &proto.ErrorEvent{Code: core.ErrCodeBadRequest, Message: "receiverId is required"}, nil
		}
		kind := core.CommandTypingStart
		if inbound.Type == proto.TypeTypingStop {
			kind = core.CommandTypingStop
		}
		return &core.Command{Kind: kind, ReceiverID: typing.ReceiverID}, nil, nil

	case proto.TypeMessageRead:
		var read proto.ReadData
		if err := json.Unmarshal(inbound.Data, &read); err != nil {
			return nil, nil, err
		}
		if read.MessageID <= 0 {
			return nil, &proto.ErrorEvent{Code: core.ErrCodeBadRequest, Message: "messageId is required"}, nil
		}
		return &core.Command{
			Kind:      core.CommandMarkMessageRead,
			MessageID: read.MessageID,
			SenderID:  read.SenderID,
		}, nil, nil

	case proto.TypeConversationRead:
		var read proto.ConversationReadData
		if err := json.Unmarshal(inbound.Data, &read); err != nil {
			return nil, nil, err
		}
		if read.SenderID <= 0 {
			return nil, &proto.ErrorEvent{Code: core.ErrCodeBadRequest, Message: "senderId is required"}, nil
		}
		return &core.Command{
			Kind:     core.CommandMarkConversationRead,
			SenderID: read.SenderID,
		}, nil, nil

	case proto.TypeStatusUpdate:
		var status proto.StatusUpdateData
		if err := json.Unmarshal(inbound.Data, &status); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:     core.CommandStatusUpdate,
			IsOnline: status.IsOnline,
		}, nil, nil

	default:
		return nil, &proto.ErrorEvent{Code: core.ErrCodeBadRequest, Message: "unknown message type"}, nil
	}
}

func messagePayload(msg *store.Message, isFromMe bool) proto.MessagePayload {
	return proto.MessagePayload{
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		ReceiverID:  msg.ReceiverID,
		Text:        msg.Body,
		Delivered:   msg.Delivered,
		DeliveredAt: msg.DeliveredAt,
		Read:        msg.Read,
		ReadAt:      msg.ReadAt,
		CreatedAt:   msg.CreatedAt,
		IsFromMe:    isFromMe,
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventMessageNew:
		return proto.Outbound{
			Type: proto.TypeMessageNew,
			Data: messagePayload(event.Message, false),
		}
	case core.EventMessageSent:
		return proto.Outbound{
			Type: proto.TypeMessageSent,
			Data: messagePayload(event.Message, true),
		}
	case core.EventMessageRead:
		return proto.Outbound{
			Type: proto.TypeMessageRead,
			Data: proto.MessageReadEvent{
				MessageID: event.Message.ID,
				ReadBy:    event.ReadBy,
				ReadAt:    event.ReadAt,
			},
		}
	case core.EventConversationRead:
		return proto.Outbound{
			Type: proto.TypeConversationRead,
			Data: proto.ConversationReadEvent{
				ReadBy: event.ReadBy,
				ReadAt: event.ReadAt,
			},
		}
	case core.EventTypingStart, core.EventTypingStop:
		typ := proto.TypeTypingStart
		if event.Kind == core.EventTypingStop {
			typ = proto.TypeTypingStop
		}
		return proto.Outbound{
			Type: typ,
			Data: proto.TypingEvent{UserID: event.UserID, Username: event.Username},
		}
	case core.EventUserOnline:
		return proto.Outbound{
			Type: proto.TypeUserOnline,
			Data: proto.UserOnlineEvent{UserID: event.UserID, Username: event.Username},
		}
	case core.EventUserOffline:
		return proto.Outbound{
			Type: proto.TypeUserOffline,
			Data: proto.UserOfflineEvent{
				UserID:   event.UserID,
				Username: event.Username,
				LastSeen: event.LastSeen,
			},
		}
	case core.EventUserStatus:
		return proto.Outbound{
			Type: proto.TypeUserStatus,
			Data: proto.UserStatusEvent{
				UserID:   event.UserID,
				IsOnline: event.IsOnline,
				LastSeen: event.LastSeen,
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.TypeError, Data: proto.ErrorEvent{Message: "unknown error"}}
		}
		return proto.Outbound{
			Type: proto.TypeError,
			Data: proto.ErrorEvent{Code: event.Error.Code, Message: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.TypeError, Data: proto.ErrorEvent{Message: "unknown event"}}
	}
}
