package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandSendMessage delivers a direct message to another user.
	CommandSendMessage CommandKind = iota
	// CommandTypingStart signals the client started typing to someone.
	CommandTypingStart
	// CommandTypingStop signals the client stopped typing.
	CommandTypingStop
	// CommandMarkMessageRead marks a single message as read.
	CommandMarkMessageRead
	// CommandMarkConversationRead marks a whole conversation as read.
	CommandMarkConversationRead
	// CommandStatusUpdate explicitly changes the client's presence status.
	CommandStatusUpdate
)

// Command represents an action requested by a client over the live channel.
type Command struct {
	Kind       CommandKind
	ReceiverID int64 // send and typing commands
	Text       string
	MessageID  int64 // single read receipt
	SenderID   int64 // read receipts: the other party of the conversation
	IsOnline   bool  // status update
}
