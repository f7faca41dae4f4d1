package model

import "time"

// Chat is the persisted transcript between one user and one museum's
// assistant.  A chat is created lazily the first time a transcript is
// stored for a (museum, user) pair and appended to afterwards; messages
// are never edited or deleted.
//
// Fields:
//  ID        – primary key identifier.
//  MuseumID  – museum the conversation is about.
//  UserID    – participant; transcripts are only stored for known users.
//  CreatedAt – creation timestamp.
//  UpdatedAt – timestamp of the last append.
type Chat struct {
	ID        uint64    // chats.id
	MuseumID  uint64    // chats.museum_id
	UserID    uint64    // chats.user_id
	CreatedAt time.Time // chats.created_at
	UpdatedAt time.Time // chats.updated_at
}

// Chat message senders.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// ChatMessage is a single entry in a chat transcript.
//
// Fields:
//  ID     – primary key identifier.
//  ChatID – transcript the message belongs to.
//  Sender – user or bot.
//  Body   – message text.
//  SentAt – when the message was produced.
type ChatMessage struct {
	ID     uint64    // chat_messages.id
	ChatID uint64    // chat_messages.chat_id
	Sender string    // chat_messages.sender
	Body   string    // chat_messages.body
	SentAt time.Time // chat_messages.sent_at
}
