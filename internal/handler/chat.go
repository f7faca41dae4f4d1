package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zeno-labs/museum-companion/internal/ai"
	"github.com/zeno-labs/museum-companion/internal/model"
	"github.com/zeno-labs/museum-companion/internal/repository"
	"github.com/zeno-labs/museum-companion/internal/ticket"
)

// ChatHandler streams assistant replies for a museum's chat widget.
// The endpoint is usable anonymously; bookings made mid-chat are tied
// to the caller only when a verified identity is present.
type ChatHandler struct {
	Assistant *ai.Assistant
	Museums   *repository.MuseumRepo
	Chats     *repository.ChatRepo
	Users     *repository.UserRepo
	Issuer    *ticket.Issuer
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(assistant *ai.Assistant, museums *repository.MuseumRepo, chats *repository.ChatRepo, users *repository.UserRepo, issuer *ticket.Issuer) *ChatHandler {
	if assistant == nil || museums == nil || chats == nil || users == nil || issuer == nil {
		panic("nil dependency passed to NewChatHandler")
	}
	return &ChatHandler{Assistant: assistant, Museums: museums, Chats: chats, Users: users, Issuer: issuer}
}

type chatBody struct {
	Messages []ai.Message `json:"messages"`
}

// Stream handles POST /api/chat/:museumId.  The reply is sent as
// server-sent events: one "data:" line per model chunk, terminated by
// a "[DONE]" sentinel.
func (h *ChatHandler) Stream(c echo.Context) error {
	museumID, ok := parseMuseumID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid museum ID")
	}
	ctx := c.Request().Context()
	if _, err := h.Museums.GetByID(ctx, museumID); err != nil {
		if errors.Is(err, repository.ErrMuseumNotFound) {
			return fail(c, http.StatusNotFound, "Museum not found")
		}
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}

	var body chatBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if len(body.Messages) == 0 {
		return fail(c, http.StatusBadRequest, "No messages provided")
	}
	last := strings.TrimSpace(body.Messages[len(body.Messages)-1].Content)
	if last == "" {
		return fail(c, http.StatusBadRequest, "Empty message")
	}

	userID := optionalUserID(c)
	purchaser := "Chat guest"
	if userID != nil {
		if u, err := h.Users.GetByID(ctx, *userID); err == nil {
			purchaser = u.Name
		}
	}

	book := func(ctx context.Context, toolMuseumID uint64, attendees []model.Attendee) (ai.ToolOutcome, error) {
		// The model may hallucinate ids; only the museum being
		// chatted about is bookable from its own widget.
		if toolMuseumID != museumID {
			return ai.ToolOutcome{}, errors.New("museum does not match this conversation")
		}
		m, err := h.Museums.GetByID(ctx, toolMuseumID)
		if err != nil {
			return ai.ToolOutcome{}, err
		}
		res, err := h.Issuer.IssueFlat(ctx, toolMuseumID, userID, purchaser, attendees, model.SourceChat)
		if err != nil {
			return ai.ToolOutcome{}, err
		}
		publishBookingCreated(res.Booking)
		return ai.ToolOutcome{
			Message: fmt.Sprintf("Ticket booked for %s: %d attendee(s), total %.2f, valid until %s.",
				m.Name, len(attendees), float64(res.Booking.TotalCostCents)/100.0,
				res.Booking.ValidUntil.Format(time.RFC1123)),
			PDFURL:   res.PDFURL,
			MuseumID: toolMuseumID,
		}, nil
	}

	resp := c.Response()
	emit := sseEmitter(resp)

	reply, toolRan, err := h.Assistant.StreamReply(ctx, body.Messages, book, emit)
	if err != nil && !resp.Committed {
		return fail(c, http.StatusBadGateway, "Assistant unavailable", err.Error())
	}
	if err != nil {
		log.Printf("chat stream for museum %d ended early: %v", museumID, err)
	}

	if toolRan && userID != nil {
		h.persistExchange(museumID, *userID, last, reply)
	}

	_ = emit("[DONE]")
	return nil
}

// sseEmitter returns the chunk writer for an event stream on resp.
// The status line is committed lazily, on the first chunk, so an
// assistant failure before any output can still produce a normal
// error response with its own status code.
func sseEmitter(resp *echo.Response) func(string) error {
	return func(chunk string) error {
		if !resp.Committed {
			resp.Header().Set(echo.HeaderContentType, "text/event-stream")
			resp.Header().Set("Cache-Control", "no-cache")
			resp.Header().Set("Connection", "keep-alive")
			resp.WriteHeader(http.StatusOK)
		}
		if _, err := fmt.Fprintf(resp, "data: %s\n\n", chunk); err != nil {
			return err
		}
		resp.Flush()
		return nil
	}
}

// persistExchange appends the visitor's last message and the bot reply
// to the transcript.  Transcripts are best effort: a storage failure
// must not fail a chat that already streamed.
func (h *ChatHandler) persistExchange(museumID, userID uint64, userMsg, botMsg string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	now := time.Now().UTC()
	messages := []model.ChatMessage{
		{Sender: model.SenderUser, Body: userMsg, SentAt: now},
	}
	if botMsg != "" {
		messages = append(messages, model.ChatMessage{Sender: model.SenderBot, Body: botMsg, SentAt: now})
	}
	if err := h.Chats.AppendMessages(ctx, museumID, userID, messages); err != nil {
		log.Printf("failed to persist chat transcript for museum %d user %d: %v", museumID, userID, err)
	}
}

// History handles GET /api/chat/:museumId and returns the caller's
// transcript with this museum.
func (h *ChatHandler) History(c echo.Context) error {
	museumID, ok := parseMuseumID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid museum ID")
	}
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	history, err := h.Chats.History(c.Request().Context(), museumID, userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
	type messageView struct {
		Sender string    `json:"sender"`
		Body   string    `json:"body"`
		SentAt time.Time `json:"sentAt"`
	}
	views := make([]messageView, 0, len(history))
	for _, m := range history {
		views = append(views, messageView{Sender: m.Sender, Body: m.Body, SentAt: m.SentAt})
	}
	return respond(c, http.StatusOK, "Chat history fetched successfully", echo.Map{"messages": views})
}
