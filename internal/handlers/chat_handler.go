// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/iyunix/go-planner/internal/dtos"
	"github.com/iyunix/go-planner/internal/middleware"
	"github.com/iyunix/go-planner/internal/render"
	"github.com/iyunix/go-planner/internal/services/chat"
)

// ChatLimit names the rate limit bucket of the send endpoint.
const ChatLimit = "chat"

// maxChatBody bounds the JSON body of a send request.
const maxChatBody = 64 << 10

type ChatHandler struct {
	conversations *chat.ConversationService
	acceptance    *chat.AcceptanceService
	markdown      *render.Markdown
	pages         *Renderer
}

func NewChatHandler(conversations *chat.ConversationService, acceptance *chat.AcceptanceService, markdown *render.Markdown, pages *Renderer) *ChatHandler {
	return &ChatHandler{
		conversations: conversations,
		acceptance:    acceptance,
		markdown:      markdown,
		pages:         pages,
	}
}

// ShowChatPage renders a conversation. ?conversation= selects one; otherwise
// the most recent is shown, created on first visit.
func (h *ChatHandler) ShowChatPage(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var chatID uint
	if raw := r.URL.Query().Get("conversation"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			h.pages.fail(w, r, chat.NewNotFoundError("chat_page", userID, 0, err))
			return
		}
		chatID = uint(id)
	} else {
		active, err := h.conversations.ActiveConversation(r.Context(), userID)
		if err != nil {
			h.pages.fail(w, r, err)
			return
		}
		chatID = active.ID
	}

	view, err := h.conversations.Conversation(r.Context(), userID, chatID)
	if err != nil {
		h.pages.fail(w, r, err)
		return
	}
	conversations, err := h.conversations.ListConversations(r.Context(), userID)
	if err != nil {
		h.pages.fail(w, r, err)
		return
	}

	h.pages.Page(w, r, http.StatusOK, "chat.html", map[string]interface{}{
		"Conversation":  view.Chat,
		"Messages":      view.Messages,
		"Proposals":     view.Proposals,
		"Conversations": conversations,
	})
}

// SendMessage runs one exchange with the assistant.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req dtos.SendMessageRequestDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	chatID := req.ConversationID
	if chatID == 0 {
		active, err := h.conversations.ActiveConversation(r.Context(), userID)
		if err != nil {
			writeError(w, publicMessage(err), statusFor(err))
			return
		}
		chatID = active.ID
	}

	result, err := h.conversations.SendMessage(r.Context(), userID, chatID, req.Message)
	if err != nil {
		writeError(w, publicMessage(err), statusFor(err))
		return
	}

	resp := dtos.SendMessageResponseDTO{
		Success:          true,
		ConversationID:   chatID,
		UserMessage:      dtos.FromMessage(result.UserMessage),
		AssistantMessage: dtos.FromMessage(result.AssistantMessage),
		AssistantHTML:    string(h.markdown.ToHTML(result.AssistantMessage.Content)),
		ProposedPlanID:   result.ProposedPlanID,
	}
	if result.Proposal != nil {
		resp.Proposal = result.Proposal
	}
	writeJSON(w, http.StatusOK, resp)
}

// AcceptProposal turns a staged proposal into a plan with its tasks.
func (h *ChatHandler) AcceptProposal(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	proposalID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid proposal ID", http.StatusBadRequest)
		return
	}

	plan, err := h.acceptance.Accept(r.Context(), userID, proposalID)
	if err != nil {
		writeError(w, publicMessage(err), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, dtos.AcceptProposalResponseDTO{
		Success:     true,
		PlanID:      plan.ID,
		RedirectURL: planURL(plan.ID),
	})
}

// NewConversation starts an empty conversation.
func (h *ChatHandler) NewConversation(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	c, err := h.conversations.NewConversation(r.Context(), userID)
	if err != nil {
		writeError(w, publicMessage(err), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, dtos.NewConversationResponseDTO{Success: true, ConversationID: c.ID})
}

// DeleteConversation removes a conversation with its transcript and proposals.
func (h *ChatHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	chatID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}
	if err := h.conversations.DeleteConversation(r.Context(), userID, chatID); err != nil {
		writeError(w, publicMessage(err), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, dtos.CreateSuccessResponse(nil, "Conversation deleted"))
}
