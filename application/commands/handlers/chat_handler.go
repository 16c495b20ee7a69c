package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sk16er/Scholar-chat/application/commands"
	"github.com/Sk16er/Scholar-chat/application/flows"
	"github.com/Sk16er/Scholar-chat/application/ports"
	"github.com/Sk16er/Scholar-chat/domain/config"
	"github.com/Sk16er/Scholar-chat/domain/core/aggregates"
	"github.com/Sk16er/Scholar-chat/domain/core/entities"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"github.com/Sk16er/Scholar-chat/pkg/observability"
	"go.uber.org/zap"
)

// ChatHandler answers questions from a project's sources
type ChatHandler struct {
	repo    ports.ProjectRepository
	flows   Flows
	cfg     *config.DomainConfig
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewChatHandler creates a new handler instance
func NewChatHandler(
	repo ports.ProjectRepository,
	f Flows,
	cfg *config.DomainConfig,
	metrics *observability.Collector,
	logger *zap.Logger,
) *ChatHandler {
	return &ChatHandler{repo: repo, flows: f, cfg: cfg, metrics: metrics, logger: logger}
}

// SendMessage appends the question and an assistant reply. A failed answer
// still produces a reply, so the command only fails when the question
// itself could not be stored.
func (h *ChatHandler) SendMessage(ctx context.Context, cmd commands.SendMessageCommand) error {
	pid, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	if h.cfg.MaxMessageLength > 0 && len(cmd.Text) > h.cfg.MaxMessageLength {
		return pkgerrors.NewValidationError(fmt.Sprintf("message exceeds %d characters", h.cfg.MaxMessageLength))
	}

	question, err := entities.NewMessage(cmd.UserMessageID, valueobjects.RoleUser, cmd.Text, nil)
	if err != nil {
		return err
	}

	var (
		convID   = cmd.ConversationID
		passages []flows.Passage
		sources  int
	)
	if _, err := h.repo.Update(ctx, pid, func(p *aggregates.Project) error {
		if err := p.AppendMessage(convID, question); err != nil {
			return err
		}
		if convID == "" {
			convID = p.PrimaryConversation().ID()
		}
		sources = p.SourceCount()
		for _, s := range p.IndexedSources() {
			passages = append(passages, flows.Passage{
				SourceID: s.ID().String(),
				Page:     s.Page(),
				Text:     s.Content(),
			})
		}
		return nil
	}); err != nil {
		return err
	}

	if sources == 0 {
		return h.reply(ctx, pid, convID, cmd.AssistantMessageID, config.MsgUploadBeforeAsking, nil)
	}

	out, err := h.flows.Answer(ctx, flows.AnswerInput{
		ProjectID:      pid.String(),
		ConversationID: convID,
		Query:          cmd.Text,
		Passages:       passages,
	})
	if err != nil {
		h.logger.Warn("Answer failed",
			zap.String("project_id", pid.String()),
			zap.String("conversation_id", convID),
			zap.Error(err),
		)
		h.record("error")
		return h.reply(ctx, pid, convID, cmd.AssistantMessageID, chatFailureText(err), nil)
	}

	h.record("answered")
	return h.reply(ctx, pid, convID, cmd.AssistantMessageID, out.Answer, out.Citations)
}

// reply appends the assistant message. Citations are resolved against the
// sources as they are when the reply is stored.
func (h *ChatHandler) reply(
	ctx context.Context,
	pid valueobjects.ProjectID,
	convID, messageID, text string,
	cited []flows.CitationOutput,
) error {
	if strings.TrimSpace(text) == "" {
		text = config.MsgCannotAnswer
	}
	_, err := h.repo.Update(ctx, pid, func(p *aggregates.Project) error {
		citations := make([]entities.Citation, 0, len(cited))
		for _, c := range cited {
			citations = append(citations, entities.Citation{
				SourceID: c.SourceID,
				Page:     c.Page,
				Snippet:  c.Snippet,
				Source:   p.ResolveCitation(c.SourceID),
			})
		}
		msg, err := entities.NewMessage(messageID, valueobjects.RoleAssistant, text, citations)
		if err != nil {
			return err
		}
		return p.AppendMessage(convID, msg)
	})
	if err != nil {
		h.logger.Error("Failed to store assistant reply",
			zap.String("project_id", pid.String()),
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
	return err
}

func (h *ChatHandler) record(outcome string) {
	if h.metrics != nil {
		h.metrics.MessagesAnswered.WithLabelValues(outcome).Inc()
	}
}

// chatFailureText picks the reply text for a failed answer: the error's
// user-facing message, or the refusal text when it has none.
func chatFailureText(err error) string {
	if msg := strings.TrimSpace(pkgerrors.UserMessage(err)); msg != "" {
		return msg
	}
	return config.MsgCannotAnswer
}
