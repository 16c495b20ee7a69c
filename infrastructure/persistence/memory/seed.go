package memory

import (
	"context"
	"time"

	"github.com/Sk16er/Scholar-chat/application/ports"
	"github.com/Sk16er/Scholar-chat/domain/config"
	"github.com/Sk16er/Scholar-chat/domain/core/aggregates"
	"github.com/Sk16er/Scholar-chat/domain/core/entities"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
)

const (
	ragSystemContent = "Retrieval-Augmented Generation (RAG) is a technique for enhancing the accuracy and reliability of large language models (LLMs) with facts fetched from external sources. It combines a retriever, which finds relevant text passages from a knowledge base, and a generator (the LLM), which synthesizes an answer based on the retrieved information and the user's query. This approach helps to ground the model's responses in factual data, reducing hallucinations and allowing the model to cite its sources. The retrieval step typically uses vector search on a database of text embeddings. The quality of the RAG system depends on the quality of the document chunks and the effectiveness of the retriever."

	llmAdvancementsContent = "The year 2023 saw significant advancements in Large Language Models. Model sizes continued to grow, but the focus shifted towards improving efficiency and reasoning capabilities. Techniques like Mixture-of-Experts (MoE) allowed for larger models that were computationally cheaper to run during inference. Additionally, fine-tuning methods became more sophisticated, with approaches like Reinforcement Learning from Human Feedback (RLHF) and Direct Preference Optimization (DPO) leading to models that are better aligned with human intent and produce more helpful, less harmful responses. The open-source community also flourished, releasing powerful models that rivaled their closed-source counterparts."

	researchSummary = "This project contains documents about Retrieval-Augmented Generation (RAG) systems and recent advancements in Large Language Models (LLMs) from 2023. Key topics include RAG architecture, model efficiency improvements like MoE, and advanced fine-tuning techniques such as RLHF and DPO."

	researchGreeting = "I am ready to answer questions about your documents on AI Research."
)

// DemoProjects builds the two projects a fresh workspace starts with
func DemoProjects(cfg *config.DomainConfig) []*aggregates.Project {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	now := time.Now()

	ragID, _ := valueobjects.NewSourceIDFromString("src_rag_system")
	llmID, _ := valueobjects.NewSourceIDFromString("src_llm_advancements")
	sources := []*entities.Source{
		entities.ReconstructSource(ragID, "RAG System Design.pdf", valueobjects.SourceKindFile,
			valueobjects.SourceIndexed, ragSystemContent, 1, now),
		entities.ReconstructSource(llmID, "LLM Advancements 2023.txt", valueobjects.SourceKindFile,
			valueobjects.SourceIndexed, llmAdvancementsContent, 1, now),
	}

	greeting := entities.Message{
		ID:        "msg_welcome",
		Role:      valueobjects.RoleAssistant,
		Text:      researchGreeting,
		Citations: []entities.Citation{},
		CreatedAt: now,
	}

	research, _ := valueobjects.NewProjectIDFromString("proj_1")
	empty, _ := valueobjects.NewProjectIDFromString("proj_2")

	return []*aggregates.Project{
		aggregates.ReconstructProject(research, "AI Research Analysis", sources, researchSummary,
			[]*entities.Conversation{entities.ReconstructConversation("conv_1", []entities.Message{greeting})},
			nil, "", now),
		aggregates.ReconstructProject(empty, "Empty Project", nil, cfg.PlaceholderSummary,
			[]*entities.Conversation{entities.ReconstructConversation("conv_2", nil)},
			nil, "", now),
	}
}

// Seed loads projects in the given order and makes the first one active.
// Existing ids are skipped.
func (s *ProjectStore) Seed(ctx context.Context, projects []*aggregates.Project) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, p := range projects {
		id := p.ID().String()
		if _, exists := s.projects[id]; exists {
			continue
		}
		s.projects[id] = p.Clone()
		s.order = append(s.order, id)
		added++
	}
	if s.selection.ActiveProjectID == "" && len(s.order) > 0 {
		s.selection = ports.Selection{ActiveProjectID: s.order[0]}
	}
	return added
}
