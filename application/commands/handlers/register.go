package handlers

import (
	"fmt"

	"github.com/Sk16er/Scholar-chat/application/commands"
	"github.com/Sk16er/Scholar-chat/application/commands/bus"
)

// Handlers groups every command handler
type Handlers struct {
	Projects  *ProjectHandler
	Sources   *AddSourceOrchestrator
	Summaries *SummaryHandler
	MindMaps  *MindMapHandler
	Chat      *ChatHandler
}

// Register wires every command to its handler
func (h *Handlers) Register(b *bus.CommandBus) error {
	routes := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateProjectCommand{}, bus.Typed(h.Projects.CreateProject)},
		{commands.DeleteProjectCommand{}, bus.Typed(h.Projects.DeleteProject)},
		{commands.SelectProjectCommand{}, bus.Typed(h.Projects.SelectProject)},
		{commands.SelectSourceCommand{}, bus.Typed(h.Projects.SelectSource)},
		{commands.DeleteSourceCommand{}, bus.Typed(h.Projects.DeleteSource)},
		{commands.AddSourceCommand{}, bus.Typed(h.Sources.Handle)},
		{commands.RegenerateSummaryCommand{}, bus.Typed(h.Summaries.RegenerateSummary)},
		{commands.GenerateAudioOverviewCommand{}, bus.Typed(h.Summaries.GenerateAudioOverview)},
		{commands.GenerateMindMapCommand{}, bus.Typed(h.MindMaps.GenerateMindMap)},
		{commands.SendMessageCommand{}, bus.Typed(h.Chat.SendMessage)},
	}
	for _, r := range routes {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return fmt.Errorf("register %s: %w", bus.CommandName(r.cmd), err)
		}
	}
	return nil
}
