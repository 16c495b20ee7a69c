package config

// User-facing messages. Clients match on some of these verbatim.
const (
	MsgNoActiveProject     = "No active project to add a source to."
	MsgUnsupportedFileType = "Please upload a PDF, TXT, or DOCX file."
	MsgUploadFirst         = "Please upload at least one document."
	MsgUploadBeforeAsking  = "Please upload a document before asking questions."
	MsgSummaryFirst        = "Please generate a summary first."
	MsgCannotAnswer        = "I can't answer that from the provided documents."
	MsgSourceFailed        = "Failed to process the source."
	MsgSummaryFailed       = "Failed to regenerate summary."
	MsgAudioFailed         = "Failed to generate audio overview."
	MsgMindMapFailed       = "Failed to generate mind map."

	// SummaryTemplate formats the project summary after a new source is indexed
	SummaryTemplate = "Summary for %s: %s"
)
