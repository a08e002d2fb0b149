package driven

// PromptStore hands out LLM prompt templates by name.
type PromptStore interface {
	// Load fails only for names with neither a file nor a built-in template.
	Load(name string) (string, error)
	Reload()
}

// Prompt names. Each template's fmt verbs are listed beside it, in order.
const (
	PromptSummarise     = "summarise"      // %d max words, %s content
	PromptAnswerSystem  = "answer_system"  // none
	PromptVideoSummary  = "video_summary"  // %s title, %s transcript
	PromptVideoKeywords = "video_keywords" // %s title, %s transcript
)

// PromptStoreAware is implemented by LLM clients that accept user prompt
// overrides.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
