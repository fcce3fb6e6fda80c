package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the
// binary, or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next
	// access. Useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names. These constants define the contract between
// prompt consumers and providers.
const (
	// PromptQueryRewrite expands free-text queries for better recall.
	// The template expects a %s placeholder for the original query.
	PromptQueryRewrite = "query_rewrite"

	// PromptAnswer is the grounded QA prompt. The template expects %s
	// (context block) and %s (question) placeholders, in that order.
	PromptAnswer = "qa_answer"
)
