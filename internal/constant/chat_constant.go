package constant

const (
	ChatMessageRoleUser  = "user"
	ChatMessageRoleModel = "model"

	// Title used when title generation fails during session creation.
	// The submission itself must still go through.
	DefaultSessionTitle = "New conversation"

	// Prompt for deriving a session title from the first message.
	// The 8-word bound is prompt engineering only, not enforced on the output.
	TitlePromptTemplate = "Generate a short and descriptive title (max 8 words) for the following conversation:\n\n%s. Just return the title, no other text."
)
