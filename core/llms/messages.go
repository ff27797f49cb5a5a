package llms

// Role describes who a message is from.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single entry in the conversational history submitted to the
// completion engine. Messages are append-only: once stored in memory they are
// never mutated.
//
// Only the fields valid for a variant are set. Use the constructors rather
// than building messages by hand, so that invalid combinations (e.g. a tool
// result without a call id) cannot be represented in a history.
type Message struct {
	Role    Role
	Content string

	// ToolCalls carries the call intent on an assistant message. Empty for
	// every other variant.
	ToolCalls []ToolCall

	// ToolCallID and Name tie a tool-result message back to the call it
	// answers. Empty for every other variant.
	ToolCallID string
	Name       string
}

// SystemMessage builds an instruction message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a caller utterance message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds a plain assistant content message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolCallMessage records the intent to execute tool calls. Content stays
// empty: the engine protocol keeps the intent and the narration of its
// outcome as separate messages.
func ToolCallMessage(calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, ToolCalls: calls}
}

// ToolResultMessage records the outcome of a tool call, tagged with the id
// and name of the call it answers. It must directly follow the matching
// intent message in a history.
func ToolResultMessage(callID, name, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID, Name: name}
}

// ToolCall is a fully identified request to invoke a named tool.
type ToolCall struct {
	ID   string
	Name string
	// Arguments is the raw JSON object text produced by the engine.
	Arguments string
}

// ToolCallFragment is one streamed piece of a tool call. Only the first
// fragment of a call is guaranteed to carry the identity fields; later
// fragments usually carry just another slice of the arguments text.
type ToolCallFragment struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}
