package dto

// Lex V2 fulfillment payloads. Field names follow the wire format of the
// conversation manager.

// Dialog action types
const (
	DialogActionClose      = "Close"
	DialogActionElicitSlot = "ElicitSlot"
)

// FulfillmentState is the terminal state of an intent
type FulfillmentState string

const (
	FulfillmentStateFulfilled FulfillmentState = "Fulfilled"
	FulfillmentStateFailed    FulfillmentState = "Failed"
)

// ContentTypePlainText is the only message content type the assistant emits
const ContentTypePlainText = "PlainText"

// LexEvent is the inbound fulfillment event.
type LexEvent struct {
	SessionID        string       `json:"sessionId,omitempty"`
	InputTranscript  string       `json:"inputTranscript,omitempty"`
	InvocationSource string       `json:"invocationSource,omitempty"`
	Bot              *Bot         `json:"bot,omitempty"`
	SessionState     SessionState `json:"sessionState" validate:"required"`
}

// Bot identifies the bot that produced the event
type Bot struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	AliasID  string `json:"aliasId,omitempty"`
	LocaleID string `json:"localeId,omitempty"`
	Version  string `json:"version,omitempty"`
}

// SessionState carries the intent and the per-conversation attributes
type SessionState struct {
	DialogAction      *DialogAction     `json:"dialogAction,omitempty"`
	Intent            Intent            `json:"intent" validate:"required"`
	SessionAttributes map[string]string `json:"sessionAttributes,omitempty"`
}

// Intent is echoed back unchanged on elicitation, so every field Lex sends is kept.
type Intent struct {
	Name              string           `json:"name" validate:"required"`
	Slots             map[string]*Slot `json:"slots,omitempty"`
	State             FulfillmentState `json:"state,omitempty"`
	ConfirmationState string           `json:"confirmationState,omitempty"`
}

// Slot holds a slot value; Lex sends null for slots that have not been filled.
type Slot struct {
	Shape string     `json:"shape,omitempty"`
	Value *SlotValue `json:"value"`
}

// SlotValue is the resolved value of a slot
type SlotValue struct {
	OriginalValue    string   `json:"originalValue,omitempty"`
	InterpretedValue string   `json:"interpretedValue"`
	ResolvedValues   []string `json:"resolvedValues,omitempty"`
}

// SlotValue returns the interpreted value of the named slot and whether it is present.
// A slot that is absent, null, or has an empty interpreted value is not present.
func (i Intent) SlotValue(name string) (string, bool) {
	slot, ok := i.Slots[name]
	if !ok || slot == nil || slot.Value == nil || slot.Value.InterpretedValue == "" {
		return "", false
	}
	return slot.Value.InterpretedValue, true
}

// DialogAction tells the conversation manager what to do next
type DialogAction struct {
	Type         string `json:"type"`
	SlotToElicit string `json:"slotToElicit,omitempty"`
}

// Message is a plain-text message shown to the user
type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// LexResponse is the outbound fulfillment event.
type LexResponse struct {
	SessionState ResponseSessionState `json:"sessionState"`
	Messages     []Message            `json:"messages"`
}

// ResponseSessionState is the session state returned to the conversation manager.
// Intent is a pointer so an elicitation can echo the inbound intent verbatim.
type ResponseSessionState struct {
	DialogAction      DialogAction      `json:"dialogAction"`
	Intent            *Intent           `json:"intent"`
	SessionAttributes map[string]string `json:"sessionAttributes,omitempty"`
}
