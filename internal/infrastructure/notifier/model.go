package notifier

// Discord-совместимый payload вебхука
type WebhookPayload struct {
	Embeds []Embed `json:"embeds"`
}

type Embed struct {
	Title  string       `json:"title"`
	Colour int          `json:"color"`
	Fields []EmbedField `json:"fields"`
	Footer *EmbedFooter `json:"footer,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}
