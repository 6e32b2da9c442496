package inference

import "strings"

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentKind is the discriminator tag for ContentPart.
type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentImage ContentKind = "image"
)

// ImageData holds image content as raw bytes plus a media type.
type ImageData struct {
	Data      []byte `json:"data,omitempty"`
	MediaType string `json:"media_type,omitempty"`
}

// ContentPart is a tagged union representing one part of a message.
type ContentPart struct {
	Kind  ContentKind `json:"kind"`
	Text  string      `json:"text,omitempty"`
	Image *ImageData  `json:"image,omitempty"`
}

// TextPart creates a text ContentPart.
func TextPart(text string) ContentPart {
	return ContentPart{Kind: ContentText, Text: text}
}

// ImagePart creates an image ContentPart from raw bytes.
func ImagePart(data []byte, mediaType string) ContentPart {
	if mediaType == "" {
		mediaType = "image/png"
	}
	return ContentPart{
		Kind:  ContentImage,
		Image: &ImageData{Data: data, MediaType: mediaType},
	}
}

// Message is the fundamental unit of conversation.
type Message struct {
	Role    Role          `json:"role"`
	Content []ContentPart `json:"content"`
}

// TextContent returns the concatenation of all text content parts.
func (m Message) TextContent() string {
	var sb strings.Builder
	for _, part := range m.Content {
		if part.Kind == ContentText {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// HasImage reports whether the message carries any image content.
func (m Message) HasImage() bool {
	for _, part := range m.Content {
		if part.Kind == ContentImage {
			return true
		}
	}
	return false
}

// SystemMessage creates a system Message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: []ContentPart{TextPart(text)}}
}

// UserMessage creates a user Message with text content.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: []ContentPart{TextPart(text)}}
}

// VisionMessage creates a user Message carrying an image and an instruction.
func VisionMessage(text string, image []byte, mediaType string) Message {
	return Message{
		Role:    RoleUser,
		Content: []ContentPart{ImagePart(image, mediaType), TextPart(text)},
	}
}

// Usage tracks token consumption reported by the backend.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add returns a new Usage that is the sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
		TotalTokens:  u.TotalTokens + other.TotalTokens,
	}
}

// Request is the input type for Complete.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Provider    string    `json:"provider,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

// HasImage reports whether any message in the request carries image content.
func (r Request) HasImage() bool {
	for _, msg := range r.Messages {
		if msg.HasImage() {
			return true
		}
	}
	return false
}

// Response is the output of Complete.
type Response struct {
	ID       string  `json:"id"`
	Model    string  `json:"model"`
	Provider string  `json:"provider"`
	Message  Message `json:"message"`
	Usage    Usage   `json:"usage"`
}

// Text returns the concatenated text from all text parts in the response message.
func (r Response) Text() string {
	return r.Message.TextContent()
}
