package msgx

import (
	"context"
	"encoding/json"
)

// ========== Core Interfaces ==========

// Client is the outbound half of a messaging provider. Every call performs
// exactly one request and reports failure through the returned error; no
// method retries.
type Client interface {
	SendText(ctx context.Context, msg TextMessage) (Receipt, error)
	SendMedia(ctx context.Context, msg MediaMessage) (Receipt, error)
	SendLocation(ctx context.Context, msg LocationMessage) (Receipt, error)
	RequestLocation(ctx context.Context, msg LocationRequest) (Receipt, error)
	SendContact(ctx context.Context, msg ContactMessage) (Receipt, error)
	SendButtons(ctx context.Context, msg ButtonMessage) (Receipt, error)
	SendList(ctx context.Context, msg ListMessage) (Receipt, error)
	SendTemplate(ctx context.Context, msg TemplateMessage) (Receipt, error)

	// SendReaction reacts to a message. An empty emoji removes the reaction.
	SendReaction(ctx context.Context, reaction Reaction) (Receipt, error)

	MarkAsRead(ctx context.Context, update StatusUpdate) (Receipt, error)

	// IndicateTyping marks the message as read and shows a typing indicator
	// until the next outbound message or for at most TypingIndicatorTTL.
	IndicateTyping(ctx context.Context, update StatusUpdate) (Receipt, error)

	UploadMedia(ctx context.Context, file MediaFile) (UploadedMedia, error)
	ListTemplates(ctx context.Context, query TemplateQuery) ([]Template, error)

	GetProviderName() string
}

// ========== Receipts ==========

// Receipt is what a provider returns for an accepted request. ID holds the
// provider message identifier when the response carries one. Raw is the
// plain rendering of responses that do not, such as a read receipt's
// success flag.
type Receipt struct {
	ID  string `json:"id,omitempty"`
	Raw string `json:"raw,omitempty"`
}

// String returns ID when set, otherwise Raw.
func (r Receipt) String() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Raw
}

// MessageID returns the identifier to report to callers, nil when the
// receipt is empty.
func (r Receipt) MessageID() *string {
	s := r.String()
	if s == "" {
		return nil
	}
	return &s
}

// ========== Message Structures ==========

// MediaType defines the kind of media attached to a message
type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
	MediaAudio    MediaType = "audio"
	MediaSticker  MediaType = "sticker"
)

// TextMessage is a plain text message. Header and Footer only render when
// the provider sends the text as an interactive message.
type TextMessage struct {
	To         string `json:"to"`
	Body       string `json:"body"`
	Header     string `json:"header,omitempty"`
	Footer     string `json:"footer,omitempty"`
	PreviewURL bool   `json:"preview_url,omitempty"`
	ReplyTo    string `json:"reply_to,omitempty"`
}

// MediaMessage sends a media item. Media is either an http(s) URL or an
// identifier returned by UploadMedia.
type MediaMessage struct {
	To       string    `json:"to"`
	Type     MediaType `json:"type"`
	Media    string    `json:"media"`
	Caption  string    `json:"caption,omitempty"`
	Filename string    `json:"filename,omitempty"`
	Footer   string    `json:"footer,omitempty"`
	ReplyTo  string    `json:"reply_to,omitempty"`
}

type LocationMessage struct {
	To        string  `json:"to"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
	ReplyTo   string  `json:"reply_to,omitempty"`
}

// LocationRequest asks the recipient to share their location
type LocationRequest struct {
	To      string `json:"to"`
	Body    string `json:"body"`
	ReplyTo string `json:"reply_to,omitempty"`
}

// Contact is a contact card
type Contact struct {
	FormattedName string         `json:"formatted_name"`
	Phones        []ContactPhone `json:"phones,omitempty"`
}

type ContactPhone struct {
	Phone string `json:"phone"`
	Type  string `json:"type,omitempty"`
}

type ContactMessage struct {
	To      string  `json:"to"`
	Contact Contact `json:"contact"`
	ReplyTo string  `json:"reply_to,omitempty"`
}

// Reaction targets MessageID. Sender overrides the sending phone number id.
type Reaction struct {
	To        string `json:"to"`
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
	Sender    string `json:"sender,omitempty"`
}

// StatusUpdate addresses a received message for read receipts and typing
// indicators.
type StatusUpdate struct {
	MessageID string `json:"message_id"`
	Sender    string `json:"sender,omitempty"`
}

// ButtonMessage carries validated reply buttons, see ValidateButtons.
type ButtonMessage struct {
	To      string   `json:"to"`
	Body    string   `json:"body"`
	Buttons []Button `json:"buttons"`
	Header  string   `json:"header,omitempty"`
	Footer  string   `json:"footer,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// ListMessage carries a validated section list, see ValidateList.
type ListMessage struct {
	To      string      `json:"to"`
	Body    string      `json:"body"`
	List    SectionList `json:"list"`
	Header  string      `json:"header,omitempty"`
	Footer  string      `json:"footer,omitempty"`
	ReplyTo string      `json:"reply_to,omitempty"`
}

// TemplateMessage sends a pre-approved template. Components are passed to
// the provider as given (header, body and button parameter blocks).
type TemplateMessage struct {
	To         string            `json:"to"`
	Name       string            `json:"name"`
	Language   string            `json:"language"`
	Components []json.RawMessage `json:"components,omitempty"`
	ReplyTo    string            `json:"reply_to,omitempty"`
}

// ========== Media Upload ==========

// MediaFile is the content to upload
type MediaFile struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// UploadedMedia identifies uploaded content for later media messages
type UploadedMedia struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
}

// ========== Templates ==========

// TemplateQuery filters ListTemplates. Limit <= 0 means the provider default.
type TemplateQuery struct {
	Limit int    `json:"limit,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Template is the projection of a provider template that callers see.
// Fields the provider omits stay empty.
type Template struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Status   string `json:"status"`
	Category string `json:"category"`
}
