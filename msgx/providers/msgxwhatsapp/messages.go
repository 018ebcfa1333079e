package msgxwhatsapp

import (
	"encoding/json"

	"github.com/Abraxas-365/watools/msgx"
)

// ========== WhatsApp API Structures ==========

// whatsappMessage is the body of POST /{phone-number-id}/messages. Sends
// fill To/Type and one content block; status updates fill Status/MessageID.
type whatsappMessage struct {
	MessagingProduct string                   `json:"messaging_product"`
	RecipientType    string                   `json:"recipient_type,omitempty"`
	To               string                   `json:"to,omitempty"`
	Type             string                   `json:"type,omitempty"`
	Context          *whatsappContext         `json:"context,omitempty"`
	Text             *whatsappText            `json:"text,omitempty"`
	Image            *whatsappMedia           `json:"image,omitempty"`
	Video            *whatsappMedia           `json:"video,omitempty"`
	Document         *whatsappMedia           `json:"document,omitempty"`
	Audio            *whatsappMedia           `json:"audio,omitempty"`
	Sticker          *whatsappMedia           `json:"sticker,omitempty"`
	Location         *whatsappLocation        `json:"location,omitempty"`
	Contacts         []whatsappContactCard    `json:"contacts,omitempty"`
	Reaction         *whatsappReaction        `json:"reaction,omitempty"`
	Interactive      *whatsappInteractive     `json:"interactive,omitempty"`
	Template         *whatsappTemplate        `json:"template,omitempty"`
	Status           string                   `json:"status,omitempty"`
	MessageID        string                   `json:"message_id,omitempty"`
	TypingIndicator  *whatsappTypingIndicator `json:"typing_indicator,omitempty"`
}

type whatsappContext struct {
	MessageID string `json:"message_id"`
}

type whatsappText struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url,omitempty"`
}

type whatsappMedia struct {
	ID       string `json:"id,omitempty"`
	Link     string `json:"link,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type whatsappLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

type whatsappContactCard struct {
	Name   whatsappContactName    `json:"name"`
	Phones []whatsappContactPhone `json:"phones,omitempty"`
}

type whatsappContactName struct {
	FormattedName string `json:"formatted_name"`
}

type whatsappContactPhone struct {
	Phone string `json:"phone"`
	Type  string `json:"type,omitempty"`
}

type whatsappReaction struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

type whatsappInteractive struct {
	Type   string            `json:"type"`
	Header *whatsappHeader   `json:"header,omitempty"`
	Body   whatsappTextBody  `json:"body"`
	Footer *whatsappTextBody `json:"footer,omitempty"`
	Action whatsappAction    `json:"action"`
}

type whatsappHeader struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type whatsappTextBody struct {
	Text string `json:"text"`
}

type whatsappAction struct {
	Name     string                `json:"name,omitempty"`
	Button   string                `json:"button,omitempty"`
	Buttons  []whatsappReplyButton `json:"buttons,omitempty"`
	Sections []whatsappSection     `json:"sections,omitempty"`
}

type whatsappReplyButton struct {
	Type  string        `json:"type"`
	Reply whatsappReply `json:"reply"`
}

type whatsappReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type whatsappSection struct {
	Title string        `json:"title,omitempty"`
	Rows  []whatsappRow `json:"rows"`
}

type whatsappRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type whatsappTemplate struct {
	Name       string            `json:"name"`
	Language   whatsappLanguage  `json:"language"`
	Components []json.RawMessage `json:"components,omitempty"`
}

type whatsappLanguage struct {
	Code string `json:"code"`
}

type whatsappTypingIndicator struct {
	Type string `json:"type"`
}

// ========== Responses ==========

type whatsappSendResponse struct {
	MessagingProduct string                    `json:"messaging_product"`
	Contacts         []whatsappContact         `json:"contacts"`
	Messages         []whatsappMessageResponse `json:"messages"`
}

type whatsappContact struct {
	Input string `json:"input"`
	WaID  string `json:"wa_id"`
}

type whatsappMessageResponse struct {
	ID string `json:"id"`
}

type whatsappStatusResponse struct {
	Success bool `json:"success"`
}

type whatsappErrorResponse struct {
	Error whatsappError `json:"error"`
}

type whatsappError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode,omitempty"`
	FbtraceID    string `json:"fbtrace_id,omitempty"`
}

// ========== Builders ==========

func newMessage(to, msgType, replyTo string, fill func(*whatsappMessage)) *whatsappMessage {
	m := &whatsappMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             msgType,
	}
	if replyTo != "" {
		m.Context = &whatsappContext{MessageID: replyTo}
	}
	fill(m)
	return m
}

func textHeader(text string) *whatsappHeader {
	if text == "" {
		return nil
	}
	return &whatsappHeader{Type: "text", Text: text}
}

func textBody(text string) *whatsappTextBody {
	if text == "" {
		return nil
	}
	return &whatsappTextBody{Text: text}
}

func toReplyButtons(buttons []msgx.Button) []whatsappReplyButton {
	out := make([]whatsappReplyButton, 0, len(buttons))
	for _, b := range buttons {
		out = append(out, whatsappReplyButton{
			Type:  "reply",
			Reply: whatsappReply{ID: b.ID, Title: b.Title},
		})
	}
	return out
}

func toSections(sections []msgx.Section) []whatsappSection {
	out := make([]whatsappSection, 0, len(sections))
	for _, s := range sections {
		rows := make([]whatsappRow, 0, len(s.Rows))
		for _, r := range s.Rows {
			row := whatsappRow{ID: r.ID, Title: r.Title}
			if r.Description != nil {
				row.Description = *r.Description
			}
			rows = append(rows, row)
		}
		out = append(out, whatsappSection{Title: s.Title, Rows: rows})
	}
	return out
}

func toContactCard(c msgx.Contact) whatsappContactCard {
	card := whatsappContactCard{Name: whatsappContactName{FormattedName: c.FormattedName}}
	for _, p := range c.Phones {
		card.Phones = append(card.Phones, whatsappContactPhone{Phone: p.Phone, Type: p.Type})
	}
	return card
}
