package msgxwhatsapp

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Abraxas-365/watools/logx"
	"github.com/Abraxas-365/watools/msgx"
	"github.com/go-resty/resty/v2"
)

const (
	whatsappAPIURL     = "https://graph.facebook.com"
	whatsappProvider   = "whatsapp"
	whatsappAPIVersion = "v23.0"
	defaultHTTPTimeout = 30 * time.Second
	mediaIDPrefix      = "media_id:"
)

// ========== Configuration ==========

// WhatsAppConfig holds WhatsApp Cloud API settings
type WhatsAppConfig struct {
	AccessToken   string `json:"access_token"`
	PhoneNumberID string `json:"phone_number_id"`
	// BusinessAccountID is only needed for template listing
	BusinessAccountID string        `json:"business_account_id,omitempty"`
	APIVersion        string        `json:"api_version,omitempty"`
	BaseURL           string        `json:"base_url,omitempty"`
	HTTPTimeout       time.Duration `json:"http_timeout,omitempty"`
}

// Client implements msgx.Client against the WhatsApp Cloud API
type Client struct {
	config WhatsAppConfig
	http   *resty.Client
}

var _ msgx.Client = (*Client)(nil)

// NewClient builds a client. The access token and phone number id are
// required; everything else has a default.
func NewClient(config WhatsAppConfig) (*Client, error) {
	var missing []string
	if config.PhoneNumberID == "" {
		missing = append(missing, "phone number id")
	}
	if config.AccessToken == "" {
		missing = append(missing, "access token")
	}
	if len(missing) > 0 {
		return nil, msgx.Registry.NewWithMessage(msgx.ErrProviderConfigInvalid,
			"WhatsApp client is missing "+strings.Join(missing, " and ")).
			WithDetail("provider", whatsappProvider)
	}

	if config.APIVersion == "" {
		config.APIVersion = whatsappAPIVersion
	}
	if config.BaseURL == "" {
		config.BaseURL = whatsappAPIURL
	}
	if config.HTTPTimeout <= 0 {
		config.HTTPTimeout = defaultHTTPTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(config.BaseURL, "/")+"/"+config.APIVersion).
		SetTimeout(config.HTTPTimeout).
		SetAuthToken(config.AccessToken).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)

	return &Client{config: config, http: client}, nil
}

func (w *Client) GetProviderName() string {
	return whatsappProvider
}

// phoneID returns the sending phone number id, honoring a per-call override
func (w *Client) phoneID(sender string) string {
	if sender != "" {
		return sender
	}
	return w.config.PhoneNumberID
}

// ========== Sending ==========

func (w *Client) SendText(ctx context.Context, msg msgx.TextMessage) (msgx.Receipt, error) {
	if msg.Header != "" || msg.Footer != "" {
		logx.Debug("Header and footer are ignored for plain text messages to %s", msg.To)
	}
	return w.sendMessage(ctx, "", newMessage(msg.To, "text", msg.ReplyTo, func(m *whatsappMessage) {
		m.Text = &whatsappText{Body: msg.Body, PreviewURL: msg.PreviewURL}
	}))
}

func (w *Client) SendMedia(ctx context.Context, msg msgx.MediaMessage) (msgx.Receipt, error) {
	media := mediaReference(msg.Media)

	switch msg.Type {
	case msgx.MediaImage, msgx.MediaVideo:
		media.Caption = msg.Caption
	case msgx.MediaDocument:
		media.Caption = msg.Caption
		media.Filename = msg.Filename
	case msgx.MediaAudio, msgx.MediaSticker:
	default:
		return msgx.Receipt{}, msgx.Registry.NewWithMessage(msgx.ErrInvalidMessage,
			fmt.Sprintf("unsupported media type %q", msg.Type)).
			WithDetail("provider", whatsappProvider)
	}

	return w.sendMessage(ctx, "", newMessage(msg.To, string(msg.Type), msg.ReplyTo, func(m *whatsappMessage) {
		switch msg.Type {
		case msgx.MediaImage:
			m.Image = media
		case msgx.MediaVideo:
			m.Video = media
		case msgx.MediaDocument:
			m.Document = media
		case msgx.MediaAudio:
			m.Audio = media
		case msgx.MediaSticker:
			m.Sticker = media
		}
	}))
}

func (w *Client) SendLocation(ctx context.Context, msg msgx.LocationMessage) (msgx.Receipt, error) {
	return w.sendMessage(ctx, "", newMessage(msg.To, "location", msg.ReplyTo, func(m *whatsappMessage) {
		m.Location = &whatsappLocation{
			Latitude:  msg.Latitude,
			Longitude: msg.Longitude,
			Name:      msg.Name,
			Address:   msg.Address,
		}
	}))
}

func (w *Client) RequestLocation(ctx context.Context, msg msgx.LocationRequest) (msgx.Receipt, error) {
	return w.sendMessage(ctx, "", newMessage(msg.To, "interactive", msg.ReplyTo, func(m *whatsappMessage) {
		m.Interactive = &whatsappInteractive{
			Type:   "location_request_message",
			Body:   whatsappTextBody{Text: msg.Body},
			Action: whatsappAction{Name: "send_location"},
		}
	}))
}

func (w *Client) SendContact(ctx context.Context, msg msgx.ContactMessage) (msgx.Receipt, error) {
	return w.sendMessage(ctx, "", newMessage(msg.To, "contacts", msg.ReplyTo, func(m *whatsappMessage) {
		m.Contacts = []whatsappContactCard{toContactCard(msg.Contact)}
	}))
}

func (w *Client) SendButtons(ctx context.Context, msg msgx.ButtonMessage) (msgx.Receipt, error) {
	return w.sendMessage(ctx, "", newMessage(msg.To, "interactive", msg.ReplyTo, func(m *whatsappMessage) {
		m.Interactive = &whatsappInteractive{
			Type:   "button",
			Header: textHeader(msg.Header),
			Body:   whatsappTextBody{Text: msg.Body},
			Footer: textBody(msg.Footer),
			Action: whatsappAction{Buttons: toReplyButtons(msg.Buttons)},
		}
	}))
}

func (w *Client) SendList(ctx context.Context, msg msgx.ListMessage) (msgx.Receipt, error) {
	return w.sendMessage(ctx, "", newMessage(msg.To, "interactive", msg.ReplyTo, func(m *whatsappMessage) {
		m.Interactive = &whatsappInteractive{
			Type:   "list",
			Header: textHeader(msg.Header),
			Body:   whatsappTextBody{Text: msg.Body},
			Footer: textBody(msg.Footer),
			Action: whatsappAction{
				Button:   msg.List.ButtonText,
				Sections: toSections(msg.List.Sections),
			},
		}
	}))
}

func (w *Client) SendTemplate(ctx context.Context, msg msgx.TemplateMessage) (msgx.Receipt, error) {
	return w.sendMessage(ctx, "", newMessage(msg.To, "template", msg.ReplyTo, func(m *whatsappMessage) {
		m.Template = &whatsappTemplate{
			Name:       msg.Name,
			Language:   whatsappLanguage{Code: msg.Language},
			Components: msg.Components,
		}
	}))
}

// SendReaction reacts with reaction.Emoji; an empty emoji removes it.
func (w *Client) SendReaction(ctx context.Context, reaction msgx.Reaction) (msgx.Receipt, error) {
	msg := newMessage(reaction.To, "reaction", "", func(m *whatsappMessage) {
		m.Reaction = &whatsappReaction{MessageID: reaction.MessageID, Emoji: reaction.Emoji}
	})
	return w.sendMessage(ctx, reaction.Sender, msg)
}

// ========== Status Updates ==========

func (w *Client) MarkAsRead(ctx context.Context, update msgx.StatusUpdate) (msgx.Receipt, error) {
	return w.sendStatus(ctx, update.Sender, &whatsappMessage{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        update.MessageID,
	})
}

// IndicateTyping marks the message read and shows the typing indicator. The
// indicator clears on the next outbound message or after msgx.TypingIndicatorTTL.
func (w *Client) IndicateTyping(ctx context.Context, update msgx.StatusUpdate) (msgx.Receipt, error) {
	return w.sendStatus(ctx, update.Sender, &whatsappMessage{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        update.MessageID,
		TypingIndicator:  &whatsappTypingIndicator{Type: "text"},
	})
}

// ========== Helper Methods ==========

func (w *Client) sendMessage(ctx context.Context, sender string, message *whatsappMessage) (msgx.Receipt, error) {
	logx.Debug("Sending WhatsApp %s message to %s", message.Type, message.To)

	var sendResp whatsappSendResponse
	resp, err := w.post(ctx, sender, message, &sendResp)
	if err != nil {
		return msgx.Receipt{}, err
	}

	receipt := msgx.Receipt{Raw: resp.String()}
	if len(sendResp.Messages) > 0 {
		receipt.ID = sendResp.Messages[0].ID
	}
	return receipt, nil
}

func (w *Client) sendStatus(ctx context.Context, sender string, message *whatsappMessage) (msgx.Receipt, error) {
	logx.Debug("Updating WhatsApp message %s status", message.MessageID)

	var statusResp whatsappStatusResponse
	if _, err := w.post(ctx, sender, message, &statusResp); err != nil {
		return msgx.Receipt{}, err
	}
	return msgx.Receipt{Raw: strconv.FormatBool(statusResp.Success)}, nil
}

func (w *Client) post(ctx context.Context, sender string, body any, result any) (*resty.Response, error) {
	var apiErr whatsappErrorResponse
	resp, err := w.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(result).
		SetError(&apiErr).
		Post(fmt.Sprintf("/%s/messages", w.phoneID(sender)))
	if err != nil {
		return nil, requestError(err, "send_message")
	}
	if resp.IsError() {
		return nil, handleAPIError(resp.StatusCode(), &apiErr, resp.Body())
	}
	return resp, nil
}

// requestError reports a request that never got an HTTP response
func requestError(err error, operation string) error {
	return msgx.Registry.NewWithMessage(msgx.ErrSendFailed, "WhatsApp request failed: "+err.Error()).
		WithCause(err).
		WithDetail("provider", whatsappProvider).
		WithDetail("operation", operation)
}

// handleAPIError maps a Graph API error response to a registry error
func handleAPIError(status int, apiErr *whatsappErrorResponse, body []byte) error {
	if apiErr == nil || apiErr.Error.Code == 0 && apiErr.Error.Message == "" {
		return msgx.Registry.NewWithMessage(msgx.ErrSendFailed,
			fmt.Sprintf("WhatsApp API returned status %d: %s", status, strings.TrimSpace(string(body)))).
			WithDetail("provider", whatsappProvider).
			WithDetail("http_status", status)
	}

	code := msgx.ErrSendFailed
	switch status {
	case http.StatusTooManyRequests:
		code = msgx.ErrRateLimitExceeded
	case http.StatusServiceUnavailable:
		code = msgx.ErrProviderUnavailable
	case http.StatusUnauthorized:
		code = msgx.ErrProviderConfigInvalid
	case http.StatusBadRequest:
		code = msgx.ErrInvalidMessage
	}

	return msgx.Registry.NewWithMessage(code, fmt.Sprintf("%s (code %d)", apiErr.Error.Message, apiErr.Error.Code)).
		WithDetail("provider", whatsappProvider).
		WithDetail("http_status", status).
		WithDetail("whatsapp_error", apiErr.Error)
}

// mediaReference treats http(s) references as links and anything else as an
// uploaded media id. A "media_id:" prefix is accepted and stripped.
func mediaReference(ref string) *whatsappMedia {
	ref = strings.TrimSpace(ref)
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return &whatsappMedia{Link: ref}
	}
	return &whatsappMedia{ID: strings.TrimPrefix(ref, mediaIDPrefix)}
}
