package msgxtools

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/Abraxas-365/watools/logx"
	"github.com/Abraxas-365/watools/msgx"
	"github.com/Abraxas-365/watools/toolx"
)

// ========== Results ==========

type messageSent struct {
	MessageID *string `json:"message_id"`
}

type textSent struct {
	MessageID *string `json:"message_id"`
	To        string  `json:"to"`
}

type receiptResult struct {
	Result *string `json:"result"`
}

type typingResult struct {
	TypingIndicated bool   `json:"typing_indicated"`
	MessageID       string `json:"message_id"`
}

type mediaUploaded struct {
	MediaID   string `json:"media_id"`
	MediaType string `json:"media_type"`
}

// ========== Arguments ==========

type sendMessageArgs struct {
	To               string `json:"to" validatex:"required"`
	Text             string `json:"text" validatex:"required"`
	Header           string `json:"header"`
	Footer           string `json:"footer"`
	PreviewURL       bool   `json:"preview_url"`
	ReplyToMessageID string `json:"reply_to_message_id"`
}

type sendImageArgs struct {
	To               string `json:"to" validatex:"required"`
	Image            string `json:"image" validatex:"required"`
	Caption          string `json:"caption"`
	Footer           string `json:"footer"`
	ReplyToMessageID string `json:"reply_to_message_id"`
}

type sendVideoArgs struct {
	To               string `json:"to" validatex:"required"`
	Video            string `json:"video" validatex:"required"`
	Caption          string `json:"caption"`
	Footer           string `json:"footer"`
	ReplyToMessageID string `json:"reply_to_message_id"`
}

type sendDocumentArgs struct {
	To               string `json:"to" validatex:"required"`
	Document         string `json:"document" validatex:"required"`
	Filename         string `json:"filename"`
	Caption          string `json:"caption"`
	Footer           string `json:"footer"`
	ReplyToMessageID string `json:"reply_to_message_id"`
}

type sendAudioArgs struct {
	To               string `json:"to" validatex:"required"`
	Audio            string `json:"audio" validatex:"required"`
	ReplyToMessageID string `json:"reply_to_message_id"`
}

type sendStickerArgs struct {
	To               string `json:"to" validatex:"required"`
	Sticker          string `json:"sticker" validatex:"required"`
	ReplyToMessageID string `json:"reply_to_message_id"`
}

type sendLocationArgs struct {
	To               string   `json:"to" validatex:"required"`
	Latitude         *float64 `json:"latitude" validatex:"required,min=-90,max=90"`
	Longitude        *float64 `json:"longitude" validatex:"required,min=-180,max=180"`
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	ReplyToMessageID string   `json:"reply_to_message_id"`
}

type requestLocationArgs struct {
	To               string `json:"to" validatex:"required"`
	Text             string `json:"text" validatex:"required"`
	ReplyToMessageID string `json:"reply_to_message_id"`
}

type sendContactArgs struct {
	To               string `json:"to" validatex:"required"`
	ContactName      string `json:"contact_name" validatex:"required"`
	ContactPhone     string `json:"contact_phone" validatex:"required"`
	ReplyToMessageID string `json:"reply_to_message_id"`
}

type sendReactionArgs struct {
	To        string `json:"to" validatex:"required"`
	Emoji     string `json:"emoji"`
	MessageID string `json:"message_id" validatex:"required"`
	Sender    string `json:"sender"`
}

type removeReactionArgs struct {
	To        string `json:"to" validatex:"required"`
	MessageID string `json:"message_id" validatex:"required"`
	Sender    string `json:"sender"`
}

type statusArgs struct {
	MessageID string `json:"message_id" validatex:"required"`
	Sender    string `json:"sender"`
}

type uploadMediaArgs struct {
	MediaPath string `json:"media_path" validatex:"required"`
	MimeType  string `json:"mime_type"`
}

// ========== Schemas ==========

func recipient() toolx.Property {
	return toolx.String("Phone number (with country code) or WhatsApp ID")
}

func replyTo() toolx.Property {
	return toolx.String("Message ID to reply to")
}

func mediaSchema(key, what string, withCaption bool) *toolx.Schema {
	s := toolx.NewSchema().
		Require("to", recipient()).
		Require(key, toolx.String(what+" URL or media ID"))
	if withCaption {
		s.Optional("caption", toolx.String("Optional "+what+" caption")).
			Optional("footer", toolx.String("Optional footer text"))
	}
	return s.Optional("reply_to_message_id", replyTo())
}

// ========== Tools ==========

func (t *Toolset) messagingTools() []toolx.Tool {
	return []toolx.Tool{
		define(t, "send_message", "Send a text message to a WhatsApp user.",
			toolx.NewSchema().
				Require("to", recipient()).
				Require("text", toolx.String("The text message content")).
				Optional("header", toolx.String("Optional header text (for interactive messages)")).
				Optional("footer", toolx.String("Optional footer text (for interactive messages)")).
				Optional("preview_url", toolx.Boolean("Whether to show URL previews").Default(false)).
				Optional("reply_to_message_id", replyTo()),
			t.sendMessage),
		define(t, "send_image", "Send an image message.", mediaSchema("image", "Image", true), t.sendImage),
		define(t, "send_video", "Send a video message.", mediaSchema("video", "Video", true), t.sendVideo),
		define(t, "send_document", "Send a document message.",
			mediaSchema("document", "Document", true).
				Optional("filename", toolx.String("Optional filename shown to the recipient")),
			t.sendDocument),
		define(t, "send_audio", "Send an audio message.", mediaSchema("audio", "Audio", false), t.sendAudio),
		define(t, "send_sticker", "Send a sticker message.", mediaSchema("sticker", "Sticker", false), t.sendSticker),
		define(t, "send_location", "Send a location message.",
			toolx.NewSchema().
				Require("to", recipient()).
				Require("latitude", toolx.Number("Location latitude").Minimum(-90).Maximum(90)).
				Require("longitude", toolx.Number("Location longitude").Minimum(-180).Maximum(180)).
				Optional("name", toolx.String("Optional location name")).
				Optional("address", toolx.String("Optional location address")).
				Optional("reply_to_message_id", replyTo()),
			t.sendLocation),
		define(t, "request_location", "Ask the user to share their location.",
			toolx.NewSchema().
				Require("to", recipient()).
				Require("text", toolx.String("Text shown with the location request")).
				Optional("reply_to_message_id", replyTo()),
			t.requestLocation),
		define(t, "send_contact", "Send a contact card.",
			toolx.NewSchema().
				Require("to", recipient()).
				Require("contact_name", toolx.String("Name of the contact")).
				Require("contact_phone", toolx.String("Phone number of the contact")).
				Optional("reply_to_message_id", replyTo()),
			t.sendContact),
		define(t, "send_reaction", "Send a reaction to a message.",
			toolx.NewSchema().
				Require("to", recipient()).
				Require("emoji", toolx.String("Reaction emoji")).
				Require("message_id", toolx.String("ID of the message to react to")).
				Optional("sender", toolx.String("Optional sender phone ID")),
			t.sendReaction),
		define(t, "remove_reaction", "Remove a reaction from a message.",
			toolx.NewSchema().
				Require("to", recipient()).
				Require("message_id", toolx.String("ID of the message to remove the reaction from")).
				Optional("sender", toolx.String("Optional sender phone ID")),
			t.removeReaction),
		define(t, "mark_message_as_read", "Mark a message as read.",
			toolx.NewSchema().
				Require("message_id", toolx.String("The WhatsApp message ID to mark as read")).
				Optional("sender", toolx.String("Optional phone ID")),
			t.markAsRead),
		define(t, "indicate_typing",
			"Mark a message as read and show a typing indicator to the user. "+
				"The indicator lasts at most 25 seconds or until the next message is sent; only use it when a reply follows.",
			toolx.NewSchema().
				Require("message_id", toolx.String("The WhatsApp message ID to respond to (from the incoming message)")).
				Optional("sender", toolx.String("Optional phone ID (defaults to the configured phone ID)")),
			t.indicateTyping),
		define(t, "upload_media", "Upload a media file to WhatsApp servers and return its media ID.",
			toolx.NewSchema().
				Require("media_path", toolx.String("Path to the media file (local path or s3://bucket/key)")).
				Optional("mime_type", toolx.String("Optional MIME type, detected from the file when omitted")),
			t.uploadMedia),
	}
}

// ========== Handlers ==========

func (t *Toolset) sendMessage(ctx context.Context, in sendMessageArgs) toolx.Result[textSent] {
	receipt, err := t.client.SendText(ctx, msgx.TextMessage{
		To:         in.To,
		Body:       in.Text,
		Header:     in.Header,
		Footer:     in.Footer,
		PreviewURL: in.PreviewURL,
		ReplyTo:    in.ReplyToMessageID,
	})
	if err != nil {
		return failed[textSent]("send message", err)
	}
	logx.Info("Message sent to %s", in.To)
	return toolx.OK(textSent{MessageID: receipt.MessageID(), To: in.To})
}

func (t *Toolset) sendMedia(ctx context.Context, label string, msg msgx.MediaMessage) toolx.Result[messageSent] {
	receipt, err := t.client.SendMedia(ctx, msg)
	if err != nil {
		return failed[messageSent]("send "+string(msg.Type), err)
	}
	logx.Info("%s sent to %s", label, msg.To)
	return toolx.OK(messageSent{MessageID: receipt.MessageID()})
}

func (t *Toolset) sendImage(ctx context.Context, in sendImageArgs) toolx.Result[messageSent] {
	return t.sendMedia(ctx, "Image", msgx.MediaMessage{
		To: in.To, Type: msgx.MediaImage, Media: in.Image,
		Caption: in.Caption, Footer: in.Footer, ReplyTo: in.ReplyToMessageID,
	})
}

func (t *Toolset) sendVideo(ctx context.Context, in sendVideoArgs) toolx.Result[messageSent] {
	return t.sendMedia(ctx, "Video", msgx.MediaMessage{
		To: in.To, Type: msgx.MediaVideo, Media: in.Video,
		Caption: in.Caption, Footer: in.Footer, ReplyTo: in.ReplyToMessageID,
	})
}

func (t *Toolset) sendDocument(ctx context.Context, in sendDocumentArgs) toolx.Result[messageSent] {
	return t.sendMedia(ctx, "Document", msgx.MediaMessage{
		To: in.To, Type: msgx.MediaDocument, Media: in.Document, Filename: in.Filename,
		Caption: in.Caption, Footer: in.Footer, ReplyTo: in.ReplyToMessageID,
	})
}

func (t *Toolset) sendAudio(ctx context.Context, in sendAudioArgs) toolx.Result[messageSent] {
	return t.sendMedia(ctx, "Audio", msgx.MediaMessage{
		To: in.To, Type: msgx.MediaAudio, Media: in.Audio, ReplyTo: in.ReplyToMessageID,
	})
}

func (t *Toolset) sendSticker(ctx context.Context, in sendStickerArgs) toolx.Result[messageSent] {
	return t.sendMedia(ctx, "Sticker", msgx.MediaMessage{
		To: in.To, Type: msgx.MediaSticker, Media: in.Sticker, ReplyTo: in.ReplyToMessageID,
	})
}

func (t *Toolset) sendLocation(ctx context.Context, in sendLocationArgs) toolx.Result[messageSent] {
	receipt, err := t.client.SendLocation(ctx, msgx.LocationMessage{
		To:        in.To,
		Latitude:  *in.Latitude,
		Longitude: *in.Longitude,
		Name:      in.Name,
		Address:   in.Address,
		ReplyTo:   in.ReplyToMessageID,
	})
	if err != nil {
		return failed[messageSent]("send location", err)
	}
	logx.Info("Location sent to %s", in.To)
	return toolx.OK(messageSent{MessageID: receipt.MessageID()})
}

func (t *Toolset) requestLocation(ctx context.Context, in requestLocationArgs) toolx.Result[messageSent] {
	receipt, err := t.client.RequestLocation(ctx, msgx.LocationRequest{
		To:      in.To,
		Body:    in.Text,
		ReplyTo: in.ReplyToMessageID,
	})
	if err != nil {
		return failed[messageSent]("request location", err)
	}
	logx.Info("Location request sent to %s", in.To)
	return toolx.OK(messageSent{MessageID: receipt.MessageID()})
}

func (t *Toolset) sendContact(ctx context.Context, in sendContactArgs) toolx.Result[messageSent] {
	receipt, err := t.client.SendContact(ctx, msgx.ContactMessage{
		To: in.To,
		Contact: msgx.Contact{
			FormattedName: in.ContactName,
			Phones:        []msgx.ContactPhone{{Phone: in.ContactPhone}},
		},
		ReplyTo: in.ReplyToMessageID,
	})
	if err != nil {
		return failed[messageSent]("send contact", err)
	}
	logx.Info("Contact sent to %s", in.To)
	return toolx.OK(messageSent{MessageID: receipt.MessageID()})
}

func (t *Toolset) sendReaction(ctx context.Context, in sendReactionArgs) toolx.Result[receiptResult] {
	receipt, err := t.client.SendReaction(ctx, msgx.Reaction{
		To:        in.To,
		MessageID: in.MessageID,
		Emoji:     in.Emoji,
		Sender:    in.Sender,
	})
	if err != nil {
		return failed[receiptResult]("send reaction", err)
	}
	logx.Info("Reaction sent to message %s", in.MessageID)
	return toolx.OK(receiptResult{Result: receipt.MessageID()})
}

func (t *Toolset) removeReaction(ctx context.Context, in removeReactionArgs) toolx.Result[receiptResult] {
	receipt, err := t.client.SendReaction(ctx, msgx.Reaction{
		To:        in.To,
		MessageID: in.MessageID,
		Sender:    in.Sender,
	})
	if err != nil {
		return failed[receiptResult]("remove reaction", err)
	}
	logx.Info("Reaction removed from message %s", in.MessageID)
	return toolx.OK(receiptResult{Result: receipt.MessageID()})
}

func (t *Toolset) markAsRead(ctx context.Context, in statusArgs) toolx.Result[receiptResult] {
	receipt, err := t.client.MarkAsRead(ctx, msgx.StatusUpdate{MessageID: in.MessageID, Sender: in.Sender})
	if err != nil {
		return failed[receiptResult]("mark message as read", err)
	}
	logx.Info("Message %s marked as read", in.MessageID)
	return toolx.OK(receiptResult{Result: receipt.MessageID()})
}

func (t *Toolset) indicateTyping(ctx context.Context, in statusArgs) toolx.Result[typingResult] {
	receipt, err := t.client.IndicateTyping(ctx, msgx.StatusUpdate{MessageID: in.MessageID, Sender: in.Sender})
	if err != nil {
		return failed[typingResult]("indicate typing", err)
	}
	logx.Info("Typing indicator shown for message %s", in.MessageID)

	indicated, parseErr := strconv.ParseBool(receipt.Raw)
	if parseErr != nil {
		indicated = receipt.String() != ""
	}
	return toolx.OK(typingResult{TypingIndicated: indicated, MessageID: in.MessageID})
}

func (t *Toolset) uploadMedia(ctx context.Context, in uploadMediaArgs) toolx.Result[mediaUploaded] {
	file, err := t.media.Open(ctx, in.MediaPath)
	if err != nil {
		return failed[mediaUploaded]("upload media", err)
	}

	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = file.ContentType
	}
	name := file.Name
	if name == "" {
		name = filepath.Base(in.MediaPath)
	}

	uploaded, err := t.client.UploadMedia(ctx, msgx.MediaFile{
		Filename: name,
		MimeType: mimeType,
		Data:     file.Data,
	})
	if err != nil {
		return failed[mediaUploaded]("upload media", err)
	}
	logx.Info("Media uploaded successfully")
	return toolx.OK(mediaUploaded{MediaID: uploaded.ID, MediaType: uploaded.MimeType})
}
