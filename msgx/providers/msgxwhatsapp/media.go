package msgxwhatsapp

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Abraxas-365/watools/logx"
	"github.com/Abraxas-365/watools/msgx"
)

type whatsappMediaUploadResponse struct {
	ID string `json:"id"`
}

// UploadMedia uploads file to the phone number's media store. The returned
// id can be used as the media reference of later media messages.
func (w *Client) UploadMedia(ctx context.Context, file msgx.MediaFile) (msgx.UploadedMedia, error) {
	if file.MimeType == "" {
		return msgx.UploadedMedia{}, msgx.Registry.NewWithMessage(msgx.ErrUploadFailed,
			fmt.Sprintf("cannot upload %s without a MIME type", file.Filename)).
			WithDetail("provider", whatsappProvider)
	}

	logx.Debug("Uploading %s (%s, %d bytes) to WhatsApp", file.Filename, file.MimeType, len(file.Data))

	var uploadResp whatsappMediaUploadResponse
	var apiErr whatsappErrorResponse
	resp, err := w.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"messaging_product": "whatsapp",
			"type":              file.MimeType,
		}).
		SetMultipartField("file", file.Filename, file.MimeType, bytes.NewReader(file.Data)).
		SetResult(&uploadResp).
		SetError(&apiErr).
		Post(fmt.Sprintf("/%s/media", w.config.PhoneNumberID))
	if err != nil {
		return msgx.UploadedMedia{}, msgx.Registry.NewWithMessage(msgx.ErrUploadFailed, "WhatsApp upload failed: "+err.Error()).
			WithCause(err).
			WithDetail("provider", whatsappProvider)
	}
	if resp.IsError() {
		return msgx.UploadedMedia{}, handleAPIError(resp.StatusCode(), &apiErr, resp.Body())
	}
	if uploadResp.ID == "" {
		return msgx.UploadedMedia{}, msgx.Registry.NewWithMessage(msgx.ErrUploadFailed,
			"WhatsApp upload response has no media id").
			WithDetail("provider", whatsappProvider).
			WithDetail("response_body", resp.String())
	}

	return msgx.UploadedMedia{ID: uploadResp.ID, MimeType: file.MimeType}, nil
}
