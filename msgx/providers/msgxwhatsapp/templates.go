package msgxwhatsapp

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Abraxas-365/watools/logx"
	"github.com/Abraxas-365/watools/msgx"
)

// ========== Template API Structures ==========

// TemplateFromAPI is a template as returned by the business account API
type TemplateFromAPI struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Status   string `json:"status"`
	Category string `json:"category"`
}

type templateListResponse struct {
	Data []TemplateFromAPI `json:"data"`
}

const templateFields = "id,name,language,status,category"

// ListTemplates fetches message templates of the business account. It needs
// BusinessAccountID; without it the call fails with ErrTemplatesUnavailable.
func (w *Client) ListTemplates(ctx context.Context, query msgx.TemplateQuery) ([]msgx.Template, error) {
	if w.config.BusinessAccountID == "" {
		return nil, msgx.Registry.NewWithMessage(msgx.ErrTemplatesUnavailable,
			"WhatsApp business account id is not configured (set WHATSAPP_BUSINESS_ACCOUNT_ID)").
			WithDetail("provider", whatsappProvider)
	}

	params := map[string]string{"fields": templateFields}
	if query.Limit > 0 {
		params["limit"] = strconv.Itoa(query.Limit)
	}
	if query.Name != "" {
		params["name"] = query.Name
	}

	var listResp templateListResponse
	var apiErr whatsappErrorResponse
	resp, err := w.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&listResp).
		SetError(&apiErr).
		Get(fmt.Sprintf("/%s/message_templates", w.config.BusinessAccountID))
	if err != nil {
		return nil, requestError(err, "list_templates")
	}
	if resp.IsError() {
		return nil, handleAPIError(resp.StatusCode(), &apiErr, resp.Body())
	}

	templates := make([]msgx.Template, 0, len(listResp.Data))
	for _, t := range listResp.Data {
		if query.Limit > 0 && len(templates) == query.Limit {
			break
		}
		templates = append(templates, msgx.Template{
			ID:       t.ID,
			Name:     t.Name,
			Language: t.Language,
			Status:   t.Status,
			Category: t.Category,
		})
	}

	logx.Debug("Fetched %d WhatsApp templates", len(templates))
	return templates, nil
}
