package msgxtools

import (
	"context"
	"encoding/json"

	"github.com/Abraxas-365/watools/logx"
	"github.com/Abraxas-365/watools/msgx"
	"github.com/Abraxas-365/watools/toolx"
)

const (
	defaultTemplateLanguage = "en"
	defaultTemplateLimit    = 100
)

type sendTemplateArgs struct {
	To               string            `json:"to" validatex:"required"`
	Name             string            `json:"name" validatex:"required"`
	Language         string            `json:"language"`
	Params           []json.RawMessage `json:"params"`
	ReplyToMessageID string            `json:"reply_to_message_id"`
}

type getTemplatesArgs struct {
	Limit *int   `json:"limit" validatex:"min=1"`
	Name  string `json:"name"`
}

type templateSent struct {
	MessageID *string `json:"message_id"`
	Template  string  `json:"template"`
	To        string  `json:"to"`
}

type templateList struct {
	Templates []msgx.Template `json:"templates"`
	Count     int             `json:"count"`
}

func (t *Toolset) templateTools() []toolx.Tool {
	return []toolx.Tool{
		define(t, "send_template", "Send a pre-approved template message.",
			toolx.NewSchema().
				Require("to", recipient()).
				Require("name", toolx.String("Template name")).
				Optional("language", toolx.String("Template language code").Default(defaultTemplateLanguage)).
				Optional("params", toolx.Array("Optional template components (header, body and button parameters)",
					toolx.Property{"type": "object"})).
				Optional("reply_to_message_id", replyTo()),
			t.sendTemplate),
		define(t, "get_templates", "List the message templates of the business account.",
			toolx.NewSchema().
				Optional("limit", toolx.Integer("Maximum number of templates to return").Default(defaultTemplateLimit).Minimum(1)).
				Optional("name", toolx.String("Optional template name filter")),
			t.getTemplates),
	}
}

func (t *Toolset) sendTemplate(ctx context.Context, in sendTemplateArgs) toolx.Result[templateSent] {
	language := in.Language
	if language == "" {
		language = defaultTemplateLanguage
	}
	params := in.Params
	if params == nil {
		params = []json.RawMessage{}
	}

	receipt, err := t.client.SendTemplate(ctx, msgx.TemplateMessage{
		To:         in.To,
		Name:       in.Name,
		Language:   language,
		Components: params,
		ReplyTo:    in.ReplyToMessageID,
	})
	if err != nil {
		return failed[templateSent]("send template", err)
	}
	logx.Info("Template '%s' sent to %s", in.Name, in.To)
	return toolx.OK(templateSent{MessageID: receipt.MessageID(), Template: in.Name, To: in.To})
}

func (t *Toolset) getTemplates(ctx context.Context, in getTemplatesArgs) toolx.Result[templateList] {
	limit := defaultTemplateLimit
	if in.Limit != nil {
		limit = *in.Limit
	}

	templates, err := t.client.ListTemplates(ctx, msgx.TemplateQuery{Limit: limit, Name: in.Name})
	if err != nil {
		return failed[templateList]("get templates", err)
	}
	if templates == nil {
		templates = []msgx.Template{}
	}
	logx.Info("Retrieved %d templates", len(templates))
	return toolx.OK(templateList{Templates: templates, Count: len(templates)})
}
