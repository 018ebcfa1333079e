package msgxtools

import (
	"context"

	"github.com/Abraxas-365/watools/logx"
	"github.com/Abraxas-365/watools/msgx"
	"github.com/Abraxas-365/watools/toolx"
)

type sendButtonsArgs struct {
	To               string             `json:"to" validatex:"required"`
	Text             string             `json:"text" validatex:"required"`
	Buttons          []msgx.ButtonInput `json:"buttons"`
	Header           string             `json:"header"`
	Footer           string             `json:"footer"`
	ReplyToMessageID string             `json:"reply_to_message_id"`
}

type sendListArgs struct {
	To               string              `json:"to" validatex:"required"`
	Text             string              `json:"text" validatex:"required"`
	ButtonText       string              `json:"button_text" validatex:"required"`
	Sections         []msgx.SectionInput `json:"sections"`
	Header           string              `json:"header"`
	Footer           string              `json:"footer"`
	ReplyToMessageID string              `json:"reply_to_message_id"`
}

func (t *Toolset) interactiveTools() []toolx.Tool {
	button := toolx.Object("", map[string]toolx.Property{
		"id":    toolx.String("Button ID returned when the user taps it").MaxLength(msgx.MaxButtonID),
		"title": toolx.String("Button label").MaxLength(msgx.MaxButtonTitle),
	}, "id", "title")

	row := toolx.Object("", map[string]toolx.Property{
		"id":          toolx.String("Row ID returned when the user picks it").MaxLength(msgx.MaxRowID),
		"title":       toolx.String("Row title").MaxLength(msgx.MaxRowTitle),
		"description": toolx.String("Optional row description").MaxLength(msgx.MaxRowDescription),
	}, "id", "title")

	section := toolx.Object("", map[string]toolx.Property{
		"title": toolx.String("Section title").MaxLength(msgx.MaxSectionTitle),
		"rows":  toolx.Array("Rows of the section", row),
	}, "rows")

	return []toolx.Tool{
		define(t, "send_message_with_buttons", "Send a message with up to 3 reply buttons.",
			toolx.NewSchema().
				Require("to", recipient()).
				Require("text", toolx.String("Message body text")).
				Require("buttons", toolx.Array("Reply buttons, each with 'id' and 'title'", button).MaxItems(msgx.MaxButtons)).
				Optional("header", toolx.String("Optional header text").MaxLength(msgx.MaxHeaderLength)).
				Optional("footer", toolx.String("Optional footer text").MaxLength(msgx.MaxFooterLength)).
				Optional("reply_to_message_id", replyTo()),
			t.sendButtons),
		define(t, "send_message_with_list", "Send a message with a selectable list of up to 10 rows.",
			toolx.NewSchema().
				Require("to", recipient()).
				Require("text", toolx.String("Message body text")).
				Require("button_text", toolx.String("Label of the button that opens the list").MaxLength(msgx.MaxListButtonText)).
				Require("sections", toolx.Array("List sections, each with a 'rows' array", section).MaxItems(msgx.MaxSections)).
				Optional("header", toolx.String("Optional header text").MaxLength(msgx.MaxHeaderLength)).
				Optional("footer", toolx.String("Optional footer text").MaxLength(msgx.MaxFooterLength)).
				Optional("reply_to_message_id", replyTo()),
			t.sendList),
	}
}

func (t *Toolset) sendButtons(ctx context.Context, in sendButtonsArgs) toolx.Result[messageSent] {
	buttons, err := msgx.ValidateButtons(in.Buttons, in.Header, in.Footer)
	if err != nil {
		return failed[messageSent]("send message with buttons", err)
	}

	receipt, err := t.client.SendButtons(ctx, msgx.ButtonMessage{
		To:      in.To,
		Body:    in.Text,
		Buttons: buttons,
		Header:  in.Header,
		Footer:  in.Footer,
		ReplyTo: in.ReplyToMessageID,
	})
	if err != nil {
		return failed[messageSent]("send message with buttons", err)
	}
	logx.Info("Message with buttons sent to %s", in.To)
	return toolx.OK(messageSent{MessageID: receipt.MessageID()})
}

func (t *Toolset) sendList(ctx context.Context, in sendListArgs) toolx.Result[messageSent] {
	list, err := msgx.ValidateList(in.ButtonText, in.Sections, in.Header, in.Footer)
	if err != nil {
		return failed[messageSent]("send message with list", err)
	}

	receipt, err := t.client.SendList(ctx, msgx.ListMessage{
		To:      in.To,
		Body:    in.Text,
		List:    list,
		Header:  in.Header,
		Footer:  in.Footer,
		ReplyTo: in.ReplyToMessageID,
	})
	if err != nil {
		return failed[messageSent]("send message with list", err)
	}
	logx.Info("Message with list sent to %s", in.To)
	return toolx.OK(messageSent{MessageID: receipt.MessageID()})
}
