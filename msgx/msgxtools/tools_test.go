package msgxtools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/watools/configx"
	"github.com/Abraxas-365/watools/errx"
	"github.com/Abraxas-365/watools/eventx"
	"github.com/Abraxas-365/watools/fsx"
	"github.com/Abraxas-365/watools/metricx"
	"github.com/Abraxas-365/watools/msgx"
	"github.com/Abraxas-365/watools/toolx"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// fakeClient records every request and answers with a fixed receipt.
type fakeClient struct {
	mu      sync.Mutex
	calls   []string
	last    any
	receipt msgx.Receipt
	err     error

	uploaded  msgx.MediaFile
	templates []msgx.Template
	query     msgx.TemplateQuery
}

func (f *fakeClient) record(name string, msg any) (msgx.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	f.last = msg
	return f.receipt, f.err
}

func (f *fakeClient) SendText(_ context.Context, m msgx.TextMessage) (msgx.Receipt, error) {
	return f.record("SendText", m)
}
func (f *fakeClient) SendMedia(_ context.Context, m msgx.MediaMessage) (msgx.Receipt, error) {
	return f.record("SendMedia", m)
}
func (f *fakeClient) SendLocation(_ context.Context, m msgx.LocationMessage) (msgx.Receipt, error) {
	return f.record("SendLocation", m)
}
func (f *fakeClient) RequestLocation(_ context.Context, m msgx.LocationRequest) (msgx.Receipt, error) {
	return f.record("RequestLocation", m)
}
func (f *fakeClient) SendContact(_ context.Context, m msgx.ContactMessage) (msgx.Receipt, error) {
	return f.record("SendContact", m)
}
func (f *fakeClient) SendButtons(_ context.Context, m msgx.ButtonMessage) (msgx.Receipt, error) {
	return f.record("SendButtons", m)
}
func (f *fakeClient) SendList(_ context.Context, m msgx.ListMessage) (msgx.Receipt, error) {
	return f.record("SendList", m)
}
func (f *fakeClient) SendTemplate(_ context.Context, m msgx.TemplateMessage) (msgx.Receipt, error) {
	return f.record("SendTemplate", m)
}
func (f *fakeClient) SendReaction(_ context.Context, r msgx.Reaction) (msgx.Receipt, error) {
	return f.record("SendReaction", r)
}
func (f *fakeClient) MarkAsRead(_ context.Context, u msgx.StatusUpdate) (msgx.Receipt, error) {
	return f.record("MarkAsRead", u)
}
func (f *fakeClient) IndicateTyping(_ context.Context, u msgx.StatusUpdate) (msgx.Receipt, error) {
	return f.record("IndicateTyping", u)
}

func (f *fakeClient) UploadMedia(_ context.Context, file msgx.MediaFile) (msgx.UploadedMedia, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "UploadMedia")
	f.uploaded = file
	if f.err != nil {
		return msgx.UploadedMedia{}, f.err
	}
	return msgx.UploadedMedia{ID: "media-1", MimeType: file.MimeType}, nil
}

func (f *fakeClient) ListTemplates(_ context.Context, q msgx.TemplateQuery) ([]msgx.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "ListTemplates")
	f.query = q
	if f.err != nil {
		return nil, f.err
	}
	return f.templates, nil
}

func (f *fakeClient) GetProviderName() string { return "fake" }

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeMedia map[string]fsx.File

func (m fakeMedia) Open(_ context.Context, location string) (fsx.File, error) {
	if f, ok := m[location]; ok {
		return f, nil
	}
	return fsx.File{}, fsx.ErrorRegistry.NewWithMessage(fsx.ErrNotFound, "file not found: "+location)
}

func call(t *testing.T, ts *Toolset, name, args string) toolx.Envelope {
	t.Helper()
	reg := toolx.NewToolRegistry()
	if err := ts.Register(reg); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return reg.Call(context.Background(), name, json.RawMessage(args))
}

func TestToolsetRegistersEveryTool(t *testing.T) {
	t.Parallel()

	ts := New(&fakeClient{})
	want := []string{
		"send_message", "send_image", "send_video", "send_document", "send_audio", "send_sticker",
		"send_location", "request_location", "send_contact", "send_reaction", "remove_reaction",
		"mark_message_as_read", "indicate_typing", "upload_media",
		"send_message_with_buttons", "send_message_with_list",
		"send_template", "get_templates",
	}

	tools := ts.Tools()
	if len(tools) != len(want) {
		t.Fatalf("len(Tools()) = %d, want %d", len(tools), len(want))
	}
	for i, tool := range tools {
		if tool.Name() != want[i] {
			t.Fatalf("Tools()[%d] = %s, want %s", i, tool.Name(), want[i])
		}
		if tool.Description() == "" {
			t.Fatalf("%s has no description", tool.Name())
		}
		if tool.Schema().Map()["type"] != "object" {
			t.Fatalf("%s schema is not an object", tool.Name())
		}
	}
}

func TestInitializeMissingCredentials(t *testing.T) {
	t.Parallel()

	cfg, err := configx.NewBuilder().FromMap(map[string]any{KeyPhoneID: "123"}, "test").Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	ts, err := Initialize(cfg, WithClient(&fakeClient{}))
	if ts != nil {
		t.Fatalf("Initialize() toolset = %v, want nil", ts)
	}
	if !errx.IsCode(err, ErrConfigMissing) {
		t.Fatalf("Initialize() error = %v, want %s", err, ErrConfigMissing)
	}
	if !IsConfigError(err) {
		t.Fatalf("IsConfigError(%v) = false, want true", err)
	}

	var xerr *errx.Error
	if !errors.As(err, &xerr) {
		t.Fatalf("error %T is not an *errx.Error", err)
	}
	missing, _ := xerr.Details["missing"].([]string)
	if len(missing) != 1 || missing[0] != KeyToken {
		t.Fatalf("missing = %v, want [%s]", xerr.Details["missing"], KeyToken)
	}
}

func TestInitializeBuildsWhatsAppClient(t *testing.T) {
	t.Parallel()

	cfg, err := configx.NewBuilder().FromMap(map[string]any{
		KeyPhoneID: "123",
		KeyToken:   "secret",
	}, "test").Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	ts, err := Initialize(cfg)
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if got := ts.client.GetProviderName(); got != "whatsapp" {
		t.Fatalf("provider = %s, want whatsapp", got)
	}
}

func TestSendMessage(t *testing.T) {
	t.Parallel()

	client := &fakeClient{receipt: msgx.Receipt{ID: "wamid.1"}}
	env := call(t, New(client), "send_message",
		`{"to":"15551234567","text":"hello","preview_url":true,"reply_to_message_id":"wamid.0"}`)

	if !env.Success() {
		t.Fatalf("send_message failed: %v", env)
	}
	if env["message_id"] != "wamid.1" || env["to"] != "15551234567" {
		t.Fatalf("envelope = %v", env)
	}

	msg := client.last.(msgx.TextMessage)
	if msg.Body != "hello" || !msg.PreviewURL || msg.ReplyTo != "wamid.0" {
		t.Fatalf("message = %+v", msg)
	}
}

func TestSendMessageMissingArgument(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	env := call(t, New(client), "send_message", `{"to":"15551234567"}`)

	if env.Success() {
		t.Fatalf("send_message succeeded without text")
	}
	if env.Error() != "text is required" {
		t.Fatalf("error = %q, want %q", env.Error(), "text is required")
	}
	if client.callCount() != 0 {
		t.Fatalf("client was called %d times, want 0", client.callCount())
	}
}

func TestSendMediaTools(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tool     string
		args     string
		wantType msgx.MediaType
		wantRef  string
	}{
		{tool: "send_image", args: `{"to":"1","image":"https://x/a.jpg","caption":"c"}`, wantType: msgx.MediaImage, wantRef: "https://x/a.jpg"},
		{tool: "send_video", args: `{"to":"1","video":"vid-1"}`, wantType: msgx.MediaVideo, wantRef: "vid-1"},
		{tool: "send_document", args: `{"to":"1","document":"doc-1","filename":"a.pdf"}`, wantType: msgx.MediaDocument, wantRef: "doc-1"},
		{tool: "send_audio", args: `{"to":"1","audio":"aud-1"}`, wantType: msgx.MediaAudio, wantRef: "aud-1"},
		{tool: "send_sticker", args: `{"to":"1","sticker":"stk-1"}`, wantType: msgx.MediaSticker, wantRef: "stk-1"},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			t.Parallel()

			client := &fakeClient{receipt: msgx.Receipt{ID: "wamid.m"}}
			env := call(t, New(client), tt.tool, tt.args)
			if !env.Success() || env["message_id"] != "wamid.m" {
				t.Fatalf("envelope = %v", env)
			}

			msg := client.last.(msgx.MediaMessage)
			if msg.Type != tt.wantType || msg.Media != tt.wantRef {
				t.Fatalf("message = %+v, want type %s media %s", msg, tt.wantType, tt.wantRef)
			}
		})
	}
}

func TestSendLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    string
		wantErr string
	}{
		{name: "valid", args: `{"to":"1","latitude":0,"longitude":-74.5,"name":"Office"}`},
		{name: "missing latitude", args: `{"to":"1","longitude":1}`, wantErr: "latitude is required"},
		{name: "latitude out of range", args: `{"to":"1","latitude":91,"longitude":1}`, wantErr: "latitude must be at most 90"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &fakeClient{receipt: msgx.Receipt{ID: "wamid.l"}}
			env := call(t, New(client), "send_location", tt.args)
			if tt.wantErr != "" {
				if env.Success() || env.Error() != tt.wantErr {
					t.Fatalf("envelope = %v, want error %q", env, tt.wantErr)
				}
				return
			}
			if !env.Success() {
				t.Fatalf("envelope = %v", env)
			}
			msg := client.last.(msgx.LocationMessage)
			if msg.Latitude != 0 || msg.Longitude != -74.5 || msg.Name != "Office" {
				t.Fatalf("message = %+v", msg)
			}
		})
	}
}

func TestSendContactAndRequestLocation(t *testing.T) {
	t.Parallel()

	client := &fakeClient{receipt: msgx.Receipt{ID: "wamid.c"}}
	ts := New(client)

	env := call(t, ts, "send_contact", `{"to":"1","contact_name":"Ana","contact_phone":"+15550001"}`)
	if !env.Success() {
		t.Fatalf("send_contact envelope = %v", env)
	}
	contact := client.last.(msgx.ContactMessage)
	if contact.Contact.FormattedName != "Ana" || contact.Contact.Phones[0].Phone != "+15550001" {
		t.Fatalf("contact = %+v", contact)
	}

	env = call(t, ts, "request_location", `{"to":"1","text":"Where are you?"}`)
	if !env.Success() {
		t.Fatalf("request_location envelope = %v", env)
	}
	if req := client.last.(msgx.LocationRequest); req.Body != "Where are you?" {
		t.Fatalf("request = %+v", req)
	}
}

func TestReactions(t *testing.T) {
	t.Parallel()

	client := &fakeClient{receipt: msgx.Receipt{ID: "wamid.r"}}
	ts := New(client)

	env := call(t, ts, "send_reaction", `{"to":"1","emoji":"👍","message_id":"wamid.0","sender":"999"}`)
	if !env.Success() || env["result"] != "wamid.r" {
		t.Fatalf("send_reaction envelope = %v", env)
	}
	if r := client.last.(msgx.Reaction); r.Emoji != "👍" || r.Sender != "999" {
		t.Fatalf("reaction = %+v", r)
	}

	env = call(t, ts, "send_reaction", `{"to":"1","emoji":"","message_id":"wamid.0"}`)
	if !env.Success() {
		t.Fatalf("send_reaction with empty emoji envelope = %v", env)
	}
	if r := client.last.(msgx.Reaction); r.Emoji != "" || r.MessageID != "wamid.0" {
		t.Fatalf("reaction = %+v, want empty emoji passed through", r)
	}

	env = call(t, ts, "remove_reaction", `{"to":"1","message_id":"wamid.0"}`)
	if !env.Success() {
		t.Fatalf("remove_reaction envelope = %v", env)
	}
	if r := client.last.(msgx.Reaction); r.Emoji != "" || r.MessageID != "wamid.0" {
		t.Fatalf("reaction = %+v, want empty emoji", r)
	}
}

func TestMarkAsReadNullResult(t *testing.T) {
	t.Parallel()

	env := call(t, New(&fakeClient{}), "mark_message_as_read", `{"message_id":"wamid.0"}`)
	if !env.Success() {
		t.Fatalf("envelope = %v", env)
	}
	result, ok := env["result"]
	if !ok || result != nil {
		t.Fatalf("result = %v (present %v), want null", result, ok)
	}
}

func TestIndicateTypingIsRepeatable(t *testing.T) {
	t.Parallel()

	client := &fakeClient{receipt: msgx.Receipt{Raw: "true"}}
	ts := New(client)

	for i := 0; i < 2; i++ {
		env := call(t, ts, "indicate_typing", `{"message_id":"wamid.in"}`)
		if !env.Success() {
			t.Fatalf("call %d envelope = %v", i, env)
		}
		if env["typing_indicated"] != true || env["message_id"] != "wamid.in" {
			t.Fatalf("call %d envelope = %v", i, env)
		}
	}
	if client.callCount() != 2 {
		t.Fatalf("client calls = %d, want 2", client.callCount())
	}
}

func TestTransportErrorEnvelope(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: msgx.Registry.NewWithMessage(msgx.ErrRateLimitExceeded, "Too many messages (code 130429)")}
	env := call(t, New(client), "send_message", `{"to":"1","text":"hi"}`)

	if env.Success() {
		t.Fatalf("envelope = %v, want failure", env)
	}
	if env.Error() != "Too many messages (code 130429)" {
		t.Fatalf("error = %q", env.Error())
	}
	if env["error_code"] != string(msgx.ErrRateLimitExceeded) {
		t.Fatalf("error_code = %v, want %s", env["error_code"], msgx.ErrRateLimitExceeded)
	}
}

func TestPlainErrorEnvelope(t *testing.T) {
	t.Parallel()

	env := call(t, New(&fakeClient{err: errors.New("connection reset")}), "send_audio", `{"to":"1","audio":"a"}`)
	if env.Success() || env.Error() != "connection reset" {
		t.Fatalf("envelope = %v", env)
	}
	if _, ok := env["error_code"]; ok {
		t.Fatalf("plain errors must not carry error_code: %v", env)
	}
}

func TestSendMessageWithButtons(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      string
		wantErr   string
		wantCalls int
	}{
		{
			name:      "valid",
			args:      `{"to":"1","text":"Pick","buttons":[{"id":"a","title":"A"},{"id":"b","title":"B"}],"footer":"f"}`,
			wantCalls: 1,
		},
		{
			name:      "empty buttons",
			args:      `{"to":"1","text":"Pick","buttons":[]}`,
			wantCalls: 1,
		},
		{
			name:      "buttons omitted",
			args:      `{"to":"1","text":"Pick"}`,
			wantCalls: 1,
		},
		{
			name:    "four buttons",
			args:    `{"to":"1","text":"Pick","buttons":[{"id":"1","title":"1"},{"id":"2","title":"2"},{"id":"3","title":"3"},{"id":"4","title":"4"}]}`,
			wantErr: "Maximum 3 buttons allowed",
		},
		{
			name:    "missing title",
			args:    `{"to":"1","text":"Pick","buttons":[{"id":"a"}]}`,
			wantErr: "Each button must have 'id' and 'title' keys",
		},
		{
			name:    "long title",
			args:    `{"to":"1","text":"Pick","buttons":[{"id":"a","title":"abcdefghijklmnopqrstu"}]}`,
			wantErr: "Button title 'abcdefghijklmnopqrstu' exceeds 20 characters",
		},
		{
			name:    "long header",
			args:    `{"to":"1","text":"Pick","buttons":[{"id":"a","title":"A"}],"header":"` + strings.Repeat("h", 61) + `"}`,
			wantErr: "Header text must be max 60 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &fakeClient{receipt: msgx.Receipt{ID: "wamid.b"}}
			env := call(t, New(client), "send_message_with_buttons", tt.args)

			if tt.wantErr != "" {
				if env.Success() || env.Error() != tt.wantErr {
					t.Fatalf("envelope = %v, want error %q", env, tt.wantErr)
				}
				if env["error_code"] != string(msgx.ErrInvalidInteractive) {
					t.Fatalf("error_code = %v, want %s", env["error_code"], msgx.ErrInvalidInteractive)
				}
			} else if !env.Success() || env["message_id"] != "wamid.b" {
				t.Fatalf("envelope = %v", env)
			}
			if client.callCount() != tt.wantCalls {
				t.Fatalf("client calls = %d, want %d", client.callCount(), tt.wantCalls)
			}
		})
	}
}

func TestSendMessageWithList(t *testing.T) {
	t.Parallel()

	rows := func(n int) string {
		parts := make([]string, n)
		for i := range parts {
			parts[i] = `{"id":"r` + string(rune('a'+i)) + `","title":"Row"}`
		}
		return "[" + strings.Join(parts, ",") + "]"
	}

	t.Run("valid list", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{receipt: msgx.Receipt{ID: "wamid.list"}}
		env := call(t, New(client), "send_message_with_list",
			`{"to":"1","text":"Menu","button_text":"Open","sections":[{"title":"Mains","rows":[{"id":"1","title":"Pasta","description":"Fresh"},{"id":"2","title":"Soup","description":""}]}]}`)
		if !env.Success() || env["message_id"] != "wamid.list" {
			t.Fatalf("envelope = %v", env)
		}

		msg := client.last.(msgx.ListMessage)
		if msg.List.ButtonText != "Open" || len(msg.List.Sections) != 1 {
			t.Fatalf("list = %+v", msg.List)
		}
		got := msg.List.Sections[0].Rows
		if len(got) != 2 || got[0].Description == nil || *got[0].Description != "Fresh" || got[1].Description != nil {
			t.Fatalf("rows = %+v", got)
		}
	})

	t.Run("eleven rows", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{}
		env := call(t, New(client), "send_message_with_list",
			`{"to":"1","text":"Menu","button_text":"Open","sections":[{"title":"A","rows":`+rows(6)+`},{"title":"B","rows":`+rows(5)+`}]}`)
		if env.Success() || env.Error() != "Maximum 10 rows total across all sections" {
			t.Fatalf("envelope = %v", env)
		}
		if client.callCount() != 0 {
			t.Fatalf("client calls = %d, want 0", client.callCount())
		}
	})

	t.Run("empty sections", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{receipt: msgx.Receipt{ID: "wamid.list"}}
		env := call(t, New(client), "send_message_with_list",
			`{"to":"1","text":"Menu","button_text":"Open","sections":[]}`)
		if !env.Success() || env["message_id"] != "wamid.list" {
			t.Fatalf("envelope = %v", env)
		}
		if client.callCount() != 1 {
			t.Fatalf("client calls = %d, want 1", client.callCount())
		}
		if msg := client.last.(msgx.ListMessage); len(msg.List.Sections) != 0 {
			t.Fatalf("sections = %+v, want none", msg.List.Sections)
		}
	})

	t.Run("section without rows", func(t *testing.T) {
		t.Parallel()

		env := call(t, New(&fakeClient{}), "send_message_with_list",
			`{"to":"1","text":"Menu","button_text":"Open","sections":[{"title":"A"}]}`)
		if env.Error() != "Each section must have a 'rows' array" {
			t.Fatalf("envelope = %v", env)
		}
	})
}

func TestSendTemplateDefaults(t *testing.T) {
	t.Parallel()

	client := &fakeClient{receipt: msgx.Receipt{ID: "wamid.t"}}
	env := call(t, New(client), "send_template", `{"to":"1","name":"welcome"}`)

	if !env.Success() || env["template"] != "welcome" || env["to"] != "1" || env["message_id"] != "wamid.t" {
		t.Fatalf("envelope = %v", env)
	}
	msg := client.last.(msgx.TemplateMessage)
	if msg.Language != "en" {
		t.Fatalf("language = %q, want en", msg.Language)
	}
	if msg.Components == nil || len(msg.Components) != 0 {
		t.Fatalf("components = %v, want empty list", msg.Components)
	}
}

func TestGetTemplates(t *testing.T) {
	t.Parallel()

	t.Run("defaults and projection", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{templates: []msgx.Template{
			{ID: "1", Name: "welcome", Language: "en", Status: "APPROVED", Category: "MARKETING"},
		}}
		env := call(t, New(client), "get_templates", `{}`)
		if !env.Success() || env["count"] != float64(1) {
			t.Fatalf("envelope = %v", env)
		}
		if client.query.Limit != 100 {
			t.Fatalf("limit = %d, want 100", client.query.Limit)
		}
		list := env["templates"].([]any)
		first := list[0].(map[string]any)
		if first["name"] != "welcome" || first["status"] != "APPROVED" {
			t.Fatalf("template = %v", first)
		}
	})

	t.Run("empty list is not null", func(t *testing.T) {
		t.Parallel()

		env := call(t, New(&fakeClient{}), "get_templates", `{"limit":5,"name":"x"}`)
		list, ok := env["templates"].([]any)
		if !env.Success() || !ok || len(list) != 0 || env["count"] != float64(0) {
			t.Fatalf("envelope = %v", env)
		}
	})
}

func TestUploadMedia(t *testing.T) {
	t.Parallel()

	media := fakeMedia{
		"/tmp/photo.jpg": {Name: "photo.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}},
	}

	tests := []struct {
		name      string
		args      string
		wantOK    bool
		wantType  string
		wantError string
	}{
		{name: "detected type", args: `{"media_path":"/tmp/photo.jpg"}`, wantOK: true, wantType: "image/jpeg"},
		{name: "explicit type", args: `{"media_path":"/tmp/photo.jpg","mime_type":"image/png"}`, wantOK: true, wantType: "image/png"},
		{name: "missing file", args: `{"media_path":"/tmp/none.jpg"}`, wantError: "file not found: /tmp/none.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &fakeClient{}
			env := call(t, New(client, WithMediaSource(media)), "upload_media", tt.args)
			if !tt.wantOK {
				if env.Success() || env.Error() != tt.wantError {
					t.Fatalf("envelope = %v, want error %q", env, tt.wantError)
				}
				return
			}
			if !env.Success() || env["media_id"] != "media-1" || env["media_type"] != tt.wantType {
				t.Fatalf("envelope = %v", env)
			}
			if client.uploaded.Filename != "photo.jpg" || len(client.uploaded.Data) != 2 {
				t.Fatalf("uploaded = %+v", client.uploaded)
			}
		})
	}
}

func TestInstrumentation(t *testing.T) {
	t.Parallel()

	metrics := metricx.NewMetrics()
	bus := eventx.NewMemoryBus()

	var mu sync.Mutex
	var events []eventx.ToolInvoked
	eventx.SubscribeTyped(bus, eventx.TypeToolInvoked, func(e eventx.TypedEvent[eventx.ToolInvoked]) error {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e.Data())
		return nil
	})

	client := &fakeClient{receipt: msgx.Receipt{ID: "wamid.e"}}
	ts := New(client, WithMetrics(metrics), WithEvents(bus))

	call(t, ts, "send_message", `{"to":"15550001","text":"hi"}`)
	call(t, ts, "send_message_with_buttons", `{"to":"15550001","text":"x","buttons":[{"id":"1","title":"1"},{"id":"2","title":"2"},{"id":"3","title":"3"},{"id":"4","title":"4"}]}`)

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if ok := events[0]; !ok.Success || ok.MessageID != "wamid.e" || ok.Recipient != "15550001" || ok.Provider != "fake" {
		t.Fatalf("success event = %+v", ok)
	}
	if bad := events[1]; bad.Success || bad.Error != "Maximum 3 buttons allowed" || bad.ErrorCode != string(msgx.ErrInvalidInteractive) {
		t.Fatalf("failure event = %+v", bad)
	}

	if got := testutil.ToFloat64(metrics.ToolCalls().WithLabelValues("send_message", "success", "")); got != 1 {
		t.Fatalf("send_message successes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.ToolCalls().WithLabelValues("send_message_with_buttons", "failure", string(msgx.ErrInvalidInteractive))); got != 1 {
		t.Fatalf("send_message_with_buttons failures = %v, want 1", got)
	}
}

func TestEventFailureDoesNotChangeResult(t *testing.T) {
	t.Parallel()

	failing := eventx.PublisherFunc(func(context.Context, eventx.Event) error {
		return errors.New("queue down")
	})
	env := call(t, New(&fakeClient{receipt: msgx.Receipt{ID: "wamid.x"}}, WithEvents(failing)),
		"send_message", `{"to":"1","text":"hi"}`)
	if !env.Success() {
		t.Fatalf("envelope = %v, want success", env)
	}
}

func TestConcurrentCalls(t *testing.T) {
	t.Parallel()

	client := &fakeClient{receipt: msgx.Receipt{ID: "wamid.c"}}
	ts := New(client)
	reg := toolx.NewToolRegistry()
	if err := ts.Register(reg); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Call(ctx, "send_message", json.RawMessage(`{"to":"1","text":"hi"}`))
		}()
	}
	wg.Wait()

	if client.callCount() != 20 {
		t.Fatalf("client calls = %d, want 20", client.callCount())
	}
}
