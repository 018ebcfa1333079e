package msgxwhatsapp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Abraxas-365/watools/errx"
	"github.com/Abraxas-365/watools/msgx"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Auth   string
	Body   map[string]any
}

type graphStub struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	response string
}

func (g *graphStub) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  map[string]string{},
			Auth:   r.Header.Get("Authorization"),
		}
		for k := range r.URL.Query() {
			rec.Query[k] = r.URL.Query().Get(k)
		}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			raw, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(raw, &rec.Body); err != nil {
				t.Errorf("request body is not JSON: %v", err)
			}
		}

		g.mu.Lock()
		g.requests = append(g.requests, rec)
		status, response := g.status, g.response
		g.mu.Unlock()

		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}
}

func (g *graphStub) last(t *testing.T) recordedRequest {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.requests) == 0 {
		t.Fatal("no request reached the stub")
	}
	return g.requests[len(g.requests)-1]
}

const sentResponse = `{"messaging_product":"whatsapp","contacts":[{"input":"+1234567890","wa_id":"1234567890"}],"messages":[{"id":"wamid.TEST"}]}`

func newTestClient(t *testing.T, stub *graphStub, mutate ...func(*WhatsAppConfig)) *Client {
	t.Helper()

	server := httptest.NewServer(stub.handler(t))
	t.Cleanup(server.Close)

	cfg := WhatsAppConfig{
		AccessToken:       "TOKEN",
		PhoneNumberID:     "PHONE",
		BusinessAccountID: "WABA",
		BaseURL:           server.URL,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

// field walks nested maps by key
func field(t *testing.T, m map[string]any, path ...string) any {
	t.Helper()
	var cur any = m
	for _, p := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			t.Fatalf("path %v: %q is not an object in %v", path, p, cur)
		}
		cur = obj[p]
	}
	return cur
}

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewClient(WhatsAppConfig{})
	if !errx.IsCode(err, msgx.ErrProviderConfigInvalid) {
		t.Fatalf("err = %v, want %s", err, msgx.ErrProviderConfigInvalid)
	}
	if got := errx.Message(err); got != "WhatsApp client is missing phone number id and access token" {
		t.Fatalf("message = %q", got)
	}
}

func TestSendText(t *testing.T) {
	t.Parallel()

	stub := &graphStub{response: sentResponse}
	client := newTestClient(t, stub)

	receipt, err := client.SendText(context.Background(), msgx.TextMessage{
		To:         "+1234567890",
		Body:       "hello",
		PreviewURL: true,
		ReplyTo:    "wamid.PREV",
	})
	if err != nil {
		t.Fatalf("SendText() error = %v", err)
	}
	if receipt.ID != "wamid.TEST" {
		t.Fatalf("receipt.ID = %q, want wamid.TEST", receipt.ID)
	}

	req := stub.last(t)
	if req.Method != http.MethodPost || req.Path != "/v23.0/PHONE/messages" {
		t.Fatalf("request = %s %s, want POST /v23.0/PHONE/messages", req.Method, req.Path)
	}
	if req.Auth != "Bearer TOKEN" {
		t.Fatalf("Authorization = %q, want Bearer TOKEN", req.Auth)
	}
	if got := field(t, req.Body, "messaging_product"); got != "whatsapp" {
		t.Fatalf("messaging_product = %v", got)
	}
	if got := field(t, req.Body, "text", "body"); got != "hello" {
		t.Fatalf("text.body = %v, want hello", got)
	}
	if got := field(t, req.Body, "text", "preview_url"); got != true {
		t.Fatalf("text.preview_url = %v, want true", got)
	}
	if got := field(t, req.Body, "context", "message_id"); got != "wamid.PREV" {
		t.Fatalf("context.message_id = %v, want wamid.PREV", got)
	}
}

func TestSendMediaReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		msg      msgx.MediaMessage
		wantKey  string
		wantLink string
		wantID   string
	}{
		{
			name:     "image link with caption",
			msg:      msgx.MediaMessage{To: "1", Type: msgx.MediaImage, Media: "https://example.com/cat.png", Caption: "cat"},
			wantKey:  "image",
			wantLink: "https://example.com/cat.png",
		},
		{
			name:    "document by id",
			msg:     msgx.MediaMessage{To: "1", Type: msgx.MediaDocument, Media: "1013859600285441", Filename: "report.pdf"},
			wantKey: "document",
			wantID:  "1013859600285441",
		},
		{
			name:    "sticker with media_id prefix",
			msg:     msgx.MediaMessage{To: "1", Type: msgx.MediaSticker, Media: "media_id:42"},
			wantKey: "sticker",
			wantID:  "42",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stub := &graphStub{response: sentResponse}
			client := newTestClient(t, stub)

			if _, err := client.SendMedia(context.Background(), tt.msg); err != nil {
				t.Fatalf("SendMedia() error = %v", err)
			}

			req := stub.last(t)
			if got := field(t, req.Body, "type"); got != tt.wantKey {
				t.Fatalf("type = %v, want %s", got, tt.wantKey)
			}
			media, _ := field(t, req.Body, tt.wantKey).(map[string]any)
			if tt.wantLink != "" && media["link"] != tt.wantLink {
				t.Fatalf("%s.link = %v, want %s", tt.wantKey, media["link"], tt.wantLink)
			}
			if tt.wantID != "" && media["id"] != tt.wantID {
				t.Fatalf("%s.id = %v, want %s", tt.wantKey, media["id"], tt.wantID)
			}
			if tt.msg.Type == msgx.MediaDocument && media["filename"] != "report.pdf" {
				t.Fatalf("document.filename = %v", media["filename"])
			}
			if tt.msg.Type == msgx.MediaSticker && media["caption"] != nil {
				t.Fatalf("sticker carries a caption: %v", media["caption"])
			}
		})
	}
}

func TestSendMediaRejectsUnknownType(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &graphStub{response: sentResponse})
	_, err := client.SendMedia(context.Background(), msgx.MediaMessage{To: "1", Type: "hologram", Media: "x"})
	if !errx.IsCode(err, msgx.ErrInvalidMessage) {
		t.Fatalf("err = %v, want %s", err, msgx.ErrInvalidMessage)
	}
}

func TestSendButtons(t *testing.T) {
	t.Parallel()

	stub := &graphStub{response: sentResponse}
	client := newTestClient(t, stub)

	_, err := client.SendButtons(context.Background(), msgx.ButtonMessage{
		To:      "+1234567890",
		Body:    "Choose",
		Buttons: []msgx.Button{{ID: "o1", Title: "Yes"}, {ID: "o2", Title: "No"}},
		Footer:  "Pick one",
	})
	if err != nil {
		t.Fatalf("SendButtons() error = %v", err)
	}

	req := stub.last(t)
	if got := field(t, req.Body, "interactive", "type"); got != "button" {
		t.Fatalf("interactive.type = %v, want button", got)
	}
	if got := field(t, req.Body, "interactive", "header"); got != nil {
		t.Fatalf("interactive.header = %v, want absent", got)
	}
	if got := field(t, req.Body, "interactive", "footer", "text"); got != "Pick one" {
		t.Fatalf("interactive.footer.text = %v", got)
	}
	buttons, _ := field(t, req.Body, "interactive", "action", "buttons").([]any)
	if len(buttons) != 2 {
		t.Fatalf("buttons = %v, want 2", buttons)
	}
	first := buttons[0].(map[string]any)
	if first["type"] != "reply" || field(t, first, "reply", "id") != "o1" {
		t.Fatalf("first button = %v", first)
	}
}

func TestSendList(t *testing.T) {
	t.Parallel()

	stub := &graphStub{response: sentResponse}
	client := newTestClient(t, stub)

	desc := "Beef burger"
	_, err := client.SendList(context.Background(), msgx.ListMessage{
		To:     "+1234567890",
		Body:   "Menu",
		Header: "Restaurant",
		List: msgx.SectionList{
			ButtonText: "View",
			Sections: []msgx.Section{{
				Title: "Mains",
				Rows:  []msgx.Row{{ID: "burger", Title: "Burger", Description: &desc}, {ID: "pizza", Title: "Pizza"}},
			}},
		},
	})
	if err != nil {
		t.Fatalf("SendList() error = %v", err)
	}

	req := stub.last(t)
	if got := field(t, req.Body, "interactive", "header", "text"); got != "Restaurant" {
		t.Fatalf("header.text = %v", got)
	}
	if got := field(t, req.Body, "interactive", "action", "button"); got != "View" {
		t.Fatalf("action.button = %v", got)
	}
	sections := field(t, req.Body, "interactive", "action", "sections").([]any)
	rows := sections[0].(map[string]any)["rows"].([]any)
	if rows[0].(map[string]any)["description"] != "Beef burger" {
		t.Fatalf("row 0 = %v", rows[0])
	}
	if _, ok := rows[1].(map[string]any)["description"]; ok {
		t.Fatalf("row 1 has a description: %v", rows[1])
	}
}

func TestRequestLocationAndContact(t *testing.T) {
	t.Parallel()

	stub := &graphStub{response: sentResponse}
	client := newTestClient(t, stub)
	ctx := context.Background()

	if _, err := client.RequestLocation(ctx, msgx.LocationRequest{To: "1", Body: "Where are you?"}); err != nil {
		t.Fatalf("RequestLocation() error = %v", err)
	}
	req := stub.last(t)
	if got := field(t, req.Body, "interactive", "type"); got != "location_request_message" {
		t.Fatalf("interactive.type = %v", got)
	}
	if got := field(t, req.Body, "interactive", "action", "name"); got != "send_location" {
		t.Fatalf("action.name = %v", got)
	}

	_, err := client.SendContact(ctx, msgx.ContactMessage{
		To:      "1",
		Contact: msgx.Contact{FormattedName: "Ada", Phones: []msgx.ContactPhone{{Phone: "+44123"}}},
	})
	if err != nil {
		t.Fatalf("SendContact() error = %v", err)
	}
	req = stub.last(t)
	contacts := field(t, req.Body, "contacts").([]any)
	card := contacts[0].(map[string]any)
	if field(t, card, "name", "formatted_name") != "Ada" {
		t.Fatalf("contact card = %v", card)
	}
	if phones := card["phones"].([]any); len(phones) != 1 {
		t.Fatalf("phones = %v, want one entry", phones)
	}
}

func TestReactionUsesSenderOverride(t *testing.T) {
	t.Parallel()

	stub := &graphStub{response: sentResponse}
	client := newTestClient(t, stub)

	_, err := client.SendReaction(context.Background(), msgx.Reaction{
		To: "1", MessageID: "wamid.X", Emoji: "", Sender: "OTHER",
	})
	if err != nil {
		t.Fatalf("SendReaction() error = %v", err)
	}

	req := stub.last(t)
	if req.Path != "/v23.0/OTHER/messages" {
		t.Fatalf("path = %s, want /v23.0/OTHER/messages", req.Path)
	}
	emoji, present := field(t, req.Body, "reaction").(map[string]any)["emoji"]
	if !present || emoji != "" {
		t.Fatalf("reaction.emoji = %v (present %v), want empty string", emoji, present)
	}
}

func TestStatusUpdates(t *testing.T) {
	t.Parallel()

	stub := &graphStub{response: `{"success":true}`}
	client := newTestClient(t, stub)
	ctx := context.Background()

	receipt, err := client.MarkAsRead(ctx, msgx.StatusUpdate{MessageID: "wamid.IN"})
	if err != nil {
		t.Fatalf("MarkAsRead() error = %v", err)
	}
	if receipt.Raw != "true" || receipt.ID != "" {
		t.Fatalf("receipt = %+v, want Raw true", receipt)
	}
	req := stub.last(t)
	if field(t, req.Body, "status") != "read" || field(t, req.Body, "typing_indicator") != nil {
		t.Fatalf("mark read body = %v", req.Body)
	}

	if _, err := client.IndicateTyping(ctx, msgx.StatusUpdate{MessageID: "wamid.IN"}); err != nil {
		t.Fatalf("IndicateTyping() error = %v", err)
	}
	req = stub.last(t)
	if got := field(t, req.Body, "typing_indicator", "type"); got != "text" {
		t.Fatalf("typing_indicator.type = %v, want text", got)
	}
	if got := field(t, req.Body, "message_id"); got != "wamid.IN" {
		t.Fatalf("message_id = %v", got)
	}
}

func TestAPIErrorMapping(t *testing.T) {
	t.Parallel()

	graphErr := func(code int, msg string) string {
		return `{"error":{"message":"` + msg + `","type":"OAuthException","code":` + itoa(code) + `,"fbtrace_id":"Ab"}}`
	}

	tests := []struct {
		name     string
		status   int
		body     string
		wantCode errx.Code
		wantMsg  string
	}{
		{
			name:     "bad request",
			status:   http.StatusBadRequest,
			body:     graphErr(131030, "Recipient phone number not in allowed list"),
			wantCode: msgx.ErrInvalidMessage,
			wantMsg:  "Recipient phone number not in allowed list (code 131030)",
		},
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			body:     graphErr(130429, "Rate limit hit"),
			wantCode: msgx.ErrRateLimitExceeded,
			wantMsg:  "Rate limit hit (code 130429)",
		},
		{
			name:     "bad token",
			status:   http.StatusUnauthorized,
			body:     graphErr(190, "Invalid OAuth access token"),
			wantCode: msgx.ErrProviderConfigInvalid,
			wantMsg:  "Invalid OAuth access token (code 190)",
		},
		{
			name:     "unavailable",
			status:   http.StatusServiceUnavailable,
			body:     graphErr(2, "Service temporarily unavailable"),
			wantCode: msgx.ErrProviderUnavailable,
			wantMsg:  "Service temporarily unavailable (code 2)",
		},
		{
			name:     "unparseable body",
			status:   http.StatusInternalServerError,
			body:     `oops`,
			wantCode: msgx.ErrSendFailed,
			wantMsg:  "WhatsApp API returned status 500: oops",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, &graphStub{status: tt.status, response: tt.body})
			_, err := client.SendText(context.Background(), msgx.TextMessage{To: "1", Body: "x"})
			if !errx.IsCode(err, tt.wantCode) {
				t.Fatalf("err = %v, want code %s", err, tt.wantCode)
			}
			if got := errx.Message(err); got != tt.wantMsg {
				t.Fatalf("message = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	t.Parallel()

	client, err := NewClient(WhatsAppConfig{AccessToken: "T", PhoneNumberID: "P", BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	_, err = client.SendText(context.Background(), msgx.TextMessage{To: "1", Body: "x"})
	if !errx.IsCode(err, msgx.ErrSendFailed) {
		t.Fatalf("err = %v, want %s", err, msgx.ErrSendFailed)
	}
	if !strings.HasPrefix(errx.Message(err), "WhatsApp request failed: ") {
		t.Fatalf("message = %q", errx.Message(err))
	}
}

func TestListTemplates(t *testing.T) {
	t.Parallel()

	stub := &graphStub{response: `{"data":[
		{"id":"1","name":"hello_world","language":"en_US","status":"APPROVED","category":"UTILITY"},
		{"name":"promo"},
		{"id":"3","name":"extra"}
	],"paging":{}}`}
	client := newTestClient(t, stub)

	templates, err := client.ListTemplates(context.Background(), msgx.TemplateQuery{Limit: 2, Name: "hello"})
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}

	req := stub.last(t)
	if req.Method != http.MethodGet || req.Path != "/v23.0/WABA/message_templates" {
		t.Fatalf("request = %s %s", req.Method, req.Path)
	}
	if req.Query["limit"] != "2" || req.Query["name"] != "hello" {
		t.Fatalf("query = %v", req.Query)
	}
	if len(templates) != 2 {
		t.Fatalf("len = %d, want 2 (limit applied)", len(templates))
	}
	if templates[0] != (msgx.Template{ID: "1", Name: "hello_world", Language: "en_US", Status: "APPROVED", Category: "UTILITY"}) {
		t.Fatalf("templates[0] = %+v", templates[0])
	}
	if templates[1].ID != "" || templates[1].Status != "" {
		t.Fatalf("missing fields should stay empty: %+v", templates[1])
	}
}

func TestListTemplatesNeedsBusinessAccount(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &graphStub{}, func(c *WhatsAppConfig) { c.BusinessAccountID = "" })
	_, err := client.ListTemplates(context.Background(), msgx.TemplateQuery{})
	if !errx.IsCode(err, msgx.ErrTemplatesUnavailable) {
		t.Fatalf("err = %v, want %s", err, msgx.ErrTemplatesUnavailable)
	}
}

func TestUploadMedia(t *testing.T) {
	t.Parallel()

	var (
		gotFields map[string]string
		gotType   string
		gotData   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v23.0/PHONE/media" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
		}
		gotFields = map[string]string{
			"messaging_product": r.FormValue("messaging_product"),
			"type":              r.FormValue("type"),
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile() error = %v", err)
		} else {
			gotType = header.Header.Get("Content-Type")
			data, _ := io.ReadAll(file)
			gotData = string(data)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"media-123"}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(WhatsAppConfig{AccessToken: "T", PhoneNumberID: "PHONE", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	uploaded, err := client.UploadMedia(context.Background(), msgx.MediaFile{
		Filename: "note.txt", MimeType: "text/plain", Data: []byte("hi there"),
	})
	if err != nil {
		t.Fatalf("UploadMedia() error = %v", err)
	}
	if uploaded.ID != "media-123" || uploaded.MimeType != "text/plain" {
		t.Fatalf("uploaded = %+v", uploaded)
	}
	if gotFields["messaging_product"] != "whatsapp" || gotFields["type"] != "text/plain" {
		t.Fatalf("form fields = %v", gotFields)
	}
	if gotType != "text/plain" || gotData != "hi there" {
		t.Fatalf("file part = %q %q", gotType, gotData)
	}
}

func TestUploadMediaNeedsMimeType(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &graphStub{})
	_, err := client.UploadMedia(context.Background(), msgx.MediaFile{Filename: "blob", Data: []byte{1}})
	if !errx.IsCode(err, msgx.ErrUploadFailed) {
		t.Fatalf("err = %v, want %s", err, msgx.ErrUploadFailed)
	}
}

func itoa(i int) string {
	b, _ := json.Marshal(i)
	return string(b)
}
