package docx

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Abraxas-365/watools/toolx"
	"github.com/gofiber/fiber/v2"
)

type locationArgs struct {
	To       string   `json:"to"`
	Latitude *float64 `json:"latitude"`
}

func testRegistry(t *testing.T) *toolx.ToolRegistry {
	t.Helper()

	reg := toolx.NewToolRegistry()
	err := reg.Register(toolx.New("send_location", "Send a location message.",
		toolx.NewSchema().
			Require("to", toolx.String("Recipient")).
			Require("latitude", toolx.Number("Latitude")).
			Optional("name", toolx.String("Name")),
		func(ctx context.Context, in locationArgs) toolx.Result[struct{}] {
			return toolx.OK(struct{}{})
		}))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return reg
}

func TestExampleArguments(t *testing.T) {
	t.Parallel()

	schema := toolx.NewSchema().
		Require("to", toolx.String("Recipient")).
		Require("limit", toolx.Integer("Limit").Default(100)).
		Require("preview", toolx.Boolean("Preview")).
		Require("buttons", toolx.Array("Buttons", toolx.String("id"))).
		Optional("footer", toolx.String("Footer"))

	got := ExampleArguments(schema)

	want := map[string]any{"to": "<to>", "limit": 100, "preview": false}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("example[%s] = %v, want %v", k, got[k], v)
		}
	}
	if _, ok := got["footer"]; ok {
		t.Fatalf("optional argument footer in example: %v", got)
	}
	if items, ok := got["buttons"].([]any); !ok || len(items) != 0 {
		t.Fatalf("example[buttons] = %v, want empty list", got["buttons"])
	}
}

func TestToolsRouter(t *testing.T) {
	t.Parallel()

	router := ToolsRouter(testRegistry(t), true)
	if len(router.Endpoints) != 2 {
		t.Fatalf("len(Endpoints) = %d, want 2", len(router.Endpoints))
	}

	ep := router.Endpoints[1]
	if ep.Path != "/send_location" || ep.Method != POST || ep.Auth != Bearer {
		t.Fatalf("endpoint = %+v", ep)
	}
	if ep.RequestSchema["type"] != "object" {
		t.Fatalf("request schema = %v", ep.RequestSchema)
	}
}

func TestGenerateMarkdown(t *testing.T) {
	t.Parallel()

	md, err := NewCurlGenerator("http://localhost:8080/").GenerateMarkdown(ToolsRouter(testRegistry(t), false))
	if err != nil {
		t.Fatalf("GenerateMarkdown() error = %v", err)
	}

	for _, want := range []string{
		"## POST /tools/send_location",
		`curl -X POST "http://localhost:8080/tools/send_location"`,
		`"latitude": 0`,
		`"to": "<to>"`,
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "Authorization") {
		t.Fatalf("markdown has an auth header without auth:\n%s", md)
	}
}

func TestRegisterWithFiber(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	ToolsRouter(testRegistry(t), false).RegisterWithFiber(app, "/docs")

	resp, err := app.Test(httptest.NewRequest("GET", "/docs", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	var doc RouterDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if doc.BasePath != "/tools" || len(doc.Endpoints) != 2 {
		t.Fatalf("doc = %+v", doc)
	}
}
