package docx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type CurlGenerator struct {
	BaseURL string
}

func NewCurlGenerator(baseURL string) *CurlGenerator {
	return &CurlGenerator{
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (g *CurlGenerator) GenerateCurl(basePath string, endpoint *Endpoint) (string, error) {
	var buf bytes.Buffer

	buf.WriteString("curl")
	buf.WriteString(fmt.Sprintf(" -X %s", endpoint.Method))
	buf.WriteString(fmt.Sprintf(" \"%s%s%s\"", g.BaseURL, basePath, endpoint.Path))

	if endpoint.Auth == Bearer {
		buf.WriteString(" -H \"Authorization: Bearer <TOKEN>\"")
	}

	if endpoint.RequestExample != nil {
		body, err := json.MarshalIndent(endpoint.RequestExample, "", "  ")
		if err != nil {
			return "", err
		}
		buf.WriteString(" -H \"Content-Type: application/json\"")
		buf.WriteString(fmt.Sprintf(" -d '%s'", string(body)))
	}

	return buf.String(), nil
}

// GenerateMarkdown renders every endpoint of router as a markdown section
// with its curl command and example response.
func (g *CurlGenerator) GenerateMarkdown(router *RouterDoc) (string, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# API Curl Examples\n\n")
	for _, endpoint := range router.Endpoints {
		fmt.Fprintf(&buf, "## %s %s%s\n\n", endpoint.Method, router.BasePath, endpoint.Path)
		if endpoint.Description != "" {
			fmt.Fprintf(&buf, "%s\n\n", endpoint.Description)
		}

		curl, err := g.GenerateCurl(router.BasePath, endpoint)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&buf, "```bash\n%s\n```\n\n", curl)

		if endpoint.ResponseExample != nil {
			resp, err := json.MarshalIndent(endpoint.ResponseExample, "", "  ")
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&buf, "**Example Response:**\n\n```json\n%s\n```\n\n", string(resp))
		}
	}

	return buf.String(), nil
}
