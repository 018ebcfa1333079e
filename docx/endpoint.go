package docx

type HTTPMethod string

const (
	GET  HTTPMethod = "GET"
	POST HTTPMethod = "POST"
)

type Authentication string

const (
	None   Authentication = "none"
	Bearer Authentication = "bearer"
)

// Endpoint documents one HTTP route
type Endpoint struct {
	Path        string     `json:"path"`
	Method      HTTPMethod `json:"method"`
	Description string     `json:"description"`
	Summary     string     `json:"summary,omitempty"`
	Tags        []string   `json:"tags,omitempty"`

	Auth Authentication `json:"auth"`

	RequestSchema   map[string]any `json:"requestSchema,omitempty"`
	RequestExample  any            `json:"requestExample,omitempty"`
	ResponseExample any            `json:"responseExample,omitempty"`
}

func NewEndpoint(path string, method HTTPMethod) *Endpoint {
	return &Endpoint{
		Path:   path,
		Method: method,
		Auth:   None,
		Tags:   []string{},
	}
}

func (e *Endpoint) WithDescription(desc string) *Endpoint {
	e.Description = desc
	return e
}

func (e *Endpoint) WithSummary(summary string) *Endpoint {
	e.Summary = summary
	return e
}

func (e *Endpoint) WithTags(tags ...string) *Endpoint {
	e.Tags = append(e.Tags, tags...)
	return e
}

func (e *Endpoint) WithAuth(auth Authentication) *Endpoint {
	e.Auth = auth
	return e
}

func (e *Endpoint) WithRequestSchema(schema map[string]any) *Endpoint {
	e.RequestSchema = schema
	return e
}

func (e *Endpoint) WithRequestExample(example any) *Endpoint {
	e.RequestExample = example
	return e
}

func (e *Endpoint) WithResponseExample(example any) *Endpoint {
	e.ResponseExample = example
	return e
}
