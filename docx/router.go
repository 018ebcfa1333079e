package docx

import (
	"github.com/gofiber/fiber/v2"
)

type RouterDoc struct {
	BasePath  string      `json:"basePath"`
	Endpoints []*Endpoint `json:"endpoints"`
}

func NewRouterDoc(basePath string) *RouterDoc {
	return &RouterDoc{
		BasePath:  basePath,
		Endpoints: []*Endpoint{},
	}
}

func (r *RouterDoc) AddEndpoint(endpoint *Endpoint) *RouterDoc {
	r.Endpoints = append(r.Endpoints, endpoint)
	return r
}

// RegisterWithFiber serves this documentation as JSON at path
func (r *RouterDoc) RegisterWithFiber(router fiber.Router, path string) {
	router.Get(path, func(c *fiber.Ctx) error {
		return c.JSON(r)
	})
}
