package handlers

import (
	"encoding/json"
	"strings"

	"faberlic-mining/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// requestInput reads named fields from the query string, falling back to a
// JSON object body. The web client sends query parameters; API clients
// usually send JSON.
type requestInput struct {
	c    *fiber.Ctx
	body map[string]json.RawMessage
}

func readInput(c *fiber.Ctx) (*requestInput, error) {
	in := &requestInput{c: c}
	raw := c.Body()
	if len(strings.TrimSpace(string(raw))) == 0 {
		return in, nil
	}
	if err := json.Unmarshal(raw, &in.body); err != nil {
		return nil, services.ErrInvalidInput.WithMessage("request body must be a JSON object")
	}
	return in, nil
}

func (in *requestInput) String(key string) string {
	if v := in.c.Query(key); v != "" {
		return v
	}
	raw, ok := in.body[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func (in *requestInput) Decimal(key string) (decimal.Decimal, error) {
	v := in.String(key)
	if v == "" {
		return decimal.Zero, services.ErrInvalidInput.WithMessage(key + " is required")
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, services.ErrInvalidInput.WithMessage(key + " must be a number")
	}
	return d, nil
}
