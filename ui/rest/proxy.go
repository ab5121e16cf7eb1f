package rest

import (
	"strconv"
	"strings"
	"time"

	domainAPI "github.com/AzielCF/az-laundry/domains/api"
	"github.com/AzielCF/az-laundry/infrastructure/navigator"
	"github.com/AzielCF/az-laundry/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

const (
	HeaderFresh       = "X-Cache-Fresh"
	HeaderCurrentPath = "X-Current-Path"
	HeaderTimeoutMs   = "X-Timeout-Ms"
)

// forwardedHeaders are the caller headers passed through to the backend.
var forwardedHeaders = []string{"Accept-Language", "X-Station-Id", "X-Request-Id"}

// Proxy exposes the orchestrator to local UIs: /proxy/<endpoint> answers with
// the normalized result of the same backend call.
type Proxy struct {
	Requester domainAPI.IRequester
	Navigator *navigator.Navigator
}

func InitRestProxy(app fiber.Router, requester domainAPI.IRequester, nav *navigator.Navigator) Proxy {
	rest := Proxy{Requester: requester, Navigator: nav}
	app.All("/proxy/*", rest.Forward)

	return rest
}

func (handler *Proxy) Forward(c *fiber.Ctx) error {
	endpoint := "/" + strings.TrimPrefix(c.Params("*"), "/")
	if query := string(c.Request().URI().QueryString()); query != "" {
		endpoint += "?" + query
	}

	if handler.Navigator != nil {
		if current := c.Get(HeaderCurrentPath); current != "" {
			handler.Navigator.SetCurrentPath(strings.Clone(current))
		}
	}

	opts := domainAPI.Options{
		Method: c.Method(),
		Fresh:  c.Get(HeaderFresh) == "true",
	}
	if body := c.Body(); len(body) > 0 {
		opts.Body = append([]byte(nil), body...)
	}
	if ms, err := strconv.Atoi(c.Get(HeaderTimeoutMs)); err == nil && ms > 0 {
		opts.Timeout = time.Duration(ms) * time.Millisecond
	}
	for _, h := range forwardedHeaders {
		if v := c.Get(h); v != "" {
			if opts.Headers == nil {
				opts.Headers = make(map[string]string)
			}
			// fiber reuses header buffers after the handler returns
			opts.Headers[h] = strings.Clone(v)
		}
	}

	res, err := handler.Requester.Request(c.UserContext(), endpoint, opts)
	utils.PanicIfNeeded(err)

	status := fiber.StatusOK
	if res.Queued {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(res)
}
