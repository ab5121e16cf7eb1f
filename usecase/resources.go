package usecase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	domainAPI "github.com/AzielCF/az-laundry/domains/api"
	"github.com/sirupsen/logrus"
)

// Resource is a REST collection of the laundry backend.
type Resource struct {
	requester domainAPI.IRequester
	path      string
}

func NewResource(requester domainAPI.IRequester, path string) Resource {
	return Resource{requester: requester, path: path}
}

func (r Resource) Path() string {
	return r.path
}

func (r Resource) List(ctx context.Context, query url.Values) (domainAPI.Result, error) {
	endpoint := r.path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return r.requester.Request(ctx, endpoint, domainAPI.Options{})
}

func (r Resource) Get(ctx context.Context, id string) (domainAPI.Result, error) {
	return r.requester.Request(ctx, r.item(id), domainAPI.Options{})
}

func (r Resource) Create(ctx context.Context, body any) (domainAPI.Result, error) {
	return r.requester.Request(ctx, r.path, domainAPI.Options{Method: http.MethodPost, Body: body})
}

func (r Resource) Update(ctx context.Context, id string, body any) (domainAPI.Result, error) {
	return r.requester.Request(ctx, r.item(id), domainAPI.Options{Method: http.MethodPut, Body: body})
}

func (r Resource) Delete(ctx context.Context, id string) (domainAPI.Result, error) {
	return r.requester.Request(ctx, r.item(id), domainAPI.Options{Method: http.MethodDelete})
}

func (r Resource) item(id string) string {
	return fmt.Sprintf("%s/%s", r.path, url.PathEscape(id))
}

// BackupResource creates backups with the extended timeout.
type BackupResource struct {
	Resource
	timeout time.Duration
}

func (b BackupResource) Create(ctx context.Context, body any) (domainAPI.Result, error) {
	return b.requester.Request(ctx, b.path, domainAPI.Options{
		Method:  http.MethodPost,
		Body:    body,
		Timeout: b.timeout,
	})
}

// Resources bundles every collection the admin client talks to.
type Resources struct {
	Customers Resource
	Services  Resource
	Discounts Resource
	Stations  Resource
	Orders    Resource
	Backups   BackupResource
	AuditLogs Resource
}

func NewResources(requester domainAPI.IRequester, backupTimeout time.Duration) Resources {
	return Resources{
		Customers: NewResource(requester, "/customers"),
		Services:  NewResource(requester, "/services"),
		Discounts: NewResource(requester, "/discounts"),
		Stations:  NewResource(requester, "/stations"),
		Orders:    NewResource(requester, "/orders"),
		Backups:   BackupResource{Resource: NewResource(requester, "/backups"), timeout: backupTimeout},
		AuditLogs: NewResource(requester, "/audit-logs"),
	}
}

// Critical lists the reference collections warmed by Preload.
func (r Resources) Critical() []Resource {
	return []Resource{r.Customers, r.Services, r.Discounts, r.Stations}
}

type PreloadResult struct {
	Endpoint string `json:"endpoint"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// Preload fetches every critical collection live so the cache holds them
// before the device goes offline.
func (r Resources) Preload(ctx context.Context) []PreloadResult {
	critical := r.Critical()
	results := make([]PreloadResult, 0, len(critical))
	for _, res := range critical {
		_, err := res.requester.Request(ctx, res.path, domainAPI.Options{Fresh: true})
		item := PreloadResult{Endpoint: res.path, OK: err == nil}
		if err != nil {
			item.Error = err.Error()
			logrus.WithError(err).Warnf("[PRELOAD] failed to warm %s", res.path)
		}
		results = append(results, item)
	}
	return results
}
