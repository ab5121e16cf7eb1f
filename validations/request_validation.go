package validations

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	domainAPI "github.com/AzielCF/az-laundry/domains/api"
	domainQueue "github.com/AzielCF/az-laundry/domains/queue"
	pkgError "github.com/AzielCF/az-laundry/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var endpointPattern = regexp.MustCompile(`^/\S*$`)

type requestInput struct {
	Endpoint string
	Method   string
	Timeout  int64
}

// ValidateRequest checks an orchestrator call before anything touches the
// cache, the queue or the network.
func ValidateRequest(ctx context.Context, endpoint string, opts domainAPI.Options) error {
	input := requestInput{
		Endpoint: endpoint,
		Method:   strings.ToUpper(opts.Method),
		Timeout:  int64(opts.Timeout),
	}
	err := validation.ValidateStructWithContext(ctx, &input,
		validation.Field(&input.Endpoint, validation.Required, validation.Match(endpointPattern).Error("must start with / and contain no spaces")),
		validation.Field(&input.Method, validation.In(http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete)),
		validation.Field(&input.Timeout, validation.Min(int64(0))),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

// ValidateMutation checks a mutation before it is captured by the offline queue.
func ValidateMutation(ctx context.Context, m domainQueue.QueuedMutation) error {
	err := validation.ValidateStructWithContext(ctx, &m,
		validation.Field(&m.Endpoint, validation.Required, validation.Match(endpointPattern)),
		validation.Field(&m.Method, validation.Required, validation.In(http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete).Error("only POST, PUT, PATCH and DELETE can be queued")),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
