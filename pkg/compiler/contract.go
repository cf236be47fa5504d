package compiler

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

//go:embed openapi.yaml
var contractSpec []byte

const generatePath = "/generate-bpmn"

// contract checks compiler responses against the embedded OpenAPI document.
type contract struct {
	route *routers.Route
}

func loadContract() (*contract, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(contractSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load compiler contract: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid compiler contract: %w", err)
	}

	item := doc.Paths.Value(generatePath)
	if item == nil || item.Post == nil {
		return nil, fmt.Errorf("compiler contract has no POST %s", generatePath)
	}
	return &contract{
		route: &routers.Route{
			Spec:      doc,
			Path:      generatePath,
			PathItem:  item,
			Method:    http.MethodPost,
			Operation: item.Post,
		},
	}, nil
}

func (c *contract) checkResponse(ctx context.Context, req *http.Request, resp *http.Response, body []byte) error {
	return openapi3filter.ValidateResponse(ctx, &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request: req,
			Route:   c.route,
		},
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   io.NopCloser(bytes.NewReader(body)),
		Options: &openapi3filter.Options{
			IncludeResponseStatus: true,
		},
	})
}
