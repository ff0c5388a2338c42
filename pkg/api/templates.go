package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

func (c *Client) ListTemplates(ctx context.Context) ([]DeviceTemplate, error) {
	var all []DeviceTemplate
	err := c.listPages(ctx, "/api/v1/templates", nil, func(raw json.RawMessage) (int, error) {
		var page []DeviceTemplate
		if err := json.Unmarshal(raw, &page); err != nil {
			return 0, errors.Wrap(err, "decode templates page")
		}
		all = append(all, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (c *Client) GetTemplate(ctx context.Context, id string) (*DeviceTemplate, error) {
	var out DeviceTemplate
	apiErr, err := c.doJSON(ctx, http.MethodGet, "/api/v1/templates/"+url.PathEscape(id), nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		return nil, errors.Wrap(apiErr, "get template")
	}
	return &out, nil
}
