package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// ListLocations fetches every location visible under the filter, walking
// all pages.
func (c *Client) ListLocations(ctx context.Context, filter LocationFilter) ([]Location, error) {
	q := url.Values{}
	if filter.CompanyID != "" {
		q.Set("company_id", filter.CompanyID)
	}
	if filter.UserID != "" {
		q.Set("user_id", filter.UserID)
	}

	var all []Location
	err := c.listPages(ctx, "/api/v1/locations", q, func(raw json.RawMessage) (int, error) {
		var page []Location
		if err := json.Unmarshal(raw, &page); err != nil {
			return 0, errors.Wrap(err, "decode locations page")
		}
		all = append(all, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (c *Client) GetLocation(ctx context.Context, id string) (*Location, error) {
	var out Location
	apiErr, err := c.doJSON(ctx, http.MethodGet, "/api/v1/locations/"+url.PathEscape(id), nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		return nil, errors.Wrap(apiErr, "get location")
	}
	return &out, nil
}

func (c *Client) CreateLocation(ctx context.Context, req CreateLocationRequest) (*Location, error) {
	var out Location
	apiErr, err := c.doJSON(ctx, http.MethodPost, "/api/v1/locations", nil, req, &out)
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		return nil, errors.Wrap(apiErr, "create location")
	}
	return &out, nil
}

func (c *Client) DeleteLocation(ctx context.Context, id string) error {
	apiErr, err := c.doJSON(ctx, http.MethodDelete, "/api/v1/locations/"+url.PathEscape(id), nil, nil, nil)
	if err != nil {
		return err
	}
	if apiErr != nil {
		return errors.Wrap(apiErr, "delete location")
	}
	return nil
}
