package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

func (c *Client) ListCompanies(ctx context.Context) ([]Company, error) {
	var all []Company
	err := c.listPages(ctx, "/api/v1/companies", nil, func(raw json.RawMessage) (int, error) {
		var page []Company
		if err := json.Unmarshal(raw, &page); err != nil {
			return 0, errors.Wrap(err, "decode companies page")
		}
		all = append(all, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (c *Client) GetCompany(ctx context.Context, id string) (*Company, error) {
	var out Company
	apiErr, err := c.doJSON(ctx, http.MethodGet, "/api/v1/companies/"+url.PathEscape(id), nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		return nil, errors.Wrap(apiErr, "get company")
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context, companyID string) ([]User, error) {
	q := url.Values{}
	if companyID != "" {
		q.Set("company_id", companyID)
	}
	var all []User
	err := c.listPages(ctx, "/api/v1/users", q, func(raw json.RawMessage) (int, error) {
		var page []User
		if err := json.Unmarshal(raw, &page); err != nil {
			return 0, errors.Wrap(err, "decode users page")
		}
		all = append(all, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var out User
	apiErr, err := c.doJSON(ctx, http.MethodGet, "/api/v1/users/"+url.PathEscape(id), nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		return nil, errors.Wrap(apiErr, "get user")
	}
	return &out, nil
}
