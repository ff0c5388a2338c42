package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

func (c *Client) ListCodecs(ctx context.Context) ([]Codec, error) {
	var all []Codec
	err := c.listPages(ctx, "/api/v1/codecs", nil, func(raw json.RawMessage) (int, error) {
		var page []Codec
		if err := json.Unmarshal(raw, &page); err != nil {
			return 0, errors.Wrap(err, "decode codecs page")
		}
		all = append(all, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (c *Client) GetCodec(ctx context.Context, id string) (*Codec, error) {
	var out Codec
	apiErr, err := c.doJSON(ctx, http.MethodGet, "/api/v1/codecs/"+url.PathEscape(id), nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		return nil, errors.Wrap(apiErr, "get codec")
	}
	return &out, nil
}

func (c *Client) ListGateways(ctx context.Context, companyID string) ([]Gateway, error) {
	q := url.Values{}
	if companyID != "" {
		q.Set("company_id", companyID)
	}
	var all []Gateway
	err := c.listPages(ctx, "/api/v1/gateways", q, func(raw json.RawMessage) (int, error) {
		var page []Gateway
		if err := json.Unmarshal(raw, &page); err != nil {
			return 0, errors.Wrap(err, "decode gateways page")
		}
		all = append(all, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (c *Client) GetGateway(ctx context.Context, id string) (*Gateway, error) {
	var out Gateway
	apiErr, err := c.doJSON(ctx, http.MethodGet, "/api/v1/gateways/"+url.PathEscape(id), nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		return nil, errors.Wrap(apiErr, "get gateway")
	}
	return &out, nil
}
