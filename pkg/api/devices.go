package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

func (c *Client) ListDevices(ctx context.Context, filter DeviceFilter) ([]Device, error) {
	q := url.Values{}
	if filter.CompanyID != "" {
		q.Set("company_id", filter.CompanyID)
	}
	if filter.LocationID != "" {
		q.Set("location_id", filter.LocationID)
	}

	var all []Device
	err := c.listPages(ctx, "/api/v1/devices", q, func(raw json.RawMessage) (int, error) {
		var page []Device
		if err := json.Unmarshal(raw, &page); err != nil {
			return 0, errors.Wrap(err, "decode devices page")
		}
		all = append(all, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (c *Client) GetDevice(ctx context.Context, id string) (*Device, error) {
	var out Device
	apiErr, err := c.doJSON(ctx, http.MethodGet, "/api/v1/devices/"+url.PathEscape(id), nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		return nil, errors.Wrap(apiErr, "get device")
	}
	return &out, nil
}

func (c *Client) CreateDevice(ctx context.Context, req CreateDeviceRequest) (*Device, error) {
	var out Device
	apiErr, err := c.doJSON(ctx, http.MethodPost, "/api/v1/devices", nil, req, &out)
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		return nil, errors.Wrap(apiErr, "create device")
	}
	return &out, nil
}

// UpdateDevice patches a device; the import pipeline uses it to merge
// device-setting overrides into the server-side properties blob.
func (c *Client) UpdateDevice(ctx context.Context, id string, req UpdateDeviceRequest) (*Device, error) {
	var out Device
	apiErr, err := c.doJSON(ctx, http.MethodPatch, "/api/v1/devices/"+url.PathEscape(id), nil, req, &out)
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		return nil, errors.Wrap(apiErr, "update device")
	}
	return &out, nil
}

func (c *Client) DeleteDevice(ctx context.Context, id string) error {
	apiErr, err := c.doJSON(ctx, http.MethodDelete, "/api/v1/devices/"+url.PathEscape(id), nil, nil, nil)
	if err != nil {
		return err
	}
	if apiErr != nil {
		return errors.Wrap(apiErr, "delete device")
	}
	return nil
}
