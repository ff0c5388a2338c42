package api

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// ListRegistry queries the hardware registry. Callers treat it as
// best-effort; a failure here never aborts an import.
func (c *Client) ListRegistry(ctx context.Context, filter RegistryFilter) ([]RegistryEntry, error) {
	q := url.Values{}
	if filter.CompanyID != "" {
		q.Set("company_id", filter.CompanyID)
	}
	if len(filter.HardwareIDs) > 0 {
		q.Set("hardware_ids", strings.Join(filter.HardwareIDs, ","))
	}

	var all []RegistryEntry
	err := c.listPages(ctx, "/api/v1/registry", q, func(raw json.RawMessage) (int, error) {
		var page []RegistryEntry
		if err := json.Unmarshal(raw, &page); err != nil {
			return 0, errors.Wrap(err, "decode registry page")
		}
		all = append(all, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}
