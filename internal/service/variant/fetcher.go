package variant

import (
	"context"
	"encoding/json"

	"storefront-web/internal/domain"

	"go.uber.org/zap"
)

// API is the slice of the request gateway the fetcher needs.
type API interface {
	Public(ctx context.Context, method, path string, body any, addStorePrefix, silent bool) json.RawMessage
}

// NewAPIFetcher builds a Fetcher backed by the remote variant-list endpoint.
// Lookups are silent; a missing variant is an expected outcome, not an error
// worth a notification.
func NewAPIFetcher(api API, log *zap.Logger) Fetcher {
	return func(ctx context.Context, skus []string) []domain.VariantFull {
		raw := api.Public(ctx, "POST", "/variant/list/", map[string]any{"sku_list": skus}, true, true)
		if raw == nil {
			return nil
		}
		var variants []domain.VariantFull
		if err := json.Unmarshal(raw, &variants); err != nil {
			log.Debug("malformed variant list response", zap.Error(err))
			return nil
		}
		return variants
	}
}
