package billing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/orderdesk/orderdesk-backend/pkg/config"
)

// Tier is one row of the quantity tier table. MaxQty 0 marks the catch-all
// applied above every bounded tier.
type Tier struct {
	MaxQty int
	DC     float64
}

// PolicyResolver decides how a seller's returns are charged: designated
// sellers get the quantity tier table (plus price negation), everyone else
// the order's stored delivery charge. Both the seller set and the tier table
// come from configuration.
type PolicyResolver struct {
	tieredSellers map[string]struct{}
	tiers         []Tier
	catchAll      float64
}

// NewPolicyResolver parses the configured tier table ("maxQty:dc" pairs,
// comma separated) and tiered seller list.
func NewPolicyResolver(cfg config.BillingConfig) (*PolicyResolver, error) {
	resolver := &PolicyResolver{
		tieredSellers: make(map[string]struct{}),
	}
	for _, name := range cfg.TieredSellerNames() {
		resolver.tieredSellers[name] = struct{}{}
	}

	hasCatchAll := false
	for _, raw := range strings.Split(cfg.ReturnDCTiers, ",") {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed tier entry %q", entry)
		}
		maxQty, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil || maxQty < 0 {
			return nil, fmt.Errorf("invalid tier quantity in %q", entry)
		}
		dc, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil || dc < 0 {
			return nil, fmt.Errorf("invalid tier dc in %q", entry)
		}
		if maxQty == 0 {
			resolver.catchAll = dc
			hasCatchAll = true
			continue
		}
		resolver.tiers = append(resolver.tiers, Tier{MaxQty: maxQty, DC: dc})
	}

	if !hasCatchAll {
		return nil, fmt.Errorf("tier table %q has no catch-all (maxQty 0) entry", cfg.ReturnDCTiers)
	}

	sort.Slice(resolver.tiers, func(i, j int) bool {
		return resolver.tiers[i].MaxQty < resolver.tiers[j].MaxQty
	})
	return resolver, nil
}

// IsTiered reports whether the seller's returns use the quantity tier table.
func (r *PolicyResolver) IsTiered(sellerName string) bool {
	_, ok := r.tieredSellers[strings.ToLower(strings.TrimSpace(sellerName))]
	return ok
}

// ReturnDC resolves the tier table for a product quantity.
func (r *PolicyResolver) ReturnDC(quantity int) float64 {
	for _, tier := range r.tiers {
		if quantity <= tier.MaxQty {
			return tier.DC
		}
	}
	return r.catchAll
}
