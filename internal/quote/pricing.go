package quote

import "fmt"

// PricingConfig carries the knobs applied once at quote creation.
type PricingConfig struct {
	TaxRateBps     int64 // 825 = 8.25%
	DepositPercent int64

	DeliveryBaseCents    int64
	DeliveryPerMileCents int64
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		TaxRateBps:           825,
		DepositPercent:       20,
		DeliveryBaseCents:    2500,
		DeliveryPerMileCents: 150,
	}
}

// Per-serving price in cents by hunger level. Hungrier crowds get larger
// portions, priced accordingly.
var servingPriceCents = map[HungerLevel]int64{
	HungerNormal:       1600,
	HungerPrettyHungry: 1900,
	HungerReallyHungry: 2200,
}

// ComputePricing builds the immutable pricing snapshot. addonPrices maps
// addon id to unit price in cents; selections referencing unknown addons
// are an input error. The result always satisfies Validate.
func ComputePricing(in CreateQuoteInput, addonPrices map[string]int64, cfg PricingConfig) (Pricing, error) {
	perServing, ok := servingPriceCents[in.Event.HungerLevel]
	if !ok {
		return Pricing{}, fmt.Errorf("%w: unknown hunger level %q", ErrInvalidInput, in.Event.HungerLevel)
	}

	var subtotal int64
	for _, sel := range in.MenuSelections {
		subtotal += perServing * int64(sel.Quantity)
	}
	for _, sel := range in.Addons {
		price, ok := addonPrices[sel.AddonID]
		if !ok {
			return Pricing{}, fmt.Errorf("%w: unknown add-on %q", ErrInvalidInput, sel.AddonID)
		}
		subtotal += price * int64(sel.Quantity)
	}

	tax := subtotal * cfg.TaxRateBps / 10000
	delivery := cfg.DeliveryBaseCents + int64(in.Event.Location.DistanceMiles*float64(cfg.DeliveryPerMileCents))

	total := subtotal + tax + delivery
	deposit := total * cfg.DepositPercent / 100

	p := Pricing{
		SubtotalCents:    subtotal,
		TaxCents:         tax,
		DeliveryFeeCents: delivery,
		TotalCents:       total,
		DepositCents:     deposit,
		BalanceCents:     total - deposit,
	}

	if err := p.Validate(); err != nil {
		return Pricing{}, err
	}
	return p, nil
}

// Validate checks the snapshot invariants. It runs at creation and again
// whenever a snapshot is loaded from storage.
func (p Pricing) Validate() error {
	for _, v := range []int64{p.SubtotalCents, p.TaxCents, p.DeliveryFeeCents, p.TotalCents, p.DepositCents, p.BalanceCents} {
		if v < 0 {
			return fmt.Errorf("%w: negative component", ErrPricingCorrupt)
		}
	}
	if p.TotalCents != p.SubtotalCents+p.TaxCents+p.DeliveryFeeCents {
		return fmt.Errorf("%w: total != subtotal+tax+delivery", ErrPricingCorrupt)
	}
	if p.TotalCents != p.DepositCents+p.BalanceCents {
		return fmt.Errorf("%w: total != deposit+balance", ErrPricingCorrupt)
	}
	return nil
}
