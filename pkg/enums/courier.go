package enums

import "strings"

// Courier is the delivery company inferred from a tracking id prefix.
type Courier string

const (
	CourierTCS     Courier = "TCS"
	CourierMP      Courier = "M&P"
	CourierTrax    Courier = "Trax"
	CourierLeopard Courier = "Leopard"
	CourierUnknown Courier = "Unknown"
)

// Couriers lists every known courier, Unknown last.
var Couriers = []Courier{CourierTCS, CourierMP, CourierTrax, CourierLeopard, CourierUnknown}

// DetectCourier maps a tracking id to its courier by number-range prefix.
func DetectCourier(trackingID string) Courier {
	trimmed := strings.ToUpper(strings.TrimSpace(trackingID))
	if trimmed == "" {
		return CourierUnknown
	}
	switch {
	case strings.HasPrefix(trimmed, "17"):
		return CourierTCS
	case strings.HasPrefix(trimmed, "55"), strings.HasPrefix(trimmed, "56"):
		return CourierMP
	case strings.HasPrefix(trimmed, "19"):
		return CourierTrax
	case strings.HasPrefix(trimmed, "AM"):
		return CourierLeopard
	}
	return CourierUnknown
}

func (c Courier) String() string {
	return string(c)
}
