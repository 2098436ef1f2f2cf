package enums

// OrderStatus tracks an order through the courier lifecycle. Transitions are
// not enforced; admins may set any status directly.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusDispatched OrderStatus = "dispatched"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusReturn     OrderStatus = "return"
	OrderStatusCancel     OrderStatus = "cancel"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusDispatched, OrderStatusDelivered, OrderStatusReturn, OrderStatusCancel:
		return true
	}
	return false
}

// IsBulkAssignable reports whether the status may be set through the bulk
// status endpoint. Dispatched is reserved for the scan workflow.
func (s OrderStatus) IsBulkAssignable() bool {
	switch s {
	case OrderStatusPending, OrderStatusDelivered, OrderStatusReturn, OrderStatusCancel:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}
