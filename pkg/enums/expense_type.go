package enums

// ExpenseType tags the ledger rows derived from a generated bill.
type ExpenseType string

const (
	ExpenseTypeShipperPrice ExpenseType = "shipper_price"
	ExpenseTypeDC           ExpenseType = "dc"
)

func (t ExpenseType) IsValid() bool {
	switch t {
	case ExpenseTypeShipperPrice, ExpenseTypeDC:
		return true
	}
	return false
}

func (t ExpenseType) String() string {
	return string(t)
}
