package enums

// Currency is the ISO 4217 code carried on orders and gateway sessions.
type Currency string

const (
	CurrencyINR Currency = "INR"
)

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}
