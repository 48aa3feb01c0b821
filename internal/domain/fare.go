package domain

import "fmt"

// FareBreakdown decomposes the total payment into its components and
// the company/driver split. All amounts are in cents. It is computed
// once at the end-of-trip transition and immutable afterwards.
type FareBreakdown struct {
	BasePayment       int64 `json:"base_payment_cents"`
	DistanceSurcharge int64 `json:"distance_surcharge_cents"`
	AreaSurcharge     int64 `json:"area_surcharge_cents"`
	WaitingSurcharge  int64 `json:"waiting_surcharge_cents"`
	TotalPayment      int64 `json:"total_payment_cents"`
	CompanyCommission int64 `json:"company_commission_cents"`
	DriverPayment     int64 `json:"driver_payment_cents"`
}

// FormatCents renders a cents amount as a rupee string, e.g. "Rs.3500.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%sRs.%d.%02d", sign, cents/100, cents%100)
}

// FormatDuration renders seconds as HH:MM:SS.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
