package service

import (
	"math"

	"farecalc/internal/domain"
)

// All amounts are int64 cents. The rate tables below are the canonical
// ones; superseded revisions of the drink-and-drive and vehicle
// delivery tables are intentionally not implemented.

const (
	// Drink and drive: base fare tiers by trip duration.
	dndTier55Cents  = 1700_00
	dndTier110Cents = 2400_00
	dndTier165Cents = 3100_00
	dndTier220Cents = 3700_00
	dndTier275Cents = 4400_00
	dndTierMaxCents = 5500_00

	// Rs.500 per whole hour beyond 275 minutes.
	dndOverflowHourCents = 500_00

	// Rs.100 per km beyond the 10km base distance.
	dndPerKmCents       = 100_00
	dndBaseDistanceKm   = 10.0
	outOfColomboCents   = 500_00
	dayTimeOutAreaCents = 300_00

	// Waiting time: first 15 minutes free, then Rs.300 per started
	// 15-minute block.
	waitingFreeSeconds  = 900
	waitingBlockSeconds = 900
	waitingBlockCents   = 300_00

	// Day time long: flat Rs.5500 per started day.
	dayTimeLongPerDayCents = 5500_00

	// Company commission share of the total, in percent.
	commissionPercent = 20
)

// dayTimeTierCents maps whole hours 5..12 to the day-time base fare.
// Durations of four hours or less use the 4-hour rate; beyond twelve
// hours the 12-hour rate grows by Rs.500 per additional hour.
var dayTimeTierCents = map[int64]int64{
	5:  3400_00,
	6:  3800_00,
	7:  4200_00,
	8:  4600_00,
	9:  5000_00,
	10: 5400_00,
	11: 5800_00,
	12: 6000_00,
}

const (
	dayTimeUpTo4hCents    = 3000_00
	dayTime12hCents       = 6000_00
	dayTimeExtraHourCents = 500_00
)

// vehicleDeliveryRateCents holds the flat delivery rates per zone.
var vehicleDeliveryRateCents = map[domain.EndLocationArea]int64{
	domain.EndAreaColombo1to5:     1500_00,
	domain.EndAreaColomboArea:     2000_00,
	domain.EndAreaWesternProvince: 3000_00,
	domain.EndAreaIslandWide:      5000_00,
}

// DrinkAndDriveFare computes the fare breakdown for a drink-and-drive
// trip. The base fare is the single tier matching the duration, not a
// running sum. Negative inputs clamp to zero.
func DrinkAndDriveFare(distanceKm float64, durationMinutes int64, pickupOutOfColombo, dropOutOfColombo bool, waitingChargeCents int64) domain.FareBreakdown {
	if durationMinutes < 0 {
		durationMinutes = 0
	}
	if distanceKm < 0 {
		distanceKm = 0
	}
	if waitingChargeCents < 0 {
		waitingChargeCents = 0
	}

	var base int64
	switch {
	case durationMinutes <= 55:
		base = dndTier55Cents
	case durationMinutes <= 110:
		base = dndTier110Cents
	case durationMinutes <= 165:
		base = dndTier165Cents
	case durationMinutes <= 220:
		base = dndTier220Cents
	case durationMinutes <= 275:
		base = dndTier275Cents
	default:
		base = dndTierMaxCents + dndOverflowHourCents*((durationMinutes-275)/60)
	}

	var distanceSurcharge int64
	if distanceKm > dndBaseDistanceKm {
		distanceSurcharge = roundCents((distanceKm - dndBaseDistanceKm) * dndPerKmCents)
	}

	var areaSurcharge int64
	if pickupOutOfColombo {
		areaSurcharge += outOfColomboCents
	}
	if dropOutOfColombo {
		areaSurcharge += outOfColomboCents
	}

	return withTotals(domain.FareBreakdown{
		BasePayment:       base,
		DistanceSurcharge: distanceSurcharge,
		AreaSurcharge:     areaSurcharge,
		WaitingSurcharge:  waitingChargeCents,
	})
}

// WaitingCharge converts accumulated waiting seconds into a surcharge.
// The first 15 minutes are free; every started 15-minute block after
// that bills Rs.300.
func WaitingCharge(waitingSeconds int64) int64 {
	if waitingSeconds <= waitingFreeSeconds {
		return 0
	}
	extra := waitingSeconds - waitingFreeSeconds
	blocks := (extra + waitingBlockSeconds - 1) / waitingBlockSeconds
	return blocks * waitingBlockCents
}

// DayTimeFare computes the fare breakdown for an hourly chartered ride.
// Duration rounds up to whole hours. An out-of-Colombo trip adds a flat
// Rs.300 area surcharge.
func DayTimeFare(durationMinutes int64, outOfColombo bool) domain.FareBreakdown {
	if durationMinutes < 0 {
		durationMinutes = 0
	}
	hours := (durationMinutes + 59) / 60

	var base int64
	switch {
	case hours <= 4:
		base = dayTimeUpTo4hCents
	case hours <= 12:
		base = dayTimeTierCents[hours]
	default:
		base = dayTime12hCents + dayTimeExtraHourCents*(hours-12)
	}

	var areaSurcharge int64
	if outOfColombo {
		areaSurcharge = dayTimeOutAreaCents
	}

	return withTotals(domain.FareBreakdown{
		BasePayment:   base,
		AreaSurcharge: areaSurcharge,
	})
}

// DayTimeLongFare computes the fare for a multi-day charter, billed at
// a flat daily rate per started 24-hour block, minimum one day.
func DayTimeLongFare(durationMinutes int64) domain.FareBreakdown {
	if durationMinutes < 0 {
		durationMinutes = 0
	}
	days := (durationMinutes + 1439) / 1440
	if days < 1 {
		days = 1
	}

	return withTotals(domain.FareBreakdown{
		BasePayment: days * dayTimeLongPerDayCents,
	})
}

// VehicleDeliveryFare computes the flat fare for a vehicle relocation.
// An unrecognised zone defaults to the lowest rate.
func VehicleDeliveryFare(area domain.EndLocationArea) domain.FareBreakdown {
	base, ok := vehicleDeliveryRateCents[area]
	if !ok {
		base = vehicleDeliveryRateCents[domain.EndAreaColombo1to5]
	}

	return withTotals(domain.FareBreakdown{
		BasePayment: base,
	})
}

// SplitCommission splits a total into the 20% company commission and
// the 80% driver payment. The commission rounds half-up, the driver
// payment is the remainder, so the parts always sum to the total.
func SplitCommission(totalCents int64) (commission, driver int64) {
	commission = (totalCents*commissionPercent + 50) / 100
	driver = totalCents - commission
	return commission, driver
}

func withTotals(fb domain.FareBreakdown) domain.FareBreakdown {
	fb.TotalPayment = fb.BasePayment + fb.DistanceSurcharge + fb.AreaSurcharge + fb.WaitingSurcharge
	fb.CompanyCommission, fb.DriverPayment = SplitCommission(fb.TotalPayment)
	return fb
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}
