package domain

// ServiceType identifies the kind of service being billed.
type ServiceType string

const (
	ServiceDrinkAndDrive   ServiceType = "drink-and-drive"
	ServiceDayTime         ServiceType = "day-time"
	ServiceDayTimeLong     ServiceType = "day-time-long"
	ServiceVehicleDelivery ServiceType = "vehicle-delivery"
)

// Valid reports whether the service type is one of the known values.
func (s ServiceType) Valid() bool {
	switch s {
	case ServiceDrinkAndDrive, ServiceDayTime, ServiceDayTimeLong, ServiceVehicleDelivery:
		return true
	}
	return false
}

// RequiresMeter reports whether odometer readings are collected.
func (s ServiceType) RequiresMeter() bool {
	return s == ServiceDrinkAndDrive || s == ServiceVehicleDelivery
}

// RequiresArea reports whether pickup/drop trip areas are collected.
// Vehicle delivery uses the end-location area instead.
func (s ServiceType) RequiresArea() bool {
	return s != ServiceVehicleDelivery
}

// UsesWaitingTimer reports whether waiting time is billed. Only the
// drink-and-drive service tracks time between arrival and trip start.
func (s ServiceType) UsesWaitingTimer() bool {
	return s == ServiceDrinkAndDrive
}

// Title returns the human-readable service name.
func (s ServiceType) Title() string {
	switch s {
	case ServiceDrinkAndDrive:
		return "Drink and Drive"
	case ServiceDayTime:
		return "Day Time"
	case ServiceDayTimeLong:
		return "Day Time Long"
	case ServiceVehicleDelivery:
		return "Vehicle Delivery"
	default:
		return string(s)
	}
}

// Area represents a pickup or drop trip area.
type Area string

const (
	AreaColombo      Area = "colombo"
	AreaOutOfColombo Area = "out-colombo"
)

// OutOfColombo reports whether the area is outside the Colombo zone.
func (a Area) OutOfColombo() bool {
	return a == AreaOutOfColombo
}

// EndLocationArea represents the delivery destination zone used for
// flat-rate vehicle delivery pricing.
type EndLocationArea string

const (
	EndAreaColombo1to5     EndLocationArea = "colombo-1-5"
	EndAreaColomboArea     EndLocationArea = "colombo-area"
	EndAreaWesternProvince EndLocationArea = "western-province"
	EndAreaIslandWide      EndLocationArea = "island-wide"
)

// PaymentMethod represents how the customer pays.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCredit PaymentMethod = "credit"
)

// Valid reports whether the payment method is a known value.
func (p PaymentMethod) Valid() bool {
	return p == PaymentCash || p == PaymentCredit
}
