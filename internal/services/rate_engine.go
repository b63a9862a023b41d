package services

// Units computes consumption from a pair of meter readings. Both readings
// must be present and non-zero, otherwise consumption is 0: a reading of
// exactly 0 counts as absent, matching the long-standing billing behavior
// that existing records were computed under. Callers keep null and zero
// distinct in storage; only the consumption rule collapses them.
func Units(previous, current *float64) float64 {
	if previous == nil || current == nil || *previous == 0 || *current == 0 {
		return 0
	}
	return *current - *previous
}

// BillAmount prices consumption at the project's unit rate. No rounding and
// no floor: a decreasing meter reading yields a negative bill.
func BillAmount(units, unitRate float64) float64 {
	return units * unitRate
}

// MeterBilling combines Units and BillAmount for one utility.
func MeterBilling(previous, current *float64, unitRate float64) (units, bill float64) {
	units = Units(previous, current)
	return units, BillAmount(units, unitRate)
}
