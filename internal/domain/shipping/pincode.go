package shipping

// ValidatePincode returns ErrInvalidPincode unless pincode is exactly six ASCII digits.
func ValidatePincode(pincode string) error {
	if len(pincode) != 6 {
		return ErrInvalidPincode
	}
	for i := 0; i < len(pincode); i++ {
		if pincode[i] < '0' || pincode[i] > '9' {
			return ErrInvalidPincode
		}
	}
	return nil
}
