// README: Plate normalization, validation against a vehicle type, and type detection.
package plate

import (
	"errors"
	"fmt"
	"strings"

	"parkdesk/internal/types"
)

// Length is the number of characters in a plate.
const Length = 6

var (
	ErrInvalidFormat    = errors.New("plate must be 6 alphanumeric characters")
	ErrTypeMismatch     = errors.New("plate does not match vehicle type")
	ErrUndetectableType = errors.New("vehicle type cannot be detected from plate")
)

// Normalize uppercases the input and strips everything that is not A-Z or 0-9.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range strings.ToUpper(raw) {
		if isLetter(c) || isDigit(c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Validate checks that plate is well formed and consistent with vt:
// motorcycle plates end in a letter, car and truck plates end in a digit.
func Validate(plate string, vt types.VehicleType) error {
	if !wellFormed(plate) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, plate)
	}
	last := rune(plate[Length-1])
	switch vt {
	case types.VehicleMotorcycle:
		if !isLetter(last) {
			return fmt.Errorf("%w: motorcycle plate must end in a letter", ErrTypeMismatch)
		}
	case types.VehicleCar, types.VehicleTruck:
		if !isDigit(last) {
			return fmt.Errorf("%w: %s plate must end in a digit", ErrTypeMismatch, vt)
		}
	default:
		return fmt.Errorf("%w: unknown vehicle type %q", ErrTypeMismatch, vt)
	}
	return nil
}

// Detect guesses the vehicle type from the last character. It is a UI hint
// only; billing relies on the type the operator selected.
func Detect(plate string) (types.VehicleType, bool) {
	vt, err := DetectStrict(plate)
	return vt, err == nil
}

// DetectStrict is Detect with the failure reason.
func DetectStrict(plate string) (types.VehicleType, error) {
	if !wellFormed(plate) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, plate)
	}
	last := rune(plate[Length-1])
	switch {
	case isDigit(last):
		return types.VehicleCar, nil
	case isLetter(last):
		return types.VehicleMotorcycle, nil
	}
	return "", ErrUndetectableType
}

func wellFormed(plate string) bool {
	if len(plate) != Length {
		return false
	}
	for _, c := range plate {
		if !isLetter(c) && !isDigit(c) {
			return false
		}
	}
	return true
}

func isLetter(c rune) bool { return c >= 'A' && c <= 'Z' }
func isDigit(c rune) bool  { return c >= '0' && c <= '9' }
