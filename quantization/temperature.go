package quantization

import "fmt"

// Temperature is a storage tier.
type Temperature uint8

const (
	// Hot keeps full float32 precision.
	Hot Temperature = iota
	// Warm stores binary16 half-precision floats.
	Warm
	// Cold stores product-quantized codes.
	Cold
)

// Temperatures lists every tier from hottest to coldest.
var Temperatures = []Temperature{Hot, Warm, Cold}

func (t Temperature) String() string {
	switch t {
	case Hot:
		return "hot"
	case Warm:
		return "warm"
	case Cold:
		return "cold"
	default:
		return fmt.Sprintf("Temperature(%d)", uint8(t))
	}
}

// ParseTemperature parses the lower-case tier name.
func ParseTemperature(s string) (Temperature, error) {
	switch s {
	case "hot":
		return Hot, nil
	case "warm":
		return Warm, nil
	case "cold":
		return Cold, nil
	default:
		return 0, fmt.Errorf("quantization: unknown temperature %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Temperature) MarshalText() ([]byte, error) {
	switch t {
	case Hot, Warm, Cold:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("quantization: invalid temperature %d", uint8(t))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Temperature) UnmarshalText(text []byte) error {
	v, err := ParseTemperature(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
