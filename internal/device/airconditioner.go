package device

import "fmt"

// Air conditioner defaults.
const defaultACTemperature = 24

// ACMode represents the operating mode of an air conditioner.
type ACMode string

// ACMode constants.
const (
	ACModeCool ACMode = "cool"
	ACModeHeat ACMode = "heat"
	ACModeFan  ACMode = "fan"
)

// AllACModes returns all valid mode values.
func AllACModes() []ACMode {
	return []ACMode{ACModeCool, ACModeHeat, ACModeFan}
}

// FanSpeed represents the fan setting of an air conditioner.
type FanSpeed string

// FanSpeed constants.
const (
	FanSpeedOff    FanSpeed = "off"
	FanSpeedLow    FanSpeed = "low"
	FanSpeedMedium FanSpeed = "medium"
	FanSpeedHigh   FanSpeed = "high"
)

// AllFanSpeeds returns all valid fan speed values.
func AllFanSpeeds() []FanSpeed {
	return []FanSpeed{FanSpeedOff, FanSpeedLow, FanSpeedMedium, FanSpeedHigh}
}

// SwingMode represents the louvre swing setting of an air conditioner.
type SwingMode string

// SwingMode constants.
const (
	SwingModeOff  SwingMode = "off"
	SwingModeOn   SwingMode = "on"
	SwingModeAuto SwingMode = "auto"
)

// AllSwingModes returns all valid swing values.
func AllSwingModes() []SwingMode {
	return []SwingMode{SwingModeOff, SwingModeOn, SwingModeAuto}
}

// AirConditionerParameters holds the adjustable attributes of a
// simulated air conditioner.
type AirConditionerParameters struct {
	Temperature int       `json:"temperature"`
	Mode        ACMode    `json:"mode"`
	FanSpeed    FanSpeed  `json:"fan_speed"`
	Swing       SwingMode `json:"swing"`
}

func newAirConditionerParameters(params map[string]any) (*AirConditionerParameters, error) {
	p := &AirConditionerParameters{
		Temperature: defaultACTemperature,
		Mode:        ACModeCool,
		FanSpeed:    FanSpeedLow,
		Swing:       SwingModeOff,
	}
	if v, ok := params["temperature"]; ok {
		n, ok := coerceInt(v)
		if !ok {
			return nil, fmt.Errorf("%w: temperature must be a number, got %v", ErrOutOfRange, v)
		}
		if err := p.setTemperature(n); err != nil {
			return nil, err
		}
	}
	if v, ok := params["mode"].(string); ok {
		if err := p.setMode(ACMode(v)); err != nil {
			return nil, err
		}
	}
	if v, ok := params["fan_speed"].(string); ok {
		if err := p.setFanSpeed(FanSpeed(v)); err != nil {
			return nil, err
		}
	}
	if v, ok := params["swing"].(string); ok {
		if err := p.setSwing(SwingMode(v)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *AirConditionerParameters) record() map[string]any {
	return map[string]any{
		"temperature": p.Temperature,
		"mode":        string(p.Mode),
		"fan_speed":   string(p.FanSpeed),
		"swing":       string(p.Swing),
	}
}

// apply sets the externally settable air conditioner parameters.
func (p *AirConditionerParameters) apply(params map[string]any, log Logger) error {
	for key, value := range params {
		log.Info(fmt.Sprintf("Setting parameter '%s' to value '%v'", key, value))
		switch key {
		case "temperature":
			n, ok := coerceInt(value)
			if !ok {
				return fmt.Errorf("%w: temperature must be a number, got %v", ErrOutOfRange, value)
			}
			if err := p.setTemperature(n); err != nil {
				return err
			}
		case "mode":
			s, ok := value.(string)
			if !ok {
				continue
			}
			if err := p.setMode(ACMode(s)); err != nil {
				return err
			}
		case "fan_speed":
			s, ok := value.(string)
			if !ok {
				continue
			}
			if err := p.setFanSpeed(FanSpeed(s)); err != nil {
				return err
			}
		case "swing":
			s, ok := value.(string)
			if !ok {
				continue
			}
			if err := p.setSwing(SwingMode(s)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *AirConditionerParameters) setTemperature(n int) error {
	if n < MinACTemp || n > MaxACTemp {
		return fmt.Errorf("%w: temperature must be between %d and %d, got %d",
			ErrOutOfRange, MinACTemp, MaxACTemp, n)
	}
	p.Temperature = n
	return nil
}

func (p *AirConditionerParameters) setMode(m ACMode) error {
	for _, valid := range AllACModes() {
		if m == valid {
			p.Mode = m
			return nil
		}
	}
	return fmt.Errorf("%w: invalid mode %q", ErrOutOfRange, m)
}

func (p *AirConditionerParameters) setFanSpeed(f FanSpeed) error {
	for _, valid := range AllFanSpeeds() {
		if f == valid {
			p.FanSpeed = f
			return nil
		}
	}
	return fmt.Errorf("%w: invalid fan speed %q", ErrOutOfRange, f)
}

func (p *AirConditionerParameters) setSwing(s SwingMode) error {
	for _, valid := range AllSwingModes() {
		if s == valid {
			p.Swing = s
			return nil
		}
	}
	return fmt.Errorf("%w: invalid swing mode %q", ErrOutOfRange, s)
}

// tickAirConditioner rolls the random perturbation: with probability
// chanceToChange one of the five attributes is re-rolled to a different
// value.
func (d *Device) tickAirConditioner(rng Rand) map[string]any {
	update := map[string]any{}
	if rng.Float64() >= chanceToChange {
		return update
	}

	p := d.AirConditioner
	elements := []string{"status", "temperature", "mode", "fan_speed", "swing"}
	switch pick(rng, elements) {
	case "status":
		d.Status = d.Type.toggled(d.Status)
		update["status"] = string(d.Status)
	case "temperature":
		p.Temperature = intBetweenExcept(rng, MinACTemp, MaxACTemp, p.Temperature)
		setParam(update, "temperature", p.Temperature)
	case "mode":
		p.Mode = pickExcept(rng, AllACModes(), p.Mode)
		setParam(update, "mode", string(p.Mode))
	case "fan_speed":
		p.FanSpeed = pickExcept(rng, AllFanSpeeds(), p.FanSpeed)
		setParam(update, "fan_speed", string(p.FanSpeed))
	case "swing":
		p.Swing = pickExcept(rng, AllSwingModes(), p.Swing)
		setParam(update, "swing", string(p.Swing))
	}
	return update
}
