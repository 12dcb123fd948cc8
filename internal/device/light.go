package device

import (
	"fmt"
	"strconv"
	"strings"
)

// Light defaults applied when a creating record omits the parameter.
const (
	defaultDimmable     = false
	defaultBrightness   = 80
	defaultDynamicColor = false
	defaultColor        = "#FFFFFF"
)

// LightParameters holds the adjustable attributes of a simulated light.
// IsDimmable and DynamicColor are capabilities fixed at creation;
// Brightness and Color are the externally settable values.
type LightParameters struct {
	IsDimmable   bool   `json:"is_dimmable"`
	Brightness   int    `json:"brightness"`
	DynamicColor bool   `json:"dynamic_color"`
	Color        string `json:"color"`
}

func newLightParameters(params map[string]any) (*LightParameters, error) {
	p := &LightParameters{
		IsDimmable:   defaultDimmable,
		Brightness:   defaultBrightness,
		DynamicColor: defaultDynamicColor,
		Color:        defaultColor,
	}
	if v, ok := params["is_dimmable"].(bool); ok {
		p.IsDimmable = v
	}
	if v, ok := params["dynamic_color"].(bool); ok {
		p.DynamicColor = v
	}
	if v, ok := params["brightness"]; ok {
		n, ok := coerceInt(v)
		if !ok {
			return nil, fmt.Errorf("%w: brightness must be a number, got %v", ErrOutOfRange, v)
		}
		if err := p.setBrightness(n); err != nil {
			return nil, err
		}
	}
	if v, ok := params["color"].(string); ok {
		if err := p.setColor(v); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *LightParameters) record() map[string]any {
	return map[string]any{
		"is_dimmable":   p.IsDimmable,
		"brightness":    p.Brightness,
		"dynamic_color": p.DynamicColor,
		"color":         p.Color,
	}
}

// apply sets the externally settable light parameters. Capability flags
// (is_dimmable, dynamic_color) are fixed at creation and silently
// skipped here.
func (p *LightParameters) apply(params map[string]any, log Logger) error {
	for key, value := range params {
		log.Info(fmt.Sprintf("Setting parameter '%s' to value '%v'", key, value))
		switch key {
		case "brightness":
			n, ok := coerceInt(value)
			if !ok {
				return fmt.Errorf("%w: brightness must be a number, got %v", ErrOutOfRange, value)
			}
			if err := p.setBrightness(n); err != nil {
				return err
			}
		case "color":
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: color must be a string, got %v", ErrOutOfRange, value)
			}
			if err := p.setColor(s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *LightParameters) setBrightness(n int) error {
	if n < MinBrightness || n > MaxBrightness {
		return fmt.Errorf("%w: brightness must be between %d and %d, got %d",
			ErrOutOfRange, MinBrightness, MaxBrightness, n)
	}
	p.Brightness = n
	return nil
}

func (p *LightParameters) setColor(s string) error {
	if !colorRegex.MatchString(s) {
		return fmt.Errorf("%w: color must be a valid hex code, got %s", ErrOutOfRange, s)
	}
	p.Color = s
	return nil
}

// tickLight rolls the light's random perturbation: with probability
// chanceToChange, one of status, brightness (dimmable lights only) or
// color (dynamic-colour lights only) is re-rolled to a different value.
func (d *Device) tickLight(rng Rand) map[string]any {
	update := map[string]any{}
	if rng.Float64() >= chanceToChange {
		return update
	}

	p := d.Light
	elements := []string{"status"}
	if p.IsDimmable {
		elements = append(elements, "brightness")
	}
	if p.DynamicColor {
		elements = append(elements, "color")
	}

	switch pick(rng, elements) {
	case "status":
		d.Status = d.Type.toggled(d.Status)
		update["status"] = string(d.Status)
	case "brightness":
		p.Brightness = intBetweenExcept(rng, MinBrightness, MaxBrightness, p.Brightness)
		setParam(update, "brightness", p.Brightness)
	case "color":
		p.Color = randomColorExcept(rng, p.Color)
		setParam(update, "color", p.Color)
	}
	return update
}

// randomColorExcept rolls a 24-bit RGB value that differs from the
// current colour and formats it as a lowercase #rrggbb string.
func randomColorExcept(rng Rand, current string) string {
	cur, _ := strconv.ParseInt(strings.TrimPrefix(current, "#"), 16, 64)
	next := cur
	for next == cur {
		next = int64(rng.IntN(1 << 24))
	}
	return fmt.Sprintf("#%06x", next)
}
