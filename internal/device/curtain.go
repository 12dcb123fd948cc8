package device

import "fmt"

// Curtain defaults and movement rate.
const (
	defaultPosition = 100
	positionRate    = 1
)

// CurtainParameters holds the position of a simulated curtain, as a
// percentage where 0 is fully retracted and 100 fully extended.
type CurtainParameters struct {
	Position int `json:"position"`
}

func newCurtainParameters(params map[string]any) (*CurtainParameters, error) {
	p := &CurtainParameters{Position: defaultPosition}
	if v, ok := params["position"]; ok {
		n, ok := coerceInt(v)
		if !ok {
			return nil, fmt.Errorf("%w: position must be a number, got %v", ErrOutOfRange, v)
		}
		if err := p.setPosition(n); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *CurtainParameters) record() map[string]any {
	return map[string]any{"position": p.Position}
}

// apply is intentionally inert: curtain position is driven entirely by
// the simulation, never set externally.
func (p *CurtainParameters) apply(map[string]any, Logger) error {
	return nil
}

func (p *CurtainParameters) setPosition(n int) error {
	if n < MinPosition || n > MaxPosition {
		return fmt.Errorf("%w: position must be between %d and %d, got %d",
			ErrOutOfRange, MinPosition, MaxPosition, n)
	}
	p.Position = n
	return nil
}

// tickCurtain slides the curtain one step in the direction its status
// implies, then rolls the random status toggle.
func (d *Device) tickCurtain(rng Rand) map[string]any {
	update := map[string]any{}
	p := d.Curtain

	if p.Position > MinPosition && d.Status == StatusOpen {
		p.Position -= positionRate
		setParam(update, "position", p.Position)
	}
	if p.Position < MaxPosition && d.Status == StatusClosed {
		p.Position += positionRate
		setParam(update, "position", p.Position)
	}

	if rng.Float64() < chanceToChange {
		d.Status = d.Type.toggled(d.Status)
		update["status"] = string(d.Status)
	}
	return update
}
