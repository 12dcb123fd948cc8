package device

import "fmt"

// Door lock defaults and battery drain per tick.
const (
	defaultAutoLock = false
	defaultBattery  = 100
	batteryDrain    = 1
)

// DoorLockParameters holds the adjustable attributes of a simulated
// door lock.
type DoorLockParameters struct {
	AutoLockEnabled bool `json:"auto_lock_enabled"`
	BatteryLevel    int  `json:"battery_level"`
}

func newDoorLockParameters(params map[string]any) (*DoorLockParameters, error) {
	p := &DoorLockParameters{
		AutoLockEnabled: defaultAutoLock,
		BatteryLevel:    defaultBattery,
	}
	if v, ok := params["auto_lock_enabled"].(bool); ok {
		p.AutoLockEnabled = v
	}
	if v, ok := params["battery_level"]; ok {
		n, ok := coerceInt(v)
		if !ok {
			return nil, fmt.Errorf("%w: battery level must be a number, got %v", ErrOutOfRange, v)
		}
		if err := p.setBatteryLevel(n); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *DoorLockParameters) record() map[string]any {
	return map[string]any{
		"auto_lock_enabled": p.AutoLockEnabled,
		"battery_level":     p.BatteryLevel,
	}
}

// apply sets the externally settable lock parameters. Battery level is
// owned by the simulation and cannot be set from outside.
func (p *DoorLockParameters) apply(params map[string]any, log Logger) error {
	for key, value := range params {
		log.Info(fmt.Sprintf("Setting parameter '%s' to value '%v'", key, value))
		if key == "auto_lock_enabled" {
			if b, ok := value.(bool); ok {
				p.AutoLockEnabled = b
			}
		}
	}
	return nil
}

func (p *DoorLockParameters) setBatteryLevel(n int) error {
	if n < MinBattery || n > MaxBattery {
		return fmt.Errorf("%w: battery level must be between %d and %d, got %d",
			ErrOutOfRange, MinBattery, MaxBattery, n)
	}
	p.BatteryLevel = n
	return nil
}

// tickDoorLock drains the battery one step, wrapping to full when the
// drain would fall below the minimum (fresh battery fitted), then rolls
// the random status toggle. The delta always carries the battery level.
func (d *Device) tickDoorLock(rng Rand) map[string]any {
	update := map[string]any{}
	p := d.DoorLock

	if err := p.setBatteryLevel(p.BatteryLevel - batteryDrain); err != nil {
		p.BatteryLevel = MaxBattery
	}
	setParam(update, "battery_level", p.BatteryLevel)

	if rng.Float64() < chanceToChange {
		d.Status = d.Type.toggled(d.Status)
		update["status"] = string(d.Status)
	}
	return update
}
