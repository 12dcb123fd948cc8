package device

import (
	"fmt"
	"strings"
	"time"
)

// Water heater physics and defaults. Temperature drifts toward the
// target while heating and back toward room temperature otherwise, one
// degree per tick.
const (
	roomTemperature     = 23
	heatingRate         = 1
	defaultScheduledOn  = "06:30"
	defaultScheduledOff = "08:00"
	scheduleMatchWindow = 5 * time.Second
)

// WaterHeaterParameters holds the state of a simulated water heater.
// Temperature and IsHeating are derived by the simulation; the target,
// timer flag and schedule are externally settable.
type WaterHeaterParameters struct {
	Temperature       int    `json:"temperature"`
	TargetTemperature int    `json:"target_temperature"`
	IsHeating         bool   `json:"is_heating"`
	TimerEnabled      bool   `json:"timer_enabled"`
	ScheduledOn       string `json:"scheduled_on"`
	ScheduledOff      string `json:"scheduled_off"`
}

func newWaterHeaterParameters(params map[string]any) (*WaterHeaterParameters, error) {
	p := &WaterHeaterParameters{
		Temperature:       roomTemperature,
		TargetTemperature: MinWaterTemp,
		ScheduledOn:       defaultScheduledOn,
		ScheduledOff:      defaultScheduledOff,
	}
	if v, ok := params["temperature"]; ok {
		n, ok := coerceInt(v)
		if !ok {
			return nil, fmt.Errorf("%w: temperature must be a number, got %v", ErrOutOfRange, v)
		}
		p.Temperature = n
	}
	if v, ok := params["target_temperature"]; ok {
		n, ok := coerceInt(v)
		if !ok {
			return nil, fmt.Errorf("%w: target temperature must be a number, got %v", ErrOutOfRange, v)
		}
		if err := p.setTargetTemperature(n); err != nil {
			return nil, err
		}
	}
	if v, ok := params["is_heating"].(bool); ok {
		p.IsHeating = v
	}
	if v, ok := params["timer_enabled"].(bool); ok {
		p.TimerEnabled = v
	}
	if v, ok := params["scheduled_on"].(string); ok {
		s, err := normalizeClock(v)
		if err != nil {
			return nil, err
		}
		p.ScheduledOn = s
	}
	if v, ok := params["scheduled_off"].(string); ok {
		s, err := normalizeClock(v)
		if err != nil {
			return nil, err
		}
		p.ScheduledOff = s
	}
	return p, nil
}

func (p *WaterHeaterParameters) record() map[string]any {
	return map[string]any{
		"temperature":        p.Temperature,
		"target_temperature": p.TargetTemperature,
		"is_heating":         p.IsHeating,
		"timer_enabled":      p.TimerEnabled,
		"scheduled_on":       p.ScheduledOn,
		"scheduled_off":      p.ScheduledOff,
	}
}

// apply sets the externally settable heater parameters. Temperature and
// is_heating are derived by the simulation and cannot be set from
// outside.
func (p *WaterHeaterParameters) apply(params map[string]any, log Logger) error {
	for key, value := range params {
		log.Info(fmt.Sprintf("Setting parameter '%s' to value '%v'", key, value))
		switch key {
		case "target_temperature":
			n, ok := coerceInt(value)
			if !ok {
				return fmt.Errorf("%w: target temperature must be a number, got %v", ErrOutOfRange, value)
			}
			if err := p.setTargetTemperature(n); err != nil {
				return err
			}
		case "timer_enabled":
			if b, ok := value.(bool); ok {
				p.TimerEnabled = b
			}
		case "scheduled_on":
			s, ok := value.(string)
			if !ok {
				continue
			}
			normalized, err := normalizeClock(s)
			if err != nil {
				return err
			}
			p.ScheduledOn = normalized
		case "scheduled_off":
			s, ok := value.(string)
			if !ok {
				continue
			}
			normalized, err := normalizeClock(s)
			if err != nil {
				return err
			}
			p.ScheduledOff = normalized
		}
	}
	return nil
}

func (p *WaterHeaterParameters) setTargetTemperature(n int) error {
	if n < MinWaterTemp || n > MaxWaterTemp {
		return fmt.Errorf("%w: target temperature must be between %d and %d, got %d",
			ErrOutOfRange, MinWaterTemp, MaxWaterTemp, n)
	}
	p.TargetTemperature = n
	return nil
}

// tickWaterHeater advances the heater one step:
//   - temperature drifts toward the target while heating, or back
//     toward room temperature otherwise;
//   - with the timer enabled, status flips on or off when the wall
//     clock passes the scheduled times;
//   - is_heating follows status and target, one tick behind the drift;
//   - finally the random perturbation rolls one of the settable
//     attributes.
func (d *Device) tickWaterHeater(rng Rand, now time.Time) map[string]any {
	update := map[string]any{}
	p := d.WaterHeater

	if p.IsHeating {
		p.Temperature += heatingRate
		setParam(update, "temperature", p.Temperature)
	} else if p.Temperature > roomTemperature {
		p.Temperature -= heatingRate
		setParam(update, "temperature", p.Temperature)
	}

	if p.TimerEnabled {
		if d.Status == StatusOff && clockMatches(now, p.ScheduledOn) {
			d.Status = StatusOn
			update["status"] = string(d.Status)
		} else if d.Status == StatusOn && clockMatches(now, p.ScheduledOff) {
			d.Status = StatusOff
			update["status"] = string(d.Status)
		}
	}

	if p.IsHeating {
		if p.Temperature >= p.TargetTemperature || d.Status == StatusOff {
			p.IsHeating = false
			setParam(update, "is_heating", false)
		}
	} else if d.Status == StatusOn && p.Temperature < p.TargetTemperature {
		p.IsHeating = true
		setParam(update, "is_heating", true)
	}

	if rng.Float64() < chanceToChange {
		elements := []string{"status", "target_temperature", "timer_enabled", "scheduled_on", "scheduled_off"}
		switch pick(rng, elements) {
		case "status":
			d.Status = d.Type.toggled(d.Status)
			update["status"] = string(d.Status)
		case "target_temperature":
			p.TargetTemperature = intBetweenExcept(rng, MinWaterTemp, MaxWaterTemp, p.TargetTemperature)
			setParam(update, "target_temperature", p.TargetTemperature)
		case "timer_enabled":
			p.TimerEnabled = !p.TimerEnabled
			setParam(update, "timer_enabled", p.TimerEnabled)
		case "scheduled_on":
			p.ScheduledOn = randomClockExcept(rng, p.ScheduledOn)
			setParam(update, "scheduled_on", p.ScheduledOn)
		case "scheduled_off":
			p.ScheduledOff = randomClockExcept(rng, p.ScheduledOff)
			setParam(update, "scheduled_off", p.ScheduledOff)
		}
	}
	return update
}

// clockMatches reports whether now falls within the schedule window of
// the given HH:MM[:SS] string anchored to today's date.
func clockMatches(now time.Time, clock string) bool {
	layout := "15:04"
	if strings.Count(clock, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, clock)
	if err != nil {
		return false
	}
	at := time.Date(now.Year(), now.Month(), now.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, now.Location())
	return !at.Before(now.Add(-scheduleMatchWindow)) && !at.After(now.Add(scheduleMatchWindow))
}

// randomClockExcept rolls an HH:MM string that differs from current.
func randomClockExcept(rng Rand, current string) string {
	next := current
	for next == current {
		next = fmt.Sprintf("%02d:%02d", rng.IntN(24), rng.IntN(60))
	}
	return next
}

// normalizeClock zero-pads the components of an HH:MM or HH:MM:SS
// string ("6:30" becomes "06:30"). Strings without two or three
// colon-separated parts are rejected.
func normalizeClock(s string) (string, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return "", fmt.Errorf("%w: invalid time string: %s", ErrOutOfRange, s)
	}
	for i, part := range parts {
		if len(part) < 2 {
			parts[i] = strings.Repeat("0", 2-len(part)) + part
		}
	}
	return strings.Join(parts, ":"), nil
}
