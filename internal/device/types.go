package device

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Device represents one simulated smart-home device. It is a tagged
// variant: Type selects which of the parameter pointers is populated,
// and exactly one of them is non-nil at all times.
type Device struct {
	ID     string `json:"id"`
	Type   Type   `json:"type"`
	Room   string `json:"room"`
	Name   string `json:"name"`
	Status Status `json:"status"`

	// Per-type parameters. Selected by Type; the rest stay nil.
	Light          *LightParameters          `json:"-"`
	Curtain        *CurtainParameters        `json:"-"`
	DoorLock       *DoorLockParameters       `json:"-"`
	WaterHeater    *WaterHeaterParameters    `json:"-"`
	AirConditioner *AirConditionerParameters `json:"-"`
}

// Type represents the kind of simulated device.
type Type string

// Device type constants.
const (
	TypeLight          Type = "light"
	TypeWaterHeater    Type = "water_heater"
	TypeAirConditioner Type = "air_conditioner"
	TypeDoorLock       Type = "door_lock"
	TypeCurtain        Type = "curtain"
)

// AllTypes returns all valid device type values.
func AllTypes() []Type {
	return []Type{
		TypeLight, TypeWaterHeater, TypeAirConditioner,
		TypeDoorLock, TypeCurtain,
	}
}

// DisplayName returns the human-readable form of the type, as used in
// validation failure reasons ("door_lock" becomes "door lock").
func (t Type) DisplayName() string {
	return strings.ReplaceAll(string(t), "_", " ")
}

// Status represents a device's binary operating state. The valid pair
// depends on the device type: door locks are locked/unlocked, curtains
// are open/closed, everything else is on/off.
type Status string

// Status constants.
const (
	StatusOn       Status = "on"
	StatusOff      Status = "off"
	StatusLocked   Status = "locked"
	StatusUnlocked Status = "unlocked"
	StatusOpen     Status = "open"
	StatusClosed   Status = "closed"
)

// StatusDomain returns the two status values a device of this type may
// hold.
func (t Type) StatusDomain() [2]Status {
	switch t {
	case TypeDoorLock:
		return [2]Status{StatusLocked, StatusUnlocked}
	case TypeCurtain:
		return [2]Status{StatusOpen, StatusClosed}
	default:
		return [2]Status{StatusOn, StatusOff}
	}
}

// DefaultStatus returns the status a new device of this type starts
// with when the creating record omits one.
func (t Type) DefaultStatus() Status {
	switch t {
	case TypeDoorLock:
		return StatusUnlocked
	case TypeCurtain:
		return StatusOpen
	default:
		return StatusOff
	}
}

// toggled returns the other member of the type's status domain.
func (t Type) toggled(s Status) Status {
	domain := t.StatusDomain()
	if s == domain[0] {
		return domain[1]
	}
	return domain[0]
}

// New builds a typed Device from a string-keyed record in wire shape.
// Omitted optional fields receive the type's defaults; numeric values
// are coerced and time strings normalised. The record is expected to
// have passed ValidateNew; New reports an error only for values no
// coercion can rescue.
func New(record map[string]any) (*Device, error) {
	id, _ := record["id"].(string)
	typ, _ := record["type"].(string)
	room, _ := record["room"].(string)
	name, _ := record["name"].(string)

	d := &Device{
		ID:   id,
		Type: Type(typ),
		Room: room,
		Name: name,
	}

	if s, ok := record["status"].(string); ok && s != "" {
		d.Status = Status(s)
	} else {
		d.Status = d.Type.DefaultStatus()
	}

	params, _ := record["parameters"].(map[string]any)

	var err error
	switch d.Type {
	case TypeLight:
		d.Light, err = newLightParameters(params)
	case TypeCurtain:
		d.Curtain, err = newCurtainParameters(params)
	case TypeDoorLock:
		d.DoorLock, err = newDoorLockParameters(params)
	case TypeWaterHeater:
		d.WaterHeater, err = newWaterHeaterParameters(params)
	case TypeAirConditioner:
		d.AirConditioner, err = newAirConditionerParameters(params)
	default:
		err = fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DeepCopy creates a complete independent copy of the Device. The
// parameter struct is cloned so modifications to the copy do not affect
// the original. This is essential for registry isolation.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}

	cpy := *d // Shallow copy of value fields

	if d.Light != nil {
		p := *d.Light
		cpy.Light = &p
	}
	if d.Curtain != nil {
		p := *d.Curtain
		cpy.Curtain = &p
	}
	if d.DoorLock != nil {
		p := *d.DoorLock
		cpy.DoorLock = &p
	}
	if d.WaterHeater != nil {
		p := *d.WaterHeater
		cpy.WaterHeater = &p
	}
	if d.AirConditioner != nil {
		p := *d.AirConditioner
		cpy.AirConditioner = &p
	}

	return &cpy
}

// parameters returns the populated per-type parameter struct.
func (d *Device) parameters() any {
	switch d.Type {
	case TypeLight:
		return d.Light
	case TypeCurtain:
		return d.Curtain
	case TypeDoorLock:
		return d.DoorLock
	case TypeWaterHeater:
		return d.WaterHeater
	case TypeAirConditioner:
		return d.AirConditioner
	}
	return nil
}

// Record returns the device in wire shape: a string-keyed map with the
// parameters block nested under "parameters". The map is freshly built
// on every call and safe for the caller to modify.
func (d *Device) Record() map[string]any {
	var params map[string]any
	switch d.Type {
	case TypeLight:
		params = d.Light.record()
	case TypeCurtain:
		params = d.Curtain.record()
	case TypeDoorLock:
		params = d.DoorLock.record()
	case TypeWaterHeater:
		params = d.WaterHeater.record()
	case TypeAirConditioner:
		params = d.AirConditioner.record()
	}
	return map[string]any{
		"id":         d.ID,
		"type":       string(d.Type),
		"room":       d.Room,
		"name":       d.Name,
		"status":     string(d.Status),
		"parameters": params,
	}
}

// wireDevice fixes the JSON field order for marshalling.
type wireDevice struct {
	ID         string `json:"id"`
	Type       Type   `json:"type"`
	Room       string `json:"room"`
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Parameters any    `json:"parameters"`
}

// MarshalJSON emits the device in wire shape, with the populated
// parameter struct under "parameters".
func (d *Device) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireDevice{
		ID:         d.ID,
		Type:       d.Type,
		Room:       d.Room,
		Name:       d.Name,
		Status:     d.Status,
		Parameters: d.parameters(),
	})
}

// ApplyUpdate routes a validated partial update into the device. Top
// level keys set the matching field directly; the "parameters" block is
// handed to the per-type application, which only touches externally
// settable parameters. Each key is logged as it is applied. Setters
// re-validate, so a value that slipped past record validation still
// cannot leave a field out of range.
func (d *Device) ApplyUpdate(update map[string]any, log Logger) error {
	for key, value := range update {
		log.Info(fmt.Sprintf("Setting parameter '%s' to value '%v'", key, value))
		switch key {
		case "room":
			if room, ok := value.(string); ok {
				d.Room = room
			}
		case "name":
			if name, ok := value.(string); ok {
				d.Name = name
			}
		case "status":
			s, ok := value.(string)
			if !ok {
				continue
			}
			if err := d.setStatus(Status(s)); err != nil {
				return err
			}
		case "parameters":
			params, ok := value.(map[string]any)
			if !ok {
				continue
			}
			if err := d.applyParameters(params, log); err != nil {
				return err
			}
		}
	}
	return nil
}

// setStatus validates the new status against the type's domain before
// storing it.
func (d *Device) setStatus(s Status) error {
	domain := d.Type.StatusDomain()
	if s != domain[0] && s != domain[1] {
		return fmt.Errorf("%w: status of %s must be either '%s' or '%s'",
			ErrOutOfRange, d.Type.DisplayName(), domain[0], domain[1])
	}
	d.Status = s
	return nil
}

// Tick advances the device one simulation step and returns the changed
// fields as a partial update record in wire shape (status at top level,
// parameter changes nested under "parameters"). An empty map means
// nothing changed. Tick mutates only the device itself; publishing the
// delta is the caller's job.
func (d *Device) Tick(rng Rand, now time.Time) map[string]any {
	switch d.Type {
	case TypeLight:
		return d.tickLight(rng)
	case TypeCurtain:
		return d.tickCurtain(rng)
	case TypeDoorLock:
		return d.tickDoorLock(rng)
	case TypeWaterHeater:
		return d.tickWaterHeater(rng, now)
	case TypeAirConditioner:
		return d.tickAirConditioner(rng)
	}
	return map[string]any{}
}

// applyParameters dispatches a parameters block to the populated
// parameter struct.
func (d *Device) applyParameters(params map[string]any, log Logger) error {
	switch d.Type {
	case TypeLight:
		return d.Light.apply(params, log)
	case TypeCurtain:
		return d.Curtain.apply(params, log)
	case TypeDoorLock:
		return d.DoorLock.apply(params, log)
	case TypeWaterHeater:
		return d.WaterHeater.apply(params, log)
	case TypeAirConditioner:
		return d.AirConditioner.apply(params, log)
	}
	return nil
}

// setParam records a parameter change in a tick delta, creating the
// nested parameters block on first use.
func setParam(update map[string]any, key string, value any) {
	params, ok := update["parameters"].(map[string]any)
	if !ok {
		params = map[string]any{}
		update["parameters"] = params
	}
	params[key] = value
}
