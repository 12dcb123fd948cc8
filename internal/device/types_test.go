package device

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestNew_UnknownType(t *testing.T) {
	record := testRecord("dev-1", TypeLight)
	record["type"] = "fridge"

	if _, err := New(record); !errors.Is(err, ErrInvalidType) {
		t.Errorf("New() error = %v, want ErrInvalidType", err)
	}
}

func TestNew_DefaultStatusPerType(t *testing.T) {
	tests := []struct {
		typ  Type
		want Status
	}{
		{TypeLight, StatusOff},
		{TypeWaterHeater, StatusOff},
		{TypeAirConditioner, StatusOff},
		{TypeDoorLock, StatusUnlocked},
		{TypeCurtain, StatusOpen},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			record := testRecord("dev-1", tt.typ)
			record["status"] = ""

			d, err := New(record)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if d.Status != tt.want {
				t.Errorf("Status = %q, want %q", d.Status, tt.want)
			}
		})
	}
}

func TestType_DisplayName(t *testing.T) {
	if got := TypeDoorLock.DisplayName(); got != "door lock" {
		t.Errorf("DisplayName() = %q, want %q", got, "door lock")
	}
	if got := TypeAirConditioner.DisplayName(); got != "air conditioner" {
		t.Errorf("DisplayName() = %q, want %q", got, "air conditioner")
	}
}

func TestDevice_DeepCopy(t *testing.T) {
	d := newTestDevice(t, TypeLight, map[string]any{"brightness": 60})

	cpy := d.DeepCopy()
	cpy.Room = "Garage"
	cpy.Light.Brightness = 1

	if d.Room != "Living Room" {
		t.Errorf("Room = %q, want %q", d.Room, "Living Room")
	}
	if d.Light.Brightness != 60 {
		t.Errorf("Brightness = %d, want 60", d.Light.Brightness)
	}

	var nilDevice *Device
	if nilDevice.DeepCopy() != nil {
		t.Error("DeepCopy() of nil device should be nil")
	}
}

func TestDevice_Record(t *testing.T) {
	d := newTestDevice(t, TypeWaterHeater, map[string]any{})

	want := map[string]any{
		"id":     "dev-water_heater",
		"type":   "water_heater",
		"room":   "Living Room",
		"name":   "Test Device",
		"status": "off",
		"parameters": map[string]any{
			"temperature":        23,
			"target_temperature": 49,
			"is_heating":         false,
			"timer_enabled":      false,
			"scheduled_on":       "06:30",
			"scheduled_off":      "08:00",
		},
	}
	if got := d.Record(); !reflect.DeepEqual(got, want) {
		t.Errorf("Record() = %v, want %v", got, want)
	}
}

func TestDevice_RecordRoundTrip(t *testing.T) {
	for _, typ := range AllTypes() {
		t.Run(string(typ), func(t *testing.T) {
			d := newTestDevice(t, typ, map[string]any{})
			record := d.Record()

			if reasons := ValidateNew(record); len(reasons) != 0 {
				t.Fatalf("Record() failed validation: %v", reasons)
			}

			rebuilt, err := New(record)
			if err != nil {
				t.Fatalf("New(Record()) error = %v", err)
			}
			if !reflect.DeepEqual(rebuilt.Record(), record) {
				t.Errorf("round trip changed the record:\n got %v\nwant %v", rebuilt.Record(), record)
			}
		})
	}
}

func TestDevice_MarshalJSON(t *testing.T) {
	d := newTestDevice(t, TypeLight, map[string]any{})

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"id":"dev-light","type":"light","room":"Living Room","name":"Test Device","status":"off",` +
		`"parameters":{"is_dimmable":false,"brightness":80,"dynamic_color":false,"color":"#FFFFFF"}}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestDevice_ApplyUpdate(t *testing.T) {
	t.Run("logs every key including the parameters block", func(t *testing.T) {
		d := newTestDevice(t, TypeLight, map[string]any{})
		logger := &captureLogger{}

		update := map[string]any{
			"room":       "Kitchen",
			"parameters": map[string]any{"brightness": 55},
		}
		if err := d.ApplyUpdate(update, logger); err != nil {
			t.Fatalf("ApplyUpdate() error = %v", err)
		}

		for _, want := range []string{
			"Setting parameter 'room' to value 'Kitchen'",
			"Setting parameter 'parameters' to value 'map[brightness:55]'",
			"Setting parameter 'brightness' to value '55'",
		} {
			if !logger.hasInfo(want) {
				t.Errorf("logged %v, want %q", logger.infos, want)
			}
		}
		if d.Room != "Kitchen" {
			t.Errorf("Room = %q, want %q", d.Room, "Kitchen")
		}
		if d.Light.Brightness != 55 {
			t.Errorf("Brightness = %d, want 55", d.Light.Brightness)
		}
	})

	t.Run("rejects a status outside the type's domain", func(t *testing.T) {
		d := newTestDevice(t, TypeLight, map[string]any{})

		err := d.ApplyUpdate(map[string]any{"status": "open"}, NopLogger())
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ApplyUpdate() error = %v, want ErrOutOfRange", err)
		}
		if d.Status != StatusOff {
			t.Errorf("Status = %q, want unchanged %q", d.Status, StatusOff)
		}
	})
}
