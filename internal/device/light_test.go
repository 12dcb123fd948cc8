package device

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewLightParameters(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		d := newTestDevice(t, TypeLight, map[string]any{})
		p := d.Light

		if p.IsDimmable || p.DynamicColor {
			t.Error("capability flags should default to false")
		}
		if p.Brightness != 80 {
			t.Errorf("Brightness = %d, want 80", p.Brightness)
		}
		if p.Color != "#FFFFFF" {
			t.Errorf("Color = %q, want %q", p.Color, "#FFFFFF")
		}
	})

	t.Run("overrides", func(t *testing.T) {
		d := newTestDevice(t, TypeLight, map[string]any{
			"is_dimmable":   true,
			"brightness":    "25",
			"dynamic_color": true,
			"color":         "#abc123",
		})
		p := d.Light

		if !p.IsDimmable || !p.DynamicColor {
			t.Error("capability flags were not applied")
		}
		if p.Brightness != 25 {
			t.Errorf("Brightness = %d, want 25", p.Brightness)
		}
		if p.Color != "#abc123" {
			t.Errorf("Color = %q, want %q", p.Color, "#abc123")
		}
	})
}

func TestLight_Tick(t *testing.T) {
	t.Run("no change when the roll misses", func(t *testing.T) {
		d := newTestDevice(t, TypeLight, map[string]any{})

		delta := d.Tick(&scriptedRand{floats: []float64{0.5}}, testNow)
		if len(delta) != 0 {
			t.Errorf("Tick() = %v, want empty delta", delta)
		}
		if d.Status != StatusOff || d.Light.Brightness != 80 {
			t.Error("device mutated on a missed roll")
		}
	})

	t.Run("plain light can only toggle status", func(t *testing.T) {
		d := newTestDevice(t, TypeLight, map[string]any{})

		rng := &scriptedRand{floats: []float64{0.0}, ints: []int{0}}
		delta := d.Tick(rng, testNow)

		want := map[string]any{"status": "on"}
		if !reflect.DeepEqual(delta, want) {
			t.Errorf("Tick() = %v, want %v", delta, want)
		}
		if d.Status != StatusOn {
			t.Errorf("Status = %q, want %q", d.Status, StatusOn)
		}
	})

	t.Run("dimmable light re-rolls brightness until it differs", func(t *testing.T) {
		d := newTestDevice(t, TypeLight, map[string]any{"is_dimmable": true})

		// Element 1 of [status brightness], then 80 (same as current,
		// forcing a re-roll) followed by 42.
		rng := &scriptedRand{floats: []float64{0.0}, ints: []int{1, 80, 42}}
		delta := d.Tick(rng, testNow)

		want := map[string]any{"parameters": map[string]any{"brightness": 42}}
		if !reflect.DeepEqual(delta, want) {
			t.Errorf("Tick() = %v, want %v", delta, want)
		}
		if d.Light.Brightness != 42 {
			t.Errorf("Brightness = %d, want 42", d.Light.Brightness)
		}
	})

	t.Run("dynamic light re-rolls color as lowercase hex", func(t *testing.T) {
		d := newTestDevice(t, TypeLight, map[string]any{"dynamic_color": true})

		// Element 1 of [status color], then the current color's value
		// (forcing a re-roll) followed by pure blue.
		rng := &scriptedRand{floats: []float64{0.0}, ints: []int{1, 0xFFFFFF, 0x0000FF}}
		delta := d.Tick(rng, testNow)

		want := map[string]any{"parameters": map[string]any{"color": "#0000ff"}}
		if !reflect.DeepEqual(delta, want) {
			t.Errorf("Tick() = %v, want %v", delta, want)
		}
		if d.Light.Color != "#0000ff" {
			t.Errorf("Color = %q, want %q", d.Light.Color, "#0000ff")
		}
	})
}

func TestLightParameters_Apply(t *testing.T) {
	t.Run("sets brightness and color only", func(t *testing.T) {
		d := newTestDevice(t, TypeLight, map[string]any{})
		logger := &captureLogger{}

		params := map[string]any{
			"brightness":  30,
			"color":       "#00ff00",
			"is_dimmable": true,
		}
		if err := d.Light.apply(params, logger); err != nil {
			t.Fatalf("apply() error = %v", err)
		}

		if d.Light.Brightness != 30 || d.Light.Color != "#00ff00" {
			t.Errorf("parameters = %+v, want brightness 30 and color #00ff00", d.Light)
		}
		if d.Light.IsDimmable {
			t.Error("is_dimmable is fixed at creation and must not change")
		}
		if !logger.hasInfo("Setting parameter 'is_dimmable' to value 'true'") {
			t.Errorf("logged %v, want the ignored key logged too", logger.infos)
		}
	})

	t.Run("rejects an out-of-range brightness", func(t *testing.T) {
		d := newTestDevice(t, TypeLight, map[string]any{})

		err := d.Light.apply(map[string]any{"brightness": 150}, NopLogger())
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("apply() error = %v, want ErrOutOfRange", err)
		}
		if d.Light.Brightness != 80 {
			t.Errorf("Brightness = %d, want unchanged 80", d.Light.Brightness)
		}
	})
}
