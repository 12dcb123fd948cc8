// Package device implements the simulated device fleet for the Smart
// Home Simulator.
//
// The package owns three concerns: the typed device model (five device
// kinds with per-type parameters and tick behaviour), the validation
// engine that vets every inbound record before it can touch state, and
// the Registry that holds the fleet in memory as the single source of
// truth.
//
// # Architecture
//
//	┌───────────────────────────────────────────────────────────────────┐
//	│                          Device Fleet                             │
//	│                                                                   │
//	│  ┌────────────────┐   ┌──────────────────┐   ┌────────────────┐   │
//	│  │    Registry    │   │    Validation    │   │  Device Model  │   │
//	│  │ (registry.go)  │──▶│ (validation.go)  │   │  (types.go +   │   │
//	│  │                │   │                  │   │  one file per  │   │
//	│  │ • CRUD ops     │   │ • Key-set rules  │   │  device type)  │   │
//	│  │ • TickAll      │   │ • Range checks   │   │                │   │
//	│  │ • Thread safety│   │ • Reason lists   │   │ • Tick physics │   │
//	│  └────────────────┘   └──────────────────┘   │ • ApplyUpdate  │   │
//	│           │                                  └────────────────┘   │
//	└───────────│───────────────────────────────────────────────────────┘
//	            │
//	            ▼
//	┌───────────────────────────┐
//	│  Message Router / Tick    │
//	│  Loop / HTTP API          │
//	└───────────────────────────┘
//
// # Key Types
//
//   - Device: tagged variant with a shared header (id, type, room,
//     name, status) and exactly one populated parameter struct
//   - Registry: mutex-guarded id→Device map, validate-then-apply
//   - ValidationError: carries the full list of rejection reasons
//   - Rand: injectable randomness source for deterministic tick tests
//
// # Usage
//
//	reg := device.NewRegistry()
//	reg.SetLogger(log)
//
//	err := reg.Create(map[string]any{
//	    "id": "lamp-1", "type": "light", "room": "den",
//	    "name": "Reading Lamp", "status": "off",
//	    "parameters": map[string]any{"brightness": 80, "is_dimmable": true},
//	})
//
//	// Advance the simulation one step, publishing each delta.
//	reg.TickAll(device.NewRand(seed), time.Now(), func(id string, delta map[string]any) {
//	    publish(id, delta)
//	})
//
// # Thread Safety
//
// The Registry is safe for concurrent use. Each mutation validates and
// applies inside one critical section; readers receive deep copies, so
// no caller ever holds a reference into live registry state.
package device
