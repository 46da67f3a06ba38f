// Package state shares the comet transport's health between the worker
// goroutines and the UI.
//
// # Overview
//
// Transport workers record the outcome of every HTTP exchange; the UI reads
// a Snapshot to decide whether to show the connection as healthy or
// offline.
//
//	Producers (comet workers):       Consumer (UI):
//	┌──────────────────────┐        ┌──────────────────┐
//	│ exchange ok / failed │        │                  │
//	│          ↓           │        │                  │
//	│ store.RecordExchange │───────→│ store.Snapshot() │
//	│          ↓           │ (mutex)│        ↓         │
//	│     next exchange    │        │  render status   │
//	└──────────────────────┘        └──────────────────┘
//
// # Core Types
//
// Store:
//   - Thread-safe, zero value ready to use
//   - sync.RWMutex: two writers (the workers), one reader (the UI)
//
// Snapshot:
//   - Copy of the state at one point in time
//   - IsOffline reports two or more consecutive failed exchanges
//
// A failed exchange keeps the last known session id; the server only ever
// rotates it on a successful response.
package state
