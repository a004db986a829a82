// Package repositories implements SQLite persistence for the client's local state.
//
// Key Implementations:
//   - [SlotRepository] : Durable named string slots holding the bearer credential and the theme preference
//   - [MemorySlots] : Process-local slots with the same contract, for tests and ephemeral sessions
//   - [SearchHistoryRepository] : Structured movie queries that reached the API, newest first
//
// Slot consumers depend on the three-method contract (Get, Set, Delete) rather than on SQLite, so the dispatcher,
// session store and theme state can share one store or be tested against [MemorySlots].
package repositories
