// package repositories provides persistence layer implementations for the client's local state.
package repositories

import "fmt"

// Well-known slot keys.
const (
	CredentialSlot = "jwtToken"
	ThemeSlot      = "theme"
)

// Slots is the durable client storage contract: named string slots.
type Slots interface {
	Get(key string) (string, bool, error) // Get returns the slot value and whether it is set
	Set(key, value string) error          // Set writes the slot, replacing any previous value
	Delete(key string) error              // Delete clears the slot; clearing an unset slot is not an error
}

var (
	_ Slots = (*SlotRepository)(nil)
	_ Slots = (*MemorySlots)(nil)
)

func validKey(key string) error {
	if key == "" {
		return fmt.Errorf("slot key must not be empty")
	}
	return nil
}
