package wastage

import "github.com/mamadbah2/wastage/internal/domain/models"

// EditBuffer holds the in-progress values of the custom item being edited.
type EditBuffer struct {
	OriginalName string `json:"original_name"`
	Name         string `json:"name"`
	Remaining    int    `json:"remaining"`
}

// ItemQuantity is one standard item row of the form.
type ItemQuantity struct {
	Name                string `json:"name"`
	Quantity            int    `json:"quantity"`
	QuickResetAvailable bool   `json:"quick_reset_available"`
}

// Snapshot is an immutable copy of the form state handed to renderers.
type Snapshot struct {
	Store           string              `json:"store"`
	Employee        string              `json:"employee"`
	Comment         string              `json:"comment"`
	Quantities      []ItemQuantity      `json:"quantities"`
	CustomItems     []models.CustomItem `json:"custom_items"`
	Editing         *EditBuffer         `json:"editing,omitempty"`
	ConfirmingReset bool                `json:"confirming_reset"`
	Submitting      bool                `json:"submitting"`
	InputsLocked    bool                `json:"inputs_locked"`
	CanSubmit       bool                `json:"can_submit"`
	Status          models.Status       `json:"status"`
}

// Quantity returns the quantity of a standard item in the snapshot.
func (s Snapshot) Quantity(item string) int {
	for _, q := range s.Quantities {
		if q.Name == item {
			return q.Quantity
		}
	}
	return 0
}

func (c *Controller) snapshotLocked() Snapshot {
	quantities := make([]ItemQuantity, 0, len(models.StandardItems))
	for _, name := range models.StandardItems {
		qty := c.quantities[name]
		quantities = append(quantities, ItemQuantity{
			Name:                name,
			Quantity:            qty,
			QuickResetAvailable: qty > 0,
		})
	}

	customItems := make([]models.CustomItem, len(c.customItems))
	copy(customItems, c.customItems)

	var editing *EditBuffer
	if c.editing != nil {
		buf := *c.editing
		editing = &buf
	}

	locked := c.submitting || c.editing != nil || c.confirmingReset

	return Snapshot{
		Store:           c.store,
		Employee:        c.employee,
		Comment:         c.comment,
		Quantities:      quantities,
		CustomItems:     customItems,
		Editing:         editing,
		ConfirmingReset: c.confirmingReset,
		Submitting:      c.submitting,
		InputsLocked:    locked,
		CanSubmit:       !locked && c.store != "" && c.employee != "",
		Status:          c.status,
	}
}
