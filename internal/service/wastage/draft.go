package wastage

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/wastage/internal/domain/models"
)

const draftIOTimeout = 5 * time.Second

// restoreDraft loads the saved draft. Any failure leaves the defaults in place.
func (c *Controller) restoreDraft(ctx context.Context) {
	if c.drafts == nil {
		return
	}

	raw, ok, err := c.drafts.Get(ctx, c.draftKey)
	if err != nil {
		c.logger.Warn("failed to load draft", zap.String("key", c.draftKey), zap.Error(err))
		return
	}
	if !ok || raw == "" {
		return
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		c.logger.Warn("discarding unreadable draft", zap.String("key", c.draftKey), zap.Error(err))
		return
	}

	c.store = c.restoreChoice(fields, "store", models.IsKnownStore)
	c.employee = c.restoreChoice(fields, "employee", models.IsKnownEmployee)
	c.comment = c.restoreString(fields, "comment")
	c.restoreQuantities(fields["quantities"])
	c.restoreCustomItems(fields["customItems"])

	c.logger.Info("draft restored",
		zap.String("store", c.store),
		zap.String("employee", c.employee),
		zap.Int("custom_items", len(c.customItems)))
}

func (c *Controller) restoreString(fields map[string]json.RawMessage, name string) string {
	raw, ok := fields[name]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		c.logger.Warn("ignoring malformed draft field", zap.String("field", name), zap.Error(err))
		return ""
	}
	return value
}

func (c *Controller) restoreChoice(fields map[string]json.RawMessage, name string, known func(string) bool) string {
	value := c.restoreString(fields, name)
	if value != "" && !known(value) {
		c.logger.Warn("ignoring unknown draft selection", zap.String("field", name), zap.String("value", value))
		return ""
	}
	return value
}

func (c *Controller) restoreQuantities(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	stored := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &stored); err != nil {
		c.logger.Warn("ignoring malformed draft quantities", zap.Error(err))
		return
	}
	for name, value := range stored {
		if !models.IsStandardItem(name) {
			c.logger.Debug("dropping draft quantity for unknown item", zap.String("item", name))
			continue
		}
		c.quantities[name] = quantityFromJSON(value)
	}
}

func (c *Controller) restoreCustomItems(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		c.logger.Warn("ignoring malformed draft custom items", zap.Error(err))
		return
	}
	for _, entry := range entries {
		var item models.CustomItem
		if err := json.Unmarshal(entry, &item); err != nil {
			c.logger.Warn("dropping malformed draft custom item", zap.ByteString("entry", entry), zap.Error(err))
			continue
		}
		name := models.NormalizeItemName(item.Name)
		if name == "" || item.Remaining <= 0 || item.Remaining > models.MaxQuantity || c.nameTakenLocked(name, "") {
			c.logger.Warn("dropping invalid draft custom item",
				zap.String("name", item.Name),
				zap.Int("remaining", item.Remaining))
			continue
		}
		c.customItems = append(c.customItems, models.CustomItem{Name: name, Remaining: item.Remaining})
	}
}

// quantityFromJSON accepts numbers and numeric strings, coercing everything else to 0.
func quantityFromJSON(raw json.RawMessage) int {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0
	}
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0
		}
		return coerceQuantity(fmt.Sprintf("%.0f", v))
	case string:
		return coerceQuantity(v)
	default:
		return 0
	}
}

// persistLocked writes the current draft. Failures are logged and otherwise ignored.
func (c *Controller) persistLocked() {
	if c.drafts == nil {
		return
	}

	customItems := c.customItems
	if customItems == nil {
		customItems = []models.CustomItem{}
	}

	blob, err := json.Marshal(models.FormDraft{
		Store:       c.store,
		Employee:    c.employee,
		Comment:     c.comment,
		Quantities:  c.quantities,
		CustomItems: customItems,
	})
	if err != nil {
		c.logger.Error("failed to encode draft", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), draftIOTimeout)
	defer cancel()
	if err := c.drafts.Set(ctx, c.draftKey, string(blob)); err != nil {
		c.logger.Error("failed to save draft", zap.String("key", c.draftKey), zap.Error(err))
	}
}

func (c *Controller) deleteDraftLocked() {
	if c.drafts == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), draftIOTimeout)
	defer cancel()
	if err := c.drafts.Delete(ctx, c.draftKey); err != nil {
		c.logger.Error("failed to delete draft", zap.String("key", c.draftKey), zap.Error(err))
	}
}
