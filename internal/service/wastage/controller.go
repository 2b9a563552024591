package wastage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/wastage/internal/domain/models"
	"github.com/mamadbah2/wastage/internal/repository/draft"
)

// DefaultDraftKey is the key the draft blob is stored under.
const DefaultDraftKey = "wastageFormDraft"

// DefaultStatusRevertDelay is how long the success status stays visible.
const DefaultStatusRevertDelay = 5 * time.Second

// Submitter delivers a finished report. pkg/clients/webhook provides the production implementation.
type Submitter interface {
	Submit(ctx context.Context, payload any) error
}

// Options tunes a Controller. Zero values fall back to the defaults above.
type Options struct {
	DraftKey          string
	StatusRevertDelay time.Duration
}

// Controller owns the state of one wastage form. Each exported method is a
// single form event; events are serialized and every event returns the
// resulting Snapshot.
type Controller struct {
	mu sync.Mutex

	drafts      draft.Repository
	submitter   Submitter
	draftKey    string
	revertDelay time.Duration
	logger      *zap.Logger
	afterFunc   func(time.Duration, func())

	store       string
	employee    string
	comment     string
	quantities  map[string]int
	customItems []models.CustomItem

	editing         *EditBuffer
	confirmingReset bool
	submitting      bool

	status    models.Status
	statusSeq uint64

	subscribers map[int]chan Snapshot
	nextSubID   int
}

// NewController builds a controller and restores any saved draft.
func NewController(ctx context.Context, drafts draft.Repository, submitter Submitter, opts Options, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DraftKey == "" {
		opts.DraftKey = DefaultDraftKey
	}
	if opts.StatusRevertDelay < 0 {
		opts.StatusRevertDelay = 0
	}

	c := &Controller{
		drafts:      drafts,
		submitter:   submitter,
		draftKey:    opts.DraftKey,
		revertDelay: opts.StatusRevertDelay,
		logger:      logger,
		afterFunc: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
		quantities:  initialQuantities(),
		status:      models.DefaultStatus(),
		subscribers: make(map[int]chan Snapshot),
	}

	c.restoreDraft(ctx)
	return c
}

// Snapshot returns the current state without changing it.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers a listener for state changes. Delivery never blocks the
// controller: a listener that falls behind misses intermediate snapshots.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	ch := make(chan Snapshot, 8)
	c.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}

// SetStore selects the reporting store. An empty code clears the selection.
func (c *Controller) SetStore(code string) (Snapshot, error) {
	return c.apply(func() error {
		if err := c.checkInputsLocked(); err != nil {
			return err
		}
		code = strings.TrimSpace(code)
		if code != "" && !models.IsKnownStore(code) {
			c.setStatus(models.ErrorStatus(fmt.Sprintf("Unknown store %q.", code)))
			return newValidationError(fmt.Sprintf("unknown store %q", code))
		}
		c.store = code
		c.persistLocked()
		return nil
	})
}

// SetEmployee selects the reporting employee. An empty name clears the selection.
func (c *Controller) SetEmployee(name string) (Snapshot, error) {
	return c.apply(func() error {
		if err := c.checkInputsLocked(); err != nil {
			return err
		}
		name = strings.TrimSpace(name)
		if name != "" && !models.IsKnownEmployee(name) {
			c.setStatus(models.ErrorStatus(fmt.Sprintf("Unknown employee %q.", name)))
			return newValidationError(fmt.Sprintf("unknown employee %q", name))
		}
		c.employee = name
		c.persistLocked()
		return nil
	})
}

// SetComment replaces the free-text comment.
func (c *Controller) SetComment(comment string) (Snapshot, error) {
	return c.apply(func() error {
		if err := c.checkInputsLocked(); err != nil {
			return err
		}
		c.comment = comment
		c.persistLocked()
		return nil
	})
}

// SetQuantity sets a standard item's quantity from raw selector input.
// Non-numeric or out-of-range input is stored as 0.
func (c *Controller) SetQuantity(item, raw string) (Snapshot, error) {
	return c.apply(func() error {
		if err := c.checkInputsLocked(); err != nil {
			return err
		}
		name := models.NormalizeItemName(item)
		if !models.IsStandardItem(name) {
			return fmt.Errorf("%w: %s", ErrUnknownItem, item)
		}
		c.quantities[name] = coerceQuantity(raw)
		if c.status.Kind != models.StatusInfo {
			c.setStatus(models.DefaultStatus())
		}
		c.persistLocked()
		return nil
	})
}

// QuickReset zeroes a single standard item. It is only offered for items with a quantity above 0.
func (c *Controller) QuickReset(item string) (Snapshot, error) {
	return c.apply(func() error {
		if err := c.checkInputsLocked(); err != nil {
			return err
		}
		name := models.NormalizeItemName(item)
		if !models.IsStandardItem(name) {
			return fmt.Errorf("%w: %s", ErrUnknownItem, item)
		}
		if c.quantities[name] <= 0 {
			return newValidationError(fmt.Sprintf("item %q has no quantity to reset", name))
		}
		c.quantities[name] = 0
		c.setStatus(models.InfoStatus(fmt.Sprintf("Item %q quantity reset to 0.", name)))
		c.persistLocked()
		return nil
	})
}

// AddCustomItem appends a user-defined item.
func (c *Controller) AddCustomItem(name string, remaining int) (Snapshot, error) {
	return c.apply(func() error {
		if err := c.checkInputsLocked(); err != nil {
			return err
		}
		normalized := models.NormalizeItemName(name)
		if normalized == "" || remaining <= 0 {
			return c.reject("Custom item name is required and quantity must be > 0.")
		}
		if remaining > models.MaxQuantity {
			return c.reject(fmt.Sprintf("Quantity must be between 1 and %d.", models.MaxQuantity))
		}
		if c.nameTakenLocked(normalized, "") {
			return c.reject(fmt.Sprintf("Item %q is already in the list or is a duplicate custom item.", normalized))
		}

		c.customItems = append(c.customItems, models.CustomItem{Name: normalized, Remaining: remaining})
		c.setStatus(models.InfoStatus("Custom item added to the list. Please remember to submit!"))
		c.persistLocked()
		return nil
	})
}

// RemoveCustomItem deletes a custom item by name.
func (c *Controller) RemoveCustomItem(name string) (Snapshot, error) {
	return c.apply(func() error {
		if err := c.checkInputsLocked(); err != nil {
			return err
		}
		normalized := models.NormalizeItemName(name)
		kept := c.customItems[:0:0]
		for _, item := range c.customItems {
			if item.Name != normalized {
				kept = append(kept, item)
			}
		}
		c.customItems = kept
		c.setStatus(models.InfoStatus(fmt.Sprintf("Item %q has been removed.", normalized)))
		c.persistLocked()
		return nil
	})
}

// StartEdit puts one custom item into edit mode. Only one item can be edited at a time.
func (c *Controller) StartEdit(name string) (Snapshot, error) {
	return c.apply(func() error {
		if err := c.checkInputsLocked(); err != nil {
			return err
		}
		normalized := models.NormalizeItemName(name)
		idx := c.customIndexLocked(normalized)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownItem, name)
		}
		item := c.customItems[idx]
		c.editing = &EditBuffer{OriginalName: item.Name, Name: item.Name, Remaining: item.Remaining}
		return nil
	})
}

// SaveEdit applies the edited name and quantity to the item being edited.
func (c *Controller) SaveEdit(name string, remaining int) (Snapshot, error) {
	return c.apply(func() error {
		if c.submitting || c.confirmingReset {
			return ErrInputsLocked
		}
		if c.editing == nil {
			return ErrNotEditing
		}
		oldName := c.editing.OriginalName
		newName := models.NormalizeItemName(name)
		c.editing.Name = name
		c.editing.Remaining = remaining

		if newName == "" || remaining <= 0 {
			return c.reject("New item name is required and quantity must be > 0.")
		}
		if remaining > models.MaxQuantity {
			return c.reject(fmt.Sprintf("Quantity must be between 1 and %d.", models.MaxQuantity))
		}
		if newName != oldName && c.nameTakenLocked(newName, oldName) {
			return c.reject(fmt.Sprintf("Item %q is already in the list or is a duplicate custom item.", newName))
		}

		if idx := c.customIndexLocked(oldName); idx >= 0 {
			c.customItems[idx] = models.CustomItem{Name: newName, Remaining: remaining}
		}
		c.editing = nil
		c.setStatus(models.Status{Kind: models.StatusSuccess, Message: "Custom item updated successfully!"})
		c.persistLocked()
		return nil
	})
}

// CancelEdit leaves edit mode without touching the custom item list.
func (c *Controller) CancelEdit() (Snapshot, error) {
	return c.apply(func() error {
		if c.confirmingReset {
			return ErrInputsLocked
		}
		if c.editing == nil {
			return ErrNotEditing
		}
		c.editing = nil
		c.setStatus(models.InfoStatus("Edit cancelled."))
		return nil
	})
}

// StartReset asks for confirmation before clearing the whole form.
func (c *Controller) StartReset() (Snapshot, error) {
	return c.apply(func() error {
		if c.submitting || c.editing != nil {
			c.setStatus(models.ErrorStatus("Please complete submission or editing first."))
			return ErrInputsLocked
		}
		c.confirmingReset = true
		return nil
	})
}

// CancelReset abandons a pending reset.
func (c *Controller) CancelReset() (Snapshot, error) {
	return c.apply(func() error {
		if !c.confirmingReset {
			return ErrNoResetPending
		}
		c.confirmingReset = false
		c.setStatus(models.InfoStatus("Reset cancelled."))
		return nil
	})
}

// ConfirmReset clears every field and deletes the saved draft.
func (c *Controller) ConfirmReset() (Snapshot, error) {
	return c.apply(func() error {
		if !c.confirmingReset {
			return ErrNoResetPending
		}
		c.clearFormLocked()
		c.deleteDraftLocked()
		c.confirmingReset = false
		c.setStatus(models.InfoStatus("All data cleared, form reset."))
		return nil
	})
}

// RemindPending flags an unsubmitted draft. It reports whether the form holds
// unsent entries and only replaces an idle informational status.
func (c *Controller) RemindPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasEntriesLocked() {
		return false
	}
	if !c.submitting && c.status.Kind == models.StatusInfo {
		c.setStatus(models.InfoStatus("Unsubmitted wastage entries found. Please submit before closing."))
		c.publishLocked()
	}
	return true
}

// apply runs one event under the lock and broadcasts the resulting snapshot.
func (c *Controller) apply(event func() error) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := event()
	c.publishLocked()
	return c.snapshotLocked(), err
}

func (c *Controller) publishLocked() {
	if len(c.subscribers) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, ch := range c.subscribers {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (c *Controller) checkInputsLocked() error {
	if c.submitting || c.editing != nil || c.confirmingReset {
		return ErrInputsLocked
	}
	return nil
}

func (c *Controller) reject(message string) error {
	c.setStatus(models.ErrorStatus(message))
	return newValidationError(message)
}

func (c *Controller) setStatus(status models.Status) {
	c.status = status
	c.statusSeq++
}

// nameTakenLocked reports whether name collides with a standard item or a
// custom item other than except.
func (c *Controller) nameTakenLocked(name, except string) bool {
	if models.IsStandardItem(name) {
		return true
	}
	for _, item := range c.customItems {
		if item.Name == name && item.Name != except {
			return true
		}
	}
	return false
}

func (c *Controller) customIndexLocked(name string) int {
	for i, item := range c.customItems {
		if item.Name == name {
			return i
		}
	}
	return -1
}

func (c *Controller) hasEntriesLocked() bool {
	if c.store != "" || c.employee != "" || c.comment != "" || len(c.customItems) > 0 {
		return true
	}
	for _, qty := range c.quantities {
		if qty > 0 {
			return true
		}
	}
	return false
}

func (c *Controller) clearFormLocked() {
	c.store = ""
	c.employee = ""
	c.comment = ""
	c.quantities = initialQuantities()
	c.customItems = nil
}

func initialQuantities() map[string]int {
	quantities := make(map[string]int, len(models.StandardItems))
	for _, item := range models.StandardItems {
		quantities[item] = 0
	}
	return quantities
}

// coerceQuantity parses selector input, mapping anything outside the allowed range to 0.
func coerceQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < models.MinQuantity || n > models.MaxQuantity {
		return 0
	}
	return n
}
