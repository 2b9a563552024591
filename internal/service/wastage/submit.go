package wastage

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/mamadbah2/wastage/internal/domain/models"
	"github.com/mamadbah2/wastage/pkg/clients/webhook"
)

// errorBodyLimit caps how much of a failed response body is shown to the user.
const errorBodyLimit = 100

// Submit validates the form and posts the report. The returned snapshot
// reflects the final outcome; the loading state is visible to subscribers
// while the request is in flight. Once started, delivery is not cancelled by
// ctx; only the transport timeout bounds it.
func (c *Controller) Submit(ctx context.Context) (snap Snapshot, err error) {
	c.mu.Lock()
	payload, err := c.beginSubmitLocked()
	c.publishLocked()
	if err != nil {
		snap = c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}
	c.mu.Unlock()

	// Inputs unlock on every outcome, including a panicking submitter.
	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.submitting = false
		c.publishLocked()
		snap = c.snapshotLocked()
	}()

	c.logger.Info("submitting wastage report",
		zap.String("store", payload.Store),
		zap.String("employee", payload.Employee),
		zap.Int("items", len(payload.CleanedItems)))

	sendErr := c.submitter.Submit(context.WithoutCancel(ctx), payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	if sendErr != nil {
		c.failSubmitLocked(sendErr)
		return Snapshot{}, fmt.Errorf("submit wastage report: %w", sendErr)
	}

	c.logger.Info("wastage report submitted", zap.String("store", payload.Store), zap.String("employee", payload.Employee))
	c.clearFormLocked()
	c.deleteDraftLocked()
	c.setStatus(models.Status{Kind: models.StatusSuccess, Message: "Wastage data submitted successfully!"})
	c.scheduleRevertLocked()
	return Snapshot{}, nil
}

// BuildPayload assembles the submission payload from the current state
// without sending it. Standard items with a quantity above 0 come first, in
// catalog order, followed by every custom item.
func (c *Controller) BuildPayload() models.SubmissionPayload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payloadLocked()
}

func (c *Controller) beginSubmitLocked() (models.SubmissionPayload, error) {
	if c.submitting {
		return models.SubmissionPayload{}, ErrSubmissionInFlight
	}
	if c.confirmingReset {
		return models.SubmissionPayload{}, ErrInputsLocked
	}
	if c.store == "" || c.employee == "" {
		return models.SubmissionPayload{}, c.reject("Please select a store and an employee.")
	}
	if c.editing != nil {
		return models.SubmissionPayload{}, c.reject("Please save or cancel the current item edit before submitting.")
	}

	payload := c.payloadLocked()
	if len(payload.CleanedItems) == 0 {
		return models.SubmissionPayload{}, c.reject("No wastage items recorded (all quantities are 0).")
	}

	c.submitting = true
	c.setStatus(models.Status{Kind: models.StatusLoading, Message: "Submitting data..."})
	return payload, nil
}

func (c *Controller) payloadLocked() models.SubmissionPayload {
	items := make([]models.CleanedItem, 0, len(c.customItems))
	for _, name := range models.StandardItems {
		if qty := c.quantities[name]; qty > 0 {
			items = append(items, models.CleanedItem{Name: name, Remaining: qty})
		}
	}
	for _, item := range c.customItems {
		items = append(items, models.CleanedItem{Name: item.Name, Remaining: item.Remaining})
	}

	comment := c.comment
	if comment == "" {
		comment = models.DefaultComment
	}

	return models.SubmissionPayload{
		Store:        c.store,
		Employee:     c.employee,
		Comment:      comment,
		CleanedItems: items,
	}
}

func (c *Controller) failSubmitLocked(err error) {
	if statusErr, ok := webhook.AsStatusError(err); ok {
		c.logger.Warn("webhook rejected wastage report",
			zap.Int("status", statusErr.StatusCode),
			zap.String("body", statusErr.Body))
		c.setStatus(models.ErrorStatus(fmt.Sprintf("Submission failed (%d): %s...",
			statusErr.StatusCode, truncate(statusErr.Body, errorBodyLimit))))
		return
	}

	c.logger.Error("wastage report delivery failed", zap.Error(err))
	c.setStatus(models.ErrorStatus(fmt.Sprintf("Network Error: %s", networkCause(err))))
}

// networkCause strips request wrapping so the user sees the transport failure itself.
func networkCause(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}

// scheduleRevertLocked restores the idle message after the success status has
// been visible for the configured delay, unless another status replaced it.
func (c *Controller) scheduleRevertLocked() {
	if c.revertDelay <= 0 {
		return
	}
	seq := c.statusSeq
	c.afterFunc(c.revertDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.statusSeq != seq {
			return
		}
		c.setStatus(models.DefaultStatus())
		c.publishLocked()
	})
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
