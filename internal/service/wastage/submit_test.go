package wastage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/wastage/internal/domain/models"
	"github.com/mamadbah2/wastage/internal/repository/draft"
	"github.com/mamadbah2/wastage/pkg/clients/webhook"
)

func selectStoreAndEmployee(t *testing.T, c *Controller) {
	t.Helper()
	_, err := c.SetStore("NT")
	require.NoError(t, err)
	_, err = c.SetEmployee("Kylie")
	require.NoError(t, err)
}

func TestSubmit_RequiresStoreAndEmployee(t *testing.T) {
	sub := &fakeSubmitter{}
	c, _ := newTestController(t, draft.NewMemoryRepository(), sub)
	_, err := c.SetQuantity("CROISSANT", "3")
	require.NoError(t, err)

	snap, err := c.Submit(context.Background())
	require.True(t, IsValidation(err))
	assert.Equal(t, models.ErrorStatus("Please select a store and an employee."), snap.Status)
	assert.Zero(t, sub.calls())

	_, err = c.SetStore("NT")
	require.NoError(t, err)
	_, err = c.Submit(context.Background())
	assert.True(t, IsValidation(err))
	assert.Zero(t, sub.calls())
}

func TestSubmit_RejectsEmptyReport(t *testing.T) {
	sub := &fakeSubmitter{}
	c, _ := newTestController(t, draft.NewMemoryRepository(), sub)
	selectStoreAndEmployee(t, c)

	snap, err := c.Submit(context.Background())
	require.True(t, IsValidation(err))
	assert.Equal(t, models.StatusError, snap.Status.Kind)
	assert.Equal(t, "No wastage items recorded (all quantities are 0).", snap.Status.Message)
	assert.False(t, snap.Submitting)
	assert.Zero(t, sub.calls())
}

func TestSubmit_RejectsWhileEditing(t *testing.T) {
	sub := &fakeSubmitter{}
	c, _ := newTestController(t, draft.NewMemoryRepository(), sub)
	selectStoreAndEmployee(t, c)
	_, err := c.AddCustomItem("PIZZA BASE", 2)
	require.NoError(t, err)
	_, err = c.StartEdit("PIZZA BASE")
	require.NoError(t, err)

	snap, err := c.Submit(context.Background())
	require.True(t, IsValidation(err))
	assert.Contains(t, snap.Status.Message, "save or cancel")
	assert.Zero(t, sub.calls())
}

func TestSubmit_RefusedWhileConfirmingReset(t *testing.T) {
	sub := &fakeSubmitter{}
	c, _ := newTestController(t, draft.NewMemoryRepository(), sub)
	selectStoreAndEmployee(t, c)
	_, err := c.SetQuantity("CROISSANT", "3")
	require.NoError(t, err)
	_, err = c.StartReset()
	require.NoError(t, err)

	_, err = c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInputsLocked)
	assert.Zero(t, sub.calls())
}

func TestSubmit_PayloadOrder(t *testing.T) {
	sub := &fakeSubmitter{}
	c, _ := newTestController(t, draft.NewMemoryRepository(), sub)
	selectStoreAndEmployee(t, c)
	_, err := c.AddCustomItem("PIZZA BASE", 2)
	require.NoError(t, err)
	_, err = c.SetQuantity("CROISSANT", "3")
	require.NoError(t, err)

	want := models.SubmissionPayload{
		Store:    "NT",
		Employee: "Kylie",
		Comment:  "N/A",
		CleanedItems: []models.CleanedItem{
			{Name: "CROISSANT", Remaining: 3},
			{Name: "PIZZA BASE", Remaining: 2},
		},
	}
	assert.Equal(t, want, c.BuildPayload())

	_, err = c.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sub.calls())
	assert.Equal(t, want, sub.payloads[0])
}

func TestSubmit_StandardItemsFollowCatalogOrder(t *testing.T) {
	c, _ := newTestController(t, draft.NewMemoryRepository(), &fakeSubmitter{})
	selectStoreAndEmployee(t, c)
	_, err := c.SetComment("slow day")
	require.NoError(t, err)
	for _, item := range []string{"WHOLEMEAL CASA", "BALTIC", "PAYSAN"} {
		_, err := c.SetQuantity(item, "1")
		require.NoError(t, err)
	}

	payload := c.BuildPayload()
	assert.Equal(t, "slow day", payload.Comment)
	names := make([]string, 0, len(payload.CleanedItems))
	for _, item := range payload.CleanedItems {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"BALTIC", "PAYSAN", "WHOLEMEAL CASA"}, names)
}

func TestSubmit_SuccessClearsFormAndDraft(t *testing.T) {
	repo := draft.NewMemoryRepository()
	sub := &fakeSubmitter{}
	c, timers := newTestController(t, repo, sub)
	selectStoreAndEmployee(t, c)
	_, err := c.SetComment("all good")
	require.NoError(t, err)
	_, err = c.SetQuantity("CROISSANT", "3")
	require.NoError(t, err)
	_, err = c.AddCustomItem("PIZZA BASE", 2)
	require.NoError(t, err)
	_, ok := storedDraft(t, repo)
	require.True(t, ok)

	snap, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.False(t, snap.Submitting)
	assert.False(t, snap.InputsLocked)
	assert.Equal(t, models.StatusSuccess, snap.Status.Kind)
	assert.Empty(t, snap.Store)
	assert.Empty(t, snap.Employee)
	assert.Empty(t, snap.Comment)
	assert.Empty(t, snap.CustomItems)
	for _, q := range snap.Quantities {
		assert.Zero(t, q.Quantity, q.Name)
	}
	_, ok = storedDraft(t, repo)
	assert.False(t, ok, "draft removed after success")

	timers.fire()
	assert.Equal(t, models.DefaultStatus(), c.Snapshot().Status)
}

func TestSubmit_RevertSkippedWhenStatusChanged(t *testing.T) {
	c, timers := newTestController(t, draft.NewMemoryRepository(), &fakeSubmitter{})
	selectStoreAndEmployee(t, c)
	_, err := c.SetQuantity("CROISSANT", "3")
	require.NoError(t, err)
	_, err = c.Submit(context.Background())
	require.NoError(t, err)

	_, err = c.AddCustomItem("SCONES", 1)
	require.NoError(t, err)
	timers.fire()

	assert.Equal(t, "Custom item added to the list. Please remember to submit!", c.Snapshot().Status.Message)
}

func TestSubmit_WebhookRejection(t *testing.T) {
	repo := draft.NewMemoryRepository()
	body := strings.Repeat("x", 150)
	sub := &fakeSubmitter{err: &webhook.StatusError{StatusCode: 500, Body: body}}
	c, _ := newTestController(t, repo, sub)
	selectStoreAndEmployee(t, c)
	_, err := c.SetQuantity("CROISSANT", "3")
	require.NoError(t, err)

	snap, err := c.Submit(context.Background())
	require.Error(t, err)
	statusErr, ok := webhook.AsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, 500, statusErr.StatusCode)

	assert.Equal(t, models.StatusError, snap.Status.Kind)
	assert.Equal(t, "Submission failed (500): "+strings.Repeat("x", 100)+"...", snap.Status.Message)
	assert.False(t, snap.Submitting)
	assert.Equal(t, "NT", snap.Store)
	assert.Equal(t, 3, snap.Quantity("CROISSANT"))

	d, ok := storedDraft(t, repo)
	require.True(t, ok, "draft kept for retry")
	assert.Equal(t, 3, d.Quantities["CROISSANT"])
}

func TestSubmit_NetworkErrorShowsTransportCause(t *testing.T) {
	cause := &url.Error{Op: "Post", URL: "http://127.0.0.1:9/hook", Err: errors.New("connection refused")}
	sub := &fakeSubmitter{err: fmt.Errorf("post wastage report: %w", cause)}
	c, _ := newTestController(t, draft.NewMemoryRepository(), sub)
	selectStoreAndEmployee(t, c)
	_, err := c.SetQuantity("CROISSANT", "3")
	require.NoError(t, err)

	snap, err := c.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, models.ErrorStatus("Network Error: connection refused"), snap.Status)
}

func TestSubmit_DeliveryIgnoresCallerCancellation(t *testing.T) {
	sub := &fakeSubmitter{}
	c, _ := newTestController(t, draft.NewMemoryRepository(), sub)
	selectStoreAndEmployee(t, c)
	_, err := c.SetQuantity("CROISSANT", "3")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap, err := c.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, snap.Status.Kind)
	require.Len(t, sub.ctxErrs, 1)
	assert.NoError(t, sub.ctxErrs[0])
}

func TestSubmit_NetworkError(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("dial tcp: connection refused")}
	c, _ := newTestController(t, draft.NewMemoryRepository(), sub)
	selectStoreAndEmployee(t, c)
	_, err := c.SetQuantity("CROISSANT", "3")
	require.NoError(t, err)

	snap, err := c.Submit(context.Background())
	require.Error(t, err)
	assert.False(t, IsValidation(err))
	assert.Equal(t, models.ErrorStatus("Network Error: dial tcp: connection refused"), snap.Status)
	assert.False(t, snap.InputsLocked)

	sub.err = nil
	snap, err = c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, snap.Status.Kind)
	assert.Equal(t, 2, sub.calls())
}

func TestSubmit_InputsLockedInFlight(t *testing.T) {
	sub := &fakeSubmitter{}
	c, _ := newTestController(t, draft.NewMemoryRepository(), sub)
	selectStoreAndEmployee(t, c)
	_, err := c.SetQuantity("CROISSANT", "3")
	require.NoError(t, err)

	var inFlight Snapshot
	var setErr, resetErr, submitErr error
	sub.during = func() {
		inFlight = c.Snapshot()
		_, setErr = c.SetQuantity("BALTIC", "1")
		_, resetErr = c.StartReset()
		_, submitErr = c.Submit(context.Background())
	}

	_, err = c.Submit(context.Background())
	require.NoError(t, err)

	assert.True(t, inFlight.Submitting)
	assert.True(t, inFlight.InputsLocked)
	assert.False(t, inFlight.CanSubmit)
	assert.Equal(t, models.StatusLoading, inFlight.Status.Kind)
	assert.ErrorIs(t, setErr, ErrInputsLocked)
	assert.ErrorIs(t, resetErr, ErrInputsLocked)
	assert.ErrorIs(t, submitErr, ErrSubmissionInFlight)
	assert.Equal(t, 1, sub.calls())
}

func TestSubmit_PanickingSubmitterUnlocksInputs(t *testing.T) {
	sub := &fakeSubmitter{during: func() { panic("boom") }}
	c, _ := newTestController(t, draft.NewMemoryRepository(), sub)
	selectStoreAndEmployee(t, c)
	_, err := c.SetQuantity("CROISSANT", "3")
	require.NoError(t, err)

	assert.Panics(t, func() { _, _ = c.Submit(context.Background()) })
	assert.False(t, c.Snapshot().Submitting)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 100))
	assert.Equal(t, "éé", truncate("ééé", 2))
}
