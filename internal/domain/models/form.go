package models

// CustomItem is a user-defined wastage item outside the standard list.
type CustomItem struct {
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
}

// FormDraft is the locally persisted snapshot of an in-progress report.
// Field names match the draft blob written by earlier versions of the form.
type FormDraft struct {
	Store       string         `json:"store"`
	Employee    string         `json:"employee"`
	Comment     string         `json:"comment"`
	Quantities  map[string]int `json:"quantities"`
	CustomItems []CustomItem   `json:"customItems"`
}

// CleanedItem is one line of a submitted report.
type CleanedItem struct {
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
}

// SubmissionPayload is the JSON body posted to the wastage webhook.
type SubmissionPayload struct {
	Store        string        `json:"store"`
	Employee     string        `json:"employee"`
	Comment      string        `json:"comment"`
	CleanedItems []CleanedItem `json:"cleaned_items"`
}

// DefaultComment replaces an empty comment in submitted payloads.
const DefaultComment = "N/A"
