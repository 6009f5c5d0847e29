package dto

import "time"

// FormFields are the user-editable fields. Name and email are not editable.
type FormFields struct {
	Mobile  string `json:"mobile"`
	Age     string `json:"age"`
	Gender  string `json:"gender"`
	Address string `json:"address"`
}

// FormPayload is built fresh per submission from the profile and the draft.
type FormPayload struct {
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	Age     string `json:"age"`
	Gender  string `json:"gender"`
	Address string `json:"address"`
}

type FormView struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	Age       string `json:"age"`
	Gender    string `json:"gender"`
	Address   string `json:"address"`
	CanSubmit bool   `json:"can_submit"`
}

// SubmitRequest optionally carries fields to save before submitting.
type SubmitRequest struct {
	Fields *FormFields `json:"fields,omitempty"`
}

type SubmitResponse struct {
	SubmissionID string           `json:"submission_id"`
	Status       string           `json:"status"`
	Checkout     *CheckoutOptions `json:"checkout,omitempty"`
	Notice       string           `json:"notice,omitempty"`
}

type CompleteResponse struct {
	SubmissionID string    `json:"submission_id"`
	Status       string    `json:"status"`
	Notice       string    `json:"notice,omitempty"`
	Form         *FormView `json:"form,omitempty"`
}

// SheetRow is one appended spreadsheet row. Timestamp is set at append time.
type SheetRow struct {
	Name      string
	Mobile    string
	Age       string
	Gender    string
	Address   string
	Timestamp time.Time
}

// Values returns the row in column order, with the timestamp formatted like
// JavaScript's Date.toISOString.
func (r SheetRow) Values() []interface{} {
	return []interface{}{
		r.Name,
		r.Mobile,
		r.Age,
		r.Gender,
		r.Address,
		r.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
