package domain

// Stats holds aggregate counts across stored assessments.
type Stats struct {
	TotalAssessments  int            `db:"total_assessments" json:"total_assessments"`
	ValidationPending int            `db:"validation_pending" json:"validation_pending"`
	ValidationValid   int            `db:"validation_valid" json:"validation_valid"`
	ValidationWarning int            `db:"validation_warning" json:"validation_warning"`
	ValidationInvalid int            `db:"validation_invalid" json:"validation_invalid"`
	ByFormType        map[string]int `db:"-" json:"by_form_type"`
}

// FormTypeCount is one row of the per-form-type breakdown.
type FormTypeCount struct {
	FormType string `db:"form_type"`
	Count    int    `db:"count"`
}
