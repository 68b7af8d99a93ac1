package assemble

import (
	"codsync/internal/daterange"
)

// Dataset levels recognized by the platform.
const (
	LevelStandard = "cod-standard"
	LevelEnhanced = "cod-enhanced"
)

// Submission is the normalized metadata envelope handed to the platform
// store. The JSON keys are the contract the platform expects; renaming
// any of them is a breaking change. Locations, Tags and Subnational keep
// their natural Go shapes here; the platform store coerces them to the
// action API's wire forms when building the request payload.
// Exactly one of Resources or the
// request-only fields is populated, selected by the upstream record kind.
// A Submission is built once per accepted record and not mutated after
// the Assembler returns it.
type Submission struct {
	Name             string   `json:"name"`
	Title            string   `json:"title"`
	Notes            string   `json:"notes"`
	Source           string   `json:"dataset_source"`
	Methodology      string   `json:"methodology"`
	MethodologyOther string   `json:"methodology_other"`
	LicenseID        string   `json:"license_id"`
	LicenseOther     string   `json:"license_other"`
	Caveats          string   `json:"caveats"`
	UpdateFrequency  string   `json:"data_update_frequency"`
	Level            string   `json:"cod_level"`
	Maintainer       string   `json:"maintainer"`
	OrganizationID   string   `json:"owner_org"`
	Subnational      bool     `json:"subnational"`
	Locations        []string `json:"groups"`
	Tags             []string `json:"tags"`

	// DatasetDate is the dataset-level temporal coverage in bracketed
	// range form. For resource-backed submissions it renders Coverage;
	// for request-only submissions it is the upstream value verbatim.
	DatasetDate string              `json:"dataset_date"`
	Coverage    *daterange.Interval `json:"-"`

	Resources []Resource `json:"resources,omitempty"`

	// Request-only fields.
	IsRequestData bool     `json:"is_requestdata_type,omitempty"`
	FileTypes     []string `json:"file_types,omitempty"`
	FieldNames    []string `json:"field_names,omitempty"`
	NumOfRows     *int     `json:"num_of_rows,omitempty"`
}

// Resource is one file or link entry of a resource-backed submission.
type Resource struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	URL         string             `json:"url"`
	Format      string             `json:"format"`
	DateRange   daterange.Interval `json:"daterange_for_data"`
	Grouping    string             `json:"grouping"`
}

// Outcome is the tagged result of assembling one record: either an
// accepted submission with its batch token, or a rejection carrying the
// validation messages added while the record was processed.
type Outcome struct {
	Submission *Submission
	Batch      string
	Reasons    []string
}

// Accepted reports whether the record produced a submission.
func (o Outcome) Accepted() bool {
	return o.Submission != nil
}
