package registry

// RecordKind tells whether an upstream record carries downloadable
// resources or only supports out-of-band data requests.
type RecordKind int

const (
	ResourceBacked RecordKind = iota
	RequestOnly
)

func (k RecordKind) String() string {
	if k == RequestOnly {
		return "request-only"
	}
	return "resource-backed"
}

// UpstreamRecord is one entry from the COD registry feed. Records are
// read-only: they are decoded fresh each run and never mutated.
type UpstreamRecord struct {
	Title            string           `json:"DatasetTitle"`
	Description      string           `json:"DatasetDescription"`
	Source           string           `json:"Source"`
	Contributor      string           `json:"Contributor"`
	Theme            string           `json:"Theme"`
	Location         []string         `json:"Location"`
	License          string           `json:"License"`
	LicenseOther     string           `json:"License_Other"`
	Methodology      string           `json:"Methodology"`
	MethodologyOther string           `json:"Methodology_Other"`
	Caveats          string           `json:"Caveats"`
	UpdateFrequency  string           `json:"FrequencyUpdates"`
	IsEnhanced       bool             `json:"is_enhanced_cod"`
	IsRequestData    bool             `json:"is_requestdata_type"`
	Total            int              `json:"Total"`
	Tags             []string         `json:"Tags"`
	Resources        []ResourceRecord `json:"Resources"`

	// Request-only fields, absent on resource-backed records.
	DatasetDate string `json:"DatasetDate"`
	FileTypes   string `json:"file_types"`
	FieldNames  string `json:"field_names"`
	NumOfRows   *int   `json:"num_of_rows"`
}

// Kind maps the feed's boolean flag to the record variant.
func (r *UpstreamRecord) Kind() RecordKind {
	if r.IsRequestData {
		return RequestOnly
	}
	return ResourceBacked
}

// ResourceRecord is one downloadable artifact within an upstream record.
type ResourceRecord struct {
	Title       string `json:"ResourceItemTitle"`
	Description string `json:"ResourceItemDescription"`
	DownloadURL string `json:"DownloadURL"`
	Format      string `json:"Format"`
	DateRange   string `json:"daterange_for_data"`
	Version     string `json:"Version"`
}
