// Package assemble turns upstream registry records into validated
// dataset submissions.
package assemble

import (
	"context"
	"log"
	"strings"

	"codsync/internal/batch"
	"codsync/internal/daterange"
	"codsync/internal/registry"
	"codsync/internal/slug"
	"codsync/internal/tags"
)

// Format token remapped at assembly time.
const (
	formatVectorTile = "VectorTile"
	formatMBTiles    = "MBTiles"
)

// sentinelOther is the upstream marker for a free-text license or
// methodology; licenseOtherID is the platform's corresponding license id.
const (
	sentinelOther  = "Other"
	licenseOtherID = "hdx-other"
)

// Organization is a platform organization hit returned by autocomplete.
type Organization struct {
	ID    string
	Name  string
	Title string
}

// OrganizationLookup is the injected autocomplete search; the assembler
// uses only the id of the first hit.
type OrganizationLookup interface {
	Autocomplete(ctx context.Context, name string) ([]Organization, error)
}

// LocationValidator rejects location code sequences containing codes the
// platform does not recognize.
type LocationValidator interface {
	Validate(ctx context.Context, codes []string) error
}

// Config carries the run-constant knobs of the assembler.
type Config struct {
	MaintainerID string
	MandatoryTag string
	ExcludedTags []string
}

// Assembler drives record-to-submission transformation for one run. It
// owns the run's batch registry and error log; records must be processed
// sequentially.
type Assembler struct {
	orgs      OrganizationLookup
	locations LocationValidator
	approver  tags.Approver
	batches   *batch.Registry
	errors    *ErrorLog

	maintainerID string
	mandatoryTag string
	excluded     map[string]bool
}

// New creates an assembler with a fresh batch registry and error log.
func New(orgs OrganizationLookup, locations LocationValidator, approver tags.Approver, cfg Config) *Assembler {
	excluded := make(map[string]bool, len(cfg.ExcludedTags))
	for _, tag := range cfg.ExcludedTags {
		excluded[strings.ReplaceAll(strings.ToLower(tag), " ", "")] = true
	}

	return &Assembler{
		orgs:         orgs,
		locations:    locations,
		approver:     approver,
		batches:      batch.NewRegistry(),
		errors:       NewErrorLog(),
		maintainerID: cfg.MaintainerID,
		mandatoryTag: cfg.MandatoryTag,
		excluded:     excluded,
	}
}

// Errors returns the run's error log.
func (a *Assembler) Errors() *ErrorLog {
	return a.errors
}

// Assemble transforms one upstream record. Validation problems are
// accumulated rather than returned: if any message was added while the
// record was processed, the assembled submission is discarded and the
// outcome is a rejection. External lookup failures are downgraded to
// validation messages; Assemble never fails the run for a single bad
// record.
func (a *Assembler) Assemble(ctx context.Context, rec *registry.UpstreamRecord) Outcome {
	mark := a.errors.Count()
	title := rec.Title

	// Resource-backed records without resources are rejected up front,
	// skipping all further checks.
	if rec.Kind() == registry.ResourceBacked && rec.Total == 0 {
		a.errors.Add("Ignoring dataset: %s which has no resources!", title)
		return Outcome{Reasons: a.errors.Since(mark)}
	}

	if rec.Source == "" {
		a.errors.Add("Dataset: %s has no source!", title)
	}

	log.Printf("Creating dataset: %s", title)

	level := LevelStandard
	if rec.IsEnhanced {
		level = LevelEnhanced
	}

	theme := rec.Theme
	if theme == "" {
		a.errors.Add("Dataset: %s has no theme!", title)
	}

	// The free-text override fields always travel with the submission;
	// the sentinel branches below only reroute license_id/methodology.
	sub := &Submission{
		Name:             slug.DeriveName(title, theme, rec.Location),
		Title:            title,
		Notes:            rec.Description,
		Source:           rec.Source,
		LicenseOther:     rec.LicenseOther,
		MethodologyOther: rec.MethodologyOther,
		Caveats:          rec.Caveats,
		UpdateFrequency:  rec.UpdateFrequency,
		Level:            level,
		Maintainer:       a.maintainerID,
		Subnational:      true,
	}

	// License: the "Other" sentinel maps to the platform's marker id;
	// anything else (including empty) is carried verbatim.
	if rec.License == sentinelOther {
		sub.LicenseID = licenseOtherID
	} else {
		sub.LicenseID = rec.License
	}

	// Methodology mirrors license handling, but an empty free-text value
	// behind the sentinel is an error.
	if rec.Methodology == "" && rec.MethodologyOther == "" {
		a.errors.Add("Dataset: %s has no methodology!", title)
	}
	if rec.Methodology == sentinelOther {
		sub.Methodology = sentinelOther
		if rec.MethodologyOther == "" {
			a.errors.Add("Dataset: %s has no other methodology!", title)
		}
	} else {
		sub.Methodology = rec.Methodology
	}

	var batchToken string
	if orgID := a.resolveOrganization(ctx, rec.Contributor); orgID == "" {
		a.errors.Add("Dataset: %s has an invalid organization %s!", title, rec.Contributor)
	} else {
		sub.OrganizationID = orgID
		batchToken = a.batches.TokenFor(orgID)
	}

	if err := a.locations.Validate(ctx, rec.Location); err != nil {
		a.errors.Add("Dataset: %s has an invalid location %v!", title, rec.Location)
	} else {
		sub.Locations = make([]string, len(rec.Location))
		for i, code := range rec.Location {
			sub.Locations[i] = strings.ToLower(code)
		}
	}

	sub.Tags = a.normalizeTags(rec.Tags, theme, title)

	switch rec.Kind() {
	case registry.RequestOnly:
		sub.IsRequestData = true
		sub.DatasetDate = rec.DatasetDate
		sub.FileTypes = splitList(rec.FileTypes)
		sub.FieldNames = splitList(rec.FieldNames)
		if rec.NumOfRows != nil {
			n := *rec.NumOfRows
			sub.NumOfRows = &n
		}
	case registry.ResourceBacked:
		a.buildResources(sub, rec)
	}

	if a.errors.Count() > mark {
		return Outcome{Reasons: a.errors.Since(mark)}
	}
	return Outcome{Submission: sub, Batch: batchToken}
}

// resolveOrganization looks up the contributor, retrying once with
// spaces replaced by hyphens. Lookup failures surface as a missing
// organization, not as run errors.
func (a *Assembler) resolveOrganization(ctx context.Context, contributor string) string {
	hits, err := a.orgs.Autocomplete(ctx, contributor)
	if err == nil && len(hits) > 0 {
		return hits[0].ID
	}
	if err != nil {
		log.Printf("Organization lookup for %q failed: %v", contributor, err)
	}

	hyphenated := strings.ReplaceAll(contributor, " ", "-")
	hits, err = a.orgs.Autocomplete(ctx, hyphenated)
	if err != nil {
		log.Printf("Organization lookup for %q failed: %v", hyphenated, err)
		return ""
	}
	if len(hits) == 0 {
		return ""
	}
	return hits[0].ID
}

// normalizeTags runs the tag pipeline: vocabulary normalization, theme
// policy, then the mandatory domain tag. Rejected tags are an error only
// when nothing from the input survived; a partial drop is logged and the
// record stays publishable.
func (a *Assembler) normalizeTags(raw []string, theme, title string) []string {
	normalized, rejected := tags.Normalize(raw, a.excluded, a.approver, "")
	if rejected > 0 {
		if len(normalized) == 0 {
			a.errors.Add("Dataset: %s has invalid tags!", title)
		} else {
			log.Printf("Dataset: %s has %d unrecognized tags", title, rejected)
		}
	}

	normalized = tags.ApplyThemePolicy(normalized, theme)

	if a.mandatoryTag != "" {
		present := false
		for _, tag := range normalized {
			if tag == a.mandatoryTag {
				present = true
				break
			}
		}
		if !present {
			normalized = append(normalized, a.mandatoryTag)
		}
	}
	return normalized
}

// buildResources converts the record's resources and folds their date
// ranges into the dataset-level coverage. A malformed range is fatal to
// the record, but the loop keeps going so every bad resource is reported.
func (a *Assembler) buildResources(sub *Submission, rec *registry.UpstreamRecord) {
	title := rec.Title
	intervals := make([]daterange.Interval, 0, len(rec.Resources))
	resources := make([]Resource, 0, len(rec.Resources))

	for _, res := range rec.Resources {
		format := res.Format
		if format == formatVectorTile {
			format = formatMBTiles
			log.Printf("Dataset: %s is using file type VectorTile instead of MBTiles", title)
		}

		iv, err := daterange.Parse(res.DateRange)
		if err != nil {
			a.errors.Add("Dataset: %s resource %s has an invalid date range: %v", title, res.Title, err)
			continue
		}
		intervals = append(intervals, iv)

		resources = append(resources, Resource{
			Name:        res.Title,
			Description: res.Description,
			URL:         res.DownloadURL,
			Format:      format,
			DateRange:   iv,
			Grouping:    res.Version,
		})
	}
	sub.Resources = resources

	if len(intervals) == 0 {
		return
	}
	folded, err := daterange.Fold(intervals)
	if err != nil {
		a.errors.Add("Dataset: %s has no usable date ranges!", title)
		return
	}
	sub.Coverage = &folded
	sub.DatasetDate = folded.String()
}

// splitList turns a comma-separated upstream field into a list, trimming
// whitespace around the items. Upstream sometimes sends prose containing
// commas rather than a clean enumeration; splitting is lossy for those
// values, but downstream wants file_types and field_names as lists, so
// the fragments are carried as-is without further interpretation.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
