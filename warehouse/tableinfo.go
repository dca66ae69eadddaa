package warehouse

// TableInfo is one row of the enriched table listing. A table enumerated
// from a base source always gets a row; every metadata field is nullable and
// stays nil when no metadata source mentions the table.
//
// Fields partition into three fixed groups: statistics, tags, bibliography.
type TableInfo struct {
	Name string

	// Stats
	NResponses              *float64
	NParticipants           *float64
	NItems                  *float64
	ResponsesPerParticipant *float64
	ResponsesPerItem        *float64
	Density                 *float64
	Longitudinal            *bool

	// Tags
	ConstructType   *string
	ConstructName   *string
	AgeRange        *string
	ChildAge        *string
	Sample          *string
	ItemFormat      *string
	MeasurementTool *string
	NCategories     *float64
	Variables       *string // pipe-delimited variable names
	Language        *string
	SourceDataset   *string
	HasItemText     bool

	// Bibliography
	Reference *string
	DOI       *string
	URL       *string
	License   *string
	BibTex    *string
}
