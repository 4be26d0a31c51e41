// Package record defines the typed row model for registration datasets.
//
// Rows are fixed-shape structs rather than loose field maps: the required
// columns are validated once at load time, and every later stage operates on
// named fields. Passthrough columns the pipeline does not interpret are kept
// in an ordered side map so they survive to the outputs unchanged.
package record

// Required input columns. An input missing any of these is a structural
// error and the run aborts before any stage executes.
const (
	ColBrandCode        = "BrandCode"
	ColLang             = "Lang"
	ColRegistrationDate = "RegistrationDate"
	ColFirstName        = "FirstName"
	ColLastName         = "LastName"
	ColPhone            = "Phone"
)

// RequiredColumns lists the columns every input must provide, in canonical order.
var RequiredColumns = []string{
	ColBrandCode,
	ColLang,
	ColRegistrationDate,
	ColFirstName,
	ColLastName,
	ColPhone,
}

// Row is one registration record.
//
// Line is the 1-based data row number in the source and serves as the row's
// identity for the conservation invariant: every loaded Line ends up in
// exactly one of the accepted or rejected sets.
//
// RegDate and RegTime are empty until the timeSplit stage runs; after it,
// an empty value means the registration timestamp could not be parsed.
type Row struct {
	Line int

	BrandCode        string
	Lang             string
	RegistrationDate string
	FirstName        string
	LastName         string
	Phone            string

	RegDate string
	RegTime string

	// Extra holds passthrough columns by name. May be nil.
	Extra map[string]string
}

// ExtraValue returns the passthrough column value, or "" if absent.
func (r Row) ExtraValue(name string) string {
	if r.Extra == nil {
		return ""
	}
	return r.Extra[name]
}

// Fields returns a flat field map view of the row, including passthrough
// columns. Used by the predicate stage to evaluate expressions; mutating the
// returned map does not affect the row.
func (r Row) Fields() map[string]interface{} {
	m := map[string]interface{}{
		ColBrandCode:        r.BrandCode,
		ColLang:             r.Lang,
		ColRegistrationDate: r.RegistrationDate,
		ColFirstName:        r.FirstName,
		ColLastName:         r.LastName,
		ColPhone:            r.Phone,
		"RegDate":           r.RegDate,
		"RegTime":           r.RegTime,
	}
	for k, v := range r.Extra {
		m[k] = v
	}
	return m
}

// Dataset is an ordered sequence of rows plus the passthrough column order
// observed in the source header.
type Dataset struct {
	// ExtraHeader lists passthrough column names in source order
	ExtraHeader []string

	// Rows holds the loaded rows in source order
	Rows []Row
}

// Rejection is a row removed by a stage, tagged with the reason at the
// moment of rejection.
type Rejection struct {
	Row    Row
	Reason Reason
}

// Discard records the pruned BrandCode/Lang values for one row. Discards are
// a column side output, not rejected rows, and are excluded from the row
// conservation count.
type Discard struct {
	Line      int
	BrandCode string
	Lang      string
}

// DiscardLog accumulates pruned column values and supports lookup by line,
// so rejected-output rows can be written with their original BrandCode/Lang
// restored.
type DiscardLog struct {
	entries []Discard
	byLine  map[int]Discard
}

// NewDiscardLog creates an empty discard log.
func NewDiscardLog() *DiscardLog {
	return &DiscardLog{byLine: make(map[int]Discard)}
}

// Add appends a discard entry.
func (l *DiscardLog) Add(d Discard) {
	l.entries = append(l.entries, d)
	l.byLine[d.Line] = d
}

// Lookup returns the discard entry for a line, if recorded.
func (l *DiscardLog) Lookup(line int) (Discard, bool) {
	d, ok := l.byLine[line]
	return d, ok
}

// Entries returns all recorded discards in insertion order.
func (l *DiscardLog) Entries() []Discard {
	return l.entries
}

// Len returns the number of recorded discards.
func (l *DiscardLog) Len() int {
	return len(l.entries)
}
