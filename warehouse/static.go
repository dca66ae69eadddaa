package warehouse

import (
	"context"
	"strings"

	"github.com/datapages/irw-go/errors"
	"github.com/datapages/irw-go/frame"
)

// StaticSource is an in-memory Source. It backs tests and offline use, and
// records call counts so caching behavior is observable.
type StaticSource struct {
	id      string
	name    string
	version string

	order  []string
	tables map[string]*frame.Frame
	props  Properties

	listErr   error
	tableErrs map[string]error

	// Call counters, exported for cache tests.
	ListCalls int
	GetCalls  int
}

// NewStaticSource creates an empty static source.
func NewStaticSource(id, name, version string) *StaticSource {
	return &StaticSource{
		id:        id,
		name:      name,
		version:   version,
		tables:    map[string]*frame.Frame{},
		tableErrs: map[string]error{},
	}
}

// AddTable registers a table. Insertion order is the enumeration order.
func (s *StaticSource) AddTable(name string, f *frame.Frame) *StaticSource {
	if _, ok := s.tables[name]; !ok {
		s.order = append(s.order, name)
	}
	s.tables[name] = f
	return s
}

// SetVersion changes the advertised version tag.
func (s *StaticSource) SetVersion(tag string) {
	s.version = tag
}

// SetProperties sets the collection-level properties.
func (s *StaticSource) SetProperties(p Properties) {
	s.props = p
}

// FailList makes ListTables return err.
func (s *StaticSource) FailList(err error) {
	s.listErr = err
}

// FailTable makes GetTable return err for one table name.
func (s *StaticSource) FailTable(name string, err error) {
	s.tableErrs[name] = err
}

func (s *StaticSource) ID() string         { return s.id }
func (s *StaticSource) Name() string       { return s.name }
func (s *StaticSource) VersionTag() string { return s.version }

func (s *StaticSource) ListTables(ctx context.Context) ([]TableProps, error) {
	s.ListCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]TableProps, 0, len(s.order))
	for _, name := range s.order {
		f := s.tables[name]
		rows := int64(f.NumRows())
		cols := int64(f.NumCols())
		out = append(out, TableProps{Name: name, NumRows: &rows, VariableCount: &cols})
	}
	return out, nil
}

func (s *StaticSource) GetTable(ctx context.Context, name string) (*frame.Frame, error) {
	s.GetCalls++
	if err, ok := s.tableErrs[name]; ok {
		return nil, err
	}
	if f, ok := s.tables[name]; ok {
		return f, nil
	}
	// Source table names are case-insensitive identities
	for stored, f := range s.tables {
		if strings.EqualFold(stored, name) {
			return f, nil
		}
	}
	return nil, errors.NewNotFound("table %q not in source %q", name, s.name)
}

func (s *StaticSource) Properties(ctx context.Context) (Properties, error) {
	p := s.props
	if p.TableCount == 0 {
		p.TableCount = len(s.tables)
	}
	return p, nil
}
