// Package importer reconciles uploaded spreadsheets against the reference
// tables and the person registry.
//
// Every row is validated before anything is written. A single bad row
// rejects the whole file and the import transaction is rolled back, so the
// registry is never left half updated.
package importer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/pkg/errors"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/pkg/errs"
)

type Kind string

const (
	KindDepartments Kind = "dptos"
	KindPersons     Kind = "personas"
)

var headers = map[Kind][]string{
	KindDepartments: {"nombre_dpto"},
	KindPersons:     {"id_persona", "nombre_persona", "sexo", "nombre_dpto", "nombre_tipopersona", "nombre_control"},
}

// ParseKind validates a model name coming from the URL.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := headers[k]; !ok {
		return "", errs.Newf(errs.Validation, "model %q cannot be imported", s)
	}
	return k, nil
}

// Header returns the expected header of kind.
func (k Kind) Header() []string {
	return append([]string(nil), headers[k]...)
}

// RowError is a validation failure tagged with the 1-based row it came from.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) String() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
}

type Report struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Errors  []RowError `json:"errors,omitempty"`
	Empty   bool       `json:"empty"`
}

// Message summarises the report for the client.
func (r Report) Message() string {
	switch {
	case len(r.Errors) > 0:
		return fmt.Sprintf("import rejected: %d errors found, nothing was saved", len(r.Errors))
	case r.Empty:
		return "no data to process"
	}
	return fmt.Sprintf("import completed: %d created, %d updated", r.Created, r.Updated)
}

// Lookup is the reconciliation key space loaded inside the import
// transaction.
type Lookup struct {
	Departments  map[string]int
	PersonTypes  map[string]int
	ControlTypes map[string]int
	Persons      map[string]bool
}

type Tx interface {
	Lookup(ctx context.Context) (Lookup, error)
	CreateDepartments(ctx context.Context, names []string) error
	CreatePersons(ctx context.Context, persons []entity.Person) error
	UpdatePersons(ctx context.Context, persons []entity.Person) error
}

type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Service struct {
	store Store
	log   *log.Logger
}

func NewService(store Store, log *log.Logger) *Service {
	return &Service{store: store, log: log}
}

// errRollback aborts the import transaction without surfacing an error.
var errRollback = errors.New("import rolled back")

// staged holds the writes of a validated file.
type staged struct {
	departments []string
	creates     []entity.Person
	updates     []entity.Person
}

func (s staged) empty() bool {
	return len(s.departments) == 0 && len(s.creates) == 0 && len(s.updates) == 0
}

// Import validates table as kind and commits it when every row is valid.
// A rejected import returns the report together with a validation error
// listing every row error.
func (s *Service) Import(ctx context.Context, kind Kind, table Table) (Report, error) {
	expected, ok := headers[kind]
	if !ok {
		return Report{}, errs.Newf(errs.Validation, "model %q cannot be imported", kind)
	}
	if !sameHeader(table.Header, expected) {
		return Report{}, errs.Newf(errs.Validation, "the file header is incorrect, it should be: %s", strings.Join(expected, ", "))
	}

	return s.reconcile(ctx, func(lookup Lookup) (staged, []RowError, error) {
		if kind == KindDepartments {
			out, rowErrs := stageDepartments(lookup, table.Rows)
			return out, rowErrs, nil
		}
		out, rowErrs := stagePersons(lookup, table.Rows)
		return out, rowErrs, nil
	})
}

// reconcile runs stage inside one transaction and commits its output only
// when no row failed.
func (s *Service) reconcile(ctx context.Context, stage func(Lookup) (staged, []RowError, error)) (Report, error) {
	var report Report

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		lookup, err := tx.Lookup(ctx)
		if err != nil {
			return errors.Wrap(err, "loading lookup tables")
		}

		out, rowErrs, err := stage(lookup)
		if err != nil {
			return err
		}
		if len(rowErrs) > 0 {
			report.Errors = rowErrs
			return errRollback
		}
		if out.empty() {
			report.Empty = true
			return errRollback
		}

		if len(out.departments) > 0 {
			if err := tx.CreateDepartments(ctx, out.departments); err != nil {
				return errors.Wrap(err, "creating departments")
			}
		}
		if len(out.creates) > 0 {
			if err := tx.CreatePersons(ctx, out.creates); err != nil {
				return errors.Wrap(err, "creating persons")
			}
		}
		if len(out.updates) > 0 {
			if err := tx.UpdatePersons(ctx, out.updates); err != nil {
				return errors.Wrap(err, "updating persons")
			}
		}

		report.Created = len(out.departments) + len(out.creates)
		report.Updated = len(out.updates)
		return nil
	})

	switch {
	case errors.Is(err, errRollback):
		if len(report.Errors) > 0 {
			lines := make([]string, 0, len(report.Errors))
			for _, e := range report.Errors {
				lines = append(lines, e.String())
			}
			return report, errs.WithFields(report.Message(), lines)
		}
		return report, nil
	case err != nil:
		if s.log != nil && errs.KindOf(err) == 0 {
			s.log.Printf("import: %v", err)
		}
		return Report{}, err
	}

	return report, nil
}

func stageDepartments(lookup Lookup, rows []Row) (staged, []RowError) {
	var (
		out     staged
		rowErrs []RowError
		seen    = make(map[string]bool, len(lookup.Departments)+len(rows))
	)
	for name := range lookup.Departments {
		seen[name] = true
	}

	for _, row := range rows {
		if len(row.Cells) != 1 || strings.TrimSpace(row.Cells[0]) == "" {
			rowErrs = append(rowErrs, RowError{row.Line, "wrong format or empty department name"})
			continue
		}

		name := strings.TrimSpace(row.Cells[0])
		if seen[name] {
			rowErrs = append(rowErrs, RowError{row.Line, fmt.Sprintf("department %q already exists", name)})
			continue
		}

		seen[name] = true
		out.departments = append(out.departments, name)
	}

	return out, rowErrs
}

func stagePersons(lookup Lookup, rows []Row) (staged, []RowError) {
	var (
		out     staged
		rowErrs []RowError
		inFile  = make(map[string]bool, len(rows))
	)

	for _, row := range rows {
		if len(row.Cells) != len(headers[KindPersons]) {
			rowErrs = append(rowErrs, RowError{row.Line, fmt.Sprintf("the row must have 6 columns but has %d", len(row.Cells))})
			continue
		}

		f := trimAll(row.Cells)
		code, name, sexRaw, dpto, personType, control := f[0], f[1], f[2], f[3], f[4], f[5]

		var problems []string
		for _, v := range f {
			if v == "" {
				problems = append(problems, "all fields are required")
				break
			}
		}
		if code != "" && inFile[code] {
			problems = append(problems, "is duplicated within the same file")
		}
		sex, ok := entity.NormalizeSex(sexRaw)
		if !ok {
			problems = append(problems, fmt.Sprintf("sex (%q) must be 'M' or 'F'", sexRaw))
		}
		dptoID, ok := lookup.Departments[dpto]
		if !ok {
			problems = append(problems, fmt.Sprintf("department %q is not valid", dpto))
		}
		personTypeID, ok := lookup.PersonTypes[personType]
		if !ok {
			problems = append(problems, fmt.Sprintf("person type %q is not valid", personType))
		}
		controlID, ok := lookup.ControlTypes[control]
		if !ok {
			problems = append(problems, fmt.Sprintf("control type %q is not valid", control))
		}

		if len(problems) > 0 {
			for _, p := range problems {
				rowErrs = append(rowErrs, RowError{row.Line, fmt.Sprintf("ID %q: %s", code, p)})
			}
			continue
		}
		inFile[code] = true

		p := entity.Person{
			ID:            code,
			FullName:      name,
			Sex:           sex,
			DepartmentID:  dptoID,
			PersonTypeID:  personTypeID,
			ControlTypeID: controlID,
		}
		if lookup.Persons[code] {
			out.updates = append(out.updates, p)
		} else {
			out.creates = append(out.creates, p)
		}
	}

	return out, rowErrs
}

func sameHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if strings.TrimSpace(got[i]) != want[i] {
			return false
		}
	}
	return true
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
