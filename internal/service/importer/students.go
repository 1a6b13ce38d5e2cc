package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/pkg/errs"
)

// Student spreadsheet columns: seccion, nombre, grupos, id_persona, sexo.
const studentColumns = 5

const (
	markerMale         = "MASCULINO"
	markerRegularLunch = "ALMUERZO NORMAL"
	markerSpecialLunch = "ALMUERZO ESPECIAL"
)

// ImportStudents loads the school's student export. Every student is
// upserted by code with the Estudiante person type; the section resolves the
// department and the groups text decides the control type.
func (s *Service) ImportStudents(ctx context.Context, table Table) (Report, error) {
	return s.reconcile(ctx, func(lookup Lookup) (staged, []RowError, error) {
		return stageStudents(lookup, table.Rows)
	})
}

func stageStudents(lookup Lookup, rows []Row) (staged, []RowError, error) {
	studentType, ok := lookup.PersonTypes[entity.PersonTypeStudent]
	_, okRegular := lookup.ControlTypes[entity.ControlRegular]
	_, okSpecial := lookup.ControlTypes[entity.ControlSpecialDiet]
	_, okNone := lookup.ControlTypes[entity.ControlNotApplicable]
	if !ok || !okRegular || !okSpecial || !okNone {
		return staged{}, nil, errs.Newf(errs.Validation,
			"make sure the person type %q and the control types %q, %q and %q exist",
			entity.PersonTypeStudent, entity.ControlRegular, entity.ControlSpecialDiet, entity.ControlNotApplicable,
		)
	}

	var (
		out     staged
		rowErrs []RowError
		// code -> index into out.updates or out.creates; a later row for
		// the same student replaces the staged one.
		inFile = make(map[string]int, len(rows))
	)

	for _, row := range rows {
		if blank(row.Cells) {
			continue
		}

		cells := make([]string, studentColumns)
		copy(cells, trimAll(row.Cells))
		section, rawName, groups, code, sexText := cells[0], cells[1], cells[2], cells[3], cells[4]

		if code == "" || rawName == "" {
			rowErrs = append(rowErrs, RowError{row.Line, "the student code or name is missing"})
			continue
		}
		dptoID, ok := lookup.Departments[section]
		if !ok {
			rowErrs = append(rowErrs, RowError{row.Line, fmt.Sprintf("ID %q: department %q does not exist or is empty", code, section)})
			continue
		}

		p := entity.Person{
			ID:            code,
			FullName:      StudentName(rawName),
			Sex:           StudentSex(sexText),
			DepartmentID:  dptoID,
			PersonTypeID:  studentType,
			ControlTypeID: lookup.ControlTypes[StudentControlType(groups)],
		}
		i, seen := inFile[code]
		switch {
		case seen && lookup.Persons[code]:
			out.updates[i] = p
		case seen:
			out.creates[i] = p
		case lookup.Persons[code]:
			inFile[code] = len(out.updates)
			out.updates = append(out.updates, p)
		default:
			inFile[code] = len(out.creates)
			out.creates = append(out.creates, p)
		}
	}

	return out, rowErrs, nil
}

// StudentName turns "Last, First" into "First Last". Anything that does not
// split into two non-empty halves is returned trimmed.
func StudentName(raw string) string {
	raw = strings.TrimSpace(raw)

	last, first, ok := strings.Cut(raw, ",")
	last, first = strings.TrimSpace(last), strings.TrimSpace(first)
	if !ok || last == "" || first == "" {
		return raw
	}

	return first + " " + last
}

// StudentSex is M when the text mentions MASCULINO, F otherwise.
func StudentSex(text string) string {
	if strings.Contains(strings.ToUpper(text), markerMale) {
		return "M"
	}
	return "F"
}

// StudentControlType maps the groups text onto a control type name.
func StudentControlType(groups string) string {
	groups = strings.ToUpper(groups)
	switch {
	case strings.Contains(groups, markerRegularLunch):
		return entity.ControlRegular
	case strings.Contains(groups, markerSpecialLunch):
		return entity.ControlSpecialDiet
	}
	return entity.ControlNotApplicable
}

// ReadStudents decodes the student export. Its first row is a header and is
// not checked.
func ReadStudents(filename string, r io.Reader) (Table, error) {
	table, err := Read(filename, KindPersons, r)
	if err != nil {
		return Table{}, err
	}
	if len(table.Header) == 0 {
		return Table{}, errs.New(errs.Validation, "the file is empty")
	}
	return table, nil
}
