package repository

import (
	"fmt"
	"strings"
)

// studentColumns is the one projection every student read returns: the
// children columns plus the primary therapist join. Dates come back as ISO
// calendar strings.
const studentColumns = `c.id, c.first_name, c.last_name,
        to_char(c.date_of_birth, 'YYYY-MM-DD') AS date_of_birth,
        to_char(c.enrollment_date, 'YYYY-MM-DD') AS enrollment_date,
        c.diagnosis, c.status, c.primary_therapist_id, c.profile_details,
        c.medical_diagnosis, c.assessment_details, c.drive_url, c.prior_diagnosis,
        t.id AS therapist_id, t.first_name AS therapist_first_name, t.last_name AS therapist_last_name, t.email AS therapist_email`

const therapistJoin = "LEFT JOIN therapists t ON t.id = c.primary_therapist_id"

// studentPredicate is an equality filter on a children column.
type studentPredicate struct {
	column string
	value  interface{}
}

func eq(column string, value interface{}) studentPredicate {
	return studentPredicate{column: column, value: value}
}

// buildStudentQuery selects the canonical projection from source (aliased c),
// AND-ing the predicates with positional placeholders.
func buildStudentQuery(source string, predicates ...studentPredicate) (string, []interface{}) {
	query := fmt.Sprintf("SELECT %s\n        FROM %s %s", studentColumns, source, therapistJoin)
	if len(predicates) == 0 {
		return query, nil
	}
	conditions := make([]string, 0, len(predicates))
	args := make([]interface{}, 0, len(predicates))
	for _, p := range predicates {
		args = append(args, p.value)
		conditions = append(conditions, fmt.Sprintf("c.%s = $%d", p.column, len(args)))
	}
	return fmt.Sprintf("%s WHERE %s", query, strings.Join(conditions, " AND ")), args
}
