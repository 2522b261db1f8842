package service

import (
	"time"

	"github.com/pkordes/haul-slips/internal/domain"
)

// clockLayout accepts hour:minute on a 24-hour clock, zero-padded or not
// ("7:05", "07:05", "17:5").
const clockLayout = "15:4"

// ValidateSubmission checks a raw submission and, on success, returns the
// normalised slip fields. ID and timestamps are left for the caller to assign.
//
// Required fields are checked first; all missing keys are reported together as a
// *domain.MissingFieldsError. The time window is checked second and fails with
// domain.ErrInvalidTimeOrder. Both times are placed on the same reference day, so
// a shift that crosses midnight is always rejected.
func ValidateSubmission(sub domain.Submission) (domain.Slip, error) {
	var missing []string
	for _, key := range domain.RequiredFields {
		if _, ok := sub.Text(key); !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return domain.Slip{}, &domain.MissingFieldsError{Fields: missing}
	}

	start, _ := sub.Text(domain.FieldStartTime)
	end, _ := sub.Text(domain.FieldEndTime)
	if !validTimeOrder(start, end) {
		return domain.Slip{}, domain.ErrInvalidTimeOrder
	}

	text := func(key string) string {
		v, _ := sub.Text(key)
		return v
	}
	return domain.Slip{
		Date:          text(domain.FieldDate),
		Driver:        text(domain.FieldDriver),
		TruckNumber:   text(domain.FieldTruckNumber),
		Foreman:       text(domain.FieldForeman),
		Job:           text(domain.FieldJob),
		HaulFrom:      text(domain.FieldHaulFrom),
		HaulTo:        text(domain.FieldHaulTo),
		StartTime:     start,
		EndTime:       end,
		Material:      text(domain.FieldMaterial),
		SignatureName: text(domain.FieldSignatureName),
		Notes:         text(domain.FieldNotes),
	}, nil
}

// validTimeOrder reports whether both values parse as clock times and start is
// strictly before end.
func validTimeOrder(start, end string) bool {
	s, err := time.Parse(clockLayout, start)
	if err != nil {
		return false
	}
	e, err := time.Parse(clockLayout, end)
	if err != nil {
		return false
	}
	return s.Before(e)
}
