// internal/wizard/step-completion/handler.go
package stepcompletion

import (
	"bursary-portal/internal/models"
	validatedocuments "bursary-portal/internal/wizard/validate-documents"
	validatefields "bursary-portal/internal/wizard/validate-fields"
	validatesubjects "bursary-portal/internal/wizard/validate-subjects"
)

// Tracker aggregates the field, subject and document validators into one
// error map per step. Every method is a pure function of its Snapshot.
type Tracker struct {
	fields    *validatefields.Validator
	documents *validatedocuments.Validator
}

func NewTracker(fields *validatefields.Validator, documents *validatedocuments.Validator) *Tracker {
	if fields == nil {
		fields = validatefields.NewValidator(nil)
	}
	if documents == nil {
		documents = validatedocuments.NewValidator(nil)
	}
	return &Tracker{fields: fields, documents: documents}
}

func (t *Tracker) check(errs models.FieldErrors, form models.FormData, fields ...models.Field) {
	for _, f := range fields {
		if msg := t.fields.Validate(f, form.Get(f), form); msg != "" {
			errs[string(f)] = msg
		}
	}
}

func (t *Tracker) checkPopulated(errs models.FieldErrors, form models.FormData, fields ...models.Field) {
	for _, f := range fields {
		if form.Has(f) {
			t.check(errs, form, f)
		}
	}
}

func (t *Tracker) ValidatePersonal(s Snapshot) models.FieldErrors {
	errs := models.FieldErrors{}
	t.check(errs, s.FormData, models.PersonalFields...)
	return errs
}

func (t *Tracker) ValidateEducation(s Snapshot) models.FieldErrors {
	form := s.FormData
	errs := models.FieldErrors{}

	t.check(errs, form, educationBaseFields...)
	errs.Merge(validatesubjects.ValidateList(s.Subjects))
	t.check(errs, form, models.FieldCurrentEducationLevel)

	// Enrolled students get the escalated fields as required; anyone else who
	// started the institution block gets it checked as optional. Requiredness
	// itself is resolved by the field validator.
	if form.UniversityEnrolled() || form.Has(models.FieldInstitutionName) {
		t.check(errs, form, higherEdRequired...)
		t.check(errs, form, higherEdOptional...)
	}
	return errs
}

func (t *Tracker) ValidateHousehold(s Snapshot) models.FieldErrors {
	form := s.FormData
	errs := models.FieldErrors{}

	t.check(errs, form, models.FieldNumberOfMembers)
	t.check(errs, form, parent1Required...)
	t.checkPopulated(errs, form, parent1Optional...)

	if form.Has(models.FieldParent2FirstName) || form.Has(models.FieldParent2LastName) {
		t.checkPopulated(errs, form, parent2Fields...)
	}
	return errs
}

func (t *Tracker) ValidateDocuments(s Snapshot) models.FieldErrors {
	errs := models.FieldErrors{}

	for _, d := range models.MandatoryDocuments {
		if msg := t.documents.ValidateDocument(d, s.Documents[d], true); msg != "" {
			errs[string(d)] = msg
		}
	}
	for _, d := range models.OptionalDocuments {
		slot := s.Documents[d]
		if !slot.Uploaded {
			continue
		}
		if msg := t.documents.ValidateDocument(d, slot, false); msg != "" {
			errs[string(d)] = msg
		}
	}
	for i, f := range s.AdditionalDocs {
		if f == nil {
			continue
		}
		if msg := t.documents.ValidateFile(f); msg != "" {
			errs[AdditionalDocKey(i)] = msg
		}
	}
	return errs
}

// ValidateStep runs the aggregation for step.
func (t *Tracker) ValidateStep(step models.Step, s Snapshot) models.FieldErrors {
	switch step {
	case models.StepPersonal:
		return t.ValidatePersonal(s)
	case models.StepEducation:
		return t.ValidateEducation(s)
	case models.StepHousehold:
		return t.ValidateHousehold(s)
	case models.StepDocuments:
		return t.ValidateDocuments(s)
	default:
		return models.FieldErrors{}
	}
}

// ValidateAll returns the error map of every step, in step order.
func (t *Tracker) ValidateAll(s Snapshot) [models.StepCount]models.FieldErrors {
	var out [models.StepCount]models.FieldErrors
	for i := models.StepPersonal; i <= models.StepDocuments; i++ {
		out[i] = t.ValidateStep(i, s)
	}
	return out
}

// Derive recomputes the completion vector from scratch. Nothing is cached.
func (t *Tracker) Derive(s Snapshot) models.Completion {
	var c models.Completion
	for i, errs := range t.ValidateAll(s) {
		c[i] = len(errs) == 0
	}
	return c
}
