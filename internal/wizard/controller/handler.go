// internal/wizard/controller/handler.go
package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"

	apperrors "bursary-portal/internal/common/errors"
	"bursary-portal/internal/common/logger"
	"bursary-portal/internal/common/metrics"
	"bursary-portal/internal/common/observability"
	"bursary-portal/internal/models"
	persistdraft "bursary-portal/internal/wizard/persist-draft"
	stepcompletion "bursary-portal/internal/wizard/step-completion"
	submitapplication "bursary-portal/internal/wizard/submit-application"
	validatedocuments "bursary-portal/internal/wizard/validate-documents"
	validatefields "bursary-portal/internal/wizard/validate-fields"
	validatesubjects "bursary-portal/internal/wizard/validate-subjects"
)

// Dependencies are shared by every wizard of a process.
type Dependencies struct {
	Fields    *validatefields.Validator
	Documents *validatedocuments.Validator
	Tracker   *stepcompletion.Tracker
	Submitter Submitter
	Obs       *observability.Observability
	Logger    logger.Logger
}

func (d *Dependencies) withDefaults() *Dependencies {
	out := *d
	if out.Fields == nil {
		out.Fields = validatefields.NewValidator(nil)
	}
	if out.Documents == nil {
		out.Documents = validatedocuments.NewValidator(nil)
	}
	if out.Tracker == nil {
		out.Tracker = stepcompletion.NewTracker(out.Fields, out.Documents)
	}
	if out.Obs == nil {
		out.Obs = &observability.Observability{}
	}
	if out.Logger == nil {
		out.Logger = logger.NewNoOpLogger()
	}
	return &out
}

// Wizard owns the state of one application session. All methods are safe for
// concurrent use; Submit releases the lock while the request is in flight.
type Wizard struct {
	mu sync.Mutex

	id    string
	deps  *Dependencies
	draft *persistdraft.Adapter
	log   logger.Logger

	form               models.FormData
	subjects           []models.Subject
	subjectErrors      validatesubjects.SubjectErrors
	previousEducations []models.PreviousEducation
	documents          models.Documents
	additionalDocs     []*models.File
	state              models.WizardState
	lastResult         *models.SubmitResult
}

// Open rehydrates a wizard from its draft store. Missing or unreadable drafts
// start from defaults.
func Open(ctx context.Context, sessionID string, store persistdraft.Store, deps *Dependencies) *Wizard {
	deps = deps.withDefaults()
	log := deps.Logger.WithFields(map[string]interface{}{"sessionId": sessionID})

	w := &Wizard{
		id:    sessionID,
		deps:  deps,
		draft: persistdraft.NewAdapter(store, log),
		log:   log,
	}
	w.reset()

	d := w.draft.LoadDraft(ctx)
	w.form = d.FormData
	w.subjects = d.Subjects
	w.state.ActiveStep = d.ActiveStep
	w.recompute()

	log.Debug("wizard opened", map[string]interface{}{"activeStep": int(d.ActiveStep)})
	return w
}

func (w *Wizard) ID() string { return w.id }

// Draft exposes the persistence adapter, for token handling.
func (w *Wizard) Draft() *persistdraft.Adapter { return w.draft }

func (w *Wizard) reset() {
	w.form = models.NewFormData()
	w.subjects = []models.Subject{}
	w.subjectErrors = validatesubjects.SubjectErrors{}
	w.previousEducations = []models.PreviousEducation{{}}
	w.documents = models.NewDocuments()
	w.additionalDocs = nil
	w.state = models.WizardState{
		ActiveStep: models.StepPersonal,
		Errors:     models.FieldErrors{},
		Touched:    models.Touched{},
	}
}

func (w *Wizard) snapshot() stepcompletion.Snapshot {
	return stepcompletion.Snapshot{
		FormData:       w.form,
		Subjects:       w.subjects,
		Documents:      w.documents,
		AdditionalDocs: w.additionalDocs,
	}
}

// recompute must run after every mutation.
func (w *Wizard) recompute() {
	w.state.StepCompletionStatus = w.deps.Tracker.Derive(w.snapshot())
}

// persist is best-effort; the adapter logs and counts failures.
func (w *Wizard) persist(ctx context.Context) {
	_ = w.draft.SaveDraft(ctx, persistdraft.Draft{
		FormData:   w.form,
		ActiveStep: w.state.ActiveStep,
		Subjects:   w.subjects,
	})
}

func (w *Wizard) mutated(ctx context.Context) {
	w.recompute()
	w.persist(ctx)
}

func (w *Wizard) setError(key, msg string) {
	if msg == "" {
		delete(w.state.Errors, key)
		return
	}
	w.state.Errors[key] = msg
}

func (w *Wizard) transition(ctx context.Context, action, outcome string) {
	metrics.WizardStepTransitions.WithLabelValues(action, outcome).Inc()
	w.deps.Obs.RecordStepTransition(ctx, action, outcome)
}

// ==========================
// Field Input
// ==========================

// Change writes value immediately and re-validates only if the field was
// touched before.
func (w *Wizard) Change(ctx context.Context, field models.Field, value string) error {
	if !models.IsFormField(field) {
		return apperrors.NewInvalidInputError(fmt.Sprintf("unknown field %q", field))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.form[field] = value
	if w.state.Touched[string(field)] {
		w.setError(string(field), w.deps.Fields.Validate(field, value, w.form))
	}
	w.mutated(ctx)
	return nil
}

// Blur marks the field touched and validates it.
func (w *Wizard) Blur(_ context.Context, field models.Field) (string, error) {
	if !models.IsFormField(field) {
		return "", apperrors.NewInvalidInputError(fmt.Sprintf("unknown field %q", field))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.state.Touched[string(field)] = true
	msg := w.deps.Fields.Validate(field, w.form[field], w.form)
	w.setError(string(field), msg)
	return msg, nil
}

// ==========================
// Navigation
// ==========================

// Next validates the active step and advances on success. On failure the
// error map is replaced and every erroring key is marked touched.
func (w *Wizard) Next(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	step := w.state.ActiveStep
	errs := w.deps.Tracker.ValidateStep(step, w.snapshot())
	if len(errs) > 0 {
		w.state.Errors = errs
		for k := range errs {
			w.state.Touched[k] = true
		}
		metrics.WizardValidationFailures.WithLabelValues(step.Name()).Inc()
		w.transition(ctx, "next", "blocked")
		return apperrors.NewStepIncompleteError(step.Name(), errs)
	}

	w.state.Errors = models.FieldErrors{}
	w.state.Touched = models.Touched{}
	if step < models.StepDocuments {
		w.state.ActiveStep = step + 1
	}
	w.transition(ctx, "next", "advanced")
	w.mutated(ctx)
	return nil
}

// Back never validates.
func (w *Wizard) Back(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.ActiveStep > models.StepPersonal {
		w.state.ActiveStep--
	}
	w.transition(ctx, "back", "moved")
	w.mutated(ctx)
}

// GoTo moves to target. Backward is always allowed; forward requires every
// earlier step to be complete and otherwise names the first incomplete one.
func (w *Wizard) GoTo(ctx context.Context, target models.Step) error {
	if !target.Valid() {
		return apperrors.NewInvalidInputError(fmt.Sprintf("step %d out of range", int(target)))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if target > w.state.ActiveStep {
		w.recompute()
		if blocked, ok := w.state.StepCompletionStatus.FirstIncomplete(target); ok {
			w.transition(ctx, "goto", "blocked")
			return apperrors.NewStepLockedError(blocked.Name())
		}
	}

	w.state.ActiveStep = target
	w.transition(ctx, "goto", "moved")
	w.mutated(ctx)
	return nil
}

// ==========================
// Subjects
// ==========================

func (w *Wizard) AddSubject(ctx context.Context, subject models.Subject) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkSubject(subject, len(w.subjects)); err != nil {
		return err
	}
	w.subjects = append(w.subjects, subject)
	w.mutated(ctx)
	return nil
}

func (w *Wizard) UpdateSubject(ctx context.Context, index int, subject models.Subject) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if index < 0 || index >= len(w.subjects) {
		return apperrors.NewInvalidInputError(fmt.Sprintf("subject %d does not exist", index))
	}
	if err := w.checkSubject(subject, index); err != nil {
		return err
	}
	w.subjects[index] = subject
	delete(w.state.Errors, validatesubjects.Key(index, "name"))
	delete(w.state.Errors, validatesubjects.Key(index, "grade"))
	w.mutated(ctx)
	return nil
}

func (w *Wizard) DeleteSubject(ctx context.Context, index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if index < 0 || index >= len(w.subjects) {
		return apperrors.NewInvalidInputError(fmt.Sprintf("subject %d does not exist", index))
	}
	w.subjects = append(w.subjects[:index], w.subjects[index+1:]...)
	w.reindexSubjectFeedback()
	w.mutated(ctx)
	return nil
}

// reindexSubjectFeedback drops per-row keys after the rows shift. If any row
// had been touched, the list is revalidated under its new indices.
func (w *Wizard) reindexSubjectFeedback() {
	touched := false
	for k := range w.state.Touched {
		if strings.HasPrefix(k, validatesubjects.ListKey+".") {
			touched = true
			delete(w.state.Touched, k)
		}
	}
	for k := range w.state.Errors {
		if strings.HasPrefix(k, validatesubjects.ListKey+".") {
			delete(w.state.Errors, k)
		}
	}
	if !touched {
		return
	}
	for k, msg := range validatesubjects.ValidateList(w.subjects) {
		w.state.Errors[k] = msg
		w.state.Touched[k] = true
	}
}

// checkSubject validates the sub-form and records its own error state.
func (w *Wizard) checkSubject(subject models.Subject, index int) error {
	errs := validatesubjects.ValidateSubject(subject, index)
	w.subjectErrors = errs
	if errs.Empty() {
		delete(w.state.Errors, validatesubjects.ListKey)
		return nil
	}
	fe := map[string]string{}
	if errs.Name != "" {
		fe["name"] = errs.Name
	}
	if errs.Grade != "" {
		fe["grade"] = errs.Grade
	}
	return apperrors.NewFieldValidationError("Please correct the subject details", fe)
}

// ==========================
// Previous Education
// ==========================

func (w *Wizard) AddPreviousEducation(ctx context.Context) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.previousEducations = append(w.previousEducations, models.PreviousEducation{})
	w.mutated(ctx)
	return len(w.previousEducations) - 1
}

func (w *Wizard) UpdatePreviousEducation(ctx context.Context, index int, entry models.PreviousEducation) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if index < 0 || index >= len(w.previousEducations) {
		return apperrors.NewInvalidInputError(fmt.Sprintf("previous education %d does not exist", index))
	}
	w.previousEducations[index] = entry
	w.mutated(ctx)
	return nil
}

// RemovePreviousEducation never leaves the list empty.
func (w *Wizard) RemovePreviousEducation(ctx context.Context, index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if index < 0 || index >= len(w.previousEducations) {
		return apperrors.NewInvalidInputError(fmt.Sprintf("previous education %d does not exist", index))
	}
	if len(w.previousEducations) == 1 {
		return apperrors.NewInvalidInputError("at least one previous education entry is kept")
	}
	w.previousEducations = append(w.previousEducations[:index], w.previousEducations[index+1:]...)
	w.mutated(ctx)
	return nil
}

// ==========================
// Documents
// ==========================

// AttachDocument validates file first; on failure the slot keeps its
// previous content and the error is recorded under the document key.
func (w *Wizard) AttachDocument(ctx context.Context, docType models.DocumentType, file *models.File) error {
	if !docType.Valid() {
		return apperrors.NewInvalidInputError(fmt.Sprintf("unknown document type %q", docType))
	}
	if file == nil {
		return apperrors.NewInvalidInputError("file is required")
	}
	file = validatedocuments.Prepare(file)

	w.mu.Lock()
	defer w.mu.Unlock()

	key := string(docType)
	w.state.Touched[key] = true
	msg := w.deps.Documents.ValidateDocument(docType, models.DocumentSlot{Uploaded: true, File: file}, false)
	if msg != "" {
		w.state.Errors[key] = msg
		return apperrors.NewFieldValidationError(msg, map[string]string{key: msg})
	}

	w.documents[docType] = models.DocumentSlot{Uploaded: true, File: file}
	delete(w.state.Errors, key)
	w.mutated(ctx)
	return nil
}

func (w *Wizard) DetachDocument(ctx context.Context, docType models.DocumentType) error {
	if !docType.Valid() {
		return apperrors.NewInvalidInputError(fmt.Sprintf("unknown document type %q", docType))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.documents[docType] = models.DocumentSlot{}
	delete(w.state.Errors, string(docType))
	w.mutated(ctx)
	return nil
}

func (w *Wizard) AddAdditionalDocument(ctx context.Context, file *models.File) (int, error) {
	if file == nil {
		return 0, apperrors.NewInvalidInputError("file is required")
	}
	file = validatedocuments.Prepare(file)

	w.mu.Lock()
	defer w.mu.Unlock()

	if msg := w.deps.Documents.ValidateFile(file); msg != "" {
		key := stepcompletion.AdditionalDocKey(len(w.additionalDocs))
		return 0, apperrors.NewFieldValidationError(msg, map[string]string{key: msg})
	}
	w.additionalDocs = append(w.additionalDocs, file)
	w.mutated(ctx)
	return len(w.additionalDocs) - 1, nil
}

func (w *Wizard) RemoveAdditionalDocument(ctx context.Context, index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if index < 0 || index >= len(w.additionalDocs) {
		return apperrors.NewInvalidInputError(fmt.Sprintf("additional document %d does not exist", index))
	}
	w.additionalDocs = append(w.additionalDocs[:index], w.additionalDocs[index+1:]...)
	w.mutated(ctx)
	return nil
}

// ==========================
// Submit and Clear
// ==========================

// Submit validates every step and posts the application. On validation
// failure it jumps to the first failing step. On a failed request all state
// is kept for a manual retry. Once submitted, Submit is refused until Clear.
//
// The request runs detached from ctx: a caller deadline or disconnect cannot
// abort a submission the backend may already be processing.
func (w *Wizard) Submit(ctx context.Context) (*models.SubmitResult, error) {
	w.mu.Lock()
	if w.state.IsSubmitting {
		w.mu.Unlock()
		return nil, apperrors.NewSubmissionInProgressError()
	}
	if w.state.IsSubmitted {
		w.mu.Unlock()
		return nil, apperrors.NewAlreadySubmittedError()
	}

	all := w.deps.Tracker.ValidateAll(w.snapshot())
	merged := models.FieldErrors{}
	firstFailing := models.Step(-1)
	for i, errs := range all {
		if len(errs) > 0 && firstFailing < 0 {
			firstFailing = models.Step(i)
		}
		merged.Merge(errs)
	}

	if firstFailing >= 0 {
		w.state.ActiveStep = firstFailing
		w.state.Errors = merged
		for k := range merged {
			w.state.Touched[k] = true
		}
		w.recompute()
		w.persist(ctx)
		w.mu.Unlock()

		metrics.WizardValidationFailures.WithLabelValues(firstFailing.Name()).Inc()
		w.transition(ctx, "submit", "blocked")
		return nil, apperrors.NewStepIncompleteError(firstFailing.Name(), merged)
	}

	w.state.IsSubmitting = true
	w.state.ActiveStep = models.StepDocuments
	ctx = context.WithoutCancel(ctx)
	payload := w.payload(ctx)
	w.mu.Unlock()

	result, err := w.deps.Submitter.Submit(ctx, payload)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.IsSubmitting = false

	if err != nil {
		w.log.Error("application submission failed", map[string]interface{}{
			"error":     err,
			"errorCode": string(apperrors.Normalize(err).Code),
		})
		w.transition(ctx, "submit", "failed")
		return nil, err
	}

	w.reset()
	w.state.IsSubmitted = true
	w.lastResult = result
	w.recompute()
	_ = w.draft.Purge(ctx)

	w.log.Info("application submitted", map[string]interface{}{"applicationId": result.ID})
	w.transition(ctx, "submit", "submitted")
	return result, nil
}

// payload copies the submission inputs so the lock can be released.
func (w *Wizard) payload(ctx context.Context) *submitapplication.Payload {
	docs := make(models.Documents, len(w.documents))
	for k, v := range w.documents {
		docs[k] = v
	}
	return &submitapplication.Payload{
		FormData:           w.form.Clone(),
		Subjects:           append([]models.Subject(nil), w.subjects...),
		PreviousEducations: append([]models.PreviousEducation(nil), w.previousEducations...),
		Documents:          docs,
		AdditionalDocs:     append([]*models.File(nil), w.additionalDocs...),
		Token:              w.draft.Token(ctx),
	}
}

// Clear purges the draft and resets every field. It requires confirmation.
func (w *Wizard) Clear(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return apperrors.NewConfirmationRequiredError("clear the form")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.IsSubmitting {
		return apperrors.NewSubmissionInProgressError()
	}
	_ = w.draft.Purge(ctx)
	w.reset()
	w.recompute()
	w.log.Info("form cleared", nil)
	return nil
}

// ==========================
// View
// ==========================

func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	docs := make(map[models.DocumentType]DocumentView, len(models.DocumentTypes))
	for _, d := range models.DocumentTypes {
		slot := w.documents[d]
		if slot.Empty() {
			docs[d] = DocumentView{}
			continue
		}
		docs[d] = documentView(slot.File)
	}

	extra := make([]DocumentView, len(w.additionalDocs))
	for i, f := range w.additionalDocs {
		extra[i] = documentView(f)
	}

	state := w.state
	state.Errors = make(models.FieldErrors, len(w.state.Errors))
	state.Errors.Merge(w.state.Errors)
	state.Touched = make(models.Touched, len(w.state.Touched))
	for k, v := range w.state.Touched {
		state.Touched[k] = v
	}

	return View{
		SessionID:          w.id,
		FormData:           w.form.Clone(),
		Subjects:           append([]models.Subject{}, w.subjects...),
		SubjectErrors:      w.subjectErrors,
		PreviousEducations: append([]models.PreviousEducation{}, w.previousEducations...),
		Documents:          docs,
		AdditionalDocs:     extra,
		State:              state,
		StepName:           state.ActiveStep.Name(),
		LastResult:         w.lastResult,
	}
}
