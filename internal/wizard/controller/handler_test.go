// internal/wizard/controller/handler_test.go
package controller

import (
	"context"
	"errors"
	"sync"
	"testing"

	apperrors "bursary-portal/internal/common/errors"
	"bursary-portal/internal/common/logger"
	"bursary-portal/internal/models"
	persistdraft "bursary-portal/internal/wizard/persist-draft"
	submitapplication "bursary-portal/internal/wizard/submit-application"
	validatefields "bursary-portal/internal/wizard/validate-fields"
	validatesubjects "bursary-portal/internal/wizard/validate-subjects"
	"bursary-portal/internal/wizard/wizardtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeSubmitter struct {
	mu       sync.Mutex
	calls    int
	payloads []*submitapplication.Payload
	result   *models.SubmitResult
	err      error
	gate     chan struct{}
	entered  chan struct{}
	ctxErrs  []error
}

func (f *fakeSubmitter) Submit(ctx context.Context, p *submitapplication.Payload) (*models.SubmitResult, error) {
	f.mu.Lock()
	f.calls++
	f.payloads = append(f.payloads, p)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func createTestDeps(t *testing.T, sub Submitter) *Dependencies {
	return &Dependencies{
		Fields:    validatefields.NewValidator(&validatefields.Config{Now: wizardtest.Clock}),
		Submitter: sub,
		Logger:    logger.NewTestLogger(t),
	}
}

func openTestWizard(t *testing.T, sub Submitter) (*Wizard, persistdraft.Store) {
	store := persistdraft.NewMemoryStore()
	w := Open(context.Background(), "test-session", store, createTestDeps(t, sub))
	require.NoError(t, w.Draft().SetToken(context.Background(), "jwt-abc"))
	return w, store
}

func fill(t *testing.T, w *Wizard, form models.FormData) {
	for _, f := range models.FormFields {
		if v := form.Get(f); v != "" {
			require.NoError(t, w.Change(context.Background(), f, v))
		}
	}
}

// readyToSubmit walks the wizard to the documents step with everything valid.
func readyToSubmit(t *testing.T, w *Wizard) {
	ctx := context.Background()
	fill(t, w, wizardtest.ValidForm())
	require.NoError(t, w.AddSubject(ctx, models.Subject{Name: "Mathematics", Grade: "85"}))
	require.NoError(t, w.Next(ctx))
	require.NoError(t, w.Next(ctx))
	require.NoError(t, w.Next(ctx))
	for _, d := range models.MandatoryDocuments {
		require.NoError(t, w.AttachDocument(ctx, d, wizardtest.PDF(string(d)+".pdf", 2048)))
	}
}

// ==========================
// Field Input
// ==========================

func TestWizard_ChangeUnknownField(t *testing.T) {
	w, _ := openTestWizard(t, &fakeSubmitter{})
	err := w.Change(context.Background(), models.Field("favouriteColour"), "blue")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
}

func TestWizard_ChangeValidatesOnlyTouchedFields(t *testing.T) {
	ctx := context.Background()
	w, _ := openTestWizard(t, &fakeSubmitter{})

	require.NoError(t, w.Change(ctx, models.FieldEmail, "not-an-email"))
	assert.Empty(t, w.View().State.Errors)

	msg, err := w.Blur(ctx, models.FieldEmail)
	require.NoError(t, err)
	assert.Equal(t, "Please enter a valid email address", msg)
	assert.True(t, w.View().State.Touched[string(models.FieldEmail)])

	require.NoError(t, w.Change(ctx, models.FieldEmail, "thandi@example.com"))
	_, present := w.View().State.Errors[string(models.FieldEmail)]
	assert.False(t, present)
}

// ==========================
// Navigation
// ==========================

func TestWizard_NextBlockedMarksErrorsTouched(t *testing.T) {
	w, _ := openTestWizard(t, &fakeSubmitter{})

	err := w.Next(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStepIncomplete))

	v := w.View()
	assert.Equal(t, models.StepPersonal, v.State.ActiveStep)
	assert.Contains(t, v.State.Errors, string(models.FieldFirstName))
	for k := range v.State.Errors {
		assert.True(t, v.State.Touched[k], k)
	}
}

func TestWizard_NextAdvancesAndClearsFeedback(t *testing.T) {
	ctx := context.Background()
	w, _ := openTestWizard(t, &fakeSubmitter{})

	fill(t, w, wizardtest.PersonalForm())
	_, _ = w.Blur(ctx, models.FieldFirstName)
	require.NoError(t, w.Next(ctx))

	v := w.View()
	assert.Equal(t, models.StepEducation, v.State.ActiveStep)
	assert.Equal(t, "Education", v.StepName)
	assert.Empty(t, v.State.Errors)
	assert.Empty(t, v.State.Touched)
	assert.True(t, v.State.StepCompletionStatus[models.StepPersonal])
}

func TestWizard_BackNeverValidates(t *testing.T) {
	ctx := context.Background()
	w, _ := openTestWizard(t, &fakeSubmitter{})

	w.Back(ctx)
	assert.Equal(t, models.StepPersonal, w.View().State.ActiveStep)

	fill(t, w, wizardtest.PersonalForm())
	require.NoError(t, w.Next(ctx))
	require.NoError(t, w.Change(ctx, models.FieldFirstName, ""))
	w.Back(ctx)
	assert.Equal(t, models.StepPersonal, w.View().State.ActiveStep)
}

func TestWizard_GoToForwardBlocked(t *testing.T) {
	ctx := context.Background()
	w, _ := openTestWizard(t, &fakeSubmitter{})
	require.NoError(t, w.Change(ctx, models.FieldFirstName, "Thandiwe"))
	before := w.View().FormData

	err := w.GoTo(ctx, models.StepDocuments)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStepLocked))
	assert.Equal(t, "Please complete the Personal Information step first", apperrors.UserMessage(err))

	v := w.View()
	assert.Equal(t, models.StepPersonal, v.State.ActiveStep)
	assert.Equal(t, before, v.FormData)
}

func TestWizard_GoToNamesFirstIncompleteStep(t *testing.T) {
	ctx := context.Background()
	w, _ := openTestWizard(t, &fakeSubmitter{})
	fill(t, w, wizardtest.PersonalForm())

	err := w.GoTo(ctx, models.StepHousehold)
	assert.Equal(t, "Please complete the Education step first", apperrors.UserMessage(err))

	require.NoError(t, w.GoTo(ctx, models.StepEducation))
	assert.Equal(t, models.StepEducation, w.View().State.ActiveStep)
}

func TestWizard_GoToBackwardAlwaysAllowed(t *testing.T) {
	ctx := context.Background()
	w, _ := openTestWizard(t, &fakeSubmitter{})
	fill(t, w, wizardtest.PersonalForm())
	require.NoError(t, w.Next(ctx))
	require.NoError(t, w.Change(ctx, models.FieldFirstName, ""))

	require.NoError(t, w.GoTo(ctx, models.StepPersonal))
	assert.Equal(t, models.StepPersonal, w.View().State.ActiveStep)

	err := w.GoTo(ctx, models.Step(7))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
}

// ==========================
// Subjects and Previous Education
// ==========================

func TestWizard_Subjects(t *testing.T) {
	ctx := context.Background()
	w, _ := openTestWizard(t, &fakeSubmitter{})

	err := w.AddSubject(ctx, models.Subject{Name: "M", Grade: "120"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeFieldValidationFailed))
	v := w.View()
	assert.Empty(t, v.Subjects)
	assert.NotEmpty(t, v.SubjectErrors.Name)
	assert.Equal(t, "Grade must be a number between 0 and 100", v.SubjectErrors.Grade)

	require.NoError(t, w.AddSubject(ctx, models.Subject{Name: "Mathematics", Grade: "85"}))
	require.NoError(t, w.AddSubject(ctx, models.Subject{Name: "Life Sciences", Grade: "72.5"}))
	require.NoError(t, w.UpdateSubject(ctx, 1, models.Subject{Name: "Physical Sciences", Grade: "70"}))
	require.NoError(t, w.DeleteSubject(ctx, 0))

	v = w.View()
	assert.Equal(t, []models.Subject{{Name: "Physical Sciences", Grade: "70"}}, v.Subjects)
	assert.True(t, v.SubjectErrors.Empty())

	assert.True(t, apperrors.IsCode(w.DeleteSubject(ctx, 5), apperrors.ErrCodeInvalidInput))
}

func TestWizard_DeleteSubjectReindexesFeedback(t *testing.T) {
	ctx := context.Background()
	store := persistdraft.NewMemoryStore()
	require.NoError(t, persistdraft.NewAdapter(store, nil).SaveDraft(ctx, persistdraft.Draft{
		FormData:   wizardtest.PersonalForm(),
		ActiveStep: models.StepEducation,
		Subjects: []models.Subject{
			{Name: "Physics", Grade: "90"},
			{Name: "X", Grade: "85"},
			{Name: "Y", Grade: "70"},
		},
	}))
	w := Open(ctx, "test-session", store, createTestDeps(t, &fakeSubmitter{}))
	fill(t, w, wizardtest.ValidForm())

	require.Error(t, w.Next(ctx))
	v := w.View()
	assert.Contains(t, v.State.Errors, validatesubjects.Key(1, "name"))
	assert.Contains(t, v.State.Errors, validatesubjects.Key(2, "name"))

	// X moves out, Y shifts from row 2 to row 1
	require.NoError(t, w.DeleteSubject(ctx, 1))
	v = w.View()
	assert.Equal(t, "Subject name must be at least 2 characters", v.State.Errors[validatesubjects.Key(1, "name")])
	assert.True(t, v.State.Touched[validatesubjects.Key(1, "name")])
	assert.NotContains(t, v.State.Errors, validatesubjects.Key(2, "name"))
	assert.NotContains(t, v.State.Touched, validatesubjects.Key(2, "name"))

	require.NoError(t, w.DeleteSubject(ctx, 1))
	v = w.View()
	assert.Equal(t, []models.Subject{{Name: "Physics", Grade: "90"}}, v.Subjects)
	for k := range v.State.Errors {
		assert.NotContains(t, k, validatesubjects.ListKey, "stale subject feedback %s", k)
	}
	assert.True(t, v.State.StepCompletionStatus[models.StepEducation])
}

func TestWizard_DeleteUntouchedSubjectAddsNoFeedback(t *testing.T) {
	ctx := context.Background()
	w, _ := openTestWizard(t, &fakeSubmitter{})
	require.NoError(t, w.AddSubject(ctx, models.Subject{Name: "Mathematics", Grade: "85"}))
	require.NoError(t, w.AddSubject(ctx, models.Subject{Name: "History", Grade: "60"}))

	require.NoError(t, w.DeleteSubject(ctx, 0))
	require.NoError(t, w.DeleteSubject(ctx, 0))
	assert.NotContains(t, w.View().State.Errors, validatesubjects.ListKey)
}

func TestWizard_PreviousEducationKeepsOneEntry(t *testing.T) {
	ctx := context.Background()
	w, _ := openTestWizard(t, &fakeSubmitter{})
	require.Len(t, w.View().PreviousEducations, 1)

	err := w.RemovePreviousEducation(ctx, 0)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))

	idx := w.AddPreviousEducation(ctx)
	assert.Equal(t, 1, idx)
	require.NoError(t, w.UpdatePreviousEducation(ctx, 1, models.PreviousEducation{InstitutionName: "UJ"}))
	require.NoError(t, w.RemovePreviousEducation(ctx, 0))

	v := w.View()
	require.Len(t, v.PreviousEducations, 1)
	assert.Equal(t, "UJ", v.PreviousEducations[0].InstitutionName)
}

// ==========================
// Documents
// ==========================

func TestWizard_AttachOversizedDocument(t *testing.T) {
	w, _ := openTestWizard(t, &fakeSubmitter{})

	err := w.AttachDocument(context.Background(), models.DocTranscript, wizardtest.PDF("big.pdf", 12<<20))
	require.Error(t, err)

	v := w.View()
	assert.False(t, v.Documents[models.DocTranscript].Uploaded)
	assert.Equal(t, "File size must be less than 10MB", v.State.Errors[string(models.DocTranscript)])
}

func TestWizard_AttachAndDetachDocument(t *testing.T) {
	ctx := context.Background()
	w, _ := openTestWizard(t, &fakeSubmitter{})

	file := &models.File{Name: "id.png", Data: wizardtest.PNG("id.png").Data}
	require.NoError(t, w.AttachDocument(ctx, models.DocNationalIDCard, file))
	doc := w.View().Documents[models.DocNationalIDCard]
	assert.True(t, doc.Uploaded)
	assert.Equal(t, "image/png", doc.ContentType)

	err := w.AttachDocument(ctx, models.DocNationalIDCard, &models.File{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hi")})
	require.Error(t, err)
	assert.Equal(t, "id.png", w.View().Documents[models.DocNationalIDCard].Name)

	require.NoError(t, w.DetachDocument(ctx, models.DocNationalIDCard))
	assert.False(t, w.View().Documents[models.DocNationalIDCard].Uploaded)

	assert.True(t, apperrors.IsCode(w.AttachDocument(ctx, "passport", file), apperrors.ErrCodeInvalidInput))
}

func TestWizard_AdditionalDocuments(t *testing.T) {
	ctx := context.Background()
	w, _ := openTestWizard(t, &fakeSubmitter{})

	i, err := w.AddAdditionalDocument(ctx, wizardtest.PDF("extra.pdf", 100))
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	_, err = w.AddAdditionalDocument(ctx, wizardtest.PDF("huge.pdf", 11<<20))
	require.Error(t, err)
	assert.Len(t, w.View().AdditionalDocs, 1)

	require.NoError(t, w.RemoveAdditionalDocument(ctx, 0))
	assert.Empty(t, w.View().AdditionalDocs)
	assert.Error(t, w.RemoveAdditionalDocument(ctx, 0))
}

// ==========================
// Persistence
// ==========================

func TestWizard_RehydratesDraft(t *testing.T) {
	ctx := context.Background()
	w, store := openTestWizard(t, &fakeSubmitter{})

	fill(t, w, wizardtest.PersonalForm())
	require.NoError(t, w.AddSubject(ctx, models.Subject{Name: "History", Grade: "64"}))
	require.NoError(t, w.Next(ctx))
	require.NoError(t, w.AttachDocument(ctx, models.DocTranscript, wizardtest.PDF("t.pdf", 100)))

	again := Open(ctx, "test-session", store, createTestDeps(t, &fakeSubmitter{}))
	v := again.View()
	assert.Equal(t, "Thandiwe", v.FormData.Get(models.FieldFirstName))
	assert.Equal(t, models.StepEducation, v.State.ActiveStep)
	assert.Equal(t, []models.Subject{{Name: "History", Grade: "64"}}, v.Subjects)
	assert.True(t, v.State.StepCompletionStatus[models.StepPersonal])
	// documents are not persisted
	assert.False(t, v.Documents[models.DocTranscript].Uploaded)
}

// ==========================
// Submit
// ==========================

func TestWizard_SubmitHappyPath(t *testing.T) {
	ctx := context.Background()
	sub := &fakeSubmitter{result: &models.SubmitResult{ID: "app-1", Message: "Application created"}}
	w, store := openTestWizard(t, sub)
	readyToSubmit(t, w)

	result, err := w.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "app-1", result.ID)

	require.Len(t, sub.payloads, 1)
	p := sub.payloads[0]
	assert.Equal(t, "jwt-abc", p.Token)
	assert.Equal(t, "Mokoena", p.FormData.Get(models.FieldLastName))
	assert.Len(t, p.Subjects, 1)
	assert.Len(t, p.PreviousEducations, 1)

	v := w.View()
	assert.True(t, v.State.IsSubmitted)
	assert.False(t, v.State.IsSubmitting)
	assert.Equal(t, models.StepPersonal, v.State.ActiveStep)
	assert.Equal(t, "", v.FormData.Get(models.FieldFirstName))
	assert.Equal(t, "app-1", v.LastResult.ID)

	raw, err := persistdraft.NewAdapter(store, nil).Raw(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{persistdraft.KeyToken: "jwt-abc"}, raw)
}

func TestWizard_SubmitJumpsToFirstFailingStep(t *testing.T) {
	ctx := context.Background()
	sub := &fakeSubmitter{}
	w, _ := openTestWizard(t, sub)
	fill(t, w, wizardtest.ValidForm())

	_, err := w.Submit(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStepIncomplete))
	assert.Equal(t, "Please complete the Education step before continuing", apperrors.UserMessage(err))

	v := w.View()
	assert.Equal(t, models.StepEducation, v.State.ActiveStep)
	assert.Equal(t, "At least one subject is required", v.State.Errors["subjects"])
	assert.Contains(t, v.State.Errors, string(models.DocTranscript))
	assert.Zero(t, sub.calls)
}

func TestWizard_SubmitFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	sub := &fakeSubmitter{err: apperrors.NewSubmissionFailedError("Application already exists", 400)}
	w, _ := openTestWizard(t, sub)
	readyToSubmit(t, w)

	_, err := w.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, "Application already exists", apperrors.UserMessage(err))

	v := w.View()
	assert.False(t, v.State.IsSubmitting)
	assert.False(t, v.State.IsSubmitted)
	assert.Equal(t, models.StepDocuments, v.State.ActiveStep)
	assert.Equal(t, "Thandiwe", v.FormData.Get(models.FieldFirstName))
	assert.True(t, v.Documents[models.DocTranscript].Uploaded)

	sub.err = nil
	sub.result = &models.SubmitResult{ID: "app-2"}
	_, err = w.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sub.calls)
}

func TestWizard_SubmitRejectsConcurrentSubmission(t *testing.T) {
	ctx := context.Background()
	sub := &fakeSubmitter{
		result:  &models.SubmitResult{ID: "app-3"},
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	w, _ := openTestWizard(t, sub)
	readyToSubmit(t, w)

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(ctx)
		done <- err
	}()
	<-sub.entered

	assert.True(t, w.View().State.IsSubmitting)
	_, err := w.Submit(ctx)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSubmissionInProgress))
	assert.True(t, apperrors.IsCode(w.Clear(ctx, true), apperrors.ErrCodeSubmissionInProgress))

	close(sub.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, sub.calls)
}

func TestWizard_SubmitSurvivesCallerCancellation(t *testing.T) {
	sub := &fakeSubmitter{result: &models.SubmitResult{ID: "app-4"}}
	w, _ := openTestWizard(t, sub)
	readyToSubmit(t, w)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := w.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "app-4", result.ID)
	require.Len(t, sub.ctxErrs, 1)
	assert.NoError(t, sub.ctxErrs[0])
}

func TestWizard_SubmitRefusedOnceSubmitted(t *testing.T) {
	ctx := context.Background()
	sub := &fakeSubmitter{result: &models.SubmitResult{ID: "app-5"}}
	w, _ := openTestWizard(t, sub)
	readyToSubmit(t, w)

	_, err := w.Submit(ctx)
	require.NoError(t, err)

	_, err = w.Submit(ctx)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeAlreadySubmitted))
	assert.Equal(t, 1, sub.calls)

	require.NoError(t, w.Clear(ctx, true))
	assert.False(t, w.View().State.IsSubmitted)
	readyToSubmit(t, w)
	_, err = w.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sub.calls)
}

func TestWizard_SubmitPropagatesNetworkError(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("dial tcp: connection refused")}
	w, _ := openTestWizard(t, sub)
	readyToSubmit(t, w)

	_, err := w.Submit(context.Background())
	require.Error(t, err)
	assert.False(t, w.View().State.IsSubmitting)
}

// ==========================
// Clear
// ==========================

func TestWizard_ClearRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	w, store := openTestWizard(t, &fakeSubmitter{})
	fill(t, w, wizardtest.PersonalForm())

	err := w.Clear(ctx, false)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfirmationRequired))
	assert.Equal(t, "Thandiwe", w.View().FormData.Get(models.FieldFirstName))

	require.NoError(t, w.Clear(ctx, true))
	v := w.View()
	assert.Equal(t, "", v.FormData.Get(models.FieldFirstName))
	assert.Equal(t, models.StepPersonal, v.State.ActiveStep)
	assert.Len(t, v.PreviousEducations, 1)

	a := persistdraft.NewAdapter(store, nil)
	raw, err := a.Raw(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{persistdraft.KeyToken: "jwt-abc"}, raw)
}

// ==========================
// Manager
// ==========================

func TestManager_Sessions(t *testing.T) {
	ctx := context.Background()
	backend := persistdraft.NewMemoryBackend()
	m := NewManager(backend, createTestDeps(t, &fakeSubmitter{}))

	w := m.Create(ctx)
	_, err := uuid.Parse(w.ID())
	require.NoError(t, err)

	got, err := m.Get(ctx, w.ID())
	require.NoError(t, err)
	assert.Same(t, w, got)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, w.Change(ctx, models.FieldCity, "Soweto"))
	m.Close(w.ID())
	assert.Equal(t, 0, m.Len())

	reopened, err := m.Get(ctx, w.ID())
	require.NoError(t, err)
	assert.NotSame(t, w, reopened)
	assert.Equal(t, "Soweto", reopened.View().FormData.Get(models.FieldCity))

	_, err = m.Get(ctx, uuid.NewString())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSessionNotFound))
	_, err = m.Get(ctx, "../etc")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSessionNotFound))
}
