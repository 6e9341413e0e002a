// internal/models/session.go
package models

import "fmt"

// Step is a wizard position.
type Step int

const (
	StepPersonal Step = iota
	StepEducation
	StepHousehold
	StepDocuments
)

// StepCount is the number of wizard steps.
const StepCount = 4

var stepNames = [StepCount]string{
	"Personal Information",
	"Education",
	"Household Information",
	"Documents",
}

func (s Step) Name() string {
	if s.Valid() {
		return stepNames[s]
	}
	return fmt.Sprintf("Step %d", int(s))
}

func (s Step) Valid() bool {
	return s >= StepPersonal && s <= StepDocuments
}

// Completion holds one flag per step.
type Completion [StepCount]bool

// FirstIncomplete returns the first false flag before upTo, if any.
func (c Completion) FirstIncomplete(upTo Step) (Step, bool) {
	for i := StepPersonal; i < upTo && i.Valid(); i++ {
		if !c[i] {
			return i, true
		}
	}
	return 0, false
}

// WizardState is the navigation and feedback state of one wizard.
type WizardState struct {
	ActiveStep           Step        `json:"activeStep"`
	Errors               FieldErrors `json:"errors"`
	Touched              Touched     `json:"touched"`
	StepCompletionStatus Completion  `json:"stepCompletionStatus"`
	IsSubmitting         bool        `json:"isSubmitting"`
	IsSubmitted          bool        `json:"isSubmitted"`
}
