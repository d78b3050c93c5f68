package flow

import (
	"testing"

	"github.com/google/uuid"

	"github.com/uzjobs/receptionbot/flow/session"
)

func boolPtr(b bool) *bool { return &b }

func TestNextWithExperience(t *testing.T) {
	s := session.New(1, uuid.New(), string(FirstStep))
	s.Experience.HasExperience = boolPtr(true)

	want := []StepKey{
		StepFullName, StepBirthDate, StepAddress, StepPhone, StepMarital,
		StepEduType, StepEduSpeciality, StepEduCerts,
		StepExpGate, StepExpCompany, StepExpDuration, StepExpPosition,
		StepExpLeaveReason, StepExpCanWorkHowLong,
		StepSkillsComputer,
		StepFitCommunication, StepFitCalls, StepFitClientExp, StepFitDress, StepFitStress,
		StepWorkShift, StepWorkSalary, StepWorkStartDate,
		StepFilePhoto, StepFilePassport, StepFileRecommendation,
		StepReview, StepSubmitted,
	}

	step := FirstStep
	visited := []StepKey{step}
	for step != StepSubmitted {
		step = Next(step, s)
		visited = append(visited, step)
		if len(visited) > len(want)+1 {
			t.Fatalf("walk did not terminate: %v", visited)
		}
	}

	if len(visited) != len(want) {
		t.Fatalf("visited %d steps, want %d: %v", len(visited), len(want), visited)
	}
	for i, w := range want {
		if visited[i] != w {
			t.Fatalf("step %d = %s, want %s", i, visited[i], w)
		}
	}
}

func TestNextWithoutExperience(t *testing.T) {
	s := session.New(1, uuid.New(), string(StepExpGate))
	s.Experience.HasExperience = boolPtr(false)

	if got := Next(StepExpGate, s); got != StepExpCanWorkHowLong {
		t.Fatalf("gate without experience = %s, want %s", got, StepExpCanWorkHowLong)
	}

	skipped := []StepKey{StepExpCompany, StepExpDuration, StepExpPosition, StepExpLeaveReason}
	step := Next(StepExpGate, s)
	for step != StepSubmitted {
		for _, sk := range skipped {
			if step == sk {
				t.Fatalf("skipped step %s reached", sk)
			}
		}
		step = Next(step, s)
	}
}

func TestNextUnansweredGateAsksCompany(t *testing.T) {
	s := session.New(1, uuid.New(), string(StepExpGate))
	if got := Next(StepExpGate, s); got != StepExpCompany {
		t.Fatalf("unanswered gate = %s, want %s", got, StepExpCompany)
	}
}

func TestNextVacancyLeadsToFullName(t *testing.T) {
	s := session.New(1, uuid.New(), string(StepVacancy))
	if got := Next(StepVacancy, s); got != StepFullName {
		t.Fatalf("Next(StepVacancy) = %s, want %s", got, StepFullName)
	}
}

func TestNextUnknownStepTerminates(t *testing.T) {
	s := session.New(1, uuid.New(), "BOGUS")
	if got := Next(StepKey("BOGUS"), s); got != StepSubmitted {
		t.Fatalf("Next(unknown) = %s, want %s", got, StepSubmitted)
	}
}

func TestEveryStepHasADefinition(t *testing.T) {
	for step := range transitions {
		if _, ok := steps[step]; !ok {
			t.Errorf("step %s has a transition but no definition", step)
		}
	}
	for step := range steps {
		if _, ok := transitions[step]; !ok {
			t.Errorf("step %s has a definition but no transition", step)
		}
	}
}
