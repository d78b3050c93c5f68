// Package flow drives the applicant through the fixed questionnaire:
// forward progress, back, skip and cancel are handled uniformly by the
// engine's dispatch loop, and every completed step is persisted before
// the next one is asked.
package flow

import "github.com/uzjobs/receptionbot/flow/session"

// StepKey identifies one unit of work in the questionnaire.
type StepKey string

const (
	StepVacancy StepKey = "VACANCY_PICK"

	StepFullName  StepKey = "PERSON_FULL_NAME"
	StepBirthDate StepKey = "PERSON_BIRTHDATE"
	StepAddress   StepKey = "PERSON_ADDRESS"
	StepPhone     StepKey = "PERSON_PHONE"
	StepMarital   StepKey = "PERSON_MARITAL_STATUS"

	StepEduType       StepKey = "EDU_TYPE"
	StepEduSpeciality StepKey = "EDU_SPECIALITY"
	StepEduCerts      StepKey = "EDU_CERTS"

	StepExpGate           StepKey = "EXP_HAS"
	StepExpCompany        StepKey = "EXP_COMPANY"
	StepExpDuration       StepKey = "EXP_DURATION"
	StepExpPosition       StepKey = "EXP_POSITION"
	StepExpLeaveReason    StepKey = "EXP_LEAVE_REASON"
	StepExpCanWorkHowLong StepKey = "EXP_CAN_WORK_HOW_LONG"

	StepSkillsComputer StepKey = "SKILLS_COMPUTER"

	StepFitCommunication StepKey = "FIT_COMMUNICATION"
	StepFitCalls         StepKey = "FIT_CALLS"
	StepFitClientExp     StepKey = "FIT_CLIENT_EXP"
	StepFitDress         StepKey = "FIT_DRESS"
	StepFitStress        StepKey = "FIT_STRESS"

	StepWorkShift     StepKey = "WORK_SHIFT"
	StepWorkSalary    StepKey = "WORK_SALARY"
	StepWorkStartDate StepKey = "WORK_START_DATE"

	StepFilePhoto          StepKey = "FILE_PHOTO_HALF_BODY"
	StepFilePassport       StepKey = "FILE_PASSPORT_OPTIONAL"
	StepFileRecommendation StepKey = "FILE_RECOMMENDATION"

	StepReview    StepKey = "REVIEW_CONFIRM"
	StepSubmitted StepKey = "SUBMITTED"
)

// FirstStep is where a fresh application begins and where an empty
// history falls back on back navigation.
const FirstStep = StepFullName

func static(next StepKey) func(*session.Session) StepKey {
	return func(*session.Session) StepKey { return next }
}

// transitions maps every step to its successor. The employment gate is
// the single state-dependent entry: no prior experience jumps straight
// to the how-long question.
var transitions = map[StepKey]func(*session.Session) StepKey{
	StepVacancy: static(StepFullName),

	StepFullName:  static(StepBirthDate),
	StepBirthDate: static(StepAddress),
	StepAddress:   static(StepPhone),
	StepPhone:     static(StepMarital),
	StepMarital:   static(StepEduType),

	StepEduType:       static(StepEduSpeciality),
	StepEduSpeciality: static(StepEduCerts),
	StepEduCerts:      static(StepExpGate),

	StepExpGate: func(s *session.Session) StepKey {
		if s.Experience.HasExperience != nil && !*s.Experience.HasExperience {
			return StepExpCanWorkHowLong
		}
		return StepExpCompany
	},
	StepExpCompany:        static(StepExpDuration),
	StepExpDuration:       static(StepExpPosition),
	StepExpPosition:       static(StepExpLeaveReason),
	StepExpLeaveReason:    static(StepExpCanWorkHowLong),
	StepExpCanWorkHowLong: static(StepSkillsComputer),

	StepSkillsComputer: static(StepFitCommunication),

	StepFitCommunication: static(StepFitCalls),
	StepFitCalls:         static(StepFitClientExp),
	StepFitClientExp:     static(StepFitDress),
	StepFitDress:         static(StepFitStress),
	StepFitStress:        static(StepWorkShift),

	StepWorkShift:     static(StepWorkSalary),
	StepWorkSalary:    static(StepWorkStartDate),
	StepWorkStartDate: static(StepFilePhoto),

	StepFilePhoto:          static(StepFilePassport),
	StepFilePassport:       static(StepFileRecommendation),
	StepFileRecommendation: static(StepReview),

	StepReview: static(StepSubmitted),
}

// Next computes the successor of step given the current scratch state.
func Next(step StepKey, s *session.Session) StepKey {
	fn, ok := transitions[step]
	if !ok {
		return StepSubmitted
	}
	return fn(s)
}
