package position

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Policy는 단계 실패 시 사가의 동작을 정의합니다
type Policy int

const (
	// AbortOnFailure는 실패 시 남은 단계를 실행하지 않습니다
	AbortOnFailure Policy = iota
	// ContinueOnFailure는 실패를 경고로 기록하고 다음 단계로 진행합니다
	ContinueOnFailure
)

func (p Policy) String() string {
	if p == ContinueOnFailure {
		return "continueOnFailure"
	}
	return "abortOnFailure"
}

// StepStatus는 단계 실행 결과입니다
type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// ErrHalt를 반환한 단계는 성공으로 기록되고 이후 단계는 실행되지 않습니다
var ErrHalt = errors.New("saga halted")

// StepFunc는 사가의 한 단계입니다
type StepFunc func(ctx context.Context) error

type sagaStep struct {
	name   string
	policy Policy
	fn     StepFunc
}

// StepOutcome은 단계별 실행 기록입니다
type StepOutcome struct {
	Name     string
	Policy   Policy
	Status   StepStatus
	Err      error
	Duration time.Duration
}

// SagaReport는 사가 실행 결과입니다
type SagaReport struct {
	Name      string
	Steps     []StepOutcome
	Aborted   bool   // 필수 단계 실패로 중단됨
	AbortedAt string // 중단된 단계 이름
	Halted    bool   // 단계가 ErrHalt로 정상 종료시킴
	Err       error  // 중단 원인
}

// Warnings는 실패했지만 진행된 단계의 에러 메시지를 반환합니다
func (r SagaReport) Warnings() []string {
	var warnings []string
	for _, s := range r.Steps {
		if s.Status == StepFailed && s.Policy == ContinueOnFailure {
			warnings = append(warnings, fmt.Sprintf("%s: %v", s.Name, s.Err))
		}
	}
	return warnings
}

// Outcome은 이름으로 단계 기록을 찾습니다
func (r SagaReport) Outcome(name string) (StepOutcome, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepOutcome{}, false
}

// Saga는 순차적으로 실행되는 단계 목록입니다. 단계마다 실패 정책이 다릅니다.
type Saga struct {
	name  string
	log   logrus.FieldLogger
	steps []sagaStep
}

// NewSaga는 새로운 사가를 생성합니다
func NewSaga(name string, log logrus.FieldLogger) *Saga {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Saga{name: name, log: log}
}

// Step은 단계를 추가합니다
func (s *Saga) Step(name string, policy Policy, fn StepFunc) *Saga {
	s.steps = append(s.steps, sagaStep{name: name, policy: policy, fn: fn})
	return s
}

// Run은 단계를 순서대로 실행합니다.
// 컨텍스트가 취소되면 이후 단계는 정책과 관계없이 중단됩니다.
func (s *Saga) Run(ctx context.Context) SagaReport {
	report := SagaReport{Name: s.name, Steps: make([]StepOutcome, 0, len(s.steps))}
	stopped := false

	for _, st := range s.steps {
		outcome := StepOutcome{Name: st.name, Policy: st.policy}
		if stopped {
			outcome.Status = StepSkipped
			report.Steps = append(report.Steps, outcome)
			continue
		}

		log := s.log.WithFields(logrus.Fields{"saga": s.name, "step": st.name})

		if err := ctx.Err(); err != nil {
			outcome.Status = StepFailed
			outcome.Err = err
			report.Aborted, report.AbortedAt, report.Err = true, st.name, err
			report.Steps = append(report.Steps, outcome)
			stopped = true
			log.WithError(err).Warn("컨텍스트 취소로 사가 중단")
			continue
		}

		start := time.Now()
		err := st.fn(ctx)
		outcome.Duration = time.Since(start)

		switch {
		case err == nil:
			outcome.Status = StepSucceeded
			log.Debug("단계 완료")
		case errors.Is(err, ErrHalt):
			outcome.Status = StepSucceeded
			report.Halted = true
			stopped = true
			log.Info("사가 정상 종료 (이후 단계 생략)")
		case st.policy == ContinueOnFailure && ctx.Err() == nil:
			outcome.Status = StepFailed
			outcome.Err = err
			log.WithError(err).Warn("단계 실패 (계속 진행)")
		default:
			outcome.Status = StepFailed
			outcome.Err = err
			report.Aborted, report.AbortedAt, report.Err = true, st.name, err
			stopped = true
			log.WithError(err).Error("단계 실패로 사가 중단")
		}
		report.Steps = append(report.Steps, outcome)
	}

	return report
}
