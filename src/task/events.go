package task

import "time"

type TaskEvent struct {
	TaskID    string
	Type      TaskEventType
	Animation string
	Timestamp time.Time
}

type TaskEventType string

const (
	Started            TaskEventType = "started"
	Failed             TaskEventType = "failed"
	Completed          TaskEventType = "completed"
	StageOne           TaskEventType = "stage-one"
	StageOneComplete   TaskEventType = "stage-one-complete"
	StageTwo           TaskEventType = "stage-two"
	StageTwoComplete   TaskEventType = "stage-two-complete"
	StageThree         TaskEventType = "stage-three"
	StageThreeComplete TaskEventType = "stage-three-complete"
)

// Stage names what a stage event stands for, for logs.
func (t TaskEventType) Stage() string {
	switch t {
	case StageOne, StageOneComplete:
		return "load frames"
	case StageTwo, StageTwoComplete:
		return "build palette"
	case StageThree, StageThreeComplete:
		return "quantize and encode"
	}
	return string(t)
}
