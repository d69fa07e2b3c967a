package alert

import (
	"encoding/json"
	"fmt"

	"github.com/turtacn/DealRadar/pkg/errors"
)

// Condition is the trigger-specific payload of a rule.  Each trigger type has
// exactly one concrete condition type; DecodeCondition selects it from the
// stored JSON document.
type Condition interface {
	// TriggerType returns the trigger type this condition belongs to.
	TriggerType() TriggerType
}

// ProjectTypeSetCondition matches opportunities whose display-form project
// type equals ProjectType.
type ProjectTypeSetCondition struct {
	ProjectType string `json:"project_type"`
}

func (ProjectTypeSetCondition) TriggerType() TriggerType { return TriggerProjectTypeSet }

// StageChangeCondition matches opportunities currently in stage To.
type StageChangeCondition struct {
	To string `json:"to"`
}

func (StageChangeCondition) TriggerType() TriggerType { return TriggerStageChange }

// ValueThresholdCondition matches opportunities whose estimated value lies
// in [MinValue, MaxValue], both bounds inclusive.  MinValue is effectively
// mandatory: a threshold rule without a floor is unconfigured and never
// matches.
type ValueThresholdCondition struct {
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`
}

func (ValueThresholdCondition) TriggerType() TriggerType { return TriggerValueThreshold }

// DefaultDeadlineHorizonDays is the proximity horizon when a rule does not
// set one.
const DefaultDeadlineHorizonDays = 60

// DeadlineProximityCondition matches when the named key date resolves to
// within WithinDays from now.
type DeadlineProximityCondition struct {
	Deadline   string `json:"deadline"`
	WithinDays int    `json:"within_days,omitempty"`
}

func (DeadlineProximityCondition) TriggerType() TriggerType { return TriggerDeadlineProximity }

// Horizon returns the effective proximity window in days.
func (c DeadlineProximityCondition) Horizon() int {
	if c.WithinDays > 0 {
		return c.WithinDays
	}
	return DefaultDeadlineHorizonDays
}

// DecodeCondition unmarshals the stored condition document into the concrete
// condition type for triggerType.
func DecodeCondition(triggerType TriggerType, raw []byte) (Condition, error) {
	var (
		cond Condition
		err  error
	)
	switch triggerType {
	case TriggerProjectTypeSet:
		var c ProjectTypeSetCondition
		err = json.Unmarshal(raw, &c)
		cond = c
	case TriggerStageChange:
		var c StageChangeCondition
		err = json.Unmarshal(raw, &c)
		cond = c
	case TriggerValueThreshold:
		var c ValueThresholdCondition
		err = json.Unmarshal(raw, &c)
		cond = c
	case TriggerDeadlineProximity:
		var c DeadlineProximityCondition
		err = json.Unmarshal(raw, &c)
		cond = c
	default:
		return nil, errors.New(errors.ErrCodeRuleConditionInvalid,
			fmt.Sprintf("unknown trigger type %q", triggerType))
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRuleConditionInvalid,
			fmt.Sprintf("malformed condition for trigger %q", triggerType))
	}
	return cond, nil
}

// EncodeCondition marshals a condition back into its stored JSON document.
func EncodeCondition(cond Condition) ([]byte, error) {
	raw, err := json.Marshal(cond)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encode rule condition")
	}
	return raw, nil
}
