package apperr

import (
	"errors"
	"fmt"
)

const (
	MetaReason   = "reason"
	MetaStage    = "stage"
	MetaField    = "field"
	MetaAction   = "action"
	MetaSelector = "selector"
	MetaURL      = "url"
	MetaState    = "state"

	StageBrowser     = "browser"
	StageAI          = "ai"
	StagePlan        = "plan"
	StageExecution   = "execution"
	StageNavigation  = "navigation"
	StageInteraction = "interaction"
	StageSearch      = "search"
	StageSummary     = "summary"

	CodeInternal        = "internal"
	CodeInvalidArgument = "invalid_argument"
	CodeUnavailable     = "unavailable"
	CodeTimeout         = "timeout"
	CodeBrowserNotReady = "browser_not_ready"
	CodeActionFailed    = "action_failed"
	CodeAIError         = "ai_error"
	CodeInvalidPlan     = "invalid_plan"
)

type Error struct {
	Op       string
	Code     string
	Err      error
	Metadata map[string]any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return e.Op
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(op, code string, err error, metadata map[string]any) error {
	if metadata == nil {
		metadata = make(map[string]any)
	}

	return &Error{
		Op:       op,
		Code:     code,
		Err:      err,
		Metadata: metadata,
	}
}

func WrapWithReason(op, code string, err error, reason string) error {
	return Wrap(op, code, err, map[string]any{
		MetaReason: reason,
	})
}

func WrapErrorWithReason(op, code, reason string) error {
	return Wrap(op, code, errors.New(reason), map[string]any{
		MetaReason: reason,
	})
}

func InvalidReqError(op, field string, err error) error {
	return Wrap(op, CodeInvalidArgument, err, map[string]any{
		MetaField:  field,
		MetaReason: "invalid_request",
	})
}

// CodeOf returns the code of the outermost *Error in the chain that is not internal,
// falling back to CodeInternal.
func CodeOf(err error) string {
	for err != nil {
		var appErr *Error
		if !errors.As(err, &appErr) {
			break
		}

		if appErr.Code != CodeInternal {
			return appErr.Code
		}

		err = appErr.Err
	}

	return CodeInternal
}

// Cause returns the innermost error message, without the op prefixes added by Wrap.
func Cause(err error) error {
	for {
		var appErr *Error
		if !errors.As(err, &appErr) || appErr.Err == nil {
			return err
		}

		err = appErr.Err
	}
}
