package contract

import "errors"

var (
	ErrModelInvoke      = errors.New("model invoke failed")
	ErrPromptMissing    = errors.New("required prompt is missing")
	ErrValidation       = errors.New("validation failed")
	ErrRender           = errors.New("diagram render failed")
	ErrImageMissing     = errors.New("rendered image not found")
	ErrCounterCorrupt   = errors.New("counter state is not an integer")
	ErrStorage          = errors.New("storage operation failed")
	ErrEmptyDescription = errors.New("system description is empty")
)
