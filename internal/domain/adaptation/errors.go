package adaptation

import "errors"

// Sentinel kinds for adaptation errors.
var (
	ErrTrainingInProgress = errors.New("adaptation: a training run is already in progress")
)
