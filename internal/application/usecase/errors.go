package usecase

import "errors"

// ErrServiceUnavailable is returned by PredictRisk when the transform failed
// to load. It is wrapped together with the underlying *service.TransformError.
var ErrServiceUnavailable = errors.New("service unavailable")
