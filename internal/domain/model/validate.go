package model

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// MissingToken is the dataset's encoding for an absent BMI.
const MissingToken = "N/A"

// ValidateOptions controls ValidateRecord.
type ValidateOptions struct {
	// Strict rejects keys outside the ten known fields.
	Strict bool
}

// ValidateRecord checks a raw key/value mapping and builds a FeatureRecord.
// Fields are checked in FieldOrder and the first failure is returned.
func ValidateRecord(raw map[string]any, opts ValidateOptions) (FeatureRecord, error) {
	var rec FeatureRecord
	var err error

	if rec.Gender, err = categorical(raw, FieldGender); err != nil {
		return FeatureRecord{}, err
	}
	if rec.Age, err = number(raw, FieldAge); err != nil {
		return FeatureRecord{}, err
	}
	if rec.Age < 0 {
		return FeatureRecord{}, newValidationError(ErrOutOfRange, FieldAge, "must be >= 0")
	}
	if rec.Hypertension, err = flag(raw, FieldHypertension); err != nil {
		return FeatureRecord{}, err
	}
	if rec.HeartDisease, err = flag(raw, FieldHeartDisease); err != nil {
		return FeatureRecord{}, err
	}
	if rec.EverMarried, err = categorical(raw, FieldEverMarried); err != nil {
		return FeatureRecord{}, err
	}
	if rec.WorkType, err = categorical(raw, FieldWorkType); err != nil {
		return FeatureRecord{}, err
	}
	if rec.ResidenceType, err = categorical(raw, FieldResidenceType); err != nil {
		return FeatureRecord{}, err
	}
	if rec.AvgGlucoseLevel, err = number(raw, FieldAvgGlucoseLevel); err != nil {
		return FeatureRecord{}, err
	}
	if rec.AvgGlucoseLevel <= 0 {
		return FeatureRecord{}, newValidationError(ErrOutOfRange, FieldAvgGlucoseLevel, "must be > 0")
	}
	if rec.BMI, err = optionalNumber(raw, FieldBMI); err != nil {
		return FeatureRecord{}, err
	}
	if rec.BMI != nil && *rec.BMI <= 0 {
		return FeatureRecord{}, newValidationError(ErrOutOfRange, FieldBMI, "must be > 0")
	}
	if rec.SmokingStatus, err = categorical(raw, FieldSmokingStatus); err != nil {
		return FeatureRecord{}, err
	}

	if opts.Strict {
		if extra := unexpectedKeys(raw); len(extra) > 0 {
			return FeatureRecord{}, newValidationError(ErrUnexpectedField, extra[0],
				fmt.Sprintf("allowed keys are %s", strings.Join(FieldOrder, ", ")))
		}
	}

	return rec, nil
}

// lookup returns the raw value for field, honouring the Residence_type alias.
func lookup(raw map[string]any, field string) (any, bool) {
	if v, ok := raw[field]; ok {
		return v, true
	}
	if field == FieldResidenceType {
		v, ok := raw[FieldResidenceTypeAlias]
		return v, ok
	}
	return nil, false
}

// present fetches a value and rejects absent, nil and blank-string values.
func present(raw map[string]any, field string) (any, error) {
	v, ok := lookup(raw, field)
	if !ok || v == nil {
		return nil, newValidationError(ErrMissingField, field, "")
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, newValidationError(ErrMissingField, field, "")
	}
	return v, nil
}

func categorical(raw map[string]any, field string) (string, error) {
	v, err := present(raw, field)
	if err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), nil
	case json.Number:
		return t.String(), nil
	case bool, map[string]any, []any:
		return "", newValidationError(ErrInvalidType, field, fmt.Sprintf("expected string, got %T", v))
	default:
		if f, ok := toFloat(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		}
		return "", newValidationError(ErrInvalidType, field, fmt.Sprintf("expected string, got %T", v))
	}
}

func number(raw map[string]any, field string) (float64, error) {
	v, err := present(raw, field)
	if err != nil {
		return 0, err
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, newValidationError(ErrInvalidType, field, fmt.Sprintf("expected number, got %v", v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, newValidationError(ErrInvalidType, field, "must be finite")
	}
	return f, nil
}

func optionalNumber(raw map[string]any, field string) (*float64, error) {
	if v, ok := lookup(raw, field); ok {
		if s, isStr := v.(string); isStr && strings.EqualFold(strings.TrimSpace(s), MissingToken) {
			return nil, nil
		}
	}
	f, err := number(raw, field)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func flag(raw map[string]any, field string) (int, error) {
	v, err := present(raw, field)
	if err != nil {
		return 0, err
	}
	if b, ok := v.(bool); ok {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	f, ok := toFloat(v)
	if !ok || (f != 0 && f != 1) {
		return 0, newValidationError(ErrInvalidType, field, fmt.Sprintf("expected 0 or 1, got %v", v))
	}
	return int(f), nil
}

// toFloat converts JSON numbers, Go numeric kinds and numeric strings.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

func unexpectedKeys(raw map[string]any) []string {
	var extra []string
	for k := range raw {
		if k == FieldResidenceTypeAlias || slices.Contains(FieldOrder, k) {
			continue
		}
		extra = append(extra, k)
	}
	slices.Sort(extra)
	return extra
}
