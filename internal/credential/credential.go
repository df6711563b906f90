// Package credential validates raw parameter bundles into canonical
// per-backend credential records.
package credential

import (
	"fmt"
	"slices"
	"sort"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/model"
)

// Params is a raw, client-supplied parameter bundle.
type Params map[string]any

// Record is a canonical credential record for exactly one backend kind.
type Record interface {
	Backend() model.BackendKind
	// Fields returns the record as a document, omitting unset optional fields.
	Fields() map[string]any
}

// Validator assembles credential records and logs rejected or ignored input.
type Validator struct {
	logger *logger.Logger
}

func NewValidator(logger *logger.Logger) *Validator {
	return &Validator{logger: logger}
}

// Assemble dispatches on kind and returns the canonical record for params.
func (v *Validator) Assemble(kind model.BackendKind, params Params) (Record, error) {
	if !kind.Valid() {
		v.logger.Error("Credential validator: unknown backend",
			"backend", string(kind))
		return nil, apiErrors.NewErrInvalidEnum("backend", string(kind), []string{string(model.BackendOwncloud), string(model.BackendS3)})
	}

	switch kind {
	case model.BackendOwncloud:
		return v.AssembleOwncloud(params)
	default:
		return v.AssembleS3(params)
	}
}

func (v *Validator) checkParams(backend string, params Params, required, optional []string) error {
	missing := missingKeys(params, required)
	if len(missing) > 0 {
		err := apiErrors.NewErrMissingRequiredParams(backend, missing)
		v.logger.Error("Credential validator: missing required params",
			"backend", backend,
			"missing", missing)
		return err
	}

	if unused := unusedKeys(params, required, optional); len(unused) > 0 {
		v.logger.Warn("Credential validator: extra params defined but not used",
			"backend", backend,
			"unused", unused)
	}

	return nil
}

// missingKeys returns the keys of want that params lacks, in want's order.
func missingKeys(params Params, want []string) []string {
	var out []string
	for _, k := range want {
		if _, ok := params[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

func unusedKeys(params Params, required, optional []string) []string {
	var out []string
	for k := range params {
		if !slices.Contains(required, k) && !slices.Contains(optional, k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// str returns params[key] as a string, or "" when absent or null.
func (p Params) str(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func putIfSet(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}
