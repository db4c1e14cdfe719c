package blocks

import (
	"fmt"
	"slices"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Plan is the organization plan in effect. RequiredBlocks narrows the
// registry's required set; an empty list keeps every registry-required type.
type Plan struct {
	Name           string
	RequiredBlocks []Type
}

// MissingBlocksReport lists the required types absent from a main block list,
// with one message per missing type.
type MissingBlocksReport struct {
	Missing  []Type
	Messages []string
}

// Err converts the report into a categorized validation error. A nil report
// yields nil.
func (r *MissingBlocksReport) Err() error {
	if r == nil || len(r.Missing) == 0 {
		return nil
	}
	fieldErrors := make(goerrors.ValidationErrors, 0, len(r.Missing))
	for i, missing := range r.Missing {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   "elements",
			Message: r.Messages[i],
			Value:   string(missing),
		})
	}
	err := goerrors.Wrap(ErrMissingRequiredBlocks, goerrors.CategoryValidation, strings.Join(r.Messages, " ")).
		WithTextCode(textCodeMissingBlocks)
	err.ValidationErrors = fieldErrors
	return err
}

// Has reports whether t is listed as missing.
func (r *MissingBlocksReport) Has(t Type) bool {
	return r != nil && slices.Contains(r.Missing, t)
}

// Validator checks block lists against the required types for a plan.
type Validator struct {
	registry *Registry
	plan     Plan
}

// NewValidator binds a registry and plan. A nil registry uses DefaultRegistry.
func NewValidator(registry *Registry, plan Plan) *Validator {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Validator{registry: registry, plan: plan}
}

// Registry exposes the bound registry.
func (v *Validator) Registry() *Registry {
	return v.registry
}

// RequiredTypes is the registry's required set restricted to the plan.
func (v *Validator) RequiredTypes() []Type {
	required := v.registry.RequiredTypes()
	if len(v.plan.RequiredBlocks) == 0 {
		return required
	}
	return slices.DeleteFunc(required, func(t Type) bool {
		return !slices.Contains(v.plan.RequiredBlocks, t)
	})
}

// Validate returns nil when every required type appears in main, otherwise a
// report naming the missing types. Sidebar blocks never satisfy the check.
func (v *Validator) Validate(main []Block) *MissingBlocksReport {
	present := make(map[Type]struct{}, len(main))
	for _, block := range main {
		present[block.Type] = struct{}{}
	}

	var report *MissingBlocksReport
	for _, required := range v.RequiredTypes() {
		if _, ok := present[required]; ok {
			continue
		}
		if report == nil {
			report = &MissingBlocksReport{}
		}
		report.Missing = append(report.Missing, required)
		report.Messages = append(report.Messages, fmt.Sprintf("Your page must include a %s element.", v.registry.DisplayName(required)))
	}
	return report
}
