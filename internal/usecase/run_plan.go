package usecase

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/domain/config"
	"gopkg.in/yaml.v3"
)

// Plan is a YAML description of an operation
type Plan struct {
	Name   string     `yaml:"name"`
	Sender string     `yaml:"sender,omitempty"`
	Steps  []PlanStep `yaml:"steps"`
}

// PlanStep is one step of a Plan
type PlanStep struct {
	Name        string   `yaml:"name"`
	Contract    string   `yaml:"contract"`
	ABI         string   `yaml:"abi,omitempty"`
	Method      string   `yaml:"method"`
	Args        []string `yaml:"args,omitempty"`
	Value       string   `yaml:"value,omitempty"`
	GasLimit    uint64   `yaml:"gas_limit,omitempty"`
	Timeout     string   `yaml:"timeout,omitempty"`
	ExpectEvent string   `yaml:"expect_event,omitempty"`
}

// Validate checks structural requirements
func (p *Plan) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("plan has no name")
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("plan %s has no steps", p.Name)
	}
	seen := make(map[string]bool)
	for i, s := range p.Steps {
		if s.Contract == "" {
			return fmt.Errorf("step %d: contract is required", i+1)
		}
		if s.Method == "" {
			return fmt.Errorf("step %d: method is required", i+1)
		}
		name := s.displayName()
		if seen[name] {
			return fmt.Errorf("step %d: duplicate step name %q", i+1, name)
		}
		seen[name] = true
	}
	return nil
}

func (s PlanStep) displayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Contract + "." + s.Method
}

// ParsePlan decodes and validates a plan
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	return &plan, nil
}

// RunPlanParams contains parameters for running a plan
type RunPlanParams struct {
	PlanPath string
	Sender   string // overrides the plan's sender
	DryRun   bool   // build and encode every step, submit nothing
	Resume   bool
}

// RunPlanResult contains the result of running a plan
type RunPlanResult struct {
	Plan      *Plan
	Operation *Operation
	Result    *OperationResult // nil on dry run
}

// RunPlan executes a YAML plan as one operation
type RunPlan struct {
	cfg          *config.RuntimeConfig
	registry     ContractRegistry
	senders      *SenderResolver
	orchestrator *Orchestrator
}

// NewRunPlan creates a new RunPlan use case
func NewRunPlan(
	cfg *config.RuntimeConfig,
	registry ContractRegistry,
	senders *SenderResolver,
	orchestrator *Orchestrator,
) *RunPlan {
	return &RunPlan{
		cfg:          cfg,
		registry:     registry,
		senders:      senders,
		orchestrator: orchestrator,
	}
}

// Build turns a plan into an operation. Every step is encoded up front so
// interface mismatches surface before anything is broadcast.
func (uc *RunPlan) Build(ctx context.Context, plan *Plan, sender string) (*Operation, error) {
	steps := make([]*Step, 0, len(plan.Steps))
	for i, ps := range plan.Steps {
		step, err := uc.buildStep(ps)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, ps.displayName(), err)
		}
		if _, err := step.Contract.Encode(step.Method, step.Args...); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, ps.displayName(), err)
		}
		steps = append(steps, step)
	}

	if sender == "" {
		sender = plan.Sender
	}
	account, err := uc.senders.Resolve(ctx, sender)
	if err != nil {
		return nil, err
	}

	return &Operation{
		Name:    plan.Name,
		Network: networkName(uc.cfg),
		Account: account,
		Steps:   steps,
	}, nil
}

func (uc *RunPlan) buildStep(ps PlanStep) (*Step, error) {
	proxy, err := uc.registry.Contract(ps.Contract, ps.ABI)
	if err != nil {
		return nil, err
	}
	args, err := uc.registry.CoerceArgs(proxy, ps.Method, ps.Args)
	if err != nil {
		return nil, err
	}

	step := &Step{
		Name:     ps.displayName(),
		Contract: proxy,
		Method:   ps.Method,
		Args:     args,
		GasLimit: ps.GasLimit,
	}
	if ps.Value != "" && ps.Value != "0" {
		value, err := domain.ParseAmount(ps.Value, domain.DefaultDecimals)
		if err != nil {
			return nil, err
		}
		step.Value = value
	} else {
		step.Value = new(big.Int)
	}
	if ps.Timeout != "" {
		d, err := time.ParseDuration(ps.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", ps.Timeout, err)
		}
		step.Timeout = d
	}
	if ps.ExpectEvent != "" {
		step.Succeeded = ExpectEvent(ps.ExpectEvent)
	}
	return step, nil
}

// Run loads, builds and executes the plan
func (uc *RunPlan) Run(ctx context.Context, params RunPlanParams) (*RunPlanResult, error) {
	data, err := os.ReadFile(params.PlanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	plan, err := ParsePlan(data)
	if err != nil {
		return nil, err
	}

	op, err := uc.Build(ctx, plan, params.Sender)
	if err != nil {
		return nil, err
	}
	result := &RunPlanResult{Plan: plan, Operation: op}
	if params.DryRun {
		return result, nil
	}

	if err := uc.senders.ConfirmBroadcast(ctx, op); err != nil {
		return nil, err
	}
	result.Result, err = uc.orchestrator.Run(ctx, op, RunOptions{Resume: params.Resume})
	return result, err
}
