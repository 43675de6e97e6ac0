package render

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

// StepView is the printable form of a built step
type StepView struct {
	Name     string   `json:"name"`
	Contract string   `json:"contract"`
	Address  string   `json:"address"`
	Method   string   `json:"method"`
	Args     []string `json:"args,omitempty"`
	Value    string   `json:"value,omitempty"`
	Calldata string   `json:"calldata"`
}

// StepViews describes every step of op, including its encoded calldata
func StepViews(op *usecase.Operation) ([]StepView, error) {
	views := make([]StepView, 0, len(op.Steps))
	for _, s := range op.Steps {
		data, err := s.Contract.Encode(s.Method, s.Args...)
		if err != nil {
			return nil, err
		}
		v := StepView{
			Name:     s.Name,
			Contract: s.Contract.Name(),
			Address:  s.Contract.Address().Hex(),
			Method:   s.Method,
			Args:     lo.Map(s.Args, func(a any, _ int) string { return formatValue(a) }),
			Calldata: fmt.Sprintf("0x%x", data),
		}
		if s.Value != nil && s.Value.Sign() > 0 {
			v.Value = s.Value.String()
		}
		views = append(views, v)
	}
	return views, nil
}

// PlanRenderer renders plan dry runs
type PlanRenderer struct {
	out     io.Writer
	verbose bool
}

// NewPlanRenderer creates a new plan renderer; verbose adds calldata
func NewPlanRenderer(out io.Writer, verbose bool) *PlanRenderer {
	return &PlanRenderer{out: out, verbose: verbose}
}

// RenderDryRun renders the steps a plan would send
func (r *PlanRenderer) RenderDryRun(result *usecase.RunPlanResult) error {
	views, err := StepViews(result.Operation)
	if err != nil {
		return err
	}

	sender := ""
	if result.Operation.Account != nil {
		sender = result.Operation.Account.Address.Hex()
	}
	fmt.Fprintln(r.out, sectionHeaderStyle.Sprintf("Plan %s (dry run)", result.Plan.Name))
	if sender != "" {
		fmt.Fprintf(r.out, "  Sender: %s\n", addressStyle.Sprint(sender))
	}
	fmt.Fprintln(r.out)

	t := newTable()
	t.AppendHeader(table.Row{"#", "STEP", "CALL", "VALUE"})
	for i, v := range views {
		value := ""
		if v.Value != "" {
			n, _ := new(big.Int).SetString(v.Value, 10)
			value = domain.FormatAmount(n, domain.DefaultDecimals)
		}
		call := fmt.Sprintf("%s.%s(%s)", v.Contract, v.Method, strings.Join(v.Args, ", "))
		t.AppendRow(table.Row{i + 1, v.Name, call, value})
	}
	fmt.Fprintln(r.out, t.Render())

	if r.verbose {
		for _, v := range views {
			fmt.Fprintf(r.out, "  %s → %s %s\n", v.Name, v.Address, faintStyle.Sprint(v.Calldata))
		}
	}
	fmt.Fprintln(r.out, FormatWarning("dry run: nothing was sent"))
	return nil
}
