package render

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/trebuchet-org/flashops/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Color styles shared by the renderers
var (
	sectionHeaderStyle = color.New(color.Bold, color.FgHiWhite)
	addressStyle       = color.New(color.FgWhite)
	hashStyle          = color.New(color.FgCyan)
	faintStyle         = color.New(color.Faint)
	successStyle       = color.New(color.FgGreen)
	failureStyle       = color.New(color.FgRed)
	pendingStyle       = color.New(color.FgYellow)
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	// Capitalize first letter
	if len(message) > 0 {
		message = strings.ToUpper(message[:1]) + message[1:]
	}

	return color.New(color.FgRed).Sprintf("❌ %s", message)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// OperationTitle turns an operation name like "fund-and-transfer" into "Fund And Transfer"
func OperationTitle(name string) string {
	return cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(name))
}

// FormatEvent renders a decoded event as Name(key=value, ...) with keys sorted
func FormatEvent(ev domain.Event) string {
	keys := lo.Keys(ev.Fields)
	sort.Strings(keys)
	parts := lo.Map(keys, func(k string, _ int) string {
		return fmt.Sprintf("%s=%s", k, formatValue(ev.Fields[k]))
	})
	return fmt.Sprintf("%s(%s)", ev.Name, strings.Join(parts, ", "))
}

func formatValue(v any) string {
	switch val := v.(type) {
	case *big.Int:
		return val.String()
	case common.Address:
		return val.Hex()
	case common.Hash:
		return val.Hex()
	case []byte:
		return fmt.Sprintf("0x%x", val)
	case [32]byte:
		return common.Hash(val).Hex()
	default:
		return fmt.Sprint(val)
	}
}

func statusText(status string, ok bool) string {
	if ok {
		return successStyle.Sprint(status)
	}
	return failureStyle.Sprint(status)
}

// newTable returns a borderless table writer
func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box = table.BoxStyle{
		PaddingRight:     "   ",
		MiddleHorizontal: "─",
	}
	t.Style().Format.Header = text.FormatDefault
	return t
}
