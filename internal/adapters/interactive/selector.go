package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/domain/config"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// Confirm asks a yes/no question; anything but an explicit yes is a no
func (s *SelectorAdapter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if s.config.NonInteractive {
		return false, fmt.Errorf("confirmation not available in non-interactive mode")
	}

	p := promptui.Prompt{
		Label:     prompt,
		IsConfirm: true,
	}
	if _, err := p.Run(); err != nil {
		if err == promptui.ErrAbort {
			return false, nil
		}
		return false, fmt.Errorf("confirmation cancelled: %w", err)
	}
	return true, nil
}

// SelectSender picks one of the configured senders
func (s *SelectorAdapter) SelectSender(ctx context.Context, senders []domain.SenderInfo, prompt string) (string, error) {
	if s.config.NonInteractive {
		return "", fmt.Errorf("interactive selection not available in non-interactive mode")
	}

	if len(senders) == 0 {
		return "", fmt.Errorf("no senders configured")
	}

	if len(senders) == 1 {
		return senders[0].Name, nil
	}

	options := formatSenderOptions(senders)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             prompt,
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: len(options) > 10,
		Searcher:          createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}

	return senders[index].Name, nil
}

// formatSenderOptions renders "name (0xabc…) [type]" lines
func formatSenderOptions(senders []domain.SenderInfo) []string {
	options := make([]string, len(senders))
	for i, sender := range senders {
		name := color.New(color.FgWhite, color.Bold).Sprint(sender.Name)
		addr := color.New(color.FgBlue).Sprint(sender.Address.Hex())
		kind := color.New(color.FgYellow).Sprintf("[%s]", sender.Type)

		options[i] = fmt.Sprintf("%s (%s) %s", name, addr, kind)
		if sender.Default {
			options[i] += color.New(color.Faint).Sprint(" default")
		}
	}
	return options
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		pattern := fuzzy.Find(input, []string{item})
		return len(pattern) > 0
	}
}

// Ensure the adapter implements the interface
var _ usecase.InteractiveSelector = (*SelectorAdapter)(nil)
