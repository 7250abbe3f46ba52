package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/samsaffron/term-md/internal/llm"
	"github.com/samsaffron/term-md/internal/prompt"
	"github.com/samsaffron/term-md/internal/ui"
)

// AddProviderFlag adds the persistent --provider/-p flag with completion
func AddProviderFlag(cmd *cobra.Command, dest *string) {
	cmd.PersistentFlags().StringVarP(dest, "provider", "p", "", "Override provider (gemini, anthropic, openai)")
	if err := cmd.RegisterFlagCompletionFunc("provider", ProviderFlagCompletion); err != nil {
		panic("failed to register provider completion: " + err.Error())
	}
}

// ProviderFlagCompletion handles --provider flag completion
func ProviderFlagCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return matching(llm.ProviderNames(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// AssistKindCompletion completes the first argument of "assist".
func AssistKindCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return []string{"md", "markdown", "txt"}, cobra.ShellCompDirectiveFilterFileExt
	}
	var kinds []string
	for _, k := range prompt.Kinds() {
		kinds = append(kinds, string(k))
	}
	return matching(kinds, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// ThemeFlagCompletion completes --theme.
func ThemeFlagCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return matching(ui.PresetThemeNames(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// MarkdownFileCompletion limits file completion to markdown files.
func MarkdownFileCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"md", "markdown", "txt"}, cobra.ShellCompDirectiveFilterFileExt
}

func matching(options []string, prefix string) []string {
	var out []string
	for _, o := range options {
		if strings.HasPrefix(o, prefix) {
			out = append(out, o)
		}
	}
	return out
}
