package commands

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/acforge/pkg/errors"
	"github.com/arthur-debert/acforge/pkg/style"
)

//go:embed docs/*.md
var docsFS embed.FS

func newDocsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "docs [topic]",
		Short:   MsgDocsShort,
		Long:    MsgDocsLong,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listTopics(cmd)
			}
			return showTopic(cmd, args[0])
		},
	}
}

func listTopics(cmd *cobra.Command) error {
	names, err := topicNames()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Available topics:")
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\nUse 'acforge docs <topic>' to read one.")
	return nil
}

func showTopic(cmd *cobra.Command, name string) error {
	content, err := docsFS.ReadFile("docs/" + name + ".md")
	if err != nil {
		names, _ := topicNames()
		return errors.Newf(errors.ErrNotFound,
			"unknown topic %q (available: %s)", name, strings.Join(names, ", "))
	}

	fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(string(content)))
	return nil
}

func topicNames() ([]string, error) {
	entries, err := fs.ReadDir(docsFS, "docs")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "could not list topics")
	}

	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)
	return names, nil
}

// renderMarkdown renders a topic with glamour, falling back to the raw
// markdown when rendering fails or output is not a terminal.
func renderMarkdown(content string) string {
	var options []glamour.TermRendererOption
	if style.IsTerminal() {
		options = append(options, glamour.WithAutoStyle())
	} else {
		options = append(options, glamour.WithStandardStyle("notty"))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
