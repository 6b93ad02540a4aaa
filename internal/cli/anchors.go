package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ontolayout/pkg/anchor"
	"github.com/matzehuels/ontolayout/pkg/io"
)

// anchorsCommand creates the interactive anchor picker.
func (c *CLI) anchorsCommand() *cobra.Command {
	var (
		output string
		list   bool
	)

	cmd := &cobra.Command{
		Use:   "anchors [request.json]",
		Short: "Choose which diagram nodes keep their position",
		Long: `Choose which diagram nodes keep their position.

Opens a picker listing the nodes of the request's diagram. The saved
selection is written into the request's options as an explicit anchor list
with mode only-given-anchors, so the next layout moves every other node.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnchors(cmd, args[0], output, list)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the request here instead of in place")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "print the current selection and exit")

	return cmd
}

func (c *CLI) runAnchors(cmd *cobra.Command, input, output string, list bool) error {
	req, err := io.ImportRequest(input)
	if err != nil {
		return fmt.Errorf("load request %s: %w", input, err)
	}

	var selected map[string]bool
	if req.Options.AnchorMode == anchor.OnlyGiven {
		selected = make(map[string]bool, len(req.Options.Anchored))
		for _, id := range req.Options.Anchored {
			selected[id] = true
		}
	}
	picker := NewAnchorPickerModel(req.Diagram.Entities, selected)

	if list {
		for _, it := range picker.Items {
			mark := StyleDim.Render("·")
			if it.Anchored {
				mark = StyleSuccess.Render(iconSuccess)
			}
			fmt.Fprintf(stdout, "%s %s %s\n", mark, it.ID, StyleDim.Render(it.Represented))
		}
		return nil
	}

	final, err := tea.NewProgram(picker, tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return fmt.Errorf("anchor picker: %w", err)
	}
	picked := final.(AnchorPickerModel)
	if !picked.Confirmed {
		printInfo("No changes")
		return nil
	}

	req.Options.AnchorMode = anchor.OnlyGiven
	req.Options.Anchored = picked.Anchored()
	req.Options.NotAnchored = nil

	path := output
	if path == "" {
		path = input
	}
	if err := io.ExportRequest(req, path); err != nil {
		return fmt.Errorf("write request %s: %w", path, err)
	}
	printSuccess("Anchored %d of %d nodes", len(req.Options.Anchored), len(picked.Items))
	printFile(path)
	printNextStep("Lay out", "ontolayout layout "+path)
	return nil
}
