package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/phanxgames/unpack"
	"github.com/phanxgames/unpack/internal/assets"
)

// newListCmd creates the list command, which prints the regions a
// descriptor defines without loading the atlas image.
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [descriptor]",
		Short: "List the regions of an atlas descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func runList(ctx context.Context, out io.Writer, input string) error {
	desc, err := assets.LoadDescriptor(input)
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("parsed descriptor", "path", input, "regions", len(desc.Regions))

	fmt.Fprintln(out, StyleTitle.Render(input))
	if desc.ImagePath != "" {
		printKeyValue(out, "image", desc.ImagePath)
	}
	printKeyValue(out, "regions", StyleNumber.Render(strconv.Itoa(len(desc.Regions))))
	if len(desc.Regions) == 0 {
		return nil
	}
	fmt.Fprintln(out, regionTable(desc.Regions))
	return nil
}

// regionTable renders one row per region: entry name, packed rect and the
// untrimmed frame when it differs from the rect.
func regionTable(regions []unpack.Region) string {
	rows := make([][]string, 0, len(regions))
	trimmed := make([]bool, 0, len(regions))
	for _, r := range regions {
		frame := ""
		isTrimmed := false
		if f := r.Frame; f != nil && (f.X != 0 || f.Y != 0 || f.Width != r.Rect.Width || f.Height != r.Rect.Height) {
			frame = fmt.Sprintf("%g,%g %gx%g", f.X, f.Y, f.Width, f.Height)
			isTrimmed = true
		}
		rows = append(rows, []string{
			unpack.EntryName(r.Name),
			fmt.Sprintf("%g,%g", r.Rect.X, r.Rect.Y),
			fmt.Sprintf("%gx%g", r.Rect.Width, r.Rect.Height),
			frame,
		})
		trimmed = append(trimmed, isTrimmed)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Entry", "Origin", "Size", "Frame").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if row >= 0 && row < len(trimmed) && trimmed[row] && col == 3 {
				return styleTrimmed
			}
			return lipgloss.NewStyle()
		}).
		String()
}
