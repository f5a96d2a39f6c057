package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/xmlsyntax/internal/ui/pretty"
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
)

type codesFlags struct {
	format string
}

const formatJSON = "json"

// codeInfo represents a diagnostic code in JSON output.
type codeInfo struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

func newCodesCommand() *cobra.Command {
	flags := &codesFlags{}

	cmd := &cobra.Command{
		Use:   "codes [CODE...]",
		Short: "List diagnostic codes",
		Long: `List the diagnostic codes the parser reports, with their severity and
message template. Codes can be selected by code (XML0017) or name
(MismatchedEndTag), case-insensitively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := selectCodes(args)
			if err != nil {
				return withExitCode(ExitInvalidUsage, err)
			}

			out := cmd.OutOrStdout()
			if flags.format == formatJSON {
				return outputCodesJSON(out, ids)
			}

			styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd, nil), out))
			for _, id := range ids {
				fmt.Fprintln(out, formatCode(styles, id))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text",
		"output format: text, json")

	return cmd
}

func selectCodes(args []string) ([]syntax.ErrorID, error) {
	if len(args) == 0 {
		return syntax.AllErrorIDs(), nil
	}
	ids := make([]syntax.ErrorID, 0, len(args))
	for _, arg := range args {
		id, ok := syntax.ParseErrorID(arg)
		if !ok {
			return nil, fmt.Errorf("unknown diagnostic code %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatCode(styles *pretty.Styles, id syntax.ErrorID) string {
	severity := styles.FormatSeverity(id.Severity())
	name := id.Code() + " " + id.String()
	return fmt.Sprintf("%s  %s  %s",
		styles.Code.Render(fmt.Sprintf("%-36s", name)),
		severity+strings.Repeat(" ", max(0, len("warning")-len(id.Severity()))),
		id.Template(),
	)
}

// outputCodesJSON outputs codes as a JSON array.
func outputCodesJSON(out io.Writer, ids []syntax.ErrorID) error {
	infos := make([]codeInfo, 0, len(ids))
	for _, id := range ids {
		infos = append(infos, codeInfo{
			Code:     id.Code(),
			Name:     id.String(),
			Severity: string(id.Severity()),
			Message:  id.Template(),
		})
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(infos); err != nil {
		return fmt.Errorf("encoding codes: %w", err)
	}
	return nil
}
