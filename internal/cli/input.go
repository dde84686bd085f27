package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/kerraform/kota/internal/ota"
	"github.com/spf13/cobra"
)

const stdinArg = "-"

// readInput reads the document named by the first argument, or stdin when
// there is none or it is "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == stdinArg {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

func writeDocument(w io.Writer, doc *ota.Document, compact bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(doc)
}
