// cmd/kryon/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kryonlabs/kryon-runtime/internal/app"
)

func main() {
	var debugInspector bool

	runCmd := &cobra.Command{
		Use:   "run <file.krb>",
		Short: "Load and render a compiled KRYN document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(app.Options{KRBFilePath: args[0], DebugInspector: debugInspector})
		},
	}
	runCmd.Flags().BoolVar(&debugInspector, "inspector", false, "attach the debug tree inspector (toggle in-app with Ctrl+I)")

	root := &cobra.Command{
		Use:   "kryon",
		Short: "Kryon runtime: load, bind, and render compiled KRYN documents",
	}
	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
