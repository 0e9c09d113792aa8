// mm bootstraps a metamodel world from metamodel.toml and inspects it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/chazu/metamodel/bootstrap"
	"github.com/chazu/metamodel/heap"
	"github.com/chazu/metamodel/manifest"

	_ "github.com/tliron/commonlog/simple"
)

var (
	flagDir       string
	flagVerbosity int
)

// cfg is the manifest loaded by PersistentPreRunE.
var cfg *manifest.Manifest

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mm",
	Short: "Bootstrap and inspect a metamodel object space",
	Long: `mm bootstraps the KnowHOW meta-object, defines the types listed in
metamodel.toml on top of the registered representations, and reports on
the resulting heap.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		m, err := manifest.FindAndLoad(flagDir)
		if err != nil {
			return fmt.Errorf("load manifest: %w", err)
		}
		if m == nil {
			m = manifest.Default()
		}
		cfg = m

		verbosity := cfg.Log.Verbosity
		if cmd.Flags().Changed("verbose") {
			verbosity = flagVerbosity
		}
		commonlog.Configure(verbosity, cfg.LogPath())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDir, "dir", "C", ".", "directory to search for "+manifest.FileName)
	rootCmd.PersistentFlags().CountVarP(&flagVerbosity, "verbose", "v", "log verbosity (repeat for more)")

	rootCmd.AddCommand(reprsCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(historyCmd)
}

// buildWorld bootstraps a world and defines every manifest type.
func buildWorld(m *manifest.Manifest) (*bootstrap.World, error) {
	interval, err := m.GCInterval()
	if err != nil {
		return nil, err
	}
	w, err := bootstrap.New(bootstrap.Options{
		REPRs:      m.Runtime.Representations,
		GCInterval: interval,
		Background: m.GC.Background,
	})
	if err != nil {
		return nil, err
	}
	for _, def := range m.Types {
		spec := bootstrap.TypeSpec{
			Name:       def.Name,
			REPR:       def.REPR,
			Attributes: def.Attributes,
		}
		for _, name := range def.Methods {
			spec.Methods = append(spec.Methods, heap.NewFunc(name, nil))
		}
		if _, err := w.DefineType(spec); err != nil {
			w.Close()
			return nil, err
		}
	}
	return w, nil
}
