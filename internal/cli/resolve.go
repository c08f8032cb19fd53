package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/pex/internal/loader"
)

func newResolveCmd(a *app) *cobra.Command {
	var flags loadFlags

	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Print the load parameters that would be used, without reading the file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, a.cfg.Loader.Options())
			if err != nil {
				return err
			}
			p, err := loader.Resolve(args[0], loader.WithOptions(opts))
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(p); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	addLoadFlags(cmd, &flags)
	return cmd
}
