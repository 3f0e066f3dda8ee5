package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a config file and its border file without running.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}

		return validate(cfg, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().String("config", "", "The YAML file to check.")
	_ = validateCmd.MarkFlagRequired("config")
}

func validate(cfg Config, out io.Writer) error {
	r, err := populate(newSimulation(cfg), cfg)
	if err != nil {
		return err
	}

	associations := 0
	if r.border != nil {
		associations = r.border.Len()
	}

	_, err = fmt.Fprintf(out, "%d components, %d associations, stop at tick %d\n",
		len(r.components), associations, r.terminator.Bound())

	return err
}
