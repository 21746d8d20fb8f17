package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alexgichamba/denoiser/internal/model"
)

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "models",
		Short:       "List available enhancement models",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, name := range model.Names() {
				m, err := model.Get(name)
				if err != nil {
					return err
				}
				rows = append(rows, []string{
					m.Name(),
					fmt.Sprintf("%d Hz", m.SampleRate()),
					fmt.Sprintf("%d", m.Channels()),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Model", "Sample rate", "Channels"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
}
