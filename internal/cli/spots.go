package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"surfcast/internal/spots"
	"surfcast/internal/ui"
)

var spotsCmd = &cobra.Command{
	Use:   "spots",
	Short: "List every known spot with its id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := buildApp()
		if err != nil {
			return err
		}
		defer cleanup()

		format, err := a.format()
		if err != nil {
			return err
		}

		all := a.index.All()
		list := make([]*spots.Spot, len(all))
		for i := range all {
			list[i] = &all[i]
		}
		fmt.Fprint(a.out, ui.For(format).Render(ui.SpotListView(list)))
		return nil
	},
}
