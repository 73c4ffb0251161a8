package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/openintel/casegraph/pkg/client"
)

func newAPIClient(opts *rootOptions) (*client.Client, error) {
	return client.NewClient(opts.serverAddr, client.WithTimeout(opts.timeout))
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func newRelatedCmd(opts *rootOptions) *cobra.Command {
	var (
		radiusKM float64
		days     int
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "related <case-id>",
		Short: "Find cases correlated with the given case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newAPIClient(opts)
			if err != nil {
				return err
			}

			result, err := api.Intel().RelatedCases(cmd.Context(), args[0], client.RelatedCasesOptions{
				RadiusKM:  radiusKM,
				DaysRange: days,
				Limit:     limit,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().Float64Var(&radiusKM, "radius-km", 0, "search radius in kilometers (0 = server default)")
	cmd.Flags().IntVar(&days, "days", 0, "temporal window in days (0 = server default)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (0 = server default)")

	return cmd
}

func newRiskCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "risk <person-id>",
		Short: "Score a person's composite risk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newAPIClient(opts)
			if err != nil {
				return err
			}

			result, err := api.Intel().RiskScore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
}
