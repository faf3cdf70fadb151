package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/guriri-express/dispatch/internal/commission"
)

// WriteRules prints the delivery fee policy, one row per tier and fee.
func WriteRules(w io.Writer) error {
	if err := commission.VerifyRules(); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIER\tFEE\tCOURIER\tPLATFORM")
	for _, r := range commission.Rules() {
		tier := "avulso"
		if r.Subscriber {
			tier = "mensalista"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", tier, r.Fee, r.Courier, r.Platform)
	}
	return tw.Flush()
}
