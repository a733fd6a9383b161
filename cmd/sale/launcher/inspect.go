package launcher

import (
	"fmt"
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/hivepower/go-crowdsale/sale"
)

// inspectSale prints the fully resolved sale configuration, the identity
// vouchers bind to, and where the sale window sits relative to now.
func inspectSale(ctx *cli.Context) error {
	cfg, err := MakeSaleConfig(ctx)
	if err != nil {
		return err
	}

	now := sale.TimestampOf(time.Now())
	w := ctx.App.Writer
	fmt.Fprintf(w, "sale:      %s\n", cfg.Name)
	fmt.Fprintf(w, "id:        %s\n", cfg.Hash().Hex())
	fmt.Fprintf(w, "window:    [%s, %s)\n",
		cfg.Start.Time().UTC().Format(time.RFC3339),
		cfg.End.Time().UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "phase:     %s\n", cfg.Phase(now))
	fmt.Fprintf(w, "total cap: %s tokens\n", cfg.TotalCap())
	fmt.Fprintf(w, "goal:      %s value units\n", cfg.Goal)
	fmt.Fprintf(w, "vouchers:  required=%v signers=%d\n", cfg.RequireVoucher, len(cfg.KYCSigners))
	fmt.Fprintf(w, "config:    %s\n", cfg)
	return nil
}
