package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// SaleFlags selects a sale preset and overrides individual parameters of it.

func SaleFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "preset",
			Usage: "Sale parameter preset (development|staging|mainnet)",
			Value: "development",
		},
		cli.Uint64Flag{
			Name:  "sale.start",
			Usage: "Override the sale window opening (Unix seconds)",
		},
		cli.Uint64Flag{
			Name:  "sale.end",
			Usage: "Override the sale window closing (Unix seconds, exclusive)",
		},
		cli.StringFlag{
			Name:  "sale.goal",
			Usage: "Override the funding goal (decimal, base value units)",
		},
		cli.StringFlag{
			Name:  "sale.overshoot",
			Usage: "Override the per-tier overshoot allowance (decimal, base value units)",
		},
		cli.StringFlag{
			Name:  "sale.beneficiary",
			Usage: "Override the beneficiary address (hex)",
		},
		cli.StringFlag{
			Name:  "sale.signers",
			Usage: "Comma-separated KYC signer addresses; setting this turns the voucher requirement on",
		},
		cli.BoolFlag{
			Name:  "sale.novoucher",
			Usage: "Drop the voucher requirement (contributions become unauthenticated)",
		},
	}
}

// SimulateFlags tunes the simulate command's synthetic contribution stream.
func SimulateFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "sim.contributors",
			Usage: "Number of synthetic contributors",
			Value: 25,
		},
		cli.StringFlag{
			Name:  "sim.value",
			Usage: "Value contributed per contributor (decimal, base value units)",
			Value: "1000000000000000000",
		},
		cli.Int64Flag{
			Name:  "sim.seed",
			Usage: "Seed for the deterministic contributor stream",
			Value: 42,
		},
	}
}
