package launcher

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/hivepower/go-crowdsale/integration"
	"github.com/hivepower/go-crowdsale/sale"
)

// MakeSaleConfig resolves the selected preset and applies the CLI overrides
// on top of it. The result is validated; an override combination that breaks
// a config invariant (window inverted, voucher policy without signers) is
// rejected here rather than at engine construction.
func MakeSaleConfig(ctx *cli.Context) (*sale.Config, error) {
	now := sale.TimestampOf(time.Now())
	cfg, err := integration.PresetByName(ctx.GlobalString("preset"), now)
	if err != nil {
		return nil, err
	}

	if ctx.GlobalIsSet("sale.start") {
		cfg.Start = sale.Timestamp(ctx.GlobalUint64("sale.start"))
	}
	if ctx.GlobalIsSet("sale.end") {
		cfg.End = sale.Timestamp(ctx.GlobalUint64("sale.end"))
	}
	if ctx.GlobalIsSet("sale.goal") {
		cfg.Goal, err = parseBig(ctx.GlobalString("sale.goal"))
		if err != nil {
			return nil, fmt.Errorf("--sale.goal: %w", err)
		}
	}
	if ctx.GlobalIsSet("sale.overshoot") {
		cfg.Overshoot, err = parseBig(ctx.GlobalString("sale.overshoot"))
		if err != nil {
			return nil, fmt.Errorf("--sale.overshoot: %w", err)
		}
	}
	if ctx.GlobalIsSet("sale.beneficiary") {
		raw := ctx.GlobalString("sale.beneficiary")
		if !common.IsHexAddress(raw) {
			return nil, fmt.Errorf("--sale.beneficiary: not a hex address: %q", raw)
		}
		cfg.Beneficiary = common.HexToAddress(raw)
	}
	if ctx.GlobalIsSet("sale.signers") {
		cfg.KYCSigners, err = parseSigners(ctx.GlobalString("sale.signers"))
		if err != nil {
			return nil, fmt.Errorf("--sale.signers: %w", err)
		}
		cfg.RequireVoucher = true
	}
	if ctx.GlobalBool("sale.novoucher") {
		cfg.RequireVoucher = false
		cfg.KYCSigners = nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseBig(raw string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("not a non-negative decimal: %q", raw)
	}
	return v, nil
}

func parseSigners(raw string) ([]common.Address, error) {
	var signers []common.Address
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !common.IsHexAddress(part) {
			return nil, fmt.Errorf("not a hex address: %q", part)
		}
		signers = append(signers, common.HexToAddress(part))
	}
	if len(signers) == 0 {
		return nil, fmt.Errorf("no addresses in %q", raw)
	}
	return signers, nil
}
