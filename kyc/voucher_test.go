package kyc

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/hivepower/go-crowdsale/utils/compact"
)

var (
	testSaleID      = common.HexToHash("0x11aa11aa11aa11aa11aa11aa11aa11aa11aa11aa11aa11aa11aa11aa11aa11aa")
	otherSaleID     = common.HexToHash("0x22bb22bb22bb22bb22bb22bb22bb22bb22bb22bb22bb22bb22bb22bb22bb22bb")
	testContributor = common.HexToAddress("0x890d4c6b94e6f54bdbb58530f425c2a5a3033361")
)

func TestVoucherWireRoundTrip(t *testing.T) {
	require := require.New(t)

	key, err := crypto.GenerateKey()
	require.NoError(err)

	v, err := Issue(key, testSaleID, testContributor, 42, big.NewInt(1_000_000))
	require.NoError(err)

	raw, err := v.Encode()
	require.NoError(err)

	got, err := DecodeVoucher(raw)
	require.NoError(err)
	require.Equal(v.ContributorID, got.ContributorID)
	require.Zero(v.MaxAmount.Cmp(got.MaxAmount))
	require.Equal(v.Signature, got.Signature)
}

func TestDecodeVoucherRejectsGarbage(t *testing.T) {
	require := require.New(t)

	_, err := DecodeVoucher(nil)
	require.Error(err)

	_, err = DecodeVoucher([]byte{0x01})
	require.Error(err)

	// A valid blob with one extra byte must fail: the wire form has exactly
	// one serialization.
	key, err := crypto.GenerateKey()
	require.NoError(err)
	v, err := Issue(key, testSaleID, testContributor, 1, big.NewInt(5))
	require.NoError(err)
	raw, err := v.Encode()
	require.NoError(err)
	_, err = DecodeVoucher(append(raw, 0x00))
	require.ErrorIs(err, compact.ErrMalformed)
}

func TestEncodeRejectsBrokenVoucher(t *testing.T) {
	require := require.New(t)

	_, err := (&Voucher{ContributorID: 1, MaxAmount: nil, Signature: make([]byte, SignatureLength)}).Encode()
	require.Error(err)

	_, err = (&Voucher{ContributorID: 1, MaxAmount: big.NewInt(1), Signature: []byte{1, 2}}).Encode()
	require.Error(err)
}

// TestDigest_domainSeparation pins the replay protections: every field of
// the digest input must change the digest.
func TestDigest_domainSeparation(t *testing.T) {
	require := require.New(t)

	base := Digest(testSaleID, testContributor, 7, big.NewInt(100))

	require.Equal(base, Digest(testSaleID, testContributor, 7, big.NewInt(100)))
	require.NotEqual(base, Digest(otherSaleID, testContributor, 7, big.NewInt(100)), "sale identity must be bound")
	require.NotEqual(base, Digest(testSaleID, common.HexToAddress("0x01"), 7, big.NewInt(100)), "contributor must be bound")
	require.NotEqual(base, Digest(testSaleID, testContributor, 8, big.NewInt(100)), "contributor id must be bound")
	require.NotEqual(base, Digest(testSaleID, testContributor, 7, big.NewInt(101)), "max amount must be bound")
}
