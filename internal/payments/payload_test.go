package payments

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	promoID := uint(7)
	p := Payload{
		PlanID:  3,
		UserID:  42,
		Month:   3,
		Year:    2026,
		PromoID: &promoID,
		Mode:    "renewal",
		Nonce:   1767225600,
	}

	encoded, err := p.Encode()
	require.NoError(t, err)

	decoded, err := DecodePayload(encoded)
	require.NoError(t, err)
	require.Equal(t, payloadVersion, decoded.Version)
	require.Equal(t, p.PlanID, decoded.PlanID)
	require.Equal(t, p.UserID, decoded.UserID)
	require.Equal(t, p.Month, decoded.Month)
	require.Equal(t, p.Year, decoded.Year)
	require.NotNil(t, decoded.PromoID)
	require.Equal(t, promoID, *decoded.PromoID)
	require.Equal(t, p.Mode, decoded.Mode)
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"not json",
		`{"v":99,"p":1,"u":2}`, // wrong version
		`{"v":1,"p":0,"u":2}`,  // no plan
		`{"v":1,"p":1,"u":0}`,  // no user
	}
	for _, raw := range cases {
		_, err := DecodePayload(raw)
		require.ErrorIs(t, err, ErrBadPayload, "payload %q", raw)
	}
}
