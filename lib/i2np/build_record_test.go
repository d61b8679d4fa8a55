package i2np

import (
	"crypto/rand"
	"testing"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/session_key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	elgamal "github.com/go-i2p/go-i2np/lib/crypto/elg"
)

func sampleBuildRequestRecord() BuildRequestRecord {
	var ourIdent, nextIdent common.Hash
	var layerKey, ivKey, replyKey session_key.SessionKey
	var replyIV [16]byte
	for i := range ourIdent {
		ourIdent[i] = byte(i)
		nextIdent[i] = byte(i + 32)
		layerKey[i] = byte(i + 64)
		ivKey[i] = byte(i + 96)
		replyKey[i] = byte(i + 128)
	}
	for i := range replyIV {
		replyIV[i] = byte(i + 160)
	}
	return CreateBuildRequestRecord(ourIdent, 1001, nextIdent, 2002,
		layerKey, ivKey, replyKey, replyIV, 777, 491000, false, false, rand.Reader)
}

func TestBuildRequestRecordRoundTrip(t *testing.T) {
	record := sampleBuildRequestRecord()
	record.Flag = TUNNEL_BUILD_FLAG_ENDPOINT

	data := record.Bytes()
	require.Len(t, data, TUNNEL_BUILD_RECORD_CLEARTEXT_SIZE)

	parsed, err := ReadBuildRequestRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, parsed)
	assert.False(t, parsed.IsGateway())
	assert.True(t, parsed.IsEndpoint())
}

func TestReadBuildRequestRecordTooShort(t *testing.T) {
	_, err := ReadBuildRequestRecord(make([]byte, TUNNEL_BUILD_RECORD_CLEARTEXT_SIZE-1))
	assert.ErrorIs(t, err, ERR_BUILD_REQUEST_RECORD_NOT_ENOUGH_DATA)
}

func TestEncryptBuildRequestRecordRoundTrip(t *testing.T) {
	priv, err := elgamal.Generate(rand.Reader)
	require.NoError(t, err)

	record := sampleBuildRequestRecord()
	hopIdent := record.OurIdent

	out := make([]byte, TUNNEL_BUILD_RECORD_SIZE)
	require.NoError(t, EncryptBuildRequestRecord(hopIdent, priv.PublicKeyBytes(), &record, rand.Reader, out))

	assert.Equal(t, hopIdent[:TUNNEL_BUILD_RECORD_TO_PEER_SIZE], out[:TUNNEL_BUILD_RECORD_TO_PEER_SIZE])

	cleartext, err := priv.Decrypt(out[TUNNEL_BUILD_RECORD_TO_PEER_SIZE:], false)
	require.NoError(t, err)
	parsed, err := ReadBuildRequestRecord(cleartext)
	require.NoError(t, err)
	assert.Equal(t, record, parsed)
}

func TestWriteAndReadBuildResponseRecord(t *testing.T) {
	slot := make([]byte, TUNNEL_BUILD_RECORD_SIZE)
	_, err := rand.Read(slot)
	require.NoError(t, err)

	require.NoError(t, WriteBuildResponseRecord(slot, 0))

	record, err := ReadBuildResponseRecord(slot)
	require.NoError(t, err)
	assert.Equal(t, byte(0), record.Reply)
}

func TestReadBuildResponseRecordRejectsBadHash(t *testing.T) {
	slot := make([]byte, TUNNEL_BUILD_RECORD_SIZE)
	require.NoError(t, WriteBuildResponseRecord(slot, 0))
	slot[100] ^= 0x01

	_, err := ReadBuildResponseRecord(slot)
	assert.ErrorIs(t, err, ERR_BUILD_RESPONSE_RECORD_HASH_MISMATCH)
}
