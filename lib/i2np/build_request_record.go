package i2np

import (
	"encoding/binary"
	"io"


	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/session_key"
	"github.com/go-i2p/logger"
	elgamal "github.com/go-i2p/go-i2np/lib/crypto/elg"
)

/*
I2P I2NP BuildRequestRecord
https://geti2p.net/spec/i2np

ElGamal encrypted (528 bytes on the wire):

	toPeer         :: first 16 bytes of the SHA-256 of the hop's RouterIdentity
	encrypted_data :: ElGamal-2048 ciphertext, 512 bytes

Cleartext (222 bytes):

	receive_tunnel :: TunnelId,    4 bytes
	our_ident      :: Hash,       32 bytes
	next_tunnel    :: TunnelId,    4 bytes
	next_ident     :: Hash,       32 bytes
	layer_key      :: SessionKey, 32 bytes
	iv_key         :: SessionKey, 32 bytes
	reply_key      :: SessionKey, 32 bytes
	reply_iv       :: data,       16 bytes
	flag           :: Integer,     1 byte
	request_time   :: Integer,     4 bytes, hours since the epoch
	send_msg_id    :: Integer,     4 bytes
	padding        :: random,     29 bytes
*/

// Cleartext field offsets.
const (
	buildRecordReceiveTunnelOffset = 0
	buildRecordOurIdentOffset      = 4
	buildRecordNextTunnelOffset    = 36
	buildRecordNextIdentOffset     = 40
	buildRecordLayerKeyOffset      = 72
	buildRecordIVKeyOffset         = 104
	buildRecordReplyKeyOffset      = 136
	buildRecordReplyIVOffset       = 168
	buildRecordFlagOffset          = 184
	buildRecordRequestTimeOffset   = 185
	buildRecordSendMessageIDOffset = 189
	buildRecordPaddingOffset       = 193
)

// BuildRequestRecord is the decrypted per-hop tunnel build request.
type BuildRequestRecord struct {
	ReceiveTunnel TunnelID
	OurIdent      common.Hash
	NextTunnel    TunnelID
	NextIdent     common.Hash
	LayerKey      session_key.SessionKey
	IVKey         session_key.SessionKey
	ReplyKey      session_key.SessionKey
	ReplyIV       [16]byte
	Flag          byte
	RequestTime   uint32 // hours since the epoch
	SendMessageID uint32
	Padding       [29]byte
}

// IsGateway reports whether this hop is the inbound gateway.
func (r *BuildRequestRecord) IsGateway() bool {
	return r.Flag&TUNNEL_BUILD_FLAG_GATEWAY != 0
}

// IsEndpoint reports whether this hop is the outbound endpoint.
func (r *BuildRequestRecord) IsEndpoint() bool {
	return r.Flag&TUNNEL_BUILD_FLAG_ENDPOINT != 0
}

// ReadBuildRequestRecord parses a 222-byte cleartext build request record.
func ReadBuildRequestRecord(data []byte) (BuildRequestRecord, error) {
	record := BuildRequestRecord{}
	if len(data) < TUNNEL_BUILD_RECORD_CLEARTEXT_SIZE {
		return record, ERR_BUILD_REQUEST_RECORD_NOT_ENOUGH_DATA
	}

	record.ReceiveTunnel = TunnelID(binary.BigEndian.Uint32(data[buildRecordReceiveTunnelOffset:]))
	copy(record.OurIdent[:], data[buildRecordOurIdentOffset:buildRecordNextTunnelOffset])
	record.NextTunnel = TunnelID(binary.BigEndian.Uint32(data[buildRecordNextTunnelOffset:]))
	copy(record.NextIdent[:], data[buildRecordNextIdentOffset:buildRecordLayerKeyOffset])
	copy(record.LayerKey[:], data[buildRecordLayerKeyOffset:buildRecordIVKeyOffset])
	copy(record.IVKey[:], data[buildRecordIVKeyOffset:buildRecordReplyKeyOffset])
	copy(record.ReplyKey[:], data[buildRecordReplyKeyOffset:buildRecordReplyIVOffset])
	copy(record.ReplyIV[:], data[buildRecordReplyIVOffset:buildRecordFlagOffset])
	record.Flag = data[buildRecordFlagOffset]
	record.RequestTime = binary.BigEndian.Uint32(data[buildRecordRequestTimeOffset:])
	record.SendMessageID = binary.BigEndian.Uint32(data[buildRecordSendMessageIDOffset:])
	copy(record.Padding[:], data[buildRecordPaddingOffset:TUNNEL_BUILD_RECORD_CLEARTEXT_SIZE])

	log.WithFields(logger.Fields{
		"at":             "i2np.ReadBuildRequestRecord",
		"receive_tunnel": record.ReceiveTunnel,
		"next_tunnel":    record.NextTunnel,
		"flag":           record.Flag,
	}).Debug("parsed_build_request_record")
	return record, nil
}

// Bytes serializes the record to its 222-byte cleartext form.
func (r *BuildRequestRecord) Bytes() []byte {
	data := make([]byte, TUNNEL_BUILD_RECORD_CLEARTEXT_SIZE)
	binary.BigEndian.PutUint32(data[buildRecordReceiveTunnelOffset:], uint32(r.ReceiveTunnel))
	copy(data[buildRecordOurIdentOffset:], r.OurIdent[:])
	binary.BigEndian.PutUint32(data[buildRecordNextTunnelOffset:], uint32(r.NextTunnel))
	copy(data[buildRecordNextIdentOffset:], r.NextIdent[:])
	copy(data[buildRecordLayerKeyOffset:], r.LayerKey[:])
	copy(data[buildRecordIVKeyOffset:], r.IVKey[:])
	copy(data[buildRecordReplyKeyOffset:], r.ReplyKey[:])
	copy(data[buildRecordReplyIVOffset:], r.ReplyIV[:])
	data[buildRecordFlagOffset] = r.Flag
	binary.BigEndian.PutUint32(data[buildRecordRequestTimeOffset:], r.RequestTime)
	binary.BigEndian.PutUint32(data[buildRecordSendMessageIDOffset:], r.SendMessageID)
	copy(data[buildRecordPaddingOffset:], r.Padding[:])
	return data
}

// CreateBuildRequestRecord assembles the cleartext record an originator
// sends to one candidate hop. requestTime is hours since the epoch.
func CreateBuildRequestRecord(ourIdent common.Hash, receiveTunnelID TunnelID,
	nextIdent common.Hash, nextTunnelID TunnelID,
	layerKey, ivKey, replyKey session_key.SessionKey, replyIV [16]byte,
	nextMessageID uint32, requestTime uint32, isGateway, isEndpoint bool,
	rng io.Reader,
) BuildRequestRecord {
	record := BuildRequestRecord{
		ReceiveTunnel: receiveTunnelID,
		OurIdent:      ourIdent,
		NextTunnel:    nextTunnelID,
		NextIdent:     nextIdent,
		LayerKey:      layerKey,
		IVKey:         ivKey,
		ReplyKey:      replyKey,
		ReplyIV:       replyIV,
		RequestTime:   requestTime,
		SendMessageID: nextMessageID,
	}
	if isGateway {
		record.Flag |= TUNNEL_BUILD_FLAG_GATEWAY
	}
	if isEndpoint {
		record.Flag |= TUNNEL_BUILD_FLAG_ENDPOINT
	}
	if rng != nil {
		io.ReadFull(rng, record.Padding[:])
	}
	return record
}

// EncryptBuildRequestRecord ElGamal-encrypts the cleartext record to the
// hop's public key and writes the 528-byte wire record into out: the first
// 16 bytes of the hop's identity hash, then the 512-byte ciphertext.
func EncryptBuildRequestRecord(hopIdent common.Hash, hopPublicKey elgamal.ElgPublicKey,
	record *BuildRequestRecord, rng io.Reader, out []byte,
) error {
	if len(out) < TUNNEL_BUILD_RECORD_SIZE {
		return ERR_BUILD_REQUEST_RECORD_NOT_ENOUGH_DATA
	}
	encrypted, err := elgamal.EncryptToPublicKey(hopPublicKey, record.Bytes(), rng, false)
	if err != nil {
		return err
	}
	copy(out[:TUNNEL_BUILD_RECORD_TO_PEER_SIZE], hopIdent[:TUNNEL_BUILD_RECORD_TO_PEER_SIZE])
	copy(out[TUNNEL_BUILD_RECORD_TO_PEER_SIZE:], encrypted)
	return nil
}
