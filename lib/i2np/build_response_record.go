package i2np

import (
	"crypto/sha256"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/logger"
)

/*
I2P I2NP BuildResponseRecord
https://geti2p.net/spec/i2np#buildresponserecord

A response record occupies the same 528-byte slot as the request record it
answers. Unencrypted:

	bytes 0-31   :: SHA-256 hash of bytes 32-527
	bytes 32-526 :: random data
	byte  527    :: ret (0 = accept, otherwise reject reason)
*/

const buildResponsePaddingSize = 495

// BuildResponseRecord is one hop's answer to a BuildRequestRecord.
type BuildResponseRecord struct {
	Hash    common.Hash
	Padding [buildResponsePaddingSize]byte
	Reply   byte
}

// ReadBuildResponseRecord parses a 528-byte cleartext response record and
// verifies its hash.
func ReadBuildResponseRecord(data []byte) (BuildResponseRecord, error) {
	record := BuildResponseRecord{}
	if len(data) < TUNNEL_BUILD_RECORD_SIZE {
		return record, ERR_BUILD_RESPONSE_RECORD_NOT_ENOUGH_DATA
	}

	copy(record.Hash[:], data[0:32])
	copy(record.Padding[:], data[32:32+buildResponsePaddingSize])
	record.Reply = data[TUNNEL_BUILD_RECORD_SIZE-1]

	expected := sha256.Sum256(data[32:TUNNEL_BUILD_RECORD_SIZE])
	if record.Hash != common.Hash(expected) {
		log.WithFields(logger.Fields{
			"at": "i2np.ReadBuildResponseRecord",
		}).Warn("build_response_record_hash_mismatch")
		return record, ERR_BUILD_RESPONSE_RECORD_HASH_MISMATCH
	}

	log.WithFields(logger.Fields{
		"at":    "i2np.ReadBuildResponseRecord",
		"reply": record.Reply,
	}).Debug("parsed_build_response_record")
	return record, nil
}

// WriteBuildResponseRecord overwrites a 528-byte record slot in place with
// a response: padding, the ret byte, and the SHA-256 of padding and ret.
// The padding bytes already in the slot are kept, so a caller that wants
// random filler writes it first.
func WriteBuildResponseRecord(slot []byte, ret byte) error {
	if len(slot) < TUNNEL_BUILD_RECORD_SIZE {
		return ERR_BUILD_RESPONSE_RECORD_NOT_ENOUGH_DATA
	}
	slot[TUNNEL_BUILD_RECORD_SIZE-1] = ret
	hash := sha256.Sum256(slot[32:TUNNEL_BUILD_RECORD_SIZE])
	copy(slot[0:32], hash[:])
	return nil
}
