package types

// Encrypter encrypts a block of data to a key fixed at construction.
type Encrypter interface {
	// return encrypted block or nil and error if error happens
	Encrypt(data []byte) ([]byte, error)
}

// Decrypter decrypts a block of data with a key fixed at construction.
type Decrypter interface {
	// return decrypted block or nil and error if error happens
	Decrypt(data []byte) ([]byte, error)
}

// ReceivingPublicKey is a public key that can spawn Encrypters.
type ReceivingPublicKey interface {
	Len() int
	Bytes() []byte
	NewEncrypter() (Encrypter, error)
}

// PrivateEncryptionKey is a private key that can spawn Decrypters.
type PrivateEncryptionKey interface {
	NewDecrypter() (Decrypter, error)
}
