package domain

// Envelope is the sealed form of one entry's content.
//
// WrappedKey is the content key sealed under the master key and Ciphertext is
// the content sealed under the content key. Both seals use Nonce. Reusing one
// nonce is only safe because the two seals are under different keys.
type Envelope struct {
	Ciphertext []byte
	WrappedKey []byte
	Nonce      []byte
}
